package risk

import (
	"fmt"
	"math"
	"sort"

	"github.com/mwhelan/daybreak/internal/record"
)

// Signal weights and thresholds for risk scoring. Weights sum to 100.
const (
	weightCravingLevel  = 30
	weightLowMood       = 20
	weightMeetingGap    = 15
	weightTriggerLoad   = 15
	weightCravingTrend  = 10
	weightMeditationGap = 10

	thresholdMeetingGapDays    = 14.0
	thresholdMeditationGapDays = 7.0
	thresholdTriggersPerEntry  = 3.0

	// neutralScore is reported when the recent window is empty: not enough
	// history to say anything, so stay comfortably inside the low band.
	neutralScore = 10

	// minFactorWeight is the floor below which a signal's contribution is
	// not worth reporting as an explanation.
	minFactorWeight = 1.0
)

// Factor identifiers, stable across releases so the UI can map them to copy.
const (
	FactorCravingLevel  = "craving-level"
	FactorLowMood       = "low-mood"
	FactorMeetingGap    = "meeting-gap"
	FactorTriggerLoad   = "trigger-load"
	FactorCravingTrend  = "craving-trend"
	FactorMeditationGap = "meditation-gap"
)

// Assess computes a relapse-risk assessment from a recent-history snapshot.
// Pure and deterministic: same input always yields the same assessment, and
// the input is never mutated. An empty window yields the neutral low
// assessment rather than an error.
func Assess(in Input) (Assessment, error) {
	for _, c := range in.CheckIns {
		if err := c.Validate(); err != nil {
			return Assessment{}, fmt.Errorf("assess risk: %w", err)
		}
	}

	if len(in.CheckIns) == 0 {
		return Assessment{
			Score:      neutralScore,
			Level:      LevelForScore(neutralScore),
			Factors:    []Factor{},
			Confidence: ConfidenceLow,
		}, nil
	}

	// Work on a sorted copy so the input slice is left untouched and the
	// trend signal is independent of caller ordering.
	window := make([]record.CheckIn, len(in.CheckIns))
	copy(window, in.CheckIns)
	sort.Slice(window, func(i, j int) bool {
		if !window[i].Timestamp.Equal(window[j].Timestamp) {
			return window[i].Timestamp.Before(window[j].Timestamp)
		}
		return window[i].ID < window[j].ID
	})

	var cravingSum, moodSum float64
	triggerCount := 0
	for _, c := range window {
		cravingSum += float64(c.Craving)
		moodSum += float64(c.Mood)
		triggerCount += len(c.Triggers)
	}
	n := float64(len(window))

	cravingNorm := clamp(cravingSum / n / record.MeasureMax)
	moodNorm := clamp((record.MeasureMax - moodSum/n) / record.MeasureMax)
	triggerNorm := clamp(float64(triggerCount) / n / thresholdTriggersPerEntry)
	trendNorm := cravingTrend(window)
	meetingNorm := gapNorm(in.DaysSinceLastMeeting, thresholdMeetingGapDays)
	meditationNorm := gapNorm(in.DaysSinceLastMeditation, thresholdMeditationGapDays)

	factors := []Factor{
		{ID: FactorCravingLevel, Weight: cravingNorm * weightCravingLevel},
		{ID: FactorLowMood, Weight: moodNorm * weightLowMood},
		{ID: FactorMeetingGap, Weight: meetingNorm * weightMeetingGap},
		{ID: FactorTriggerLoad, Weight: triggerNorm * weightTriggerLoad},
		{ID: FactorCravingTrend, Weight: trendNorm * weightCravingTrend},
		{ID: FactorMeditationGap, Weight: meditationNorm * weightMeditationGap},
	}

	var raw float64
	for _, f := range factors {
		raw += f.Weight
	}

	score := int(math.Round(raw))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	reported := make([]Factor, 0, len(factors))
	for _, f := range factors {
		if f.Weight >= minFactorWeight {
			f.Weight = math.Round(f.Weight*10) / 10
			reported = append(reported, f)
		}
	}
	sort.SliceStable(reported, func(i, j int) bool {
		if reported[i].Weight != reported[j].Weight {
			return reported[i].Weight > reported[j].Weight
		}
		return reported[i].ID < reported[j].ID
	})

	confidence := ConfidenceNormal
	if len(window) < 3 {
		confidence = ConfidenceLow
	}

	return Assessment{
		Score:      score,
		Level:      LevelForScore(score),
		Factors:    reported,
		Confidence: confidence,
	}, nil
}

// LevelForScore maps a score to its discrete level. Total and deterministic
// over the full 0-100 range.
func LevelForScore(score int) Level {
	switch {
	case score < 25:
		return LevelLow
	case score < 50:
		return LevelModerate
	case score < 75:
		return LevelHigh
	default:
		return LevelCritical
	}
}

// cravingTrend compares the newer half of the window against the older half
// and returns the normalized worsening, 0 if stable or improving. Windows
// with fewer than 4 entries carry no trend signal.
func cravingTrend(window []record.CheckIn) float64 {
	if len(window) < 4 {
		return 0
	}
	mid := len(window) / 2
	older := avgCraving(window[:mid])
	newer := avgCraving(window[mid:])
	return clamp((newer - older) / record.MeasureMax * 2)
}

func avgCraving(cs []record.CheckIn) float64 {
	var sum float64
	for _, c := range cs {
		sum += float64(c.Craving)
	}
	return sum / float64(len(cs))
}

// gapNorm normalizes a days-since-last-event signal against its threshold.
// A negative gap means the activity was never recorded, which counts as a
// fully elapsed gap.
func gapNorm(days, threshold float64) float64 {
	if days < 0 {
		return 1
	}
	return clamp(days / threshold)
}

// clamp limits a value to [0, 1].
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
