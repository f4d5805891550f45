// Package insights derives behavioral observations from accumulated history.
// Generation is pure: same inputs always yield the same insights in the same
// order, regardless of how the caller happened to order the input slices.
package insights

import (
	"fmt"
	"sort"
	"time"

	"github.com/mwhelan/daybreak/internal/record"
)

// Insight categories.
const (
	CategoryCraving    = "craving"
	CategoryMood       = "mood"
	CategoryTrigger    = "trigger"
	CategoryMeeting    = "meeting"
	CategoryMeditation = "meditation"
	CategoryStreak     = "streak"
)

// Message template identifiers the UI maps to localized copy.
const (
	MsgCravingPeakHour    = "craving_peak_hour"
	MsgCravingElevated    = "craving_elevated"
	MsgMoodMeetingLift    = "mood_meeting_lift"
	MsgMoodMeditationLift = "mood_meditation_lift"
	MsgTopTrigger         = "top_trigger"
	MsgMeetingRhythm      = "meeting_rhythm"
	MsgMeetingLapsed      = "meeting_lapsed"
	MsgMeditationRhythm   = "meditation_rhythm"
	MsgCheckInStreak      = "check_in_streak"
	MsgFirstCheckIn       = "first_check_in"
)

// Insight is one derived observation with the records that support it.
type Insight struct {
	Category     string   `json:"category"`
	MessageID    string   `json:"message_id"`
	Evidence     []string `json:"evidence"` // record IDs backing the observation
	Significance float64  `json:"significance"`
}

// Result is the ordered insight set, most actionable first.
type Result struct {
	Insights []Insight `json:"insights"`
}

// Generate derives insights from the three history collections. Inputs are
// never mutated; any subset (or all three) may be empty, which narrows the
// result rather than failing. Output order reflects significance, not input
// order.
func Generate(checkIns []record.CheckIn, meetings []record.MeetingAttendance, meditations []record.MeditationSession) (Result, error) {
	for _, c := range checkIns {
		if err := c.Validate(); err != nil {
			return Result{}, fmt.Errorf("generate insights: %w", err)
		}
	}
	for _, m := range meetings {
		if err := m.Validate(); err != nil {
			return Result{}, fmt.Errorf("generate insights: %w", err)
		}
	}
	for _, m := range meditations {
		if err := m.Validate(); err != nil {
			return Result{}, fmt.Errorf("generate insights: %w", err)
		}
	}

	// Canonicalize on sorted copies so output never depends on input order.
	cis := sortedCheckIns(checkIns)
	mts := sortedMeetings(meetings)
	mds := sortedMeditations(meditations)

	derivations := []func() (Insight, bool){
		func() (Insight, bool) { return cravingPeakHour(cis) },
		func() (Insight, bool) { return cravingElevated(cis) },
		func() (Insight, bool) { return topTrigger(cis) },
		func() (Insight, bool) { return meetingRhythm(cis, mts) },
		func() (Insight, bool) { return moodMeetingLift(cis, mts) },
		func() (Insight, bool) { return meditationRhythm(mds) },
		func() (Insight, bool) { return moodMeditationLift(cis, mds) },
		func() (Insight, bool) { return checkInStreak(cis) },
	}

	var out []Insight
	for _, derive := range derivations {
		if in, ok := derive(); ok {
			out = append(out, in)
		}
	}

	// Most actionable first; category and message id break ties so the
	// order is fully deterministic.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Significance != out[j].Significance {
			return out[i].Significance > out[j].Significance
		}
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].MessageID < out[j].MessageID
	})

	if out == nil {
		out = []Insight{}
	}
	return Result{Insights: out}, nil
}

// cravingPeakHour finds the hour-of-day bucket with the highest average
// craving, when enough entries exist to make the bucket meaningful.
func cravingPeakHour(cis []record.CheckIn) (Insight, bool) {
	if len(cis) == 0 {
		return Insight{}, false
	}
	if len(cis) == 1 {
		// A single entry cannot support a pattern, but it still deserves
		// acknowledgement on first use.
		return Insight{
			Category:     CategoryCraving,
			MessageID:    MsgFirstCheckIn,
			Evidence:     []string{cis[0].ID},
			Significance: 1,
		}, true
	}

	type bucket struct {
		sum float64
		ids []string
	}
	buckets := make(map[int]*bucket)
	for _, c := range cis {
		h := c.Timestamp.Hour() / 4 * 4 // 4-hour buckets
		b, ok := buckets[h]
		if !ok {
			b = &bucket{}
			buckets[h] = b
		}
		b.sum += float64(c.Craving)
		b.ids = append(b.ids, c.ID)
	}

	bestHour, bestAvg := -1, 0.0
	for h, b := range buckets {
		avg := b.sum / float64(len(b.ids))
		if avg > bestAvg || (avg == bestAvg && (bestHour == -1 || h < bestHour)) {
			bestHour, bestAvg = h, avg
		}
	}
	if bestAvg < 4 || len(buckets[bestHour].ids) < 2 {
		return Insight{}, false
	}
	return Insight{
		Category:     CategoryCraving,
		MessageID:    MsgCravingPeakHour,
		Evidence:     buckets[bestHour].ids,
		Significance: bestAvg,
	}, true
}

// cravingElevated flags a window whose average craving sits high overall.
func cravingElevated(cis []record.CheckIn) (Insight, bool) {
	if len(cis) < 3 {
		return Insight{}, false
	}
	var sum float64
	ids := make([]string, 0, len(cis))
	for _, c := range cis {
		sum += float64(c.Craving)
		ids = append(ids, c.ID)
	}
	avg := sum / float64(len(cis))
	if avg < 6 {
		return Insight{}, false
	}
	return Insight{
		Category:     CategoryCraving,
		MessageID:    MsgCravingElevated,
		Evidence:     ids,
		Significance: avg + 2, // elevated overall craving outranks hour patterns
	}, true
}

// topTrigger reports the most frequent trigger tag.
func topTrigger(cis []record.CheckIn) (Insight, bool) {
	counts := make(map[string]int)
	evidence := make(map[string][]string)
	for _, c := range cis {
		for _, t := range c.Triggers {
			counts[t]++
			evidence[t] = append(evidence[t], c.ID)
		}
	}
	best, bestCount := "", 0
	for t, n := range counts {
		if n > bestCount || (n == bestCount && t < best) {
			best, bestCount = t, n
		}
	}
	if bestCount < 2 {
		return Insight{}, false
	}
	return Insight{
		Category:     CategoryTrigger,
		MessageID:    MsgTopTrigger,
		Evidence:     evidence[best],
		Significance: float64(bestCount) + 3, // named triggers are directly actionable
	}, true
}

// meetingRhythm reports either a healthy cadence or a lapse, judged against
// the span covered by the check-in history.
func meetingRhythm(cis []record.CheckIn, mts []record.MeetingAttendance) (Insight, bool) {
	if len(mts) == 0 {
		return Insight{}, false
	}
	last := mts[len(mts)-1]

	// Without check-ins there is no reference point for "recent".
	if len(cis) == 0 {
		return Insight{
			Category:     CategoryMeeting,
			MessageID:    MsgMeetingRhythm,
			Evidence:     meetingIDs(mts),
			Significance: 2,
		}, true
	}

	latest := cis[len(cis)-1].Timestamp
	gap := latest.Sub(last.Timestamp)
	if gap > 14*24*time.Hour {
		return Insight{
			Category:     CategoryMeeting,
			MessageID:    MsgMeetingLapsed,
			Evidence:     []string{last.ID},
			Significance: 8,
		}, true
	}
	return Insight{
		Category:     CategoryMeeting,
		MessageID:    MsgMeetingRhythm,
		Evidence:     meetingIDs(mts),
		Significance: 3,
	}, true
}

// moodMeetingLift checks whether mood within 24h after a meeting beats the
// overall average enough to be worth telling the user about.
func moodMeetingLift(cis []record.CheckIn, mts []record.MeetingAttendance) (Insight, bool) {
	if len(cis) < 4 || len(mts) == 0 {
		return Insight{}, false
	}
	var overall float64
	for _, c := range cis {
		overall += float64(c.Mood)
	}
	overall /= float64(len(cis))

	var afterSum float64
	var afterIDs []string
	for _, c := range cis {
		for _, m := range mts {
			d := c.Timestamp.Sub(m.Timestamp)
			if d >= 0 && d <= 24*time.Hour {
				afterSum += float64(c.Mood)
				afterIDs = append(afterIDs, c.ID)
				break
			}
		}
	}
	if len(afterIDs) < 2 {
		return Insight{}, false
	}
	lift := afterSum/float64(len(afterIDs)) - overall
	if lift < 1 {
		return Insight{}, false
	}
	return Insight{
		Category:     CategoryMood,
		MessageID:    MsgMoodMeetingLift,
		Evidence:     afterIDs,
		Significance: 5 + lift,
	}, true
}

// meditationRhythm reports a consistent practice: 3+ sessions spanning at
// least three distinct days.
func meditationRhythm(mds []record.MeditationSession) (Insight, bool) {
	if len(mds) < 3 {
		return Insight{}, false
	}
	days := make(map[string]bool)
	ids := make([]string, 0, len(mds))
	for _, m := range mds {
		days[m.Timestamp.Format("2006-01-02")] = true
		ids = append(ids, m.ID)
	}
	if len(days) < 3 {
		return Insight{}, false
	}
	return Insight{
		Category:     CategoryMeditation,
		MessageID:    MsgMeditationRhythm,
		Evidence:     ids,
		Significance: 2,
	}, true
}

// moodMeditationLift mirrors moodMeetingLift for meditation sessions.
func moodMeditationLift(cis []record.CheckIn, mds []record.MeditationSession) (Insight, bool) {
	if len(cis) < 4 || len(mds) == 0 {
		return Insight{}, false
	}
	var overall float64
	for _, c := range cis {
		overall += float64(c.Mood)
	}
	overall /= float64(len(cis))

	var afterSum float64
	var afterIDs []string
	for _, c := range cis {
		for _, m := range mds {
			d := c.Timestamp.Sub(m.Timestamp)
			if d >= 0 && d <= 12*time.Hour {
				afterSum += float64(c.Mood)
				afterIDs = append(afterIDs, c.ID)
				break
			}
		}
	}
	if len(afterIDs) < 2 {
		return Insight{}, false
	}
	lift := afterSum/float64(len(afterIDs)) - overall
	if lift < 1 {
		return Insight{}, false
	}
	return Insight{
		Category:     CategoryMood,
		MessageID:    MsgMoodMeditationLift,
		Evidence:     afterIDs,
		Significance: 4 + lift,
	}, true
}

// checkInStreak reports a run of consecutive check-in days ending at the
// latest entry.
func checkInStreak(cis []record.CheckIn) (Insight, bool) {
	if len(cis) < 3 {
		return Insight{}, false
	}
	days := make(map[string][]string)
	for _, c := range cis {
		d := c.Timestamp.Format("2006-01-02")
		days[d] = append(days[d], c.ID)
	}
	latest := cis[len(cis)-1].Timestamp
	streak := 0
	var ids []string
	for {
		d := latest.AddDate(0, 0, -streak).Format("2006-01-02")
		dayIDs, ok := days[d]
		if !ok {
			break
		}
		ids = append(ids, dayIDs...)
		streak++
	}
	if streak < 3 {
		return Insight{}, false
	}
	sort.Strings(ids)
	return Insight{
		Category:     CategoryStreak,
		MessageID:    MsgCheckInStreak,
		Evidence:     ids,
		Significance: float64(streak),
	}, true
}

func meetingIDs(mts []record.MeetingAttendance) []string {
	ids := make([]string, 0, len(mts))
	for _, m := range mts {
		ids = append(ids, m.ID)
	}
	return ids
}

func sortedCheckIns(in []record.CheckIn) []record.CheckIn {
	out := make([]record.CheckIn, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func sortedMeetings(in []record.MeetingAttendance) []record.MeetingAttendance {
	out := make([]record.MeetingAttendance, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func sortedMeditations(in []record.MeditationSession) []record.MeditationSession {
	out := make([]record.MeditationSession, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
