// Package stats computes aggregate summaries over the full history for the
// CLI. Unlike the offload analytics, nothing here feeds back into risk or
// insight results; it is display-only arithmetic.
package stats

import (
	"sort"
	"time"

	"github.com/mwhelan/daybreak/internal/record"
)

// Summary holds aggregate metrics computed from history records.
type Summary struct {
	TotalCheckIns    int
	TotalMeetings    int
	TotalMeditations int

	AvgCraving float64
	AvgMood    float64

	MeetingMinutes    int
	MeditationMinutes int
	MeetingsPerWeek   float64

	CurrentStreak int // consecutive check-in days ending at the latest entry
	BestStreak    int

	TopTriggers []TriggerStats
}

// TriggerStats holds per-trigger counts.
type TriggerStats struct {
	Name    string
	Count   int
	Percent float64
}

// Compute builds a Summary from history records.
func Compute(checkIns []record.CheckIn, meetings []record.MeetingAttendance, meditations []record.MeditationSession) Summary {
	var s Summary

	s.TotalCheckIns = len(checkIns)
	s.TotalMeetings = len(meetings)
	s.TotalMeditations = len(meditations)

	var cravingSum, moodSum float64
	triggerCounts := make(map[string]int)
	totalTriggers := 0
	for _, c := range checkIns {
		cravingSum += float64(c.Craving)
		moodSum += float64(c.Mood)
		for _, t := range c.Triggers {
			triggerCounts[t]++
			totalTriggers++
		}
	}
	if len(checkIns) > 0 {
		s.AvgCraving = cravingSum / float64(len(checkIns))
		s.AvgMood = moodSum / float64(len(checkIns))
	}

	for _, m := range meetings {
		s.MeetingMinutes += int(m.Duration.Minutes())
	}
	for _, m := range meditations {
		s.MeditationMinutes += int(m.Duration.Minutes())
	}

	s.MeetingsPerWeek = meetingsPerWeek(meetings)
	s.CurrentStreak, s.BestStreak = streaks(checkIns)
	s.TopTriggers = topTriggers(triggerCounts, totalTriggers)

	return s
}

// meetingsPerWeek averages attendance over the span between the first and
// last meeting, floored at one week so a dense single week doesn't inflate.
func meetingsPerWeek(meetings []record.MeetingAttendance) float64 {
	if len(meetings) == 0 {
		return 0
	}
	first, last := meetings[0].Timestamp, meetings[0].Timestamp
	for _, m := range meetings[1:] {
		if m.Timestamp.Before(first) {
			first = m.Timestamp
		}
		if m.Timestamp.After(last) {
			last = m.Timestamp
		}
	}
	weeks := last.Sub(first).Hours() / 24 / 7
	if weeks < 1 {
		weeks = 1
	}
	return float64(len(meetings)) / weeks
}

// streaks returns the current and best runs of consecutive check-in days.
func streaks(checkIns []record.CheckIn) (current, best int) {
	if len(checkIns) == 0 {
		return 0, 0
	}

	daySet := make(map[string]bool)
	var latest time.Time
	for _, c := range checkIns {
		daySet[c.Timestamp.Format("2006-01-02")] = true
		if c.Timestamp.After(latest) {
			latest = c.Timestamp
		}
	}

	days := make([]string, 0, len(daySet))
	for d := range daySet {
		days = append(days, d)
	}
	sort.Strings(days)

	run := 1
	best = 1
	for i := 1; i < len(days); i++ {
		prev, _ := time.Parse("2006-01-02", days[i-1])
		cur, _ := time.Parse("2006-01-02", days[i])
		if cur.Sub(prev) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}

	for current = 0; ; current++ {
		d := latest.AddDate(0, 0, -current).Format("2006-01-02")
		if !daySet[d] {
			break
		}
	}
	return current, best
}

// topTriggers ranks triggers by count, capped at five.
func topTriggers(counts map[string]int, total int) []TriggerStats {
	var out []TriggerStats
	for name, n := range counts {
		pct := 0.0
		if total > 0 {
			pct = float64(n) / float64(total) * 100
		}
		out = append(out, TriggerStats{Name: name, Count: n, Percent: pct})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}
