package stats

import (
	"fmt"
	"strings"
)

// Format renders a Summary for terminal output.
func Format(s Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Check-ins:    %d (avg craving %.1f, avg mood %.1f)\n",
		s.TotalCheckIns, s.AvgCraving, s.AvgMood)
	fmt.Fprintf(&b, "Meetings:     %d (%d min, %.1f/week)\n",
		s.TotalMeetings, s.MeetingMinutes, s.MeetingsPerWeek)
	fmt.Fprintf(&b, "Meditations:  %d (%d min)\n",
		s.TotalMeditations, s.MeditationMinutes)
	fmt.Fprintf(&b, "Streak:       %d days (best %d)\n", s.CurrentStreak, s.BestStreak)

	if len(s.TopTriggers) > 0 {
		b.WriteString("Top triggers:\n")
		for _, t := range s.TopTriggers {
			fmt.Fprintf(&b, "  %-14s %3d (%.0f%%)\n", t.Name, t.Count, t.Percent)
		}
	}

	return b.String()
}
