package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/mwhelan/daybreak/internal/record"
)

var base = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func checkIn(id string, daysAgo, craving, mood int, triggers ...string) record.CheckIn {
	return record.CheckIn{
		ID:        id,
		Timestamp: base.AddDate(0, 0, -daysAgo),
		Craving:   craving,
		Mood:      mood,
		Triggers:  triggers,
	}
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil, nil, nil)
	if s.TotalCheckIns != 0 || s.CurrentStreak != 0 || s.BestStreak != 0 {
		t.Errorf("empty summary = %+v", s)
	}
	if len(s.TopTriggers) != 0 {
		t.Errorf("triggers = %v, want none", s.TopTriggers)
	}
}

func TestCompute_Averages(t *testing.T) {
	cis := []record.CheckIn{
		checkIn("a", 2, 2, 8),
		checkIn("b", 1, 4, 6),
	}
	s := Compute(cis, nil, nil)
	if s.AvgCraving != 3 {
		t.Errorf("AvgCraving = %v, want 3", s.AvgCraving)
	}
	if s.AvgMood != 7 {
		t.Errorf("AvgMood = %v, want 7", s.AvgMood)
	}
}

func TestCompute_Streaks(t *testing.T) {
	// Days 6,5,4 then a gap, then 1,0: current streak 2, best streak 3.
	cis := []record.CheckIn{
		checkIn("a", 6, 3, 5),
		checkIn("b", 5, 3, 5),
		checkIn("c", 4, 3, 5),
		checkIn("d", 1, 3, 5),
		checkIn("e", 0, 3, 5),
	}
	s := Compute(cis, nil, nil)
	if s.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", s.CurrentStreak)
	}
	if s.BestStreak != 3 {
		t.Errorf("BestStreak = %d, want 3", s.BestStreak)
	}
}

func TestCompute_StreakSameDayEntries(t *testing.T) {
	// Two entries on the same day count as one streak day.
	cis := []record.CheckIn{
		checkIn("a", 1, 3, 5),
		checkIn("b", 0, 3, 5),
		{ID: "c", Timestamp: base.Add(2 * time.Hour), Craving: 3, Mood: 5},
	}
	s := Compute(cis, nil, nil)
	if s.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", s.CurrentStreak)
	}
}

func TestCompute_TopTriggers(t *testing.T) {
	cis := []record.CheckIn{
		checkIn("a", 3, 3, 5, "stress", "boredom"),
		checkIn("b", 2, 3, 5, "stress"),
		checkIn("c", 1, 3, 5, "stress", "conflict"),
	}
	s := Compute(cis, nil, nil)
	if len(s.TopTriggers) != 3 {
		t.Fatalf("TopTriggers = %v", s.TopTriggers)
	}
	if s.TopTriggers[0].Name != "stress" || s.TopTriggers[0].Count != 3 {
		t.Errorf("top trigger = %+v, want stress x3", s.TopTriggers[0])
	}
	// Equal counts rank alphabetically.
	if s.TopTriggers[1].Name != "boredom" || s.TopTriggers[2].Name != "conflict" {
		t.Errorf("tie order = %s, %s", s.TopTriggers[1].Name, s.TopTriggers[2].Name)
	}
}

func TestCompute_MeetingMinutes(t *testing.T) {
	mts := []record.MeetingAttendance{
		{ID: "m1", Timestamp: base.AddDate(0, 0, -14), Duration: time.Hour, Category: "aa"},
		{ID: "m2", Timestamp: base, Duration: 30 * time.Minute, Category: "aa"},
	}
	s := Compute(nil, mts, nil)
	if s.MeetingMinutes != 90 {
		t.Errorf("MeetingMinutes = %d, want 90", s.MeetingMinutes)
	}
	if s.MeetingsPerWeek != 1 {
		t.Errorf("MeetingsPerWeek = %v, want 1 (2 meetings over 2 weeks)", s.MeetingsPerWeek)
	}
}

func TestFormat(t *testing.T) {
	s := Summary{
		TotalCheckIns: 3,
		CurrentStreak: 2,
		BestStreak:    3,
		TopTriggers:   []TriggerStats{{Name: "stress", Count: 3, Percent: 75}},
	}
	out := Format(s)
	for _, want := range []string{"Check-ins:", "Streak:", "stress"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
