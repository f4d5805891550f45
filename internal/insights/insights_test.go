package insights

import (
	"reflect"
	"testing"
	"time"

	"github.com/mwhelan/daybreak/internal/record"
)

var base = time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)

func checkIn(id string, daysAgo, craving, mood int, triggers ...string) record.CheckIn {
	return record.CheckIn{
		ID:        id,
		Timestamp: base.AddDate(0, 0, -daysAgo),
		Craving:   craving,
		Mood:      mood,
		Triggers:  triggers,
	}
}

func meeting(id string, daysAgo int) record.MeetingAttendance {
	return record.MeetingAttendance{
		ID:        id,
		Timestamp: base.AddDate(0, 0, -daysAgo).Add(-2 * time.Hour),
		Duration:  time.Hour,
		Category:  "aa",
	}
}

func meditation(id string, daysAgo int) record.MeditationSession {
	return record.MeditationSession{
		ID:        id,
		Timestamp: base.AddDate(0, 0, -daysAgo).Add(-time.Hour),
		Duration:  15 * time.Minute,
		Technique: "breathing",
	}
}

func TestGenerate_AllEmpty(t *testing.T) {
	got, err := Generate(nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Insights) != 0 {
		t.Errorf("insights = %v, want empty", got.Insights)
	}
}

func TestGenerate_SingleCheckIn(t *testing.T) {
	cin := checkIn("cin1", 0, 4, 6)
	got, err := Generate([]record.CheckIn{cin}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Insights) == 0 {
		t.Fatal("expected at least one insight for a single check-in")
	}
	found := false
	for _, in := range got.Insights {
		for _, ev := range in.Evidence {
			if ev == "cin1" {
				found = true
			}
		}
	}
	if !found {
		t.Errorf("no insight references cin1: %v", got.Insights)
	}
}

func TestGenerate_OrderIndependent(t *testing.T) {
	cis := []record.CheckIn{
		checkIn("a", 5, 7, 3, "stress"),
		checkIn("b", 4, 8, 2, "stress"),
		checkIn("c", 3, 6, 4),
		checkIn("d", 2, 7, 3, "loneliness"),
		checkIn("e", 1, 8, 2, "stress"),
	}
	mts := []record.MeetingAttendance{meeting("m1", 4), meeting("m2", 1)}
	mds := []record.MeditationSession{meditation("s1", 3), meditation("s2", 2), meditation("s3", 1)}

	forward, err := Generate(cis, mts, mds)
	if err != nil {
		t.Fatal(err)
	}

	rev := func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = n - 1 - i
		}
		return out
	}
	var cis2 []record.CheckIn
	for _, i := range rev(len(cis)) {
		cis2 = append(cis2, cis[i])
	}
	var mts2 []record.MeetingAttendance
	for _, i := range rev(len(mts)) {
		mts2 = append(mts2, mts[i])
	}
	var mds2 []record.MeditationSession
	for _, i := range rev(len(mds)) {
		mds2 = append(mds2, mds[i])
	}

	backward, err := Generate(cis2, mts2, mds2)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(forward, backward) {
		t.Errorf("order-dependent output:\nforward:  %+v\nbackward: %+v", forward, backward)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	cis := []record.CheckIn{
		checkIn("a", 3, 7, 3, "stress"),
		checkIn("b", 2, 8, 2, "stress"),
		checkIn("c", 1, 6, 4, "conflict"),
	}
	first, err := Generate(cis, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Generate(cis, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("non-deterministic output:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestGenerate_TopTrigger(t *testing.T) {
	cis := []record.CheckIn{
		checkIn("a", 3, 5, 5, "stress"),
		checkIn("b", 2, 5, 5, "stress", "boredom"),
		checkIn("c", 1, 5, 5, "stress"),
	}
	got, err := Generate(cis, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	var trigger *Insight
	for i := range got.Insights {
		if got.Insights[i].MessageID == MsgTopTrigger {
			trigger = &got.Insights[i]
		}
	}
	if trigger == nil {
		t.Fatalf("no %s insight in %v", MsgTopTrigger, got.Insights)
	}
	if len(trigger.Evidence) != 3 {
		t.Errorf("evidence = %v, want the three stress check-ins", trigger.Evidence)
	}
}

func TestGenerate_MeetingLapsed(t *testing.T) {
	cis := []record.CheckIn{
		checkIn("a", 2, 3, 6),
		checkIn("b", 1, 3, 6),
		checkIn("c", 0, 3, 6),
	}
	mts := []record.MeetingAttendance{meeting("m1", 30)}
	got, err := Generate(cis, mts, nil)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, in := range got.Insights {
		if in.MessageID == MsgMeetingLapsed {
			found = true
			if len(in.Evidence) != 1 || in.Evidence[0] != "m1" {
				t.Errorf("lapse evidence = %v, want [m1]", in.Evidence)
			}
		}
	}
	if !found {
		t.Errorf("expected %s insight, got %v", MsgMeetingLapsed, got.Insights)
	}
}

func TestGenerate_SortedBySignificance(t *testing.T) {
	cis := []record.CheckIn{
		checkIn("a", 4, 8, 2, "stress"),
		checkIn("b", 3, 7, 3, "stress"),
		checkIn("c", 2, 8, 2, "stress"),
		checkIn("d", 1, 9, 1, "stress"),
	}
	mts := []record.MeetingAttendance{meeting("m1", 30)}
	got, err := Generate(cis, mts, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(got.Insights); i++ {
		if got.Insights[i].Significance > got.Insights[i-1].Significance {
			t.Errorf("insights not ordered by significance: %+v before %+v",
				got.Insights[i-1], got.Insights[i])
		}
	}
}

func TestGenerate_DoesNotMutateInputs(t *testing.T) {
	cis := []record.CheckIn{
		checkIn("b", 1, 5, 5),
		checkIn("a", 2, 5, 5),
	}
	if _, err := Generate(cis, nil, nil); err != nil {
		t.Fatal(err)
	}
	if cis[0].ID != "b" || cis[1].ID != "a" {
		t.Errorf("input slice reordered: %q, %q", cis[0].ID, cis[1].ID)
	}
}

func TestGenerate_InvalidRecord(t *testing.T) {
	bad := record.CheckIn{ID: "x", Craving: 5, Mood: 5} // zero timestamp
	if _, err := Generate([]record.CheckIn{bad}, nil, nil); err == nil {
		t.Error("expected error for invalid check-in, got nil")
	}
}
