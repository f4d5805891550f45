package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/mwhelan/daybreak/internal/record"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "daybreak.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

var base = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func TestCheckInRoundTrip(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	in := record.CheckIn{
		ID:        "c1",
		Timestamp: base,
		Craving:   4,
		Mood:      6,
		Triggers:  []string{"stress", "insomnia"},
	}
	if err := repo.AddCheckIn(ctx, in); err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := repo.CheckIns(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d check-ins, want 1", len(got))
	}
	if !got[0].Timestamp.Equal(in.Timestamp) {
		t.Errorf("timestamp = %v, want %v", got[0].Timestamp, in.Timestamp)
	}
	if got[0].Craving != in.Craving || got[0].Mood != in.Mood {
		t.Errorf("measures = (%d,%d), want (%d,%d)", got[0].Craving, got[0].Mood, in.Craving, in.Mood)
	}
	if !reflect.DeepEqual(got[0].Triggers, in.Triggers) {
		t.Errorf("triggers = %v, want %v", got[0].Triggers, in.Triggers)
	}
}

func TestCheckInsSince(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"old", "mid", "new"} {
		c := record.CheckIn{ID: id, Timestamp: base.AddDate(0, 0, -20+i*10), Craving: 2, Mood: 7}
		if err := repo.AddCheckIn(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	got, err := repo.CheckInsSince(ctx, base.AddDate(0, 0, -12))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d check-ins, want 2", len(got))
	}
	if got[0].ID != "mid" || got[1].ID != "new" {
		t.Errorf("order = [%s %s], want [mid new]", got[0].ID, got[1].ID)
	}
}

func TestCheckIn_RejectsInvalid(t *testing.T) {
	repo := newTestStore(t)
	bad := record.CheckIn{ID: "x", Craving: 11, Mood: 5, Timestamp: base}
	if err := repo.AddCheckIn(context.Background(), bad); err == nil {
		t.Error("expected validation error, got nil")
	}
}

func TestMeetingRoundTripAndLast(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	first := record.MeetingAttendance{ID: "m1", Timestamp: base.AddDate(0, 0, -7), Duration: time.Hour, Category: "aa"}
	second := record.MeetingAttendance{ID: "m2", Timestamp: base, Duration: 90 * time.Minute, Category: "smart"}
	for _, m := range []record.MeetingAttendance{first, second} {
		if err := repo.AddMeeting(ctx, m); err != nil {
			t.Fatal(err)
		}
	}

	all, err := repo.Meetings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != "m1" {
		t.Fatalf("meetings = %+v, want m1 then m2", all)
	}
	if all[1].Duration != 90*time.Minute {
		t.Errorf("duration = %v, want 90m", all[1].Duration)
	}

	last, err := repo.LastMeeting(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if last == nil || last.ID != "m2" {
		t.Errorf("last = %+v, want m2", last)
	}
}

func TestLastMeeting_Empty(t *testing.T) {
	repo := newTestStore(t)
	last, err := repo.LastMeeting(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if last != nil {
		t.Errorf("last = %+v, want nil", last)
	}
}

func TestMeditationRoundTripAndLast(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	m := record.MeditationSession{ID: "s1", Timestamp: base, Duration: 15 * time.Minute, Technique: "breathing"}
	if err := repo.AddMeditation(ctx, m); err != nil {
		t.Fatal(err)
	}

	all, err := repo.Meditations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].Technique != "breathing" || all[0].Duration != 15*time.Minute {
		t.Fatalf("meditations = %+v", all)
	}

	last, err := repo.LastMeditation(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if last == nil || last.ID != "s1" {
		t.Errorf("last = %+v, want s1", last)
	}
}

func TestFavoriteQuotes(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	if err := repo.FavoriteQuote(ctx, "q7"); err != nil {
		t.Fatal(err)
	}
	// Favoriting twice must not duplicate.
	if err := repo.FavoriteQuote(ctx, "q7"); err != nil {
		t.Fatal(err)
	}

	got, err := repo.FavoriteQuotes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "q7" {
		t.Errorf("favorites = %v, want [q7]", got)
	}
}
