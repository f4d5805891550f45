package export

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mwhelan/daybreak/internal/record"
	"github.com/mwhelan/daybreak/internal/store"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func seededStore(t *testing.T) store.Repository {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "daybreak.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	ctx := context.Background()
	records := []record.CheckIn{
		{ID: "c1", Timestamp: base.AddDate(0, 0, -1), Craving: 3, Mood: 6, Triggers: []string{"stress"}},
		{ID: "c2", Timestamp: base, Craving: 2, Mood: 7},
	}
	for _, c := range records {
		if err := repo.AddCheckIn(ctx, c); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.AddMeeting(ctx, record.MeetingAttendance{ID: "m1", Timestamp: base, Duration: time.Hour, Category: "aa"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.AddMeditation(ctx, record.MeditationSession{ID: "s1", Timestamp: base, Duration: 10 * time.Minute, Technique: "guided"}); err != nil {
		t.Fatal(err)
	}
	return repo
}

func TestExportReadRoundTrip(t *testing.T) {
	repo := seededStore(t)
	dir := t.TempDir()

	path, err := Export(context.Background(), repo, dir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasSuffix(path, ".jsonl.zst") {
		t.Errorf("path = %q, want .jsonl.zst suffix", path)
	}

	entries, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}

	// Check-ins first, oldest first.
	if entries[0].CheckIn == nil || entries[0].CheckIn.ID != "c1" {
		t.Errorf("entry 0 = %+v, want check-in c1", entries[0])
	}
	if entries[1].CheckIn == nil || entries[1].CheckIn.ID != "c2" {
		t.Errorf("entry 1 = %+v, want check-in c2", entries[1])
	}
	if entries[2].Meeting == nil || entries[2].Meeting.ID != "m1" {
		t.Errorf("entry 2 = %+v, want meeting m1", entries[2])
	}
	if entries[3].Meditation == nil || entries[3].Meditation.ID != "s1" {
		t.Errorf("entry 3 = %+v, want meditation s1", entries[3])
	}

	if got := entries[0].CheckIn.Triggers; len(got) != 1 || got[0] != "stress" {
		t.Errorf("triggers = %v, want [stress]", got)
	}
	if !entries[2].Meeting.Timestamp.Equal(base) {
		t.Errorf("meeting timestamp = %v, want %v", entries[2].Meeting.Timestamp, base)
	}
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			t.Errorf("entry %d invalid after round trip: %v", i, err)
		}
	}
}

func TestExport_EmptyHistory(t *testing.T) {
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "daybreak.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { repo.Close() })

	path, err := Export(context.Background(), repo, t.TempDir())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	entries, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

func TestRead_MissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.jsonl.zst")); err == nil {
		t.Error("expected error for missing file")
	}
}
