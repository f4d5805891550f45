// Package store persists the tracker's history records.
package store

import (
	"context"
	"time"

	"github.com/mwhelan/daybreak/internal/record"
)

// Repository defines the persistence surface for history records and quote
// favorites. Analytics results are never stored; only the raw records the
// analytics read.
type Repository interface {
	// AddCheckIn stores one check-in entry.
	AddCheckIn(ctx context.Context, c record.CheckIn) error

	// AddMeeting stores one meeting attendance.
	AddMeeting(ctx context.Context, m record.MeetingAttendance) error

	// AddMeditation stores one meditation session.
	AddMeditation(ctx context.Context, m record.MeditationSession) error

	// CheckIns returns all check-ins, oldest first.
	CheckIns(ctx context.Context) ([]record.CheckIn, error)

	// CheckInsSince returns check-ins at or after t, oldest first.
	CheckInsSince(ctx context.Context, t time.Time) ([]record.CheckIn, error)

	// Meetings returns all meeting attendances, oldest first.
	Meetings(ctx context.Context) ([]record.MeetingAttendance, error)

	// Meditations returns all meditation sessions, oldest first.
	Meditations(ctx context.Context) ([]record.MeditationSession, error)

	// LastMeeting returns the most recent meeting, or nil if none exists.
	LastMeeting(ctx context.Context) (*record.MeetingAttendance, error)

	// LastMeditation returns the most recent meditation, or nil if none exists.
	LastMeditation(ctx context.Context) (*record.MeditationSession, error)

	// FavoriteQuote marks a quote as a favorite.
	FavoriteQuote(ctx context.Context, quoteID string) error

	// FavoriteQuotes returns favorited quote IDs, oldest favorite first.
	FavoriteQuotes(ctx context.Context) ([]string, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
