// Package record defines the immutable history records the tracker
// accumulates: check-ins, meeting attendances, and meditation sessions.
// Records are created once by the caller and consumed read-only by
// analytics and storage.
package record

import (
	"fmt"
	"time"
)

// Measure bounds for self-reported intensity values.
const (
	MeasureMin = 0
	MeasureMax = 10
)

// CheckIn is one self-reported entry: how strong the craving was, how the
// mood was, and which triggers were present.
type CheckIn struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Craving   int       `json:"craving"` // 0 (none) .. 10 (overwhelming)
	Mood      int       `json:"mood"`    // 0 (lowest) .. 10 (best)
	Triggers  []string  `json:"triggers,omitempty"`
}

// MeetingAttendance is one recorded support-meeting event.
type MeetingAttendance struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	Category  string        `json:"category"` // e.g. "aa", "na", "smart", "online"
}

// MeditationSession is one recorded mindfulness event.
type MeditationSession struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	Technique string        `json:"technique"` // e.g. "breathing", "body-scan", "guided"
}

// Validate checks a check-in for well-formedness.
func (c CheckIn) Validate() error {
	if c.Timestamp.IsZero() {
		return fmt.Errorf("check-in %s: zero timestamp", c.ID)
	}
	if c.Craving < MeasureMin || c.Craving > MeasureMax {
		return fmt.Errorf("check-in %s: craving %d out of range [%d,%d]", c.ID, c.Craving, MeasureMin, MeasureMax)
	}
	if c.Mood < MeasureMin || c.Mood > MeasureMax {
		return fmt.Errorf("check-in %s: mood %d out of range [%d,%d]", c.ID, c.Mood, MeasureMin, MeasureMax)
	}
	return nil
}

// Validate checks a meeting attendance for well-formedness.
func (m MeetingAttendance) Validate() error {
	if m.Timestamp.IsZero() {
		return fmt.Errorf("meeting %s: zero timestamp", m.ID)
	}
	if m.Duration < 0 {
		return fmt.Errorf("meeting %s: negative duration", m.ID)
	}
	return nil
}

// Validate checks a meditation session for well-formedness.
func (m MeditationSession) Validate() error {
	if m.Timestamp.IsZero() {
		return fmt.Errorf("meditation %s: zero timestamp", m.ID)
	}
	if m.Duration < 0 {
		return fmt.Errorf("meditation %s: negative duration", m.ID)
	}
	return nil
}
