package record

import "fmt"

// Entry is the JSONL interchange form used by exports and the ingest
// watcher: exactly one record field is set per line.
type Entry struct {
	CheckIn    *CheckIn           `json:"check_in,omitempty"`
	Meeting    *MeetingAttendance `json:"meeting,omitempty"`
	Meditation *MeditationSession `json:"meditation,omitempty"`
}

// Validate checks that exactly one record is present and that it is
// well-formed.
func (e Entry) Validate() error {
	set := 0
	if e.CheckIn != nil {
		set++
	}
	if e.Meeting != nil {
		set++
	}
	if e.Meditation != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("entry must carry exactly one record, has %d", set)
	}
	switch {
	case e.CheckIn != nil:
		return e.CheckIn.Validate()
	case e.Meeting != nil:
		return e.Meeting.Validate()
	default:
		return e.Meditation.Validate()
	}
}
