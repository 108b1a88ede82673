package model

import "time"

// TimeRecord is one completed tracking session.
type TimeRecord struct {
	Start StartTime `json:"start"`
	End   EndTime   `json:"end"`
}

// NewTimeRecord builds a record from plain times.
func NewTimeRecord(start, end time.Time) TimeRecord {
	return TimeRecord{Start: NewStartTime(start), End: NewEndTime(end)}
}

// Duration is end minus start. Records written while the wall clock was
// moved backwards can be negative.
func (r TimeRecord) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Equal compares both bounds by instant.
func (r TimeRecord) Equal(other TimeRecord) bool {
	return r.Start.Equal(other.Start) && r.End.Equal(other.End)
}

// LockState is the content of the lock sentinel while a session is active.
type LockState struct {
	StartTime StartTime `json:"start_time"`
}
