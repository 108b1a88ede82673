package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampFormat is the on-disk representation of every instant.
const TimestampFormat = time.RFC3339Nano

// instant is a UTC point in time shared by StartTime and EndTime.
type instant struct {
	t time.Time
}

func newInstant(t time.Time) instant {
	// UTC() also drops the monotonic reading, so values compare by wall clock only.
	return instant{t: t.UTC()}
}

// Time returns the underlying UTC time.
func (i instant) Time() time.Time {
	return i.t
}

// Local returns the instant converted to the local timezone.
func (i instant) Local() time.Time {
	return i.t.Local()
}

// IsZero reports whether the instant was never set.
func (i instant) IsZero() bool {
	return i.t.IsZero()
}

// String renders the instant in TimestampFormat.
func (i instant) String() string {
	return i.t.Format(TimestampFormat)
}

func (i instant) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.t.Format(TimestampFormat))
}

func (i *instant) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	t, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*i = newInstant(t)
	return nil
}

// ParseTimestamp parses an RFC 3339 timestamp (fractional seconds optional).
func ParseTimestamp(raw string) (time.Time, error) {
	t, err := time.Parse(TimestampFormat, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", raw, err)
	}
	return t.UTC(), nil
}

// StartTime marks the beginning of a tracking session.
type StartTime struct {
	instant
}

// NewStartTime wraps t as a StartTime.
func NewStartTime(t time.Time) StartTime {
	return StartTime{newInstant(t)}
}

// Equal reports whether both start times denote the same instant.
func (s StartTime) Equal(other StartTime) bool {
	return s.t.Equal(other.t)
}

// EndTime marks the end of a tracking session.
type EndTime struct {
	instant
}

// NewEndTime wraps t as an EndTime.
func NewEndTime(t time.Time) EndTime {
	return EndTime{newInstant(t)}
}

// Equal reports whether both end times denote the same instant.
func (e EndTime) Equal(other EndTime) bool {
	return e.t.Equal(other.t)
}

// Sub returns the elapsed time between start and e.
func (e EndTime) Sub(start StartTime) time.Duration {
	return e.t.Sub(start.t)
}
