package report

import (
	"fmt"
	"time"

	"github.com/kyleseneker/track/internal/model"
)

// Timespan selects which completed records a report covers.
type Timespan interface {
	// Contains reports whether rec falls inside the window as seen at now.
	Contains(rec model.TimeRecord, now time.Time) bool
	String() string
}

// Since covers every record that started at or after a fixed instant.
type Since struct {
	From time.Time
}

func (s Since) Contains(rec model.TimeRecord, _ time.Time) bool {
	return !rec.Start.Time().Before(s.From)
}

func (s Since) String() string {
	return fmt.Sprintf("since %s", s.From.UTC().Format(time.RFC3339))
}

// Last covers records that started within the given duration before now.
type Last struct {
	Duration time.Duration
}

func (l Last) Contains(rec model.TimeRecord, now time.Time) bool {
	return Since{From: now.Add(-l.Duration)}.Contains(rec, now)
}

func (l Last) String() string {
	return fmt.Sprintf("last %s", l.Duration)
}

// Today covers records that both start and end on the current local day,
// between 00:00:00 and 23:59:59. A record spanning midnight is excluded
// entirely, not split.
type Today struct{}

func (Today) Contains(rec model.TimeRecord, now time.Time) bool {
	local := now.Local()
	y, m, d := local.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	endOfDay := time.Date(y, m, d, 23, 59, 59, 0, time.Local)

	start := rec.Start.Local()
	end := rec.End.Local()
	return !start.Before(midnight) && !end.After(endOfDay)
}

func (Today) String() string {
	return "today"
}
