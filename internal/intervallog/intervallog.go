package intervallog

import (
	"github.com/kyleseneker/track/internal/model"
)

// Loader reads the interval log. Reporting only needs this half.
type Loader interface {
	// Load returns every completed record in insertion order. A log that
	// does not exist yet is empty, not an error.
	Load() ([]model.TimeRecord, error)
}

// Store persists the ordered list of completed sessions.
type Store interface {
	Loader
	// Save replaces the whole log with records.
	Save(records []model.TimeRecord) error
	// Append adds one record at the end. Only the holder of the session lock
	// may call it.
	Append(record model.TimeRecord) error
}
