package lockstate

import (
	"github.com/kyleseneker/track/internal/model"
)

// Store is a durable exclusive-acquire: at most one LockState exists at a
// time, and Acquire succeeds for exactly one of any number of concurrent
// callers, including callers in other processes.
type Store interface {
	// Acquire records start as the active session. It fails with
	// model.ErrAlreadyTracking if a session is already active.
	Acquire(start model.StartTime) (model.StartTime, error)
	// Read returns the active session, model.ErrNotTracking if there is none,
	// or model.ErrLockCorrupt if the stored state cannot be parsed.
	Read() (model.LockState, error)
	// Release ends the active session. Any failure, including the lock having
	// already vanished, is model.ErrIO.
	Release() error
	// Exists reports whether a session is active without side effects.
	Exists() (bool, error)
}
