package model

import (
	"errors"
	"fmt"
)

// ErrAlreadyTracking is returned when a session is started while another is active.
var ErrAlreadyTracking = errors.New("already tracking")

// ErrNotTracking is returned when an operation needs an active session and there is none.
var ErrNotTracking = errors.New("not tracking")

// ErrLockCorrupt is returned when the lock exists but cannot be parsed.
var ErrLockCorrupt = errors.New("lock corrupt")

// ErrLogCorrupt is returned when the interval log exists but cannot be parsed.
var ErrLogCorrupt = errors.New("interval log corrupt")

// ErrIO is returned for storage failures: permissions, missing directories, full disks.
var ErrIO = errors.New("storage i/o error")

// kindError tags a detailed error with one of the sentinel kinds above while
// keeping the underlying cause reachable through errors.Is/As.
type kindError struct {
	kind  error
	msg   string
	cause error
}

func (e *kindError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s: %s", e.kind, e.msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.cause)
}

func (e *kindError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// Errorf builds an error of the given kind. The message is formatted with
// fmt.Sprintf; cause may be nil.
func Errorf(kind error, cause error, format string, args ...interface{}) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

// Suggestion returns a short, actionable hint for the user, or "" when the
// error kind has none.
func Suggestion(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyTracking):
		return "a session is already running; use 'track stop' to end it first"
	case errors.Is(err, ErrNotTracking):
		return "no session is running; use 'track start' to begin one"
	case errors.Is(err, ErrLockCorrupt):
		return "your lockfile may be empty or corrupted. use 'track unlock --force' or delete it and then try again"
	case errors.Is(err, ErrLogCorrupt):
		return "your records file contains invalid data. repair or move it aside and then try again"
	case errors.Is(err, ErrIO):
		return "make sure the lockfile and records paths exist and that you have read and write permissions"
	default:
		return ""
	}
}
