package tracker

import (
	"errors"

	"github.com/kyleseneker/track/internal/intervallog"
	"github.com/kyleseneker/track/internal/lockstate"
	"github.com/kyleseneker/track/internal/logging"
	"github.com/kyleseneker/track/internal/model"
)

// Tracker moves between Idle and Tracking. It holds no state of its own:
// every call re-derives the state from the lock store, so separate processes
// observe the same tracker.
type Tracker struct {
	locks   lockstate.Store
	records intervallog.Store
	clock   model.Clock
	logger  logging.Logger
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c model.Clock) Option {
	return func(t *Tracker) {
		t.clock = c
	}
}

// New creates a tracker over the given lock and record stores.
func New(locks lockstate.Store, records intervallog.Store, opts ...Option) *Tracker {
	t := &Tracker{
		locks:   locks,
		records: records,
		clock:   model.SystemClock{},
		logger:  logging.Get().Named("tracker"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins a session and returns its start time. It fails with
// model.ErrAlreadyTracking, without side effects, if one is already active.
func (t *Tracker) Start() (model.StartTime, error) {
	exists, err := t.locks.Exists()
	if err != nil {
		return model.StartTime{}, err
	}
	if exists {
		return model.StartTime{}, model.Errorf(model.ErrAlreadyTracking, nil, "cannot start a new session")
	}

	// The existence check above is only a fast path; Acquire is what
	// arbitrates a race with another process.
	start, err := t.locks.Acquire(model.NewStartTime(t.clock.Now()))
	if err != nil {
		return model.StartTime{}, err
	}

	t.logger.Info("Tracking started", "start_time", start.String())
	return start, nil
}

// StopResult describes how Stop ended a session.
type StopResult struct {
	End model.EndTime
	// AlreadyRecorded is set when a previous Stop had saved this session but
	// did not release the lock; only the release happened this time.
	AlreadyRecorded bool
}

// Stop ends the active session, records it, and returns its end time.
//
// The record is made durable before the lock is released: a failure in
// between leaves a stuck lock that Stop or Recover can resolve, never a
// silently lost interval.
func (t *Tracker) Stop() (StopResult, error) {
	lock, err := t.locks.Read()
	if err != nil {
		return StopResult{}, err
	}

	records, err := t.records.Load()
	if err != nil {
		return StopResult{}, err
	}

	if last, ok := lastRecord(records); ok && last.Start.Equal(lock.StartTime) {
		t.logger.Warn("Session already recorded, releasing stale lock", "start_time", lock.StartTime.String())
		if err := t.locks.Release(); err != nil {
			return StopResult{}, err
		}
		return StopResult{End: last.End, AlreadyRecorded: true}, nil
	}

	end := model.NewEndTime(t.clock.Now())
	rec := model.TimeRecord{Start: lock.StartTime, End: end}
	if err := t.records.Append(rec); err != nil {
		t.logger.Error("Failed to record session, lock kept", "error", err)
		return StopResult{}, err
	}

	if err := t.locks.Release(); err != nil {
		t.logger.Error("Session recorded but lock release failed", "error", err)
		return StopResult{}, err
	}

	t.logger.Info("Tracking stopped", "start_time", lock.StartTime.String(), "end_time", end.String(), "duration", rec.Duration())
	return StopResult{End: end}, nil
}

// Running returns the active session's start time, or nil when idle.
func (t *Tracker) Running() (*model.StartTime, error) {
	exists, err := t.locks.Exists()
	if err != nil || !exists {
		return nil, err
	}

	lock, err := t.locks.Read()
	if err != nil {
		if errors.Is(err, model.ErrNotTracking) {
			// Stopped between the probe and the read.
			return nil, nil
		}
		return nil, err
	}
	start := lock.StartTime
	return &start, nil
}

func lastRecord(records []model.TimeRecord) (model.TimeRecord, bool) {
	if len(records) == 0 {
		return model.TimeRecord{}, false
	}
	return records[len(records)-1], true
}
