package tracker

import (
	"errors"

	"github.com/kyleseneker/track/internal/model"
)

// RecoveryStatus describes what Recover found.
type RecoveryStatus int

const (
	// RecoveryIdle means there was no lock.
	RecoveryIdle RecoveryStatus = iota
	// RecoveryActive means the lock belongs to a session that is not recorded yet.
	RecoveryActive
	// RecoveryReleased means the lock belonged to an already recorded session
	// and has been removed.
	RecoveryReleased
)

func (s RecoveryStatus) String() string {
	switch s {
	case RecoveryIdle:
		return "idle"
	case RecoveryActive:
		return "active"
	case RecoveryReleased:
		return "released"
	default:
		return "unknown"
	}
}

// RecoveryResult is the outcome of Recover.
type RecoveryResult struct {
	Status RecoveryStatus
	// Start is the lock's start time for Active and Released.
	Start model.StartTime
}

// Recover detects a lock left behind by a Stop that saved its record but
// crashed before releasing. Such a lock is released; a genuinely active
// session is left alone.
func (t *Tracker) Recover() (RecoveryResult, error) {
	lock, err := t.locks.Read()
	if err != nil {
		if errors.Is(err, model.ErrNotTracking) {
			return RecoveryResult{Status: RecoveryIdle}, nil
		}
		return RecoveryResult{}, err
	}

	records, err := t.records.Load()
	if err != nil {
		return RecoveryResult{}, err
	}

	last, ok := lastRecord(records)
	if !ok || !last.Start.Equal(lock.StartTime) {
		t.logger.Info("Lock belongs to an active session", "start_time", lock.StartTime.String())
		return RecoveryResult{Status: RecoveryActive, Start: lock.StartTime}, nil
	}

	if err := t.locks.Release(); err != nil {
		return RecoveryResult{}, err
	}
	t.logger.Warn("Released stale lock of an already recorded session", "start_time", lock.StartTime.String())
	return RecoveryResult{Status: RecoveryReleased, Start: lock.StartTime}, nil
}

// Discard removes the lock without recording anything. It is the explicit,
// user-requested way out of a corrupt or unwanted session, and the only path
// that drops tracked time.
func (t *Tracker) Discard() error {
	exists, err := t.locks.Exists()
	if err != nil {
		return err
	}
	if !exists {
		return model.Errorf(model.ErrNotTracking, nil, "nothing to discard")
	}

	if lock, err := t.locks.Read(); err == nil {
		t.logger.Warn("Discarding session without recording it", "start_time", lock.StartTime.String())
	} else {
		t.logger.Warn("Discarding unreadable lock", "error", err)
	}
	return t.locks.Release()
}
