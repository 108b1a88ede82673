package lockstate

import (
	"database/sql"
	"errors"

	"github.com/kyleseneker/track/internal/database"
	"github.com/kyleseneker/track/internal/logging"
	"github.com/kyleseneker/track/internal/model"
)

// lockRowID is the only row track_lock may hold. Its primary key turns the
// INSERT into the create-exclusive primitive.
const lockRowID = 1

// SQLStore keeps the lock as a single row in track_lock.
type SQLStore struct {
	db     *database.DB
	logger logging.Logger
}

// Ensure SQLStore implements Store.
var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a lock store on an open database.
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db, logger: logging.Get().Named("sql_lock")}
}

// Acquire inserts the lock row. A primary-key conflict means another session is active.
func (s *SQLStore) Acquire(start model.StartTime) (model.StartTime, error) {
	query := `INSERT INTO track_lock (id, start_time) VALUES (` + s.db.Placeholder(1) + `, ` + s.db.Placeholder(2) + `)`
	if _, err := s.db.Exec(query, lockRowID, start.String()); err != nil {
		// Drivers report constraint violations differently; probe for the row
		// instead of parsing error codes.
		if exists, probeErr := s.Exists(); probeErr == nil && exists {
			s.logger.Debug("Lock row already present, acquire refused.")
			return model.StartTime{}, model.Errorf(model.ErrAlreadyTracking, nil, "a session is already recorded in track_lock")
		}
		return model.StartTime{}, model.Errorf(model.ErrIO, err, "failed to insert lock row")
	}

	s.logger.Info("Lock acquired.", "start_time", start.String())
	return start, nil
}

// Read returns the active session.
func (s *SQLStore) Read() (model.LockState, error) {
	var raw string
	query := `SELECT start_time FROM track_lock WHERE id = ` + s.db.Placeholder(1)
	err := s.db.QueryRow(query, lockRowID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.LockState{}, model.Errorf(model.ErrNotTracking, nil, "no lock row in track_lock")
		}
		return model.LockState{}, model.Errorf(model.ErrIO, err, "failed to query lock row")
	}

	t, err := model.ParseTimestamp(raw)
	if err != nil {
		return model.LockState{}, model.Errorf(model.ErrLockCorrupt, err, "lock row has an unreadable start_time")
	}
	return model.LockState{StartTime: model.NewStartTime(t)}, nil
}

// Release deletes the lock row.
func (s *SQLStore) Release() error {
	query := `DELETE FROM track_lock WHERE id = ` + s.db.Placeholder(1)
	res, err := s.db.Exec(query, lockRowID)
	if err != nil {
		return model.Errorf(model.ErrIO, err, "failed to delete lock row")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Errorf(model.ErrIO, err, "failed to confirm lock row deletion")
	}
	if n == 0 {
		return model.Errorf(model.ErrIO, nil, "lock row vanished before release")
	}
	s.logger.Info("Lock released.")
	return nil
}

// Exists reports whether the lock row is present.
func (s *SQLStore) Exists() (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM track_lock WHERE id = ` + s.db.Placeholder(1)
	if err := s.db.QueryRow(query, lockRowID).Scan(&count); err != nil {
		return false, model.Errorf(model.ErrIO, err, "failed to query lock row")
	}
	return count > 0, nil
}
