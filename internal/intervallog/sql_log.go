package intervallog

import (
	"database/sql"
	"fmt"

	"github.com/kyleseneker/track/internal/database"
	"github.com/kyleseneker/track/internal/logging"
	"github.com/kyleseneker/track/internal/model"
)

// SQLLog persists the interval log in track_records, ordered by seq.
type SQLLog struct {
	db     *database.DB
	logger logging.Logger
}

// Ensure SQLLog implements Store.
var _ Store = (*SQLLog)(nil)

// NewSQLLog creates a log on an open database.
func NewSQLLog(db *database.DB) *SQLLog {
	return &SQLLog{db: db, logger: logging.Get().Named("sql_log")}
}

// Load returns all records ordered by insertion.
func (l *SQLLog) Load() ([]model.TimeRecord, error) {
	rows, err := l.db.Query(`SELECT seq, start_time, end_time FROM track_records ORDER BY seq`)
	if err != nil {
		return nil, model.Errorf(model.ErrIO, err, "failed to query records")
	}
	defer rows.Close()

	records := []model.TimeRecord{}
	for rows.Next() {
		var seq int64
		var rawStart, rawEnd string
		if err := rows.Scan(&seq, &rawStart, &rawEnd); err != nil {
			return nil, model.Errorf(model.ErrIO, err, "failed to scan record row")
		}
		start, err := model.ParseTimestamp(rawStart)
		if err != nil {
			return nil, model.Errorf(model.ErrLogCorrupt, err, "record %d has an unreadable start_time", seq)
		}
		end, err := model.ParseTimestamp(rawEnd)
		if err != nil {
			return nil, model.Errorf(model.ErrLogCorrupt, err, "record %d has an unreadable end_time", seq)
		}
		records = append(records, model.NewTimeRecord(start, end))
	}
	if err := rows.Err(); err != nil {
		return nil, model.Errorf(model.ErrIO, err, "failed to iterate records")
	}
	return records, nil
}

// Save replaces the table contents in a single transaction.
func (l *SQLLog) Save(records []model.TimeRecord) error {
	return l.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM track_records`); err != nil {
			return fmt.Errorf("failed to clear records: %w", err)
		}
		for i, rec := range records {
			if err := l.insert(tx, int64(i+1), rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// Append inserts one record after the current last one.
func (l *SQLLog) Append(record model.TimeRecord) error {
	err := l.inTx(func(tx *sql.Tx) error {
		var last int64
		if err := tx.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM track_records`).Scan(&last); err != nil {
			return fmt.Errorf("failed to read last record sequence: %w", err)
		}
		return l.insert(tx, last+1, record)
	})
	if err != nil {
		return err
	}
	l.logger.Info("Recorded session", "start", record.Start.String(), "end", record.End.String())
	return nil
}

func (l *SQLLog) insert(tx *sql.Tx, seq int64, rec model.TimeRecord) error {
	query := fmt.Sprintf(`INSERT INTO track_records (seq, start_time, end_time) VALUES (%s, %s, %s)`,
		l.db.Placeholder(1), l.db.Placeholder(2), l.db.Placeholder(3))
	if _, err := tx.Exec(query, seq, rec.Start.String(), rec.End.String()); err != nil {
		return fmt.Errorf("failed to insert record %d: %w", seq, err)
	}
	return nil
}

// inTx runs fn in a transaction and maps any failure to model.ErrIO.
func (l *SQLLog) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := l.db.Begin()
	if err != nil {
		return model.Errorf(model.ErrIO, err, "failed to begin transaction")
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			l.logger.Warn("Rollback failed", "error", rbErr)
		}
		return model.Errorf(model.ErrIO, err, "records transaction failed")
	}
	if err := tx.Commit(); err != nil {
		return model.Errorf(model.ErrIO, err, "failed to commit records")
	}
	return nil
}
