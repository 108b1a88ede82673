package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"  // Import the PostgreSQL driver
	_ "modernc.org/sqlite" // Import the pure-Go SQLite driver

	"github.com/kyleseneker/track/internal/logging"
)

// Driver names as registered with database/sql.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// schema is shared by both drivers, so it sticks to portable types.
// Timestamps are stored as RFC 3339 text, the same format as the JSON files.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS track_lock (
		id INTEGER PRIMARY KEY,
		start_time TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS track_records (
		seq INTEGER PRIMARY KEY,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL
	)`,
}

// DB is a database handle plus the dialect details the stores need.
type DB struct {
	*sql.DB
	driver string
	logger logging.Logger
}

// Open connects to the database and makes sure the schema exists.
func Open(driver, dsn string) (*DB, error) {
	logger := logging.Get().Named("database").With("driver", driver)

	switch driver {
	case DriverSQLite:
		dsn = withSQLitePragmas(dsn)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQL database: %w", err)
	}

	if driver == DriverSQLite {
		// One connection serializes writers inside this process; the busy
		// timeout covers other processes.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close() // Close connection if ping fails
		return nil, fmt.Errorf("failed to connect to SQL database: %w", err)
	}

	db := &DB{DB: sqlDB, driver: driver, logger: logger}
	if err := db.ensureSchema(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	logger.Debug("Database opened.")
	return db, nil
}

// ensureSchema creates the lock and records tables if they don't already exist.
func (db *DB) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema creation query: %w", err)
		}
	}
	return nil
}

// Driver returns the database/sql driver name.
func (db *DB) Driver() string {
	return db.driver
}

// Placeholder returns the bind parameter for the n-th (1-based) argument.
func (db *DB) Placeholder(n int) string {
	if db.driver == DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.logger.Debug("Closing database connection.")
	return db.DB.Close()
}

func withSQLitePragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}
