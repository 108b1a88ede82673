package cmd

import (
	"fmt"

	"github.com/kyleseneker/track/internal/config"
	"github.com/kyleseneker/track/internal/database"
	"github.com/kyleseneker/track/internal/intervallog"
	"github.com/kyleseneker/track/internal/lockstate"
	"github.com/kyleseneker/track/internal/logging"
	"github.com/kyleseneker/track/internal/model"
	"github.com/kyleseneker/track/internal/report"
	"github.com/kyleseneker/track/internal/tracker"
)

// app is everything a command needs, wired from the loaded configuration.
type app struct {
	cfg      *config.Config
	tracker  *tracker.Tracker
	reporter *report.Reporter
	logger   logging.Logger
	db       *database.DB
}

// openApp loads configuration, initializes logging and opens the configured
// backend. Callers must Close the result.
func openApp(opts *rootOptions) (*app, error) {
	cfg, err := config.LoadConfig(opts.cfgFile, opts.overrides())
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	logging.InitializeLogger(cfg)
	logger := logging.Get()
	logger.Debug("Configuration loaded", "backend", cfg.Backend)

	if err := cfg.EnsureDirs(); err != nil {
		return nil, model.Errorf(model.ErrIO, err, "failed to prepare storage")
	}

	a := &app{cfg: cfg, logger: logger}

	var locks lockstate.Store
	var records intervallog.Store
	switch cfg.Backend {
	case config.BackendFile:
		locks = lockstate.NewFileStore(cfg.LockFile)
		records = intervallog.NewFileLog(cfg.RecordsFile)
	case config.BackendSQLite, config.BackendPostgres:
		driver := database.DriverSQLite
		if cfg.Backend == config.BackendPostgres {
			driver = database.DriverPostgres
		}
		db, err := database.Open(driver, cfg.DatabaseDSN)
		if err != nil {
			return nil, model.Errorf(model.ErrIO, err, "failed to open %s backend", cfg.Backend)
		}
		a.db = db
		locks = lockstate.NewSQLStore(db)
		records = intervallog.NewSQLLog(db)
	default:
		// LoadConfig rejects unknown backends.
		return nil, fmt.Errorf("invalid backend %q", cfg.Backend)
	}
	logger.Debug("Storage initialized", "backend", cfg.Backend)

	a.tracker = tracker.New(locks, records)
	a.reporter = report.NewReporter(records, nil)
	return a, nil
}

// Close releases the database connection, if any.
func (a *app) Close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("Error closing database", "error", err)
	}
}

// withApp opens the app for the duration of fn.
func withApp(opts *rootOptions, fn func(a *app) error) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
