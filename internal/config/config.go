package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported storage backends.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

const appDirName = "track"

// Config holds the application configuration.
type Config struct {
	// Storage
	LockFile    string `mapstructure:"lock_file"`    // Sentinel that exists while a session is active (file backend)
	RecordsFile string `mapstructure:"records_file"` // JSON interval log (file backend)
	Backend     string `mapstructure:"backend"`      // "file", "sqlite" or "postgres"
	DatabaseDSN string `mapstructure:"database_dsn"` // sqlite path or postgres DSN; sqlite defaults next to records_file
	// Reporting
	ReportLast time.Duration `mapstructure:"report_last"` // Window used by 'report' when no other window is given
	// Watch
	WatchInterval time.Duration `mapstructure:"watch_interval"` // How often 'watch' polls the lock
	// Logging Configuration
	LogLevel  string `mapstructure:"log_level"`  // Logging level (e.g., "DEBUG", "INFO", "WARN", "ERROR")
	LogFormat string `mapstructure:"log_format"` // Logging format ("text" or "json")
}

// Overrides carries command-line flag values. Non-empty fields take
// precedence over file, environment and defaults.
type Overrides struct {
	LockFile    string
	RecordsFile string
	Backend     string
	DatabaseDSN string
}

// LoadConfig loads configuration from file, environment variables, and defaults using Viper.
// Flag values are applied last.
func LoadConfig(configPath string, overrides Overrides) (*Config, error) {
	v := viper.New()

	v.SetDefault("lock_file", defaultLockFile())
	v.SetDefault("records_file", defaultRecordsFile())
	v.SetDefault("backend", BackendFile)
	v.SetDefault("database_dsn", "")
	v.SetDefault("report_last", "24h")
	v.SetDefault("watch_interval", "300ms")
	v.SetDefault("log_level", "WARN")
	v.SetDefault("log_format", "text")

	v.SetEnvPrefix("TRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("track")
		v.SetConfigType("toml")
		v.AddConfigPath("$HOME/.track")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is the normal case for a CLI; defaults and env apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Flags win over everything else.
	if overrides.LockFile != "" {
		cfg.LockFile = overrides.LockFile
	}
	if overrides.RecordsFile != "" {
		cfg.RecordsFile = overrides.RecordsFile
	}
	if overrides.Backend != "" {
		cfg.Backend = overrides.Backend
	}
	if overrides.DatabaseDSN != "" {
		cfg.DatabaseDSN = overrides.DatabaseDSN
	}

	// --- Post-Load Processing & Validation ---
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch cfg.Backend {
	case BackendFile:
		if cfg.LockFile == "" {
			return nil, errors.New("lock_file cannot be empty when backend is 'file'")
		}
		if cfg.RecordsFile == "" {
			return nil, errors.New("records_file cannot be empty when backend is 'file'")
		}
		if filepath.Clean(cfg.LockFile) == filepath.Clean(cfg.RecordsFile) {
			return nil, fmt.Errorf("lock_file and records_file must be different paths (both are %q)", cfg.LockFile)
		}
	case BackendSQLite:
		if cfg.DatabaseDSN == "" {
			if cfg.RecordsFile == "" {
				return nil, errors.New("database_dsn or records_file must be set when backend is 'sqlite'")
			}
			cfg.DatabaseDSN = filepath.Join(filepath.Dir(cfg.RecordsFile), "track.db")
		}
	case BackendPostgres:
		if cfg.DatabaseDSN == "" {
			return nil, errors.New("database_dsn must be set when backend is 'postgres'")
		}
	default:
		return nil, fmt.Errorf("invalid backend %q: must be 'file', 'sqlite' or 'postgres'", cfg.Backend)
	}

	if cfg.ReportLast <= 0 {
		return nil, errors.New("report_last must be a positive duration")
	}
	if cfg.WatchInterval <= 0 {
		return nil, errors.New("watch_interval must be a positive duration")
	}

	// Validate Log Level
	validLevels := map[string]bool{"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true}
	if _, ok := validLevels[strings.ToUpper(cfg.LogLevel)]; !ok {
		return nil, fmt.Errorf("invalid log_level %q: must be one of DEBUG, INFO, WARN, ERROR", cfg.LogLevel)
	}
	// Validate Log Format
	validFormats := map[string]bool{"text": true, "json": true}
	if _, ok := validFormats[strings.ToLower(cfg.LogFormat)]; !ok {
		return nil, fmt.Errorf("invalid log_format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	return &cfg, nil
}

// defaultLockFile places the lock in the user's cache directory: it is
// disposable state that only means something while a session runs.
func defaultLockFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appDirName, "track.lock")
}

// defaultRecordsFile places the interval log in the user's config directory.
func defaultRecordsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appDirName, "records.json")
}

// EnsureDirs creates the parent directories of the configured files.
func (c *Config) EnsureDirs() error {
	var paths []string
	switch c.Backend {
	case BackendFile:
		paths = []string{c.LockFile, c.RecordsFile}
	case BackendSQLite:
		if p, ok := sqliteFilePath(c.DatabaseDSN); ok {
			paths = []string{p}
		}
	}
	for _, p := range paths {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", p, err)
		}
	}
	return nil
}

// sqliteFilePath extracts the database file from a sqlite DSN, which may be
// a plain path or a "file:" URI with query parameters. In-memory databases
// have no file.
func sqliteFilePath(dsn string) (string, bool) {
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == "" || p == ":memory:" {
		return "", false
	}
	return p, true
}
