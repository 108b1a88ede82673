package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/kyleseneker/track/internal/config"
)

// Logger defines the logging interface used by the application.
// This abstracts the underlying logging library (hclog).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// Named creates a sublogger with a name component.
	Named(name string) Logger
	// With adds key-value pairs to the logger's context.
	With(args ...interface{}) Logger
}

// Ensure hclogWrapper implements Logger.
var _ Logger = (*hclogWrapper)(nil)

// hclogWrapper adapts hclog.Logger to the Logger interface.
type hclogWrapper struct {
	logger hclog.Logger
}

func (w *hclogWrapper) Debug(msg string, args ...interface{}) {
	w.logger.Debug(msg, args...)
}

func (w *hclogWrapper) Info(msg string, args ...interface{}) {
	w.logger.Info(msg, args...)
}

func (w *hclogWrapper) Warn(msg string, args ...interface{}) {
	w.logger.Warn(msg, args...)
}

func (w *hclogWrapper) Error(msg string, args ...interface{}) {
	w.logger.Error(msg, args...)
}

func (w *hclogWrapper) Named(name string) Logger {
	return &hclogWrapper{logger: w.logger.Named(name)}
}

func (w *hclogWrapper) With(args ...interface{}) Logger {
	return &hclogWrapper{logger: w.logger.With(args...)}
}

var (
	// appLogger is the process-wide logger. Every invocation is a short-lived
	// CLI process, so a global keeps constructors free of logger plumbing.
	appLogger Logger
	mu        sync.Mutex
)

// New builds a Logger writing to out. Stdout is reserved for command output,
// so callers normally pass os.Stderr.
func New(level, format string, out io.Writer) Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		// Config validation rejects unknown levels; fall back to WARN anyway.
		lvl = hclog.Warn
	}

	return &hclogWrapper{logger: hclog.New(&hclog.LoggerOptions{
		Name:       "track",
		Level:      lvl,
		Output:     out,
		JSONFormat: strings.ToLower(format) == "json",
	})}
}

// InitializeLogger creates the application's logger instance based on configuration.
// It should be called right after the configuration is loaded.
func InitializeLogger(cfg *config.Config) {
	l := New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	mu.Lock()
	appLogger = l
	mu.Unlock()

	l.Debug("Logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)
}

// Get returns the initialized application logger. Before InitializeLogger
// runs (tests, early startup) it returns a WARN-level stderr logger.
func Get() Logger {
	mu.Lock()
	defer mu.Unlock()

	if appLogger == nil {
		appLogger = New("WARN", "text", os.Stderr)
	}
	return appLogger
}
