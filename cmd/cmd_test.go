package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kyleseneker/track/internal/model"
)

var hhmmss = regexp.MustCompile(`^\d{2,}:\d{2}:\d{2}\n$`)

type harness struct {
	dir        string
	configPath string
	lockPath   string
}

// newHarness points every command at files in a temp dir through a config
// file, and keeps $HOME and TRACK_* out of the way.
func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, key := range []string{"TRACK_LOCK_FILE", "TRACK_RECORDS_FILE", "TRACK_BACKEND", "TRACK_DATABASE_DSN", "TRACK_LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	h := &harness{
		dir:        dir,
		configPath: filepath.Join(dir, "track.toml"),
		lockPath:   filepath.Join(dir, "state", "track.lock"),
	}
	content := fmt.Sprintf("lock_file = %q\nrecords_file = %q\nlog_level = \"ERROR\"\n",
		h.lockPath, filepath.Join(dir, "data", "records.json"))
	require.NoError(t, os.WriteFile(h.configPath, []byte(content), 0o644))
	return h
}

func (h *harness) run(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(append([]string{"--config", h.configPath}, args...))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	if err != nil {
		reportError(root, err)
	}
	return stdout.String(), stderr.String(), err
}

func TestSessionCommands(t *testing.T) {
	h := newHarness(t)
	before := time.Now().Add(-time.Second).UTC().Format(time.RFC3339)

	out, _, err := h.run("status")
	require.NoError(t, err)
	assert.Equal(t, "not tracking\n", out)

	out, _, err = h.run("start")
	require.NoError(t, err)
	assert.Contains(t, out, "tracking started at")
	assert.FileExists(t, h.lockPath)

	_, stderr, err := h.run("start")
	assert.ErrorIs(t, err, model.ErrAlreadyTracking)
	assert.Contains(t, stderr, "Error: ")
	assert.Contains(t, stderr, "suggestion: ")

	out, _, err = h.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "tracking since")

	out, _, err = h.run("stop")
	require.NoError(t, err)
	assert.Contains(t, out, "tracking stopped at")
	assert.NoFileExists(t, h.lockPath)

	_, _, err = h.run("stop")
	assert.ErrorIs(t, err, model.ErrNotTracking)

	out, _, err = h.run("report", "--since", before)
	require.NoError(t, err)
	assert.Regexp(t, hhmmss, out)

	out, _, err = h.run("report")
	require.NoError(t, err)
	assert.Regexp(t, hhmmss, out)
}

func TestLogFormats(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("start")
	require.NoError(t, err)
	_, _, err = h.run("stop")
	require.NoError(t, err)

	t.Run("JSON", func(t *testing.T) {
		out, _, err := h.run("log", "--format", "json")
		require.NoError(t, err)
		var entries []logEntry
		require.NoError(t, json.Unmarshal([]byte(out), &entries))
		require.Len(t, entries, 1)
		assert.NotEmpty(t, entries[0].Start)
		assert.Regexp(t, hhmmss, entries[0].Duration+"\n")
	})

	t.Run("YAML", func(t *testing.T) {
		out, _, err := h.run("log", "--format", "yaml", "--last", "1h")
		require.NoError(t, err)
		var entries []logEntry
		require.NoError(t, yaml.Unmarshal([]byte(out), &entries))
		require.Len(t, entries, 1)
	})

	t.Run("Table", func(t *testing.T) {
		out, _, err := h.run("log")
		require.NoError(t, err)
		assert.Contains(t, out, "DURATION")
	})

	t.Run("Empty Window", func(t *testing.T) {
		out, _, err := h.run("log", "--since", time.Now().Add(time.Hour).UTC().Format(time.RFC3339))
		require.NoError(t, err)
		assert.Contains(t, out, "No sessions")
	})

	t.Run("Unknown Format", func(t *testing.T) {
		_, _, err := h.run("log", "--format", "xml")
		assert.Error(t, err)
	})
}

func TestReportWindowFlags(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("report", "--today", "--last", "1h")
	assert.Error(t, err, "window flags are mutually exclusive")

	_, _, err = h.run("report", "--since", "yesterday")
	assert.Error(t, err)

	out, _, err := h.run("report", "--today")
	require.NoError(t, err)
	assert.Equal(t, "00:00:00\n", out)
}

func TestRecoverAndUnlock(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("recover")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to recover")

	_, _, err = h.run("start")
	require.NoError(t, err)

	out, _, err = h.run("recover")
	require.NoError(t, err)
	assert.Contains(t, out, "still active")

	_, _, err = h.run("unlock")
	assert.Error(t, err)
	assert.FileExists(t, h.lockPath)

	out, _, err = h.run("unlock", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "session discarded")
	assert.NoFileExists(t, h.lockPath)
}

func TestCorruptLockSuggestion(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(h.lockPath), 0o755))
	require.NoError(t, os.WriteFile(h.lockPath, nil, 0o644))

	_, stderr, err := h.run("stop")
	assert.ErrorIs(t, err, model.ErrLockCorrupt)
	assert.Contains(t, stderr, "track unlock --force")
}

func TestSQLiteBackend(t *testing.T) {
	h := newHarness(t)
	dsn := filepath.Join(h.dir, "db", "track.db")

	_, _, err := h.run("--backend", "sqlite", "--dsn", dsn, "start")
	require.NoError(t, err)
	_, _, err = h.run("--backend", "sqlite", "--dsn", dsn, "start")
	assert.ErrorIs(t, err, model.ErrAlreadyTracking)

	// The file backend is independent of the database.
	out, _, err := h.run("status")
	require.NoError(t, err)
	assert.Equal(t, "not tracking\n", out)

	_, _, err = h.run("--backend", "sqlite", "--dsn", dsn, "stop")
	require.NoError(t, err)

	out, _, err = h.run("--backend", "sqlite", "--dsn", dsn, "log", "--format", "json")
	require.NoError(t, err)
	var entries []logEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, 1)
}

func TestConfigError(t *testing.T) {
	h := newHarness(t)
	_, stderr, err := h.run("--backend", "bogus", "status")
	require.Error(t, err)
	assert.Contains(t, stderr, "invalid backend")
}

func TestStopAfterInterruptedStop(t *testing.T) {
	h := newHarness(t)
	recordsPath := filepath.Join(h.dir, "data", "records.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(h.lockPath), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Dir(recordsPath), 0o755))
	require.NoError(t, os.WriteFile(h.lockPath, []byte(`{"start_time":"2024-01-01T12:00:00Z"}`), 0o644))
	records := `[{"start":"2024-01-01T12:00:00Z","end":"2024-01-01T13:00:00Z"}]`
	require.NoError(t, os.WriteFile(recordsPath, []byte(records), 0o644))

	out, stderr, err := h.run("stop")
	require.NoError(t, err)
	assert.Contains(t, out, "tracking stopped at")
	assert.Contains(t, stderr, "already recorded")
	assert.NoFileExists(t, h.lockPath)

	data, err := os.ReadFile(recordsPath)
	require.NoError(t, err)
	assert.Equal(t, records, string(data))
}
