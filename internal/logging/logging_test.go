package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("Text Respects Level", func(t *testing.T) {
		var buf bytes.Buffer
		l := New("INFO", "text", &buf)
		l.Debug("hidden")
		l.Named("tracker").Info("shown", "key", "value")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "track.tracker")
		assert.Contains(t, out, "key=value")
	})

	t.Run("JSON Format", func(t *testing.T) {
		var buf bytes.Buffer
		New("debug", "JSON", &buf).With("path", "/tmp/x").Debug("hello")

		var line map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "hello", line["@message"])
		assert.Equal(t, "/tmp/x", line["path"])
	})

	t.Run("Unknown Level Falls Back To Warn", func(t *testing.T) {
		var buf bytes.Buffer
		l := New("chatty", "text", &buf)
		l.Info("hidden")
		l.Warn("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})
}

func TestGetWithoutInitialize(t *testing.T) {
	mu.Lock()
	appLogger = nil
	mu.Unlock()

	l := Get()
	require.NotNil(t, l)
	assert.Same(t, l, Get())
}
