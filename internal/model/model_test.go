package model

import (
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockStateJSON(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	data, err := json.Marshal(LockState{StartTime: NewStartTime(start)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start_time":"2024-01-01T12:00:00Z"}`, string(data))

	var decoded LockState
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.StartTime.Time().Equal(start))
}

func TestTimeRecordJSON(t *testing.T) {
	t.Run("Converts To UTC", func(t *testing.T) {
		loc := time.FixedZone("UTC+2", 2*60*60)
		rec := NewTimeRecord(
			time.Date(2024, 3, 5, 10, 0, 0, 0, loc),
			time.Date(2024, 3, 5, 10, 30, 0, 500_000_000, loc),
		)
		data, err := json.Marshal(rec)
		require.NoError(t, err)
		assert.JSONEq(t, `{"start":"2024-03-05T08:00:00Z","end":"2024-03-05T08:30:00.5Z"}`, string(data))
	})

	t.Run("Round Trip Keeps Instants", func(t *testing.T) {
		rec := NewTimeRecord(time.Now(), time.Now().Add(90*time.Second))
		data, err := json.Marshal(rec)
		require.NoError(t, err)

		var decoded TimeRecord
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.True(t, rec.Equal(decoded), "expected %v, got %v", rec, decoded)
	})

	t.Run("Rejects Bad Timestamps", func(t *testing.T) {
		var decoded TimeRecord
		assert.Error(t, json.Unmarshal([]byte(`{"start":"yesterday","end":"2024-01-01T00:00:00Z"}`), &decoded))
		assert.Error(t, json.Unmarshal([]byte(`{"start":12,"end":"2024-01-01T00:00:00Z"}`), &decoded))
	})
}

func TestTimeRecordDuration(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 10*time.Second, NewTimeRecord(base, base.Add(10*time.Second)).Duration())
	assert.Equal(t, -5*time.Second, NewTimeRecord(base, base.Add(-5*time.Second)).Duration())
}

func TestErrorKinds(t *testing.T) {
	cause := &os.PathError{Op: "open", Path: "/nope", Err: os.ErrPermission}
	err := Errorf(ErrIO, cause, "failed to open lockfile %s", "/nope")

	assert.True(t, errors.Is(err, ErrIO))
	assert.True(t, errors.Is(err, os.ErrPermission))
	assert.False(t, errors.Is(err, ErrLockCorrupt))

	var pathErr *os.PathError
	require.True(t, errors.As(err, &pathErr))
	assert.Equal(t, "/nope", pathErr.Path)
	assert.Contains(t, err.Error(), "failed to open lockfile /nope")

	noCause := Errorf(ErrNotTracking, nil, "lockfile %s not found", "x")
	assert.True(t, errors.Is(noCause, ErrNotTracking))
	assert.Equal(t, "not tracking: lockfile x not found", noCause.Error())
}

func TestSuggestion(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		contains string
	}{
		{name: "already tracking", err: Errorf(ErrAlreadyTracking, nil, "x"), contains: "track stop"},
		{name: "not tracking", err: ErrNotTracking, contains: "track start"},
		{name: "lock corrupt", err: Errorf(ErrLockCorrupt, errors.New("eof"), "x"), contains: "unlock --force"},
		{name: "log corrupt", err: ErrLogCorrupt, contains: "records file"},
		{name: "io", err: ErrIO, contains: "permissions"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, Suggestion(tc.err), tc.contains)
		})
	}
	assert.Empty(t, Suggestion(errors.New("something else")))
}
