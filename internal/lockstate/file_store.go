package lockstate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kyleseneker/track/internal/logging"
	"github.com/kyleseneker/track/internal/model"
)

// FileStore keeps the lock as a small JSON file. The file's existence is the
// only source of truth for "currently tracking".
type FileStore struct {
	path   string
	logger logging.Logger
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)

// NewFileStore creates a lock store backed by the file at path. The file is
// not touched until Acquire.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		logger: logging.Get().Named("file_lock").With("path", path),
	}
}

// Path returns the lockfile location.
func (s *FileStore) Path() string {
	return s.path
}

// Acquire creates the lockfile with O_EXCL so that concurrent processes cannot
// both succeed, then writes the start time into it.
func (s *FileStore) Acquire(start model.StartTime) (model.StartTime, error) {
	data, err := json.Marshal(model.LockState{StartTime: start})
	if err != nil {
		return model.StartTime{}, model.Errorf(model.ErrIO, err, "failed to serialize lockfile data")
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			s.logger.Debug("Lockfile already present, acquire refused.")
			return model.StartTime{}, model.Errorf(model.ErrAlreadyTracking, nil, "lockfile %s already exists", s.path)
		}
		return model.StartTime{}, model.Errorf(model.ErrIO, err, "failed to create lockfile")
	}

	if err := writeAndSync(f, data); err != nil {
		// A half-written lock would read as corrupt forever; the create
		// succeeded, so this process owns the file and may remove it.
		if rmErr := os.Remove(s.path); rmErr != nil {
			s.logger.Error("Failed to remove partially written lockfile", "error", rmErr)
		}
		return model.StartTime{}, model.Errorf(model.ErrIO, err, "failed to write lockfile data")
	}

	s.logger.Info("Lock acquired.", "start_time", start.String())
	return start, nil
}

func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read parses the lockfile.
func (s *FileStore) Read() (model.LockState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.LockState{}, model.Errorf(model.ErrNotTracking, nil, "lockfile %s not found", s.path)
		}
		return model.LockState{}, model.Errorf(model.ErrIO, err, "failed to read lockfile")
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return model.LockState{}, model.Errorf(model.ErrLockCorrupt, nil, "lockfile %s is empty", s.path)
	}

	var state model.LockState
	if err := json.Unmarshal(data, &state); err != nil {
		return model.LockState{}, model.Errorf(model.ErrLockCorrupt, err, "failed to deserialize lockfile %s", s.path)
	}
	if state.StartTime.IsZero() {
		return model.LockState{}, model.Errorf(model.ErrLockCorrupt, nil, "lockfile %s has no start_time", s.path)
	}
	return state, nil
}

// Release deletes the lockfile.
func (s *FileStore) Release() error {
	if err := os.Remove(s.path); err != nil {
		return model.Errorf(model.ErrIO, err, "failed to remove lockfile")
	}
	s.logger.Info("Lock released.")
	return nil
}

// Exists reports whether the lockfile is present.
func (s *FileStore) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, model.Errorf(model.ErrIO, err, "failed to stat lockfile")
	}
}

// String identifies the store in log lines.
func (s *FileStore) String() string {
	return fmt.Sprintf("file:%s", s.path)
}
