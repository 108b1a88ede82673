package intervallog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/kyleseneker/track/internal/logging"
	"github.com/kyleseneker/track/internal/model"
)

// FileLog persists the interval log as a JSON array. Every write replaces the
// whole file.
type FileLog struct {
	path   string
	logger logging.Logger
}

// Ensure FileLog implements Store.
var _ Store = (*FileLog)(nil)

// NewFileLog creates a log backed by the JSON file at path.
func NewFileLog(path string) *FileLog {
	return &FileLog{
		path:   path,
		logger: logging.Get().Named("file_log").With("path", path),
	}
}

// Path returns the records file location.
func (l *FileLog) Path() string {
	return l.path
}

// Load reads and parses the records file. Missing or blank files are an empty log.
func (l *FileLog) Load() ([]model.TimeRecord, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Debug("Records file not found, starting with an empty log.")
			return []model.TimeRecord{}, nil
		}
		return nil, model.Errorf(model.ErrIO, err, "failed to read records file")
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []model.TimeRecord{}, nil
	}

	records, err := decodeRecords(data)
	if err != nil {
		return nil, model.Errorf(model.ErrLogCorrupt, err, "failed to deserialize records file %s", l.path)
	}

	l.logger.Debug("Loaded records.", "count", len(records))
	return records, nil
}

// Save writes the full record list through a temp file and renames it over
// the target, so a crash leaves either the old or the new log, never a torn one.
func (l *FileLog) Save(records []model.TimeRecord) error {
	if records == nil {
		records = []model.TimeRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return model.Errorf(model.ErrIO, err, "failed to serialize records")
	}

	// A unique temp name keeps an abandoned temp file from a crashed run from
	// colliding with this write.
	tempFilePath := l.path + "." + uuid.NewString() + ".tmp"
	if err := writeFileSync(tempFilePath, data); err != nil {
		_ = os.Remove(tempFilePath)
		return model.Errorf(model.ErrIO, err, "failed to write temp records file %s", tempFilePath)
	}

	if err := os.Rename(tempFilePath, l.path); err != nil {
		_ = os.Remove(tempFilePath) // Attempt cleanup on rename error
		return model.Errorf(model.ErrIO, err, "failed to rename temp records file to %s", l.path)
	}

	if err := syncDir(filepath.Dir(l.path)); err != nil {
		// Not supported on every platform; the rename already happened.
		l.logger.Debug("Could not fsync records directory", "error", err)
	}

	l.logger.Debug("Saved records.", "count", len(records))
	return nil
}

// Append loads the log, adds record, and saves it back.
func (l *FileLog) Append(record model.TimeRecord) error {
	records, err := l.Load()
	if err != nil {
		return err
	}
	records = append(records, record)
	if err := l.Save(records); err != nil {
		return err
	}
	l.logger.Info("Recorded session", "start", record.Start.String(), "end", record.End.String())
	return nil
}

// decodeRecords parses a records document strictly: unknown keys, missing
// bounds, null entries and trailing data are all rejected.
func decodeRecords(data []byte) ([]model.TimeRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var records []model.TimeRecord
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the records array")
	}
	if records == nil {
		// A literal "null" document.
		return []model.TimeRecord{}, nil
	}

	for i, rec := range records {
		if rec.Start.IsZero() || rec.End.IsZero() {
			return nil, fmt.Errorf("record %d is missing its start or end", i)
		}
	}
	return records, nil
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
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

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
