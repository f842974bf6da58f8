// Package snapshots persists the combined odds document for downstream
// consumers. Writes are atomic: serialize to a temp file in the target
// directory, then rename over the canonical path, so a reader never sees a
// partial document and a crash mid-write leaves the previous one intact.
package snapshots

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"odds-sync-service/internal/domain"
)

// FileName is the canonical snapshot file name inside the base directory.
const FileName = "feed.json"

// Writer persists snapshots under a base directory.
type Writer struct {
	basePath string
}

// NewWriter constructs a writer rooted at basePath.
func NewWriter(basePath string) *Writer {
	return &Writer{basePath: basePath}
}

// Path returns the canonical snapshot path.
func (w *Writer) Path() string {
	if w == nil {
		return ""
	}
	return filepath.Join(w.basePath, FileName)
}

// Write persists the snapshot atomically. Each call gets its own temp file
// so concurrent writers never consume one another's staging file; the last
// rename wins.
func (w *Writer) Write(snap domain.Snapshot) error {
	if w == nil || w.basePath == "" {
		return errors.New("snapshots: writer not configured")
	}
	if err := os.MkdirAll(w.basePath, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(w.basePath, FileName+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), w.Path())
}

// Read loads the current snapshot from a base directory. Used by ops
// tooling and tests; the production path only writes.
func Read(basePath string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	f, err := os.Open(filepath.Join(basePath, FileName))
	if err != nil {
		return domain.Snapshot{}, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}
