package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/okian/faceoff/internal/domain/model"
	"github.com/okian/faceoff/pkg/logger"
)

// JSONFileStore keeps the state in a single pretty-printed JSON file of the
// form {"ratings": {...}, "matchups": {...}}.
type JSONFileStore struct {
	mu   sync.Mutex
	path string
	opts options
}

// NewJSONFileStore creates a store backed by path. The file is created on
// first save.
func NewJSONFileStore(path string, opts ...Option) *JSONFileStore {
	return &JSONFileStore{path: path, opts: buildOptions(opts)}
}

// Path returns the backing file path.
func (s *JSONFileStore) Path() string { return s.path }

// Load reads and decodes the state file.
func (s *JSONFileStore) Load(_ context.Context) (model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.Snapshot{}, fmt.Errorf("load %s: %w", s.path, ErrNotFound)
	}
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("load %s: %w", s.path, err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %s: %w", ErrCorruptState, s.path, err)
	}
	if snap.Ratings == nil {
		snap.Ratings = make(map[string]float64)
	}
	if snap.Matchups == nil {
		snap.Matchups = make(map[string]model.Matchup)
	}
	return snap, nil
}

// Save writes snap to a temp file in the same directory and renames it over
// the state file, so readers never see a partial write.
func (s *JSONFileStore) Save(ctx context.Context, snap model.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Chmod(tmpName, s.opts.fileMode); err != nil {
		return fmt.Errorf("chmod temp state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	if s.opts.log != nil {
		s.opts.log.Debug(ctx, "state file written",
			logger.String("path", s.path),
			logger.String("size", humanize.Bytes(uint64(len(data)))),
			logger.Uint64("version", snap.Version))
	}
	return nil
}

// Close is a no-op; the file is not held open between calls.
func (s *JSONFileStore) Close() error { return nil }
