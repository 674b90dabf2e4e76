package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/evenmoney/bookbot/internal/logger"
	"github.com/evenmoney/bookbot/internal/models"
)

// FileStore persists the document as a single JSON file on local disk.
type FileStore struct {
	path     string
	defaults models.AppState
}

// NewFileStore creates a FileStore writing to the given path. A fresh
// install (or a malformed document) loads as defaults.
func NewFileStore(path string, defaults models.AppState) *FileStore {
	return &FileStore{path: path, defaults: defaults}
}

// Load reads the document from disk. A missing file is a fresh install.
func (s *FileStore) Load(_ context.Context) models.AppState {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Log.Error().Err(err).Str("path", s.path).Msg("Failed to read state file")
		}
		return s.defaults
	}
	return decodeState(data, s.defaults)
}

// Save writes the document atomically: serialize first, write to a temp
// file, then rename over the old document. A failure at any step leaves
// the previously stored document intact.
func (s *FileStore) Save(_ context.Context, state models.AppState) {
	data := encodeState(state)
	if data == nil {
		return
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		logger.Log.Error().Err(err).Str("path", s.path).Msg("Failed to create temp state file")
		return
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		logger.Log.Error().Err(err).Str("path", s.path).Msg("Failed to write state file")
		return
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		logger.Log.Error().Err(err).Str("path", s.path).Msg("Failed to close temp state file")
		return
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		logger.Log.Error().Err(err).Str("path", s.path).Msg("Failed to replace state file")
	}
}

// Clear removes the state file. A missing file is not an error.
func (s *FileStore) Clear(_ context.Context) {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Log.Error().Err(err).Str("path", s.path).Msg("Failed to remove state file")
	}
}
