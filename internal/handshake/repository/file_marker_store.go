package repository

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	apperrors "github.com/allisson/squareconnect/internal/errors"
	handshakeDomain "github.com/allisson/squareconnect/internal/handshake/domain"
)

// FileMarkerStore persists the connection marker as a JSON file.
type FileMarkerStore struct {
	path string
}

// NewFileMarkerStore creates a marker store writing to path.
func NewFileMarkerStore(path string) *FileMarkerStore {
	return &FileMarkerStore{path: path}
}

// Path returns the marker file location.
func (s *FileMarkerStore) Path() string {
	return s.path
}

// Load returns the stored marker, or nil when none was saved.
func (s *FileMarkerStore) Load() (*handshakeDomain.Marker, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "failed to read connection marker")
	}

	var marker handshakeDomain.Marker
	if err := json.Unmarshal(data, &marker); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode connection marker")
	}
	return &marker, nil
}

// Save writes the marker atomically, readable by the current user only.
func (s *FileMarkerStore) Save(marker handshakeDomain.Marker) error {
	data, err := json.MarshalIndent(marker, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, "failed to encode connection marker")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return apperrors.Wrap(err, "failed to create marker directory")
	}

	tmp, err := os.CreateTemp(dir, ".connection-*.json")
	if err != nil {
		return apperrors.Wrap(err, "failed to create connection marker")
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return apperrors.Wrap(err, "failed to write connection marker")
	}
	if err := tmp.Close(); err != nil {
		return apperrors.Wrap(err, "failed to write connection marker")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return apperrors.Wrap(err, "failed to write connection marker")
	}
	return nil
}

// Clear removes the marker. Clearing an absent marker is not an error.
func (s *FileMarkerStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperrors.Wrap(err, "failed to remove connection marker")
	}
	return nil
}
