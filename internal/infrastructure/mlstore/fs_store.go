// Package mlstore provides storage backends for trained model artifacts.
package mlstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	apppricing "github.com/pricing/backend/internal/application/pricing"
	"github.com/pricing/backend/internal/domain/shared"
)

// FilesystemArtifactStore persists model artifacts as files in one
// directory. Suitable for single-instance deployments.
type FilesystemArtifactStore struct {
	dir string
}

// NewFilesystemArtifactStore creates the store, making the directory if needed
func NewFilesystemArtifactStore(dir string) (*FilesystemArtifactStore, error) {
	if dir == "" {
		return nil, errors.New("artifact directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &FilesystemArtifactStore{dir: dir}, nil
}

// Save writes an artifact blob. The write goes through a temp file and a
// rename so readers never observe a half-written artifact.
func (s *FilesystemArtifactStore) Save(ctx context.Context, name string, data []byte) error {
	target := filepath.Join(s.dir, filepath.Base(name))

	tmp, err := os.CreateTemp(s.dir, filepath.Base(name)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close artifact file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace artifact: %w", err)
	}
	return nil
}

// Load reads an artifact blob; missing artifacts map to ErrNotFound
func (s *FilesystemArtifactStore) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}

// Ensure FilesystemArtifactStore implements ArtifactStore
var _ apppricing.ArtifactStore = (*FilesystemArtifactStore)(nil)
