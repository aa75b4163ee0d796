package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cad-editor/internal/cad/codec"
	"cad-editor/internal/cad/models"
)

// ============================================================
// File Storage
// ============================================================

// FileStore keeps documents as files under a root directory. The codec is
// picked from the file extension. With an empty root, locations are used
// as plain paths.
type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// Path resolves a location to a file path. Locations may not escape the root.
func (s *FileStore) Path(location string) (string, error) {
	if location == "" {
		return "", fmt.Errorf("empty location: %w", models.ErrInvalidArgument)
	}
	if s.root == "" {
		return location, nil
	}
	if !filepath.IsLocal(location) {
		return "", fmt.Errorf("location %q outside document root: %w", location, models.ErrInvalidArgument)
	}
	return filepath.Join(s.root, location), nil
}

func (s *FileStore) Raw(_ context.Context, location string) ([]byte, error) {
	path, err := s.Path(location)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("document %s: %w", location, models.ErrNotFound)
		}
		return nil, fmt.Errorf("read document: %w", err)
	}
	return data, nil
}

func (s *FileStore) Load(ctx context.Context, location string) (*models.Document, error) {
	data, err := s.Raw(ctx, location)
	if err != nil {
		return nil, err
	}
	c, err := codec.For(location)
	if err != nil {
		return nil, err
	}
	return c.Decode(data)
}

// Save writes the document atomically: a temp file in the target directory
// is renamed over the destination, so readers never see a partial file.
func (s *FileStore) Save(_ context.Context, location string, doc *models.Document) error {
	path, err := s.Path(location)
	if err != nil {
		return err
	}
	c, err := codec.For(location)
	if err != nil {
		return err
	}
	data, err := c.Encode(doc)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir document dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}
