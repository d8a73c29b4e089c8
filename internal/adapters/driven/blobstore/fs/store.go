// Package fs provides a filesystem-backed blob store. Blobs are written
// to a temp file first and renamed into place, so each individual write
// is atomic: readers see either the old blob or the new one, never a
// partial write.
package fs

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/custodia-labs/extracta/internal/core/domain"
	"github.com/custodia-labs/extracta/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

const tempDirName = ".tmp"

// Store is a blob store rooted at a directory.
type Store struct {
	fs   afero.Fs
	root string
}

// Option configures a Store.
type Option func(*Store)

// WithFs replaces the backing filesystem. Defaults to the OS filesystem;
// tests use an in-memory one.
func WithFs(fsys afero.Fs) Option {
	return func(s *Store) {
		s.fs = fsys
	}
}

// NewStore creates a blob store rooted at root, creating the directory
// if needed.
func NewStore(root string, options ...Option) (*Store, error) {
	s := &Store{
		fs:   afero.NewOsFs(),
		root: filepath.Clean(root),
	}
	for _, option := range options {
		option(s)
	}

	if err := s.fs.MkdirAll(filepath.Join(s.root, tempDirName), 0o755); err != nil {
		return nil, fmt.Errorf("creating blob root: %w", err)
	}
	return s, nil
}

// Get returns the blob stored under name, or domain.ErrNotFound.
func (s *Store) Get(_ context.Context, name string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.blobPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading blob %s: %w", name, err)
	}
	return data, nil
}

// Put stores data under name, creating or overwriting atomically via a
// temp file and rename.
func (s *Store) Put(_ context.Context, name string, data []byte) error {
	target := s.blobPath(name)
	if err := s.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating blob directory: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, filepath.Join(s.root, tempDirName), "blob-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return fmt.Errorf("writing blob %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("closing blob %s: %w", name, err)
	}

	if err := s.fs.Rename(tmpName, target); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("publishing blob %s: %w", name, err)
	}
	return nil
}

// Close releases resources. The filesystem store holds none.
func (s *Store) Close() error {
	return nil
}

// blobPath maps a slash-separated blob name under the root.
func (s *Store) blobPath(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(path.Clean(name)))
}
