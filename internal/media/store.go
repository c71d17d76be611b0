package media

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store persists opaque image payloads and hands back references that can be
// stored in the database. The bytes themselves are never interpreted.
type Store interface {
	Save(r io.Reader, originalName string) (string, error)
	Delete(ref string) error
	Path(ref string) string
}

type FileStore struct {
	root string
}

func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{root: root}, nil
}

// Save writes the payload under a fresh uuid-based name. The original file
// name only contributes its extension.
func (s *FileStore) Save(r io.Reader, originalName string) (string, error) {
	ref := uuid.New().String() + filepath.Ext(filepath.Base(originalName))

	f, err := os.Create(s.Path(ref))
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(s.Path(ref))
		return "", err
	}

	if err := f.Close(); err != nil {
		os.Remove(s.Path(ref))
		return "", err
	}
	return ref, nil
}

// Delete removes the payload. Deleting a reference that is already gone is a
// no-op.
func (s *FileStore) Delete(ref string) error {
	err := os.Remove(s.Path(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Path resolves a reference to an on-disk location. The reference is reduced
// to its base name so it cannot escape the media root.
func (s *FileStore) Path(ref string) string {
	return filepath.Join(s.root, filepath.Base(ref))
}
