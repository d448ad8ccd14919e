package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalProofStore stores proof files in a single directory on the local
// filesystem, keyed by a random uuid plus the original extension.
type LocalProofStore struct {
	dir string
}

func NewLocalProofStore(dir string) (*LocalProofStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create proof directory: %w", err)
	}
	return &LocalProofStore{dir: dir}, nil
}

func (s *LocalProofStore) Save(proof io.Reader, ext string) (string, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	key := uuid.New().String() + ext

	file, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", fmt.Errorf("failed to create proof file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, proof); err != nil {
		return "", fmt.Errorf("failed to write proof file: %w", err)
	}

	return key, nil
}

func (s *LocalProofStore) Exists(key string) (bool, error) {
	path, err := s.path(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat proof file: %w", err)
	}
	return true, nil
}

func (s *LocalProofStore) Open(key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open proof file: %w", err)
	}
	return file, nil
}

func (s *LocalProofStore) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete proof file: %w", err)
	}
	return nil
}

// path resolves a key inside the store directory. Keys are flat names, so
// anything with a separator never came from Save.
func (s *LocalProofStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid proof key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}

var _ ProofStore = (*LocalProofStore)(nil)
