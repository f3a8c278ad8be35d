package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Storage is the interface for persisting uploaded document files.
type Storage interface {
	// Save writes the content under the given key and returns the storage path.
	Save(key string, r io.Reader) (string, error)
	// Open returns a reader for a previously saved file.
	Open(key string) (io.ReadCloser, error)
	// Delete removes a stored file. Deleting a missing file is not an error.
	Delete(key string) error
	// Exists returns true if a file is stored under the key.
	Exists(key string) bool
}

// --- Local storage (writes under a base directory) ---

type localStorage struct {
	baseDir string
}

// NewLocalStorage creates storage rooted at the given directory.
func NewLocalStorage(baseDir string) (Storage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create base directory %s: %w", baseDir, err)
	}
	return &localStorage{baseDir: baseDir}, nil
}

// resolve maps a key to a path inside the base directory, rejecting escapes.
func (s *localStorage) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	return filepath.Join(s.baseDir, clean), nil
}

func (s *localStorage) Save(key string, r io.Reader) (string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("storage: failed to create directory for %s: %w", key, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("storage: failed to create file %s: %w", key, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("storage: failed to write file %s: %w", key, err)
	}
	return path, nil
}

func (s *localStorage) Open(key string) (io.ReadCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to open file %s: %w", key, err)
	}
	return f, nil
}

func (s *localStorage) Delete(key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: failed to delete file %s: %w", key, err)
	}
	return nil
}

func (s *localStorage) Exists(key string) bool {
	path, err := s.resolve(key)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// --- Null storage (no-op, used in tests and stateless deployments) ---

type nullStorage struct{}

// NewNullStorage creates a no-op storage backend.
func NewNullStorage() Storage {
	return &nullStorage{}
}

func (s *nullStorage) Save(key string, r io.Reader) (string, error) {
	_, err := io.Copy(io.Discard, r)
	return key, err
}

func (s *nullStorage) Open(key string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("storage: file %s not found", key)
}

func (s *nullStorage) Delete(key string) error {
	return nil
}

func (s *nullStorage) Exists(key string) bool {
	return false
}

// NewStorageFromConfig creates the appropriate Storage based on type.
//
//	storageType: "local" or "none"
//	baseDir: root directory for local storage
func NewStorageFromConfig(storageType, baseDir string) (Storage, error) {
	switch storageType {
	case "local", "":
		if baseDir == "" {
			baseDir = "./storage"
		}
		return NewLocalStorage(baseDir)
	case "none":
		return NewNullStorage(), nil
	default:
		return nil, fmt.Errorf("storage: unknown storage type %q (use local or none)", storageType)
	}
}
