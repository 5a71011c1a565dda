// Package artifact persists raw and quantized model parameters
package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ErrArtifactNotFound and ErrCorruptArtifact are always returned alongside ErrArtifactIO
var (
	ErrArtifactIO       = errors.New("artifact io failure")
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrCorruptArtifact  = errors.New("corrupt artifact")
	ErrInvalidName      = errors.New("invalid artifact name")
)

// Store is an opaque byte store keyed by artifact name
type Store interface {
	Put(name string, data []byte) error
	Get(name string) ([]byte, error)
	Size(name string) (int64, error)
}

// FileStore keeps each artifact as a file under a directory
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create artifact directory %s, %v, %w", dir, err, ErrArtifactIO)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file path backing an artifact
func (f *FileStore) Path(name string) string {
	return filepath.Join(f.dir, name)
}

// Put writes data to a temporary file in the same directory then renames it over the
// artifact so readers never observe a partial write.
func (f *FileStore) Put(name string, data []byte) error {
	if err := validName(name); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("unable to create temporary file for %s, %v, %w", name, err, ErrArtifactIO)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to write %s, %v, %w", name, err, ErrArtifactIO)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to sync %s, %v, %w", name, err, ErrArtifactIO)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to close %s, %v, %w", name, err, ErrArtifactIO)
	}
	if err := os.Rename(tmpName, f.Path(name)); err != nil {
		return fmt.Errorf("unable to move %s into place, %v, %w", name, err, ErrArtifactIO)
	}
	return nil
}

func (f *FileStore) Get(name string) ([]byte, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s, %w, %w", name, ErrArtifactNotFound, ErrArtifactIO)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read %s, %v, %w", name, err, ErrArtifactIO)
	}
	return data, nil
}

func (f *FileStore) Size(name string) (int64, error) {
	if err := validName(name); err != nil {
		return 0, err
	}
	info, err := os.Stat(f.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("%s, %w, %w", name, ErrArtifactNotFound, ErrArtifactIO)
	}
	if err != nil {
		return 0, fmt.Errorf("unable to stat %s, %v, %w", name, err, ErrArtifactIO)
	}
	return info.Size(), nil
}

// MemStore keeps artifacts in memory
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (m *MemStore) Put(name string, data []byte) error {
	if err := validName(name); err != nil {
		return err
	}
	c := make([]byte, len(data))
	copy(c, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[name] = c
	return nil
}

func (m *MemStore) Get(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[name]
	if !ok {
		return nil, fmt.Errorf("%s, %w, %w", name, ErrArtifactNotFound, ErrArtifactIO)
	}
	c := make([]byte, len(data))
	copy(c, data)
	return c, nil
}

func (m *MemStore) Size(name string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[name]
	if !ok {
		return 0, fmt.Errorf("%s, %w, %w", name, ErrArtifactNotFound, ErrArtifactIO)
	}
	return int64(len(data)), nil
}

func validName(name string) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("%q, %w", name, ErrInvalidName)
	}
	return nil
}
