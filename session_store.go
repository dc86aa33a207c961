package walletauth

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

// MemorySessionStore keeps session values in process memory. Useful for
// tests and short-lived embedders.
type MemorySessionStore struct {
	mu     sync.RWMutex
	values map[StorageKey][]byte
}

var _ SessionStore = (*MemorySessionStore)(nil)

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		values: make(map[StorageKey][]byte),
	}
}

func (s *MemorySessionStore) SetSessionValue(ctx context.Context, key StorageKey, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode session value")
	}

	s.mu.Lock()
	s.values[key] = data
	s.mu.Unlock()

	return nil
}

func (s *MemorySessionStore) GetSessionValue(ctx context.Context, key StorageKey, out any) error {
	s.mu.RLock()
	data, ok := s.values[key]
	s.mu.RUnlock()

	if !ok {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to decode session value")
	}

	return nil
}

func (s *MemorySessionStore) RemoveSessionValue(ctx context.Context, key StorageKey) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

// FileSessionStore persists session values as JSON files under a directory
// scoped to the local profile. Writes go through a temp file plus rename so
// a concurrent reader never observes a partial record.
type FileSessionStore struct {
	dir string
	mu  sync.Mutex
}

var _ SessionStore = (*FileSessionStore)(nil)

func NewFileSessionStore(dir string) (*FileSessionStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create session store directory")
	}
	return &FileSessionStore{dir: dir}, nil
}

func (s *FileSessionStore) SetSessionValue(ctx context.Context, key StorageKey, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode session value")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.path(key)
	tmp, err := os.CreateTemp(s.dir, "session-*")
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to stage session value")
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to write session value")
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to flush session value")
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to commit session value")
	}

	return nil
}

func (s *FileSessionStore) GetSessionValue(ctx context.Context, key StorageKey, out any) error {
	s.mu.Lock()
	data, err := os.ReadFile(s.path(key))
	s.mu.Unlock()

	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read session value")
	}

	if err := json.Unmarshal(data, out); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to decode session value")
	}

	return nil
}

func (s *FileSessionStore) RemoveSessionValue(ctx context.Context, key StorageKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to remove session value")
	}

	return nil
}

func (s *FileSessionStore) path(key StorageKey) string {
	return filepath.Join(s.dir, string(key)+".json")
}
