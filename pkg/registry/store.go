package registry

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is the durable local key-value store a Reconciler persists drafts
// into. Implementations must never fail on Set; the draft is the caller's
// single source of truth and local persistence has no error path.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// MemStore is an in-memory Store, used in tests and as a fallback.
type MemStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string][]byte)}
}

func (s *MemStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	return value, ok
}

func (s *MemStore) Set(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]byte, len(value))
	copy(copied, value)
	s.values[key] = copied
}

// FileStore keeps each key in its own file under a directory. Write errors
// are swallowed: local persistence degrades to the in-memory draft, which the
// caller still holds.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	name := strings.ReplaceAll(key, string(os.PathSeparator), "_")
	return filepath.Join(s.dir, name+".json")
}

func (s *FileStore) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (s *FileStore) Set(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = os.WriteFile(s.path(key), value, 0o644)
}
