package memory

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"invoicer/internal/kv"
)

type Store struct {
	mu     sync.Mutex
	items  map[string][]byte
	closed bool
}

func New() *Store {
	return &Store{items: make(map[string][]byte)}
}

// NewFromFiles seeds the store with <key>.json files found in base. Missing or
// unreadable files are skipped so that an empty directory yields an empty store.
func NewFromFiles(base string, keys ...string) *Store {
	s := New()
	for _, key := range keys {
		b, err := os.ReadFile(filepath.Join(base, key+".json"))
		if err != nil {
			continue
		}
		s.items[key] = b
	}
	return s
}

// Get returns a copy of the stored value.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, kv.ErrClosed
	}
	v, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return kv.ErrClosed
	}
	s.items[key] = append([]byte(nil), value...)
	return nil
}

// Len returns the number of keys currently set.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
