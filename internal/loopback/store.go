package loopback

import (
	"errors"
	"sync"
)

// ErrStoreClosed is returned by a store that is not open.
var ErrStoreClosed = errors.New("store is not open")

// MemoryStore is an in-memory capability.Store.
type MemoryStore struct {
	// OpenErr, when set, is returned by Open.
	OpenErr error

	mu     sync.Mutex
	open   bool
	opened int
	data   map[string]map[string]string
}

// NewMemoryStore returns a closed, empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

// Open makes the store usable.
func (s *MemoryStore) Open() error {
	if s.OpenErr != nil {
		return s.OpenErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	s.opened++
	return nil
}

// Close closes the store. Data is kept for a later Open.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	return nil
}

// IsOpen reports whether the store is open.
func (s *MemoryStore) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Opened returns how many times Open succeeded.
func (s *MemoryStore) Opened() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

// Put stores value under namespace/key.
func (s *MemoryStore) Put(namespace, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return ErrStoreClosed
	}
	ns, ok := s.data[namespace]
	if !ok {
		ns = make(map[string]string)
		s.data[namespace] = ns
	}
	ns[key] = value
	return nil
}

// Get returns the value under namespace/key.
func (s *MemoryStore) Get(namespace, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return "", false, ErrStoreClosed
	}
	v, ok := s.data[namespace][key]
	return v, ok, nil
}

// Delete removes namespace/key.
func (s *MemoryStore) Delete(namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return ErrStoreClosed
	}
	delete(s.data[namespace], key)
	return nil
}

// Clear removes every key in namespace.
func (s *MemoryStore) Clear(namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return ErrStoreClosed
	}
	delete(s.data, namespace)
	return nil
}
