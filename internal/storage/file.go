// Package storage provides file-backed key/value stores for the client's
// persistent state.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// SchemaVersion is the current file schema version.
const SchemaVersion = 1

// ErrNotOpen is returned by operations on a store that is not open.
var ErrNotOpen = errors.New("store is not open")

// document is the on-disk layout.
type document struct {
	SchemaVersion int                          `json:"schema_version"`
	Namespaces    map[string]map[string]string `json:"namespaces"`
}

// FileStore is a namespaced key/value store persisted as a single JSON file.
// Every mutation rewrites the file atomically.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	logger *slog.Logger
	data   map[string]map[string]string
	open   bool
}

// NewFileStore creates a store backed by path. Nothing is read until Open.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		path:   path,
		logger: logger.With("store", filepath.Base(path)),
	}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Open loads the file. A missing file is an empty store; a corrupted file
// is logged and replaced on the next write.
func (s *FileStore) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", s.path, err)
	}

	s.data = make(map[string]map[string]string)

	raw, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("failed to read %s: %w", s.path, err)
	default:
		var doc document
		if err := json.Unmarshal(raw, &doc); err != nil {
			s.logger.Warn("discarding corrupted store", "reason", "corruptedStore", "error", err)
			break
		}
		for name, ns := range doc.Namespaces {
			if ns == nil {
				s.logger.Warn("discarding corrupted namespace", "reason", "corruptedStore", "namespace", name)
				continue
			}
			s.data[name] = ns
		}
	}

	s.open = true
	s.logger.Debug("store opened", "namespaces", len(s.data))
	return nil
}

// Close marks the store closed. Data already written stays on disk.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.open = false
	s.data = nil
	return nil
}

// Put stores value under namespace/key.
func (s *FileStore) Put(namespace, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return ErrNotOpen
	}

	ns := s.data[namespace]
	if ns == nil {
		ns = make(map[string]string)
		s.data[namespace] = ns
	}
	prev, had := ns[key]
	ns[key] = value

	if err := s.save(); err != nil {
		if had {
			ns[key] = prev
		} else {
			delete(ns, key)
		}
		return err
	}
	return nil
}

// Get returns the value under namespace/key and whether it exists.
func (s *FileStore) Get(namespace, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return "", false, ErrNotOpen
	}

	v, ok := s.data[namespace][key]
	return v, ok, nil
}

// Delete removes namespace/key. Deleting a missing key is not an error.
func (s *FileStore) Delete(namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return ErrNotOpen
	}

	ns, ok := s.data[namespace]
	if !ok {
		return nil
	}
	prev, had := ns[key]
	if !had {
		return nil
	}
	delete(ns, key)

	if err := s.save(); err != nil {
		ns[key] = prev
		return err
	}
	return nil
}

// Clear removes every key in namespace.
func (s *FileStore) Clear(namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return ErrNotOpen
	}

	prev, ok := s.data[namespace]
	if !ok {
		return nil
	}
	delete(s.data, namespace)

	if err := s.save(); err != nil {
		s.data[namespace] = prev
		return err
	}
	return nil
}

// save writes the file atomically. Caller holds the write lock.
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(document{
		SchemaVersion: SchemaVersion,
		Namespaces:    s.data,
	}, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	return os.Rename(tmpPath, s.path)
}
