// Package memorystore is an in-memory Adapter reference backend, grounded
// on the mutex-guarded-map pattern the teacher pack uses for its schema
// store: a write lock protects a plain map, and conditional create is a
// check-then-set under that same lock.
package memorystore

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/trinitylake/trinitylake-go/errors"
	"github.com/trinitylake/trinitylake-go/storage"
)

// Store is a storage.Adapter backed by a map held entirely in memory.
// Intended for tests and for embedding the engine without a real object
// store.
type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{objects: make(map[string][]byte)}
}

func (s *Store) Read(_ context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[path]
	if !ok {
		return nil, errors.NotFound("object", path)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *Store) Write(_ context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[path] = stored
	return nil
}

func (s *Store) StartAtomicWrite(_ context.Context, path string) (storage.AtomicWriteHandle, error) {
	return &atomicHandle{store: s, path: path}, nil
}

func (s *Store) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for path := range s.objects {
		if strings.HasPrefix(path, prefix) {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) Exists(_ context.Context, path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.objects[path]
	return ok, nil
}

// atomicHandle buffers writes and performs the check-then-set publish on
// Close, holding the store's write lock for the duration of the check so
// two concurrent Close calls for the same path cannot both observe absence.
type atomicHandle struct {
	store    *Store
	path     string
	buf      bytes.Buffer
	closed   bool
}

func (h *atomicHandle) Write(p []byte) (int, error) {
	return h.buf.Write(p)
}

func (h *atomicHandle) Close() error {
	if h.closed {
		return fmt.Errorf("atomic write handle for %q closed twice", h.path)
	}
	h.closed = true

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	if _, exists := h.store.objects[h.path]; exists {
		return errors.AlreadyExists("object", h.path)
	}

	data := make([]byte, h.buf.Len())
	copy(data, h.buf.Bytes())
	h.store.objects[h.path] = data
	return nil
}
