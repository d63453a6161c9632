// Package localfs is a storage.Adapter backend rooted at a directory on
// the local filesystem. Conditional create is implemented directly with
// os.O_CREATE|os.O_EXCL, which is exactly the "must not already exist"
// primitive the Storage Adapter contract calls for.
package localfs

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/trinitylake/trinitylake-go/errors"
	"github.com/trinitylake/trinitylake-go/storage"
)

// Store is a storage.Adapter rooted at Dir.
type Store struct {
	dir    string
	logger *zap.Logger
	guard  *diskGuard
}

// Option configures a Store at construction.
type Option func(*Store)

// WithLogger injects a zap logger; a nil logger falls back to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithCircuitBreaker enables the disk-space guard: writes are rejected
// with errors.KindStorageUnavailable once usage crosses thresholdPercent.
func WithCircuitBreaker(thresholdPercent float64) Option {
	return func(s *Store) { s.guard = newDiskGuard(s.dir, thresholdPercent, s.logger) }
}

// New creates a Store rooted at dir, creating it if necessary.
func New(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.StorageUnavailable("failed to create data directory", err)
	}
	s := &Store{dir: dir, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s, nil
}

// Ready reports whether the circuit breaker, if configured, currently
// allows writes. A Store with no WithCircuitBreaker option is always ready.
func (s *Store) Ready() error {
	if s.guard == nil {
		return nil
	}
	return s.guard.CheckBeforeWrite()
}

func (s *Store) abs(path string) string {
	return filepath.Join(s.dir, filepath.FromSlash(path))
}

func (s *Store) Read(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(s.abs(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("object", path)
		}
		return nil, errors.StorageUnavailable("read failed", err)
	}
	return data, nil
}

func (s *Store) Write(_ context.Context, path string, data []byte) error {
	full := s.abs(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errors.StorageUnavailable("failed to create parent directory", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return errors.StorageUnavailable("write failed", err)
	}
	return nil
}

func (s *Store) StartAtomicWrite(_ context.Context, path string) (storage.AtomicWriteHandle, error) {
	return &atomicHandle{store: s, path: path}, nil
}

func (s *Store) List(_ context.Context, prefix string) ([]string, error) {
	root := s.dir
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, prefix) {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.StorageUnavailable("list failed", err)
	}
	return out, nil
}

func (s *Store) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(s.abs(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.StorageUnavailable("stat failed", err)
}

// atomicHandle buffers bytes in memory and publishes via O_CREATE|O_EXCL on
// Close, guaranteeing the target path did not exist at publish time.
type atomicHandle struct {
	store  *Store
	path   string
	buf    bytes.Buffer
	closed bool
}

func (h *atomicHandle) Write(p []byte) (int, error) {
	return h.buf.Write(p)
}

func (h *atomicHandle) Close() error {
	if h.closed {
		return errors.StorageUnavailable("atomic write handle closed twice", nil)
	}
	h.closed = true

	if h.store.guard != nil {
		if err := h.store.guard.CheckBeforeWrite(); err != nil {
			return err
		}
	}

	full := h.store.abs(h.path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errors.StorageUnavailable("failed to create parent directory", err)
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return errors.AlreadyExists("object", h.path)
		}
		return errors.StorageUnavailable("atomic write failed", err)
	}
	defer f.Close()

	if _, err := f.Write(h.buf.Bytes()); err != nil {
		os.Remove(full)
		return errors.StorageUnavailable("atomic write failed", err)
	}
	return nil
}
