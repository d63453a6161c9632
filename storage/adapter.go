// Package storage defines the object-store abstraction the tree engine is
// built on: random-access reads, ordinary writes, a conditional-create
// primitive that is the engine's only coordination point among concurrent
// writers, listing, and existence checks.
package storage

import (
	"context"
	"io"
)

// Adapter is the storage abstraction every tree-engine component depends
// on. Implementations live under storage/memorystore, storage/localfs, and
// storage/s3.
type Adapter interface {
	// Read returns the full contents of path, or a *errors.Error with
	// Kind errors.KindNotFound if it does not exist.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write publishes data at path unconditionally, overwriting any
	// existing object. Used for descriptor blobs, whose paths embed a
	// fresh unique component and therefore never collide.
	Write(ctx context.Context, path string, data []byte) error

	// StartAtomicWrite opens a handle that publishes path atomically on
	// Close, iff path did not already exist at publish time. On conflict,
	// Close returns a *errors.Error with Kind errors.KindAlreadyExists
	// and no bytes become visible.
	StartAtomicWrite(ctx context.Context, path string) (AtomicWriteHandle, error)

	// List returns every path with the given prefix. Listings need not be
	// strongly consistent but must eventually reflect published objects.
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists reports whether path currently resolves to an object.
	Exists(ctx context.Context, path string) (bool, error)
}

// AtomicWriteHandle buffers a conditional-create write. Callers write the
// full payload then call Close to attempt publication.
type AtomicWriteHandle interface {
	io.Writer

	// Close attempts to publish the buffered bytes under the path this
	// handle was opened for. It is idempotent only in the sense that a
	// second call after a successful publish is an error; callers must
	// call it exactly once.
	Close() error
}
