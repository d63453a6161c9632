// Package storagetest holds a behavioral contract suite for storage.Adapter
// backends, so parity between backends is enforced the way the teacher
// pack enforces parity across its storage engines with shared test
// helpers. memorystore and localfs run it; s3 has no test in this module.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trinitylake/trinitylake-go/errors"
	"github.com/trinitylake/trinitylake-go/storage"
)

// RunContract exercises the full storage.Adapter contract against an
// adapter produced by newAdapter. Call it from each backend's own test
// file with a factory that returns a fresh, empty adapter.
func RunContract(t *testing.T, newAdapter func(t *testing.T) storage.Adapter) {
	t.Run("ReadMissingIsNotFound", func(t *testing.T) {
		a := newAdapter(t)
		_, err := a.Read(context.Background(), "root/00000000000000000000")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.KindNotFound))
	})

	t.Run("WriteThenRead", func(t *testing.T) {
		a := newAdapter(t)
		ctx := context.Background()
		require.NoError(t, a.Write(ctx, "lakehouse/abc", []byte("hello")))
		data, err := a.Read(ctx, "lakehouse/abc")
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), data)
	})

	t.Run("ExistsReflectsWrites", func(t *testing.T) {
		a := newAdapter(t)
		ctx := context.Background()
		ok, err := a.Exists(ctx, "ns/sales/abc")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, a.Write(ctx, "ns/sales/abc", []byte("{}")))
		ok, err = a.Exists(ctx, "ns/sales/abc")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("AtomicWritePublishesOnce", func(t *testing.T) {
		a := newAdapter(t)
		ctx := context.Background()
		path := "root/00000000000000000000"

		h, err := a.StartAtomicWrite(ctx, path)
		require.NoError(t, err)
		_, err = h.Write([]byte("root-0"))
		require.NoError(t, err)
		require.NoError(t, h.Close())

		data, err := a.Read(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, []byte("root-0"), data)
	})

	t.Run("AtomicWriteConflictsOnExistingPath", func(t *testing.T) {
		a := newAdapter(t)
		ctx := context.Background()
		path := "root/00000000000000000001"

		first, err := a.StartAtomicWrite(ctx, path)
		require.NoError(t, err)
		_, err = first.Write([]byte("first"))
		require.NoError(t, err)
		require.NoError(t, first.Close())

		second, err := a.StartAtomicWrite(ctx, path)
		require.NoError(t, err)
		_, err = second.Write([]byte("second"))
		require.NoError(t, err)
		err = second.Close()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.KindAlreadyExists))

		data, err := a.Read(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, []byte("first"), data, "losing writer's bytes must never become visible")
	})

	t.Run("ListReturnsPrefixMatches", func(t *testing.T) {
		a := newAdapter(t)
		ctx := context.Background()
		require.NoError(t, a.Write(ctx, "ns/sales/a", []byte("1")))
		require.NoError(t, a.Write(ctx, "ns/sales/b", []byte("2")))
		require.NoError(t, a.Write(ctx, "ns/marketing/c", []byte("3")))

		paths, err := a.List(ctx, "ns/sales/")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"ns/sales/a", "ns/sales/b"}, paths)
	})
}
