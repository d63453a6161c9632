package tree

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/trinitylake/trinitylake-go/errors"
	"github.com/trinitylake/trinitylake-go/objects"
	"github.com/trinitylake/trinitylake-go/storage"
)

// FindLatestRoot lists the root/ prefix, decodes every candidate path's
// version from its fixed-width suffix, and reads/decodes the node at the
// highest version observed. It fails with errors.KindUninitialized if no
// root exists. Listings need not be strongly consistent, so a gap at the
// very top (an in-flight writer whose publish hasn't resolved yet) simply
// resolves to the highest currently visible version.
func FindLatestRoot(ctx context.Context, s storage.Adapter) (*Node, error) {
	paths, err := s.List(ctx, RootPrefix())
	if err != nil {
		return nil, err
	}

	var latestVersion int64 = -1
	var latestPath string
	for _, p := range paths {
		v, ok := versionFromRootPath(p)
		if !ok {
			continue
		}
		if v > latestVersion {
			latestVersion = v
			latestPath = p
		}
	}

	if latestVersion < 0 {
		return nil, errors.Uninitialized()
	}

	data, err := s.Read(ctx, latestPath)
	if err != nil {
		return nil, err
	}
	return Decode(data, latestVersion)
}

func versionFromRootPath(p string) (int64, bool) {
	if !strings.HasPrefix(p, RootPrefix()) {
		return 0, false
	}
	suffix := strings.TrimPrefix(p, RootPrefix())
	v, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FindVersionFromRootNode returns the version a node was loaded at (or
// will be published at, for a node under construction).
func FindVersionFromRootNode(node *Node) int64 {
	return node.Version()
}

// FindLakehouseDef follows the lakehouse-definition pointer in node's
// reserved row and reads the referenced descriptor blob.
func FindLakehouseDef(ctx context.Context, s storage.Adapter, node *Node, reservedLakehouseDefKey string) (*objects.LakehouseDef, error) {
	path, ok := node.Get(reservedLakehouseDefKey)
	if !ok {
		return nil, errors.Uninitialized()
	}
	data, err := s.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	return objects.UnmarshalLakehouseDef(data)
}

// WriteNodeFile serializes node through the Node Codec and closes the
// given atomic-write handle, publishing it iff the handle's path was
// still absent at publish time. Callers are responsible for opening the
// handle at the correct target path (RootPath(targetVersion)) and for
// closing it on every exit path; WriteNodeFile performs the write+close
// but does not itself guarantee cleanup if the caller never calls it. It
// returns the encoded size in bytes even when Close fails with
// errors.KindAlreadyExists, so callers can still observe it.
func WriteNodeFile(handle storage.AtomicWriteHandle, node *Node) (int, error) {
	data := Encode(node)
	if _, err := handle.Write(data); err != nil {
		return 0, fmt.Errorf("write node file: %w", err)
	}
	return len(data), handle.Close()
}
