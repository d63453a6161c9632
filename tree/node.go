// Package tree implements the versioned catalog snapshot: the node key
// table, cloning for mutation isolation, and the operations that discover
// and publish root versions against a storage.Adapter.
package tree

import (
	"github.com/cespare/xxhash/v2"

	"github.com/trinitylake/trinitylake-go/tree/rowtable"
)

// Row is one (key, value) pair in a node's key table.
type Row struct {
	Key   string
	Value string
}

// Node is a versioned snapshot of the catalog tree. Rows are kept in a
// rowtable.SkipList so the table is always iterable in sorted-by-key order,
// matching the canonical order the codec requires.
type Node struct {
	version int64
	rows    *rowtable.SkipList
	dirty   bool
}

// NewNode creates an empty node carrying the given version.
func NewNode(version int64) *Node {
	return &Node{version: version, rows: rowtable.New()}
}

// NewNodeFromRows reconstructs a node read from storage: rows are inserted
// without flipping the dirty flag, since a node just decoded off disk has
// not been mutated relative to itself.
func NewNodeFromRows(version int64, rows []Row) *Node {
	n := &Node{version: version, rows: rowtable.New()}
	for _, row := range rows {
		n.rows.Insert(row.Key, row.Value)
	}
	return n
}

// Version returns the version this node was loaded at (or, for a node
// under construction, the version it will be written at).
func (n *Node) Version() int64 {
	return n.version
}

// Get returns the value for key and whether it is present.
func (n *Node) Get(key string) (string, bool) {
	v, ok := n.rows.Search(key)
	if !ok {
		return "", false
	}
	return v, true
}

// Set inserts or overwrites key and marks the node dirty.
func (n *Node) Set(key, value string) {
	n.rows.Insert(key, value)
	n.dirty = true
}

// Remove deletes key if present and marks the node dirty if it was.
func (n *Node) Remove(key string) {
	if n.rows.Delete(key) {
		n.dirty = true
	}
}

// Rows returns every row in ascending key order.
func (n *Node) Rows() []Row {
	out := make([]Row, 0, n.rows.Len())
	it := n.rows.Iterator()
	for it.Next() {
		out = append(out, Row{Key: it.Key(), Value: it.Value()})
	}
	return out
}

// Len returns the number of rows in the node.
func (n *Node) Len() int {
	return n.rows.Len()
}

// HasVersion reports whether this node has been mutated relative to the
// snapshot it was cloned from. A node freshly loaded from storage, or an
// unmodified clone of one, reports false; any Set or Remove flips it true.
func (n *Node) HasVersion() bool {
	return n.dirty
}

// Clone produces a deep, independently mutable copy that shares no
// mutable state with n. The clone inherits n's version and starts clean
// (HasVersion reports false) until mutated.
func (n *Node) Clone() *Node {
	return &Node{
		version: n.version,
		rows:    n.rows.Clone(),
		dirty:   false,
	}
}

// WithVersion returns a copy of n (rows cloned, dirty flag kept) stamped
// with a new version,
// used when a running root is about to be published at version+1.
func (n *Node) WithVersion(version int64) *Node {
	return &Node{version: version, rows: n.rows.Clone(), dirty: n.dirty}
}

// ContentHash computes a stable xxHash of the node's canonical encoded
// form. Two nodes with identical rows hash identically regardless of the
// order operations were applied in, since rows are always iterated sorted.
func (n *Node) ContentHash() uint64 {
	return xxhash.Sum64(Encode(n))
}
