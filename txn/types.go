// Package txn implements the Transaction Engine: the catalog operations
// (create/alter/drop namespace and table, describe, list, existence) and
// the snapshot-isolation and commit discipline they're built on.
package txn

import (
	"time"

	"github.com/google/uuid"

	"github.com/trinitylake/trinitylake-go/key"
	"github.com/trinitylake/trinitylake-go/tree"
)

// IsolationLevel names the isolation a transaction was begun under.
// Snapshot is the only level the engine implements; the type exists so a
// caller's choice survives the round trip through Options.
type IsolationLevel string

const (
	IsolationSnapshot IsolationLevel = "snapshot"
)

// Options configures a transaction at begin time, matching the original
// source's Map<String,String>-driven TransactionOptions.
type Options struct {
	Isolation IsolationLevel
}

// ParseOptions builds Options from a string map, defaulting to snapshot
// isolation when the "isolation" key is absent or empty.
func ParseOptions(opts map[string]string) Options {
	isolation := IsolationSnapshot
	if v, ok := opts["isolation"]; ok && v != "" {
		isolation = IsolationLevel(v)
	}
	return Options{Isolation: isolation}
}

// RunningTransaction is an in-memory, mutable snapshot under construction.
// Every mutating operation returns a new RunningTransaction derived from
// the receiver via withRunningRoot; the receiver itself is never mutated,
// so a caller holding an older value keeps seeing its own snapshot.
type RunningTransaction struct {
	ID            string
	BeganAt       time.Time
	BeginningRoot *tree.Node
	RunningRoot   *tree.Node
	Isolation     IsolationLevel
	Encoder       *key.Encoder
}

func newRunningTransaction(beginningRoot *tree.Node, encoder *key.Encoder, opts Options) *RunningTransaction {
	return &RunningTransaction{
		ID:            uuid.New().String(),
		BeganAt:       time.Now(),
		BeginningRoot: beginningRoot,
		RunningRoot:   beginningRoot.Clone(),
		Isolation:     opts.Isolation,
		Encoder:       encoder,
	}
}

// withRunningRoot returns a new RunningTransaction identical to t except
// for its RunningRoot, mirroring the original source's
// ImmutableRunningTransaction.builder().from(t)... pattern without code
// generation.
func (t *RunningTransaction) withRunningRoot(root *tree.Node) *RunningTransaction {
	clone := *t
	clone.RunningRoot = root
	return &clone
}

// BeginningVersion is the version the transaction's beginning root was
// read at.
func (t *RunningTransaction) BeginningVersion() int64 {
	return t.BeginningRoot.Version()
}

// CommittedTransaction records a successful atomic publish of a new root.
type CommittedTransaction struct {
	ID            string
	CommittedRoot *tree.Node
}
