package txn

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/google/uuid"

	"github.com/trinitylake/trinitylake-go/errors"
	"github.com/trinitylake/trinitylake-go/internal/metrics"
	"github.com/trinitylake/trinitylake-go/key"
	"github.com/trinitylake/trinitylake-go/objects"
	"github.com/trinitylake/trinitylake-go/storage"
	"github.com/trinitylake/trinitylake-go/tree"
)

// Engine is the catalog handle: the storage adapter plus the ambient
// logger and metrics every operation reports through. The key encoder is
// passed explicitly through each call's RunningTransaction, so no package
// holds global state, as spec's "Global state: none is required" design
// note calls for.
type Engine struct {
	storage storage.Adapter
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithLogger injects a zap logger; nil falls back to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics injects a Prometheus metrics sink; nil disables metrics
// (every Record/Observe call on a nil *metrics.Metrics is a no-op).
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New builds an Engine over the given storage.Adapter.
func New(s storage.Adapter, opts ...Option) *Engine {
	e := &Engine{storage: s, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

func reservedKeySet() key.Reserved {
	return key.NewReserved(objects.DefaultReservedPrefix)
}

// CreateLakehouse initializes a brand-new lakehouse: it writes the
// lakehouse descriptor blob and publishes root 0 with the descriptor
// pointer and a zero key count. It fails with errors.KindAlreadyExists if
// root 0 has already been published.
func (e *Engine) CreateLakehouse(ctx context.Context, name string) (*CommittedTransaction, error) {
	e.metrics.RecordOperation("createLakehouse")

	exists, err := e.storage.Exists(ctx, tree.RootPath(0))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.AlreadyExists("root", "0")
	}

	def := objects.NewLakehouseDef(name, time.Now())
	data, err := objects.Marshal(def)
	if err != nil {
		return nil, err
	}

	defPath := tree.LakehouseDefPath()
	if err := e.storage.Write(ctx, defPath, data); err != nil {
		return nil, err
	}

	reserved := reservedKeySet()
	node := tree.NewNode(0)
	node.Set(reserved.LakehouseDefKey, defPath)
	node.Set(reserved.NumKeysKey, "0")

	handle, err := e.storage.StartAtomicWrite(ctx, tree.RootPath(0))
	if err != nil {
		return nil, err
	}
	size, err := tree.WriteNodeFile(handle, node)
	if err != nil {
		if errors.Is(err, errors.KindAlreadyExists) {
			return nil, errors.AlreadyExists("root", "0")
		}
		return nil, err
	}
	e.metrics.ObserveNodeEncodedBytes(size)

	e.logger.Debug("lakehouse created", zap.String("name", name))
	return &CommittedTransaction{ID: uuid.New().String(), CommittedRoot: node}, nil
}

// BeginTransaction begins a transaction under snapshot isolation, capturing
// the latest published root as both the beginning and running root. It
// fails with errors.KindUninitialized if no root exists.
func (e *Engine) BeginTransaction(ctx context.Context) (*RunningTransaction, error) {
	return e.BeginTransactionWithOptions(ctx, nil)
}

// BeginTransactionWithOptions is the Options-accepting overload matching
// the original source's beginTransaction(storage, Map<String,String>).
func (e *Engine) BeginTransactionWithOptions(ctx context.Context, options map[string]string) (*RunningTransaction, error) {
	e.metrics.RecordOperation("beginTransaction")

	start := time.Now()
	root, err := tree.FindLatestRoot(ctx, e.storage)
	e.metrics.ObserveReadDuration(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	def, err := tree.FindLakehouseDef(ctx, e.storage, root, reservedKeySet().LakehouseDefKey)
	if err != nil {
		return nil, err
	}

	txn := newRunningTransaction(root, key.NewEncoder(def), ParseOptions(options))
	e.logger.Debug("transaction began", zap.String("txn_id", txn.ID), zap.Int64("version", tree.FindVersionFromRootNode(root)))
	return txn, nil
}

// CommitTransaction attempts to atomically publish txn's running root as
// the next version. It fails with errors.KindNothingToCommit if the
// running root was never mutated, and errors.KindCommitConflict if another
// writer already published that version.
func (e *Engine) CommitTransaction(ctx context.Context, txn *RunningTransaction) (*CommittedTransaction, error) {
	e.metrics.RecordOperation("commitTransaction")

	if !txn.RunningRoot.HasVersion() {
		return nil, errors.NothingToCommit(txn.ID)
	}

	targetVersion := txn.BeginningVersion() + 1
	newRoot := txn.RunningRoot.WithVersion(targetVersion)

	handle, err := e.storage.StartAtomicWrite(ctx, tree.RootPath(targetVersion))
	if err != nil {
		return nil, err
	}
	size, err := tree.WriteNodeFile(handle, newRoot)
	if err != nil {
		if errors.Is(err, errors.KindAlreadyExists) {
			e.metrics.RecordCommitConflict()
			e.logger.Warn("commit conflict", zap.String("txn_id", txn.ID), zap.Int64("target_version", targetVersion))
			return nil, errors.CommitConflict(uint64(targetVersion))
		}
		return nil, err
	}

	e.metrics.ObserveNodeEncodedBytes(size)
	e.metrics.RecordCommit()
	e.logger.Debug("transaction committed", zap.String("txn_id", txn.ID), zap.Int64("version", targetVersion))
	return &CommittedTransaction{ID: txn.ID, CommittedRoot: newRoot}, nil
}
