// Package trinitylake wires a config.Config into a ready-to-use txn.Engine,
// the way the teacher pack's cmd/storage/main.go wires a config.Config into
// its gRPC server's services — except here the result is a library handle
// an embedder calls directly, not a standalone daemon. SPEC_FULL.md's
// Non-goals rule out a CLI/RPC surface for this module, so Open stops at
// returning the engine and its storage adapter (NewOpsServer builds the
// optional ops server) rather than listening on a socket or parsing flags
// itself.
package trinitylake

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/trinitylake/trinitylake-go/internal/config"
	"github.com/trinitylake/trinitylake-go/internal/metrics"
	"github.com/trinitylake/trinitylake-go/internal/opsserver"
	"github.com/trinitylake/trinitylake-go/storage"
	"github.com/trinitylake/trinitylake-go/storage/localfs"
	"github.com/trinitylake/trinitylake-go/txn"
)

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zapCfg.Level = level
	return zapCfg.Build()
}

// Open builds a txn.Engine over the storage.Adapter cfg.Storage selects,
// wired with a logger built from cfg.Logging and, when cfg.Metrics.Enabled,
// a Prometheus metrics sink labeled with cfg.Lakehouse.Name. The returned
// storage.Adapter is exposed so callers can pass it to NewOpsServer. cfg is
// expected to already carry config.Load's defaults (its own zero-value
// CircuitBreakerThreshold would otherwise trip the local backend's guard
// immediately).
func Open(ctx context.Context, cfg *config.Config) (*txn.Engine, storage.Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}

	adapter, err := config.Build(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("build storage adapter: %w", err)
	}

	opts := []txn.Option{txn.WithLogger(logger)}
	if cfg.Metrics.Enabled {
		opts = append(opts, txn.WithMetrics(metrics.New(cfg.Lakehouse.Name)))
	}

	return txn.New(adapter, opts...), adapter, nil
}

// NewOpsServer builds the /metrics, /health, /ready server for an engine
// opened with Open. It returns nil if cfg.Ops.Addr is empty, meaning the
// embedder did not ask for an ops server. When adapter is a *localfs.Store
// configured with a circuit breaker, its Ready method backs the /ready
// check; other backends are always ready.
func NewOpsServer(cfg *config.Config, logger *zap.Logger, adapter storage.Adapter) *opsserver.Server {
	if cfg.Ops.Addr == "" {
		return nil
	}

	var readyCheck opsserver.ReadyCheck
	if store, ok := adapter.(*localfs.Store); ok {
		readyCheck = store.Ready
	}

	return opsserver.New(opsserver.Config{
		Addr:       cfg.Ops.Addr,
		Logger:     logger,
		ReadyCheck: readyCheck,
	})
}
