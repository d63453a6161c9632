package localfs

import (
	"fmt"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/trinitylake/trinitylake-go/errors"
)

// diskGuard monitors free space under a data directory and rejects writes
// once usage crosses a circuit-breaker threshold. Adapted from the
// teacher's disk manager: same Statfs-based sampling and threshold/state
// machine, trimmed to the single check this backend needs before an
// atomic-write publish.
type diskGuard struct {
	dataDir       string
	logger        *zap.Logger
	checkInterval time.Duration
	threshold     float64

	mu              sync.Mutex
	lastCheck       time.Time
	cachedUsagePct  float64
	isCircuitBroken bool
}

func newDiskGuard(dataDir string, threshold float64, logger *zap.Logger) *diskGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &diskGuard{
		dataDir:       dataDir,
		logger:        logger,
		checkInterval: 5 * time.Second,
		threshold:     threshold,
	}
}

// CheckBeforeWrite refreshes the cached usage sample if stale and rejects
// the write with errors.KindStorageUnavailable if the circuit breaker is
// engaged.
func (g *diskGuard) CheckBeforeWrite() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if time.Since(g.lastCheck) > g.checkInterval {
		if err := g.refresh(); err != nil {
			g.logger.Warn("disk usage check failed", zap.Error(err))
		}
	}

	if g.isCircuitBroken {
		return errors.StorageUnavailable(
			fmt.Sprintf("disk usage at %.2f%%, circuit breaker engaged", g.cachedUsagePct), nil)
	}
	return nil
}

func (g *diskGuard) refresh() error {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(g.dataDir, &stat); err != nil {
		return fmt.Errorf("statfs %s: %w", g.dataDir, err)
	}

	total := stat.Blocks * uint64(stat.Bsize)
	available := stat.Bavail * uint64(stat.Bsize)
	used := total - available
	usagePct := 0.0
	if total > 0 {
		usagePct = (float64(used) / float64(total)) * 100.0
	}

	wasBroken := g.isCircuitBroken
	g.cachedUsagePct = usagePct
	g.lastCheck = time.Now()
	g.isCircuitBroken = usagePct >= g.threshold

	if g.isCircuitBroken && !wasBroken {
		g.logger.Error("disk circuit breaker engaged", zap.Float64("usage_percent", usagePct))
	} else if !g.isCircuitBroken && wasBroken {
		g.logger.Info("disk circuit breaker disengaged", zap.Float64("usage_percent", usagePct))
	}
	return nil
}
