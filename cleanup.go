package goTokens

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/MrEthical07/goTokens/session"
)

// Janitor periodically removes persisted sessions whose refresh token has
// expired. Liveness entries carry Redis TTLs and expire on their own, so the
// sweep only touches the persistent store.
type Janitor struct {
	sessions session.Store
	interval time.Duration
	logger   *zap.Logger
	metrics  *Metrics
}

// NewJanitor builds a sweeper. A non-positive interval falls back to hourly.
func NewJanitor(store session.Store, interval time.Duration, logger *zap.Logger, metrics *Metrics) *Janitor {
	if interval <= 0 {
		interval = defaultCleanupInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Janitor{
		sessions: store,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run sweeps on a ticker until ctx is done. Sweep failures are logged and
// the loop keeps going; a transient store outage must not kill the janitor.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := j.SweepOnce(ctx); err != nil {
				j.logger.Warn("expired session sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepOnce removes all sessions expired as of now and returns how many were
// dropped. Exposed for tests and external schedulers.
func (j *Janitor) SweepOnce(ctx context.Context) (int64, error) {
	removed, err := j.sessions.DeleteAllExpiredBefore(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		j.metrics.Add(MetricSessionsSwept, uint64(removed))
		j.logger.Info("expired sessions swept", zap.Int64("removed", removed))
	}
	return removed, nil
}
