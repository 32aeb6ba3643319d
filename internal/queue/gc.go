package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// purgeTimeout bounds a single sweep
const purgeTimeout = 2 * time.Minute

// GarbageCollector sweeps dead-lettered page analysis jobs on an interval so
// a broken page cannot pile up in the DLQ forever.
type GarbageCollector struct {
	purger    DLQPurger
	interval  time.Duration
	retention time.Duration
	logger    *zap.Logger
}

// NewGarbageCollector sweeps purger every interval, dropping jobs parked
// longer than retention. Both RabbitMQQueue and MemoryQueue are purgers.
func NewGarbageCollector(purger DLQPurger, interval, retention time.Duration, logger *zap.Logger) *GarbageCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GarbageCollector{
		purger:    purger,
		interval:  interval,
		retention: retention,
		logger:    logger,
	}
}

// Start sweeps until ctx is cancelled and returns ctx.Err()
func (gc *GarbageCollector) Start(ctx context.Context) error {
	ticker := time.NewTicker(gc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := gc.Sweep(ctx); err != nil {
				gc.logger.Warn("dlq_gc_failed", zap.Error(err))
			}
		}
	}
}

// Sweep runs one purge and returns how many jobs were dropped
func (gc *GarbageCollector) Sweep(ctx context.Context) (int, error) {
	if gc.purger == nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()

	purged, err := gc.purger.PurgeOlderThan(ctx, gc.retention)
	if err != nil {
		return 0, fmt.Errorf("purge dead letters: %w", err)
	}
	if purged > 0 {
		gc.logger.Info("dlq_gc_purged",
			zap.Int("purged", purged),
			zap.Duration("retention", gc.retention),
		)
	}
	return purged, nil
}
