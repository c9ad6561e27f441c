package service

import (
	"context"
	"errors"
	"time"

	"leadtrail/internal/metrics"
	"leadtrail/pkg/logger"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/concurrency"
	"go.uber.org/zap"
)

const retentionLockKey = "/leadtrail/locks/retention"

type Purger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

type RetentionConfig struct {
	Days      int
	Interval  time.Duration
	BatchSize int
}

// RetentionWorker deletes activity_logs rows older than the configured age.
// Replicas coordinate through an etcd mutex so one purges per tick.
type RetentionWorker struct {
	etcdClient *clientv3.Client
	purger     Purger
	cfg        RetentionConfig
}

func NewRetentionWorker(client *clientv3.Client, purger Purger, cfg RetentionConfig) *RetentionWorker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	return &RetentionWorker{etcdClient: client, purger: purger, cfg: cfg}
}

func (w *RetentionWorker) Enabled() bool { return w.cfg.Days > 0 }

func (w *RetentionWorker) Run(ctx context.Context) {
	if !w.Enabled() {
		logger.Info("activity log retention disabled")
		return
	}

	session, err := concurrency.NewSession(w.etcdClient, concurrency.WithTTL(10))
	if err != nil {
		logger.Error("failed to create etcd concurrency session", zap.Error(err))
		return
	}
	defer session.Close()

	mutex := concurrency.NewMutex(session, retentionLockKey)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	logger.Info("retention worker started",
		zap.Duration("interval", w.cfg.Interval),
		zap.Int("days", w.cfg.Days))

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			lockCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := mutex.TryLock(lockCtx)
			cancel()
			if err != nil {
				if errors.Is(err, concurrency.ErrLocked) {
					logger.Debug("retention skipped, another instance holds the lock")
				} else {
					logger.Error("failed to acquire retention lock", zap.Error(err))
				}
				continue
			}

			if _, err := w.Purge(ctx, now); err != nil {
				logger.Error("retention purge failed", zap.Error(err))
			}

			if err := mutex.Unlock(context.Background()); err != nil {
				logger.Warn("failed to release retention lock", zap.Error(err))
			}
		}
	}
}

// Purge removes expired rows in batches and returns the total removed.
func (w *RetentionWorker) Purge(ctx context.Context, now time.Time) (int64, error) {
	if !w.Enabled() {
		return 0, nil
	}
	cutoff := now.AddDate(0, 0, -w.cfg.Days)

	var total int64
	for {
		n, err := w.purger.PurgeBefore(ctx, cutoff, w.cfg.BatchSize)
		total += n
		metrics.AddPurged(n)
		if err != nil {
			return total, err
		}
		if n < int64(w.cfg.BatchSize) || ctx.Err() != nil {
			break
		}
	}
	if total > 0 {
		logger.Info("activity logs purged", zap.Int64("rows", total), zap.Time("cutoff", cutoff))
	}
	return total, nil
}
