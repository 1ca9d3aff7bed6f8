package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"filesharing-api/internal/application/ports"
)

// Sweeper periodically reaps expired groups. It is the safety net behind the
// event-driven notifier (per-message TTLs only dead-letter at the queue head
// and deliveries can be lost), and the sole strategy in sweep-only mode.
type Sweeper struct {
	shares   ports.ShareService
	interval time.Duration
	logger   *zap.Logger
}

func NewSweeper(shares ports.ShareService, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		shares:   shares,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled. An overlapping run against the event
// path is harmless: Reap is idempotent and holds no locks.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("starting sweeper", zap.Duration("interval", s.interval))

	defer func() {
		s.logger.Info("sweeper gracefully stopped")
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// once on startup to catch groups that expired while we were down
	s.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	reaped, err := s.shares.Sweep(ctx)
	if err != nil {
		s.logger.Error("sweep cycle failed", zap.Error(err))
		return
	}
	if reaped > 0 {
		s.logger.Info("sweep cycle complete", zap.Int("reaped", reaped))
	}
}
