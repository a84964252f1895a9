package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SweepableStore is a denylist that needs explicit purging of expired
// entries. The bolt backend implements it; redis expires keys on its own.
type SweepableStore interface {
	Sweep(reference time.Time) (int, error)
	Size() (int, error)
}

// SweeperConfig controls how often the denylist is purged.
type SweeperConfig struct {
	Interval time.Duration
}

// RevocationSweeper periodically drops denylist entries for tokens that
// have expired anyway.
type RevocationSweeper struct {
	store  SweepableStore
	logger *zap.Logger
	cron   *cron.Cron
	cfg    SweeperConfig
	now    func() time.Time
}

func NewRevocationSweeper(store SweepableStore, logger *zap.Logger, cfg SweeperConfig) *RevocationSweeper {
	if cfg.Interval < time.Second {
		cfg.Interval = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &RevocationSweeper{
		store:  store,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
		now:    time.Now,
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	if _, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.Sweep(); err != nil {
			s.logger.Error("revocation sweep failed", zap.Error(err))
		}
	}); err != nil {
		s.logger.Error("failed to schedule revocation sweep", zap.String("schedule", schedule), zap.Error(err))
	}

	return s
}

// Start launches the cron scheduler.
func (s *RevocationSweeper) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("revocation sweeper started", zap.Duration("interval", s.cfg.Interval))
}

// Stop waits for a running sweep to finish or ctx to expire.
func (s *RevocationSweeper) Stop(ctx context.Context) error {
	if s == nil || s.cron == nil {
		return nil
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	s.logger.Info("revocation sweeper stopped")
	return nil
}

// Sweep purges expired entries synchronously.
func (s *RevocationSweeper) Sweep() (int, error) {
	if s == nil || s.store == nil {
		return 0, nil
	}
	removed, err := s.store.Sweep(s.now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		remaining, _ := s.store.Size()
		s.logger.Info("revocation sweep completed", zap.Int("removed", removed), zap.Int("remaining", remaining))
	}
	return removed, nil
}
