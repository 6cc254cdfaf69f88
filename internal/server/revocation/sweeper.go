package revocation

import (
	"context"
	"time"

	"github.com/dmitrijs2005/secretvault/internal/logging"
)

// Sweeper periodically removes expired records from a Store. It only bounds
// storage growth; verification ignores expired records on its own.
type Sweeper struct {
	store    Store
	interval time.Duration
	logger   logging.Logger
	now      func() time.Time
}

func NewSweeper(store Store, interval time.Duration, logger logging.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		logger:   logger.With("module", "revocation-sweeper"),
		now:      time.Now,
	}
}

// Run blocks until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) {
	n, err := s.store.DeleteExpiredBefore(ctx, s.now())
	if err != nil {
		s.logger.Warn(ctx, "revocation sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Debug(ctx, "revocation sweep", "removed", n)
	}
}
