package sweep

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler triggers sweeps on a fixed period. Runs are serialized in a
// single loop; a tick that arrives while the previous run is still
// recent is coalesced rather than queued, so the job never executes
// faster than its period. It makes no promise of exact timing.
type Scheduler struct {
	sweeper  *Sweeper
	interval time.Duration
	logger   *slog.Logger
}

const DefaultInterval = time.Hour

func NewScheduler(sweeper *Sweeper, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{sweeper: sweeper, interval: interval, logger: logger}
}

// Run sweeps once immediately, then on every period until the context
// is cancelled. A failed run is logged and retried on the next period;
// nothing was marked, so the same overdue set comes back.
func (s *Scheduler) Run(ctx context.Context) error {
	s.runOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	lastStart := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// A tick queued behind a long run would fire straight away;
			// drop it instead of running back to back.
			if time.Since(lastStart) < s.interval {
				continue
			}
			lastStart = time.Now()
			s.runOnce()
		}
	}
}

func (s *Scheduler) runOnce() {
	if err := s.sweeper.Run(time.Now()); err != nil {
		s.logger.Error("sweep run failed", "error", err)
	}
}
