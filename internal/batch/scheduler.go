package batch

import (
	"context"
	"log/slog"
	"time"
)

// cycleHour is the hour of day (local time) the monthly cycle fires at.
const cycleHour = 3

// CycleRunner runs one full batch cycle. Satisfied by *Runner.
type CycleRunner interface {
	RunCycle(ctx context.Context) (CycleStats, error)
}

// Scheduler triggers a batch cycle at 03:00 on the first day of every month.
// The timing lives entirely here; the Runner itself is clock-free and can be
// invoked directly (tests, the manual cycle endpoint).
type Scheduler struct {
	runner CycleRunner
	now    func() time.Time
	logger *slog.Logger
}

// NewScheduler creates a Scheduler for the given runner.
func NewScheduler(runner CycleRunner) *Scheduler {
	return &Scheduler{
		runner: runner,
		now:    time.Now,
		logger: slog.Default(),
	}
}

// Run blocks until ctx is cancelled, firing one cycle per calendar month.
// A failed cycle is logged and the scheduler waits for the next month; there
// is no mid-run cancellation beyond ctx, and a cycle interrupted by process
// shutdown simply leaves its already-written snapshots in place.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := nextCycleTime(s.now())
		s.logger.Info("scheduler: next cycle planned", "at", next)

		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		stats, err := s.runner.RunCycle(ctx)
		if err != nil {
			s.logger.Error("scheduler: cycle failed", "error", err)
			continue
		}
		s.logger.Info("scheduler: cycle finished",
			"processed", stats.Processed, "saved", stats.Saved, "skipped", stats.Skipped)
	}
}

// nextCycleTime returns the first "1st of month, 03:00" strictly after t,
// in t's location.
func nextCycleTime(t time.Time) time.Time {
	year, month, _ := t.Date()
	candidate := time.Date(year, month, 1, cycleHour, 0, 0, 0, t.Location())
	if !candidate.After(t) {
		candidate = candidate.AddDate(0, 1, 0)
	}
	return candidate
}
