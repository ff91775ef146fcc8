package signaling

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Janitor periodically deletes rooms that have been empty for longer than
// the grace period.
type Janitor struct {
	rooms    *Registry
	grace    time.Duration
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time

	// sweeping admits a single in-flight sweep.
	sweeping sync.Mutex
}

// NewJanitor creates a Janitor that sweeps rooms every interval.
func NewJanitor(rooms *Registry, grace, interval time.Duration, log *slog.Logger) *Janitor {
	return &Janitor{
		rooms:    rooms,
		grace:    grace,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Run sweeps on every tick until ctx is canceled.
func (j *Janitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.log.Info("Starting room janitor", "interval", j.interval, "grace", j.grace)
	for {
		select {
		case <-ctx.Done():
			j.log.Debug("Stopping room janitor")
			return ctx.Err()
		case <-ticker.C:
			j.Sweep()
		}
	}
}

// Sweep removes stale rooms once. It returns the removed room IDs, or nil
// without sweeping when another sweep is still running.
func (j *Janitor) Sweep() []string {
	if !j.sweeping.TryLock() {
		j.log.Warn("Previous sweep still running, skipping")
		return nil
	}
	defer j.sweeping.Unlock()

	removed := j.rooms.SweepStale(j.grace, j.now())
	if len(removed) > 0 {
		j.log.Info("Removed stale rooms", "count", len(removed), "rooms", removed)
	}
	return removed
}
