package dedup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Sweeper is the part of Cache the janitor needs.
type Sweeper interface {
	EvictOlderThan(cutoff time.Time) int
	Len() int
}

// Janitor periodically evicts cache entries older than the retention age so
// one-time visitors do not grow the cache without bound.
type Janitor struct {
	cache     Sweeper
	interval  time.Duration
	retention time.Duration
	log       *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewJanitor(cache Sweeper, interval, retention time.Duration, log *slog.Logger) *Janitor {
	return &Janitor{
		cache:     cache,
		interval:  interval,
		retention: retention,
		log:       log,
		now:       time.Now,
	}
}

// Run sweeps once per interval until ctx is cancelled. A sweep that panics is
// logged and the loop keeps going.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.log.Info("Cache janitor started",
		"interval", j.interval,
		"retention", j.retention,
	)

	for {
		select {
		case <-ctx.Done():
			j.log.Info("Cache janitor stopped")
			return
		case <-ticker.C:
			if _, err := j.Sweep(); err != nil {
				j.log.Error("Cache sweep failed", "error", err)
			}
		}
	}
}

// Sweep evicts stale entries once and returns the number removed.
func (j *Janitor) Sweep() (removed int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sweep panicked: %v", r)
		}
	}()

	cutoff := j.now().Add(-j.retention)
	removed = j.cache.EvictOlderThan(cutoff)

	j.log.Info("Cache sweep finished",
		"removed", removed,
		"size", j.cache.Len(),
	)

	return removed, nil
}

// Start runs the janitor on its own goroutine.
func (j *Janitor) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.done != nil {
		return
	}

	ctx, j.cancel = context.WithCancel(ctx)
	j.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		j.Run(ctx)
	}(j.done)
}

var ErrStopTimeout = errors.New("janitor did not stop within grace period")

// Stop signals the janitor and waits up to grace for the current sweep to
// finish.
func (j *Janitor) Stop(grace time.Duration) error {
	j.mu.Lock()
	cancel, done := j.cancel, j.done
	j.cancel, j.done = nil, nil
	j.mu.Unlock()

	if done == nil {
		return nil
	}

	cancel()

	select {
	case <-done:
		return nil
	case <-time.After(grace):
		return ErrStopTimeout
	}
}
