package dedup

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sdarshil6/url-shortener/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJanitor_SweepRetentionBoundary(t *testing.T) {
	window := 5 * time.Second
	retention := 10 * window
	now := t0.Add(time.Hour)

	cache := NewCache(window)
	cache.Record("a", "stale", now.Add(-retention-time.Second))
	cache.Record("b", "stale", now.Add(-2*retention))
	cache.Record("c", "fresh", now.Add(-retention+time.Second))
	cache.Record("d", "fresh", now)

	janitor := NewJanitor(cache, time.Hour, retention, logger.Discard())
	janitor.now = func() time.Time { return now }

	removed, err := janitor.Sweep()

	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 2, cache.Len())
	assert.True(t, cache.IsDuplicate("d", "fresh", now))
}

type panickySweeper struct {
	calls atomic.Int32
}

func (p *panickySweeper) EvictOlderThan(time.Time) int {
	if p.calls.Add(1) == 1 {
		panic("boom")
	}
	return 0
}

func (p *panickySweeper) Len() int { return 0 }

func TestJanitor_SweepRecoversFromPanic(t *testing.T) {
	janitor := NewJanitor(&panickySweeper{}, time.Hour, time.Minute, logger.Discard())

	_, err := janitor.Sweep()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	_, err = janitor.Sweep()
	assert.NoError(t, err)
}

func TestJanitor_RunKeepsGoingAfterFailure(t *testing.T) {
	sweeper := &panickySweeper{}
	janitor := NewJanitor(sweeper, 10*time.Millisecond, time.Minute, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		janitor.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not exit after cancellation")
	}
}

func TestJanitor_StartStop(t *testing.T) {
	cache := NewCache(time.Millisecond)
	cache.Record("c", "k", time.Now().Add(-time.Hour))

	janitor := NewJanitor(cache, 5*time.Millisecond, 10*time.Millisecond, logger.Discard())
	janitor.Start(context.Background())
	janitor.Start(context.Background())

	assert.Eventually(t, func() bool { return cache.Len() == 0 }, time.Second, 5*time.Millisecond)

	assert.NoError(t, janitor.Stop(time.Second))
	assert.NoError(t, janitor.Stop(time.Second))
}
