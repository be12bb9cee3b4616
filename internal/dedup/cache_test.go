package dedup

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestCache_FirstClickIsNotDuplicate(t *testing.T) {
	cache := NewCache(5 * time.Second)

	assert.False(t, cache.IsDuplicate("1.2.3.4", "abc", t0))
	assert.Equal(t, 0, cache.Len())
}

func TestCache_WindowBoundaries(t *testing.T) {
	cache := NewCache(5 * time.Second)
	cache.Record("1.2.3.4", "abc", t0)

	tests := []struct {
		name  string
		at    time.Time
		isDup bool
	}{
		{"same instant", t0, true},
		{"inside window", t0.Add(2 * time.Second), true},
		{"just before window end", t0.Add(5*time.Second - time.Nanosecond), true},
		{"at window end", t0.Add(5 * time.Second), false},
		{"after window", t0.Add(10 * time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isDup, cache.IsDuplicate("1.2.3.4", "abc", tt.at))
		})
	}
}

func TestCache_KeyedByClientAndKey(t *testing.T) {
	cache := NewCache(5 * time.Second)
	cache.Record("1.2.3.4", "abc", t0)

	assert.False(t, cache.IsDuplicate("5.6.7.8", "abc", t0))
	assert.False(t, cache.IsDuplicate("1.2.3.4", "xyz", t0))
	assert.True(t, cache.IsDuplicate("1.2.3.4", "abc", t0))
}

func TestCache_RecordOverwrites(t *testing.T) {
	cache := NewCache(5 * time.Second)
	cache.Record("c", "k", t0)
	cache.Record("c", "k", t0.Add(10*time.Second))

	assert.Equal(t, 1, cache.Len())
	assert.True(t, cache.IsDuplicate("c", "k", t0.Add(12*time.Second)))
}

func TestCache_EvictOlderThan(t *testing.T) {
	cache := NewCache(time.Second)
	cache.Record("old", "k", t0)
	cache.Record("edge", "k", t0.Add(time.Minute))
	cache.Record("new", "k", t0.Add(2*time.Minute))

	removed := cache.EvictOlderThan(t0.Add(time.Minute))

	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, cache.Len())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := NewCache(time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client := fmt.Sprintf("client-%d", i%10)
			for j := 0; j < 100; j++ {
				if !cache.IsDuplicate(client, "k", t0) {
					cache.Record(client, "k", t0)
				}
			}
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 100; j++ {
			cache.EvictOlderThan(t0.Add(-time.Hour))
		}
	}()

	wg.Wait()
	assert.Equal(t, 10, cache.Len())
}
