package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdarshil6/url-shortener/internal/domain"
	"github.com/sdarshil6/url-shortener/internal/logger"
)

const publicIP = "8.8.8.8"

type geoFixture struct {
	resolver *GeoResolver
	hits     *atomic.Int32
	sleeps   []time.Duration
}

func newGeoFixture(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, hit int32), cfg GeoConfig) *geoFixture {
	t.Helper()

	f := &geoFixture{hits: &atomic.Int32{}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(w, r, f.hits.Add(1))
	}))
	t.Cleanup(server.Close)

	cfg.BaseURL = server.URL
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}

	resolver, err := NewGeoResolver(cfg, server.Client(), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(resolver.Close)

	resolver.newBackOff = func() backoff.BackOff { return backoff.NewConstantBackOff(10 * time.Millisecond) }
	resolver.sleep = func(ctx context.Context, d time.Duration) error {
		f.sleeps = append(f.sleeps, d)
		return nil
	}

	f.resolver = resolver
	return f
}

func writeSuccess(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"success","country":"United States","regionName":"California","city":"Mountain View"}`))
}

func TestResolve_Success(t *testing.T) {
	f := newGeoFixture(t, func(w http.ResponseWriter, r *http.Request, _ int32) {
		assert.Equal(t, "/json/"+publicIP, r.URL.Path)
		writeSuccess(w)
	}, GeoConfig{})

	geo := f.resolver.Resolve(context.Background(), publicIP)

	assert.Equal(t, domain.GeoInfo{Country: "United States", Region: "California", City: "Mountain View"}, geo)
	assert.Equal(t, int32(1), f.hits.Load())
}

func TestResolve_LocalAddressesSkipNetwork(t *testing.T) {
	f := newGeoFixture(t, func(w http.ResponseWriter, _ *http.Request, _ int32) {
		writeSuccess(w)
	}, GeoConfig{})

	for _, ip := range []string{"127.0.0.1", "192.168.1.20", "10.0.0.5", "172.16.4.4", "::1"} {
		assert.Equal(t, domain.LocalGeo(), f.resolver.Resolve(context.Background(), ip), ip)
	}
	assert.Equal(t, int32(0), f.hits.Load())
}

func TestResolve_InvalidAddress(t *testing.T) {
	f := newGeoFixture(t, func(w http.ResponseWriter, _ *http.Request, _ int32) {
		writeSuccess(w)
	}, GeoConfig{})

	assert.Equal(t, domain.UnknownGeo(), f.resolver.Resolve(context.Background(), "not-an-ip"))
	assert.Equal(t, int32(0), f.hits.Load())
}

func TestResolve_FailStatus(t *testing.T) {
	f := newGeoFixture(t, func(w http.ResponseWriter, _ *http.Request, _ int32) {
		_, _ = w.Write([]byte(`{"status":"fail","message":"reserved range"}`))
	}, GeoConfig{MaxRetries: 2})

	assert.Equal(t, domain.UnknownGeo(), f.resolver.Resolve(context.Background(), publicIP))
	assert.Equal(t, int32(1), f.hits.Load())
}

func TestResolve_MissingFieldsBecomeUnknown(t *testing.T) {
	f := newGeoFixture(t, func(w http.ResponseWriter, _ *http.Request, _ int32) {
		_, _ = w.Write([]byte(`{"status":"success","country":"Iceland"}`))
	}, GeoConfig{})

	geo := f.resolver.Resolve(context.Background(), publicIP)

	assert.Equal(t, domain.GeoInfo{Country: "Iceland", Region: domain.Unknown, City: domain.Unknown}, geo)
}

func TestResolve_RateLimitedShortWaitRetriesOnce(t *testing.T) {
	f := newGeoFixture(t, func(w http.ResponseWriter, _ *http.Request, hit int32) {
		if hit == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeSuccess(w)
	}, GeoConfig{MaxRetryAfter: 5 * time.Second})

	geo := f.resolver.Resolve(context.Background(), publicIP)

	assert.Equal(t, "United States", geo.Country)
	assert.Equal(t, int32(2), f.hits.Load())
	assert.Equal(t, []time.Duration{time.Second}, f.sleeps)
}

func TestResolve_RateLimitedTwiceGivesUp(t *testing.T) {
	f := newGeoFixture(t, func(w http.ResponseWriter, _ *http.Request, _ int32) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}, GeoConfig{MaxRetries: 3, MaxRetryAfter: 5 * time.Second})

	assert.Equal(t, domain.UnknownGeo(), f.resolver.Resolve(context.Background(), publicIP))
	assert.Equal(t, int32(2), f.hits.Load())
}

func TestResolve_RateLimitedLongWaitGivesUp(t *testing.T) {
	f := newGeoFixture(t, func(w http.ResponseWriter, _ *http.Request, _ int32) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}, GeoConfig{MaxRetryAfter: 5 * time.Second})

	assert.Equal(t, domain.UnknownGeo(), f.resolver.Resolve(context.Background(), publicIP))
	assert.Equal(t, int32(1), f.hits.Load())
	assert.Empty(t, f.sleeps)
}

func TestResolve_RateLimitedWithoutRetryAfterGivesUp(t *testing.T) {
	f := newGeoFixture(t, func(w http.ResponseWriter, _ *http.Request, hit int32) {
		if hit == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeSuccess(w)
	}, GeoConfig{MaxRetryAfter: 5 * time.Second})

	assert.Equal(t, domain.UnknownGeo(), f.resolver.Resolve(context.Background(), publicIP))
	assert.Equal(t, int32(1), f.hits.Load())
	assert.Empty(t, f.sleeps)
}

func TestResolve_RateLimitedUnparseableRetryAfterGivesUp(t *testing.T) {
	f := newGeoFixture(t, func(w http.ResponseWriter, _ *http.Request, hit int32) {
		if hit == 1 {
			w.Header().Set("Retry-After", "soon")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeSuccess(w)
	}, GeoConfig{MaxRetryAfter: 5 * time.Second})

	assert.Equal(t, domain.UnknownGeo(), f.resolver.Resolve(context.Background(), publicIP))
	assert.Equal(t, int32(1), f.hits.Load())
}

func TestResolve_RequestsOnlyNeededFields(t *testing.T) {
	var path, fields string
	f := newGeoFixture(t, func(w http.ResponseWriter, r *http.Request, _ int32) {
		path, fields = r.URL.Path, r.URL.Query().Get("fields")
		writeSuccess(w)
	}, GeoConfig{})

	f.resolver.Resolve(context.Background(), publicIP)

	assert.Equal(t, "/json/"+publicIP, path)
	assert.Equal(t, "status,message,country,regionName,city", fields)
}

func TestResolve_ServerErrorRetriesWithBackoff(t *testing.T) {
	f := newGeoFixture(t, func(w http.ResponseWriter, _ *http.Request, hit int32) {
		if hit < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeSuccess(w)
	}, GeoConfig{MaxRetries: 2})

	geo := f.resolver.Resolve(context.Background(), publicIP)

	assert.Equal(t, "United States", geo.Country)
	assert.Equal(t, int32(3), f.hits.Load())
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 10 * time.Millisecond}, f.sleeps)
}

func TestResolve_ServerErrorExhaustsRetries(t *testing.T) {
	f := newGeoFixture(t, func(w http.ResponseWriter, _ *http.Request, _ int32) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, GeoConfig{MaxRetries: 2})

	assert.Equal(t, domain.UnknownGeo(), f.resolver.Resolve(context.Background(), publicIP))
	assert.Equal(t, int32(3), f.hits.Load())
}

func TestResolve_TimeoutReturnsDefaultsWithoutRetry(t *testing.T) {
	f := newGeoFixture(t, func(w http.ResponseWriter, r *http.Request, _ int32) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, GeoConfig{Timeout: 50 * time.Millisecond, MaxRetries: 2})

	start := time.Now()
	geo := f.resolver.Resolve(context.Background(), publicIP)

	assert.Equal(t, domain.UnknownGeo(), geo)
	assert.Equal(t, int32(1), f.hits.Load())
	assert.Less(t, time.Since(start), time.Second)
}

func TestResolve_CachesSuccessfulLookups(t *testing.T) {
	f := newGeoFixture(t, func(w http.ResponseWriter, _ *http.Request, _ int32) {
		writeSuccess(w)
	}, GeoConfig{CacheTTL: time.Minute, CacheMaxItems: 100})

	first := f.resolver.Resolve(context.Background(), publicIP)
	f.resolver.cache.Wait()
	second := f.resolver.Resolve(context.Background(), publicIP)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), f.hits.Load())
}

func TestParseRetryAfter(t *testing.T) {
	h := http.Header{}
	_, ok := parseRetryAfter(h)
	assert.False(t, ok)

	h.Set("X-Ttl", "7")
	wait, ok := parseRetryAfter(h)
	assert.True(t, ok)
	assert.Equal(t, 7*time.Second, wait)

	h.Set("Retry-After", "3")
	wait, _ = parseRetryAfter(h)
	assert.Equal(t, 3*time.Second, wait)

	h.Set("Retry-After", "soon")
	wait, _ = parseRetryAfter(h)
	assert.Equal(t, 7*time.Second, wait)

	h.Del("X-Ttl")
	_, ok = parseRetryAfter(h)
	assert.False(t, ok)

	h.Set("Retry-After", "0")
	wait, ok = parseRetryAfter(h)
	assert.True(t, ok)
	assert.Zero(t, wait)
}

func TestEnricher_NilGeoLookup(t *testing.T) {
	e := NewEnricher(nil)

	assert.Equal(t, domain.UnknownGeo(), e.ResolveGeo(context.Background(), publicIP))
	assert.Equal(t, domain.UnknownDevice(), e.ResolveDevice(""))
}
