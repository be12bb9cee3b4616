package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/ristretto"

	"github.com/sdarshil6/url-shortener/internal/domain"
)

type GeoConfig struct {
	BaseURL       string
	Timeout       time.Duration
	MaxRetries    int
	MaxRetryAfter time.Duration
	CacheTTL      time.Duration
	CacheMaxItems int64
}

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeFailed
	outcomeTimeout
	outcomeRateLimited
	outcomeRetryable
)

type lookupResult struct {
	geo        domain.GeoInfo
	outcome    outcome
	retryAfter time.Duration
	waitKnown  bool
	err        error
}

const ipAPIFields = "status,message,country,regionName,city"

type ipAPIResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Country    string `json:"country"`
	RegionName string `json:"regionName"`
	City       string `json:"city"`
}

// GeoResolver maps client addresses to a coarse location using an ip-api
// compatible HTTP service. Every failure path degrades to UnknownGeo.
type GeoResolver struct {
	client        *http.Client
	baseURL       string
	timeout       time.Duration
	maxRetries    int
	maxRetryAfter time.Duration
	cache         *ristretto.Cache
	cacheTTL      time.Duration
	log           *slog.Logger

	newBackOff func() backoff.BackOff
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewGeoResolver(cfg GeoConfig, client *http.Client, log *slog.Logger) (*GeoResolver, error) {
	if client == nil {
		client = &http.Client{}
	}

	g := &GeoResolver{
		client:        client,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		timeout:       cfg.Timeout,
		maxRetries:    cfg.MaxRetries,
		maxRetryAfter: cfg.MaxRetryAfter,
		cacheTTL:      cfg.CacheTTL,
		log:           log,
		newBackOff:    defaultBackOff,
		sleep:         sleepContext,
	}

	if cfg.CacheMaxItems > 0 && cfg.CacheTTL > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: cfg.CacheMaxItems * 10,
			MaxCost:     cfg.CacheMaxItems,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create geo cache: %w", err)
		}
		g.cache = cache
	}

	return g, nil
}

func (g *GeoResolver) Close() {
	if g.cache != nil {
		g.cache.Close()
	}
}

// Resolve never returns an error. Private and loopback addresses map to
// LocalGeo without a network call.
func (g *GeoResolver) Resolve(ctx context.Context, ip string) domain.GeoInfo {
	addr := net.ParseIP(strings.TrimSpace(ip))
	if addr == nil {
		return domain.UnknownGeo()
	}
	if isLocal(addr) {
		return domain.LocalGeo()
	}

	key := addr.String()
	if cached, ok := g.cached(key); ok {
		return cached
	}

	bo := g.newBackOff()
	rateLimitRetried := false

	for attempt := 0; attempt <= g.maxRetries; {
		res := g.lookup(ctx, key, g.timeout*time.Duration(attempt+1))

		switch res.outcome {
		case outcomeSuccess:
			g.store(key, res.geo)
			return res.geo

		case outcomeRateLimited:
			if rateLimitRetried || !res.waitKnown || res.retryAfter > g.maxRetryAfter {
				g.log.Warn("geo lookup rate limited", "ip", key, "retry_after", res.retryAfter)
				return domain.UnknownGeo()
			}
			rateLimitRetried = true
			if err := g.sleep(ctx, res.retryAfter); err != nil {
				return domain.UnknownGeo()
			}
			continue

		case outcomeRetryable:
			attempt++
			delay := bo.NextBackOff()
			if attempt > g.maxRetries || delay == backoff.Stop {
				g.log.Warn("geo lookup retries exhausted", "ip", key, "attempts", attempt, "error", res.err)
				return domain.UnknownGeo()
			}
			g.log.Debug("retrying geo lookup", "ip", key, "attempt", attempt, "delay", delay, "error", res.err)
			if err := g.sleep(ctx, delay); err != nil {
				return domain.UnknownGeo()
			}
			continue

		case outcomeTimeout:
			g.log.Warn("geo lookup timed out", "ip", key)
			return domain.UnknownGeo()

		default:
			g.log.Warn("geo lookup failed", "ip", key, "error", res.err)
			return domain.UnknownGeo()
		}
	}

	return domain.UnknownGeo()
}

func (g *GeoResolver) lookup(ctx context.Context, ip string, timeout time.Duration) lookupResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/json/%s?fields=%s", g.baseURL, url.PathEscape(ip), ipAPIFields)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return lookupResult{outcome: outcomeFailed, err: err}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return lookupResult{outcome: outcomeTimeout, err: err}
		}
		if errors.Is(err, context.Canceled) {
			return lookupResult{outcome: outcomeFailed, err: err}
		}
		return lookupResult{outcome: outcomeRetryable, err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		wait, known := parseRetryAfter(resp.Header)
		return lookupResult{
			outcome:    outcomeRateLimited,
			retryAfter: wait,
			waitKnown:  known,
			err:        errors.New("rate limited"),
		}
	case resp.StatusCode >= http.StatusInternalServerError:
		return lookupResult{outcome: outcomeRetryable, err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return lookupResult{outcome: outcomeFailed, err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var body ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if isTimeout(err) {
			return lookupResult{outcome: outcomeTimeout, err: err}
		}
		return lookupResult{outcome: outcomeFailed, err: fmt.Errorf("decode response: %w", err)}
	}

	if body.Status != "success" {
		return lookupResult{outcome: outcomeFailed, err: fmt.Errorf("lookup status %q: %s", body.Status, body.Message)}
	}

	return lookupResult{
		outcome: outcomeSuccess,
		geo: domain.GeoInfo{
			Country: orUnknown(body.Country),
			Region:  orUnknown(body.RegionName),
			City:    orUnknown(body.City),
		},
	}
}

func (g *GeoResolver) cached(ip string) (domain.GeoInfo, bool) {
	if g.cache == nil {
		return domain.GeoInfo{}, false
	}
	v, ok := g.cache.Get(ip)
	if !ok {
		return domain.GeoInfo{}, false
	}
	geo, ok := v.(domain.GeoInfo)
	return geo, ok
}

func (g *GeoResolver) store(ip string, geo domain.GeoInfo) {
	if g.cache == nil {
		return
	}
	g.cache.SetWithTTL(ip, geo, 1, g.cacheTTL)
}

func isLocal(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// parseRetryAfter reads Retry-After as seconds or an HTTP date, falling
// back to ip-api's X-Ttl header. ok is false when neither header holds a
// usable value.
func parseRetryAfter(h http.Header) (wait time.Duration, ok bool) {
	for _, name := range []string{"Retry-After", "X-Ttl"} {
		v := strings.TrimSpace(h.Get(name))
		if v == "" {
			continue
		}
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second, true
		}
		if at, err := http.ParseTime(v); err == nil {
			return max(time.Until(at), 0), true
		}
	}
	return 0, false
}

func defaultBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
