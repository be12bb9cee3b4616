// Package redirect resolves short keys to their targets and records
// deduplicated, enriched clicks along the way.
package redirect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sdarshil6/url-shortener/internal/domain"
	"github.com/sdarshil6/url-shortener/internal/logger"
)

type LinkStore interface {
	GetByKey(ctx context.Context, key string) (*domain.Link, error)
	Deactivate(ctx context.Context, secret string) error
}

type ClickRecorder interface {
	IncrementClickAndRecord(ctx context.Context, click *domain.ClickEvent) error
}

// LinkCache is a read-through cache in front of LinkStore. Get reports a
// miss with ok == false and a nil error.
type LinkCache interface {
	Get(ctx context.Context, key string) (link *domain.Link, ok bool, err error)
	Set(ctx context.Context, link *domain.Link, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Enricher interface {
	ResolveGeo(ctx context.Context, ip string) domain.GeoInfo
	ResolveDevice(userAgent string) domain.DeviceInfo
}

type DedupCache interface {
	IsDuplicate(clientID, key string, now time.Time) bool
	Record(clientID, key string, now time.Time)
}

type Request struct {
	Key       string
	ClientIP  string
	UserAgent string
	Referrer  string
}

type Config struct {
	// Async moves enrichment and persistence off the request path.
	Async          bool
	PersistTimeout time.Duration
	LinkCacheTTL   time.Duration
}

type Pipeline struct {
	links    LinkStore
	clicks   ClickRecorder
	cache    LinkCache
	dedup    DedupCache
	enricher Enricher
	cfg      Config
	log      *slog.Logger
	now      func() time.Time

	inflight sync.WaitGroup
}

// NewPipeline wires the pipeline. cache may be nil; a nil log falls back
// to the process logger.
func NewPipeline(links LinkStore, clicks ClickRecorder, cache LinkCache, dedup DedupCache, enricher Enricher, cfg Config, log *slog.Logger) *Pipeline {
	if log == nil {
		log = logger.Get()
	}
	return &Pipeline{
		links:    links,
		clicks:   clicks,
		cache:    cache,
		dedup:    dedup,
		enricher: enricher,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Handle returns the target URL for req.Key, or domain.ErrNotFound when the
// key is absent, inactive or expired. Click recording failures are logged
// and never change the result.
func (p *Pipeline) Handle(ctx context.Context, req Request) (string, error) {
	now := p.now()

	link, err := p.resolve(ctx, req.Key)
	if err != nil {
		return "", err
	}

	if link.IsExpired(now) {
		p.expire(ctx, link)
		return "", domain.ErrNotFound
	}

	if p.dedup.IsDuplicate(req.ClientIP, link.Key, now) {
		p.logFor(ctx).Debug("duplicate click suppressed", "key", link.Key, "client_ip", req.ClientIP)
		return link.TargetURL, nil
	}

	click := &domain.ClickEvent{
		LinkID:    link.ID,
		ClickedAt: now,
		IPAddress: req.ClientIP,
		UserAgent: req.UserAgent,
		Referrer:  req.Referrer,
	}

	if !p.cfg.Async {
		if err := p.record(ctx, click); err == nil {
			p.dedup.Record(req.ClientIP, link.Key, now)
		}
		return link.TargetURL, nil
	}

	// The timestamp is taken before the goroutine starts so a rapid
	// second request is already treated as a duplicate.
	p.dedup.Record(req.ClientIP, link.Key, now)

	detached := logger.Detach(ctx)
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				p.logFor(detached).Error("click recording panicked", "key", link.Key, "panic", r)
			}
		}()
		_ = p.record(detached, click)
	}()

	return link.TargetURL, nil
}

// Wait blocks until every in-flight asynchronous click recording finished
// or ctx is done.
func (p *Pipeline) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) resolve(ctx context.Context, key string) (*domain.Link, error) {
	log := p.logFor(ctx)

	if p.cache != nil {
		link, ok, err := p.cache.Get(ctx, key)
		if err != nil {
			log.Warn("link cache read failed", "key", key, "error", err)
		} else if ok && link.IsActive {
			return link, nil
		}
	}

	link, err := p.links.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve link: %w", err)
	}
	if !link.IsActive {
		return nil, domain.ErrNotFound
	}

	if p.cache != nil {
		if ttl := p.cacheTTL(link); ttl > 0 {
			if err := p.cache.Set(ctx, link, ttl); err != nil {
				log.Warn("link cache write failed", "key", key, "error", err)
			}
		}
	}

	return link, nil
}

// cacheTTL keeps a cached link from outliving its expiration.
func (p *Pipeline) cacheTTL(link *domain.Link) time.Duration {
	ttl := p.cfg.LinkCacheTTL
	if link.ExpiresAt != nil {
		if untilExpiry := link.ExpiresAt.Sub(p.now()); untilExpiry < ttl {
			ttl = untilExpiry
		}
	}
	return ttl
}

func (p *Pipeline) expire(ctx context.Context, link *domain.Link) {
	log := p.logFor(ctx)

	if err := p.links.Deactivate(ctx, link.SecretKey); err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Error("failed to deactivate expired link", "key", link.Key, "error", err)
	} else {
		log.Info("expired link deactivated", "key", link.Key)
	}

	if p.cache != nil {
		if err := p.cache.Delete(ctx, link.Key); err != nil {
			log.Warn("link cache delete failed", "key", link.Key, "error", err)
		}
	}
}

// record enriches the click and persists it with the counter increment.
func (p *Pipeline) record(ctx context.Context, click *domain.ClickEvent) error {
	if p.cfg.PersistTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.PersistTimeout)
		defer cancel()
	}

	if click.UserAgent == "" {
		click.UserAgent = domain.Unknown
	}
	if click.Referrer == "" {
		click.Referrer = domain.DirectReferrer
	}

	geo := p.enricher.ResolveGeo(ctx, click.IPAddress)
	device := p.enricher.ResolveDevice(click.UserAgent)

	click.Country, click.Region, click.City = geo.Country, geo.Region, geo.City
	click.Browser, click.OS, click.Device = device.Browser, device.OS, device.Device

	if err := p.clicks.IncrementClickAndRecord(ctx, click); err != nil {
		p.logFor(ctx).Error("failed to record click", "link_id", click.LinkID, "error", err)
		return err
	}

	return nil
}

// logFor tags the pipeline's logger with the request id carried by ctx,
// which survives logger.Detach into the recording goroutine.
func (p *Pipeline) logFor(ctx context.Context) *slog.Logger {
	if reqID := logger.RequestIDFromContext(ctx); reqID != "" {
		return p.log.With(slog.String("request_id", reqID))
	}
	return p.log
}
