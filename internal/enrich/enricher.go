// Package enrich turns the raw facts of a click (client address and
// user-agent) into analytics attributes.
package enrich

import (
	"context"

	"github.com/sdarshil6/url-shortener/internal/domain"
)

type GeoLookup interface {
	Resolve(ctx context.Context, ip string) domain.GeoInfo
}

type Enricher struct {
	geo GeoLookup
}

func NewEnricher(geo GeoLookup) *Enricher {
	return &Enricher{geo: geo}
}

func (e *Enricher) ResolveGeo(ctx context.Context, ip string) domain.GeoInfo {
	if e.geo == nil {
		return domain.UnknownGeo()
	}
	return e.geo.Resolve(ctx, ip)
}

func (e *Enricher) ResolveDevice(userAgent string) domain.DeviceInfo {
	return ResolveDevice(userAgent)
}
