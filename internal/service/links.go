package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sdarshil6/url-shortener/internal/domain"
	"github.com/sdarshil6/url-shortener/internal/plans"
	"github.com/sdarshil6/url-shortener/pkg/qrcode"
)

const (
	quotaPeriod       = 30 * 24 * time.Hour
	defaultStatsDays  = 30
	topValuesLimit    = 10
	topReferrersLimit = 5
)

type LinkRepository interface {
	LinkCreator
	GetBySecret(ctx context.Context, secret string) (*domain.Link, error)
	Deactivate(ctx context.Context, secret string) error
	UpdateTarget(ctx context.Context, secret, targetURL string) (*domain.Link, error)
	ListByOwner(ctx context.Context, ownerID int64, filter domain.LinkFilter, page, pageSize int) ([]domain.Link, int64, error)
	CountCreatedSince(ctx context.Context, ownerID int64, since time.Time, customOnly bool) (int64, error)
}

type AnalyticsRepository interface {
	GetSummary(ctx context.Context, linkID int64) (*domain.LinkAnalytics, error)
	GetClicksByDate(ctx context.Context, linkID int64, days int) ([]domain.ClicksByDate, error)
	GetTopValues(ctx context.Context, linkID int64, dim domain.Dimension, limit int) ([]domain.CountByLabel, error)
	GetDeviceStats(ctx context.Context, linkID int64) (*domain.DeviceStats, error)
	GetClickHistory(ctx context.Context, linkID int64, page, pageSize int) (*domain.ClickHistory, error)
}

// CacheInvalidator drops a cached link after it changes.
type CacheInvalidator interface {
	Delete(ctx context.Context, key string) error
}

type LinkService struct {
	links     LinkRepository
	analytics AnalyticsRepository
	cache     CacheInvalidator
	keys      *KeyGenerator
	baseURL   string
	log       *slog.Logger
	now       func() time.Time
}

// NewLinkService wires the service. cache may be nil.
func NewLinkService(links LinkRepository, analytics AnalyticsRepository, cache CacheInvalidator, baseURL string, log *slog.Logger) *LinkService {
	return &LinkService{
		links:     links,
		analytics: analytics,
		cache:     cache,
		keys:      NewKeyGenerator(links),
		baseURL:   strings.TrimRight(baseURL, "/"),
		log:       log,
		now:       time.Now,
	}
}

func (s *LinkService) Create(ctx context.Context, user *domain.User, req *domain.CreateLinkRequest) (*domain.LinkInfo, error) {
	plan := plans.Lookup(user.Plan)
	now := s.now()

	if req.ExpiresAt != nil {
		if !plan.Allows(plans.SetExpiration) {
			return nil, fmt.Errorf("setting an expiration: %w", domain.ErrForbidden)
		}
		if !req.ExpiresAt.After(now) {
			return nil, domain.ErrInvalidExpiration
		}
	}

	if err := s.checkQuota(ctx, user.ID, plan, now, req.CustomKey != ""); err != nil {
		return nil, err
	}

	link := &domain.Link{
		TargetURL: req.TargetURL,
		OwnerID:   user.ID,
		ExpiresAt: req.ExpiresAt,
	}

	if err := s.keys.Insert(ctx, link, req.CustomKey); err != nil {
		return nil, err
	}

	s.log.Info("link created", "key", link.Key, "owner_id", user.ID, "custom", link.IsCustom)
	return s.info(link), nil
}

// checkQuota counts links created over the trailing quota period.
func (s *LinkService) checkQuota(ctx context.Context, ownerID int64, plan plans.Plan, now time.Time, custom bool) error {
	since := now.Add(-quotaPeriod)

	used, err := s.links.CountCreatedSince(ctx, ownerID, since, false)
	if err != nil {
		return fmt.Errorf("failed to count links: %w", err)
	}
	if !plan.WithinLimit(plans.Links, used) {
		return fmt.Errorf("%s: %w", plans.Links, domain.ErrQuotaExceeded)
	}

	if !custom {
		return nil
	}

	usedCustom, err := s.links.CountCreatedSince(ctx, ownerID, since, true)
	if err != nil {
		return fmt.Errorf("failed to count custom links: %w", err)
	}
	if !plan.WithinLimit(plans.CustomLinks, usedCustom) {
		return fmt.Errorf("%s: %w", plans.CustomLinks, domain.ErrQuotaExceeded)
	}

	return nil
}

func (s *LinkService) Get(ctx context.Context, user *domain.User, secret string) (*domain.LinkInfo, error) {
	link, err := s.owned(ctx, user, secret)
	if err != nil {
		return nil, err
	}
	return s.info(link), nil
}

func (s *LinkService) Update(ctx context.Context, user *domain.User, secret string, req *domain.UpdateLinkRequest) (*domain.LinkInfo, error) {
	if !plans.Lookup(user.Plan).Allows(plans.EditLinks) {
		return nil, fmt.Errorf("editing links: %w", domain.ErrForbidden)
	}

	if _, err := s.owned(ctx, user, secret); err != nil {
		return nil, err
	}

	link, err := s.links.UpdateTarget(ctx, secret, req.TargetURL)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, link.Key)
	return s.info(link), nil
}

// Deactivate hides the link from redirects. It is never hard-deleted.
func (s *LinkService) Deactivate(ctx context.Context, user *domain.User, secret string) error {
	link, err := s.owned(ctx, user, secret)
	if err != nil {
		return err
	}

	if err := s.links.Deactivate(ctx, secret); err != nil {
		return err
	}

	s.invalidate(ctx, link.Key)
	s.log.Info("link deactivated", "key", link.Key, "owner_id", user.ID)
	return nil
}

func (s *LinkService) List(ctx context.Context, user *domain.User, filter domain.LinkFilter, page, pageSize int) (*domain.LinkList, error) {
	links, total, err := s.links.ListByOwner(ctx, user.ID, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	items := make([]domain.LinkInfo, 0, len(links))
	for i := range links {
		items = append(items, s.summary(&links[i]))
	}

	return &domain.LinkList{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pageCount(total, pageSize),
	}, nil
}

// Analytics returns totals for every plan and the breakdowns the owner's
// plan unlocks.
func (s *LinkService) Analytics(ctx context.Context, user *domain.User, secret string, days int) (*domain.LinkAnalytics, error) {
	link, err := s.owned(ctx, user, secret)
	if err != nil {
		return nil, err
	}

	result, err := s.analytics.GetSummary(ctx, link.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load analytics: %w", err)
	}

	plan := plans.Lookup(user.Plan)
	if !plan.Allows(plans.AdvancedAnalytics) {
		return result, nil
	}

	if days <= 0 {
		days = defaultStatsDays
	}

	if result.ClicksByDate, err = s.analytics.GetClicksByDate(ctx, link.ID, days); err != nil {
		return nil, fmt.Errorf("failed to load clicks by date: %w", err)
	}
	if result.TopReferrers, err = s.analytics.GetTopValues(ctx, link.ID, domain.DimensionReferrer, topReferrersLimit); err != nil {
		return nil, fmt.Errorf("failed to load referrers: %w", err)
	}
	if result.Countries, err = s.analytics.GetTopValues(ctx, link.ID, domain.DimensionCountry, topValuesLimit); err != nil {
		return nil, fmt.Errorf("failed to load countries: %w", err)
	}

	if plan.Allows(plans.DetailedGeo) {
		if result.Cities, err = s.analytics.GetTopValues(ctx, link.ID, domain.DimensionCity, topValuesLimit); err != nil {
			return nil, fmt.Errorf("failed to load cities: %w", err)
		}
	}

	if plan.Allows(plans.DeviceTracking) {
		if result.Browsers, err = s.analytics.GetTopValues(ctx, link.ID, domain.DimensionBrowser, topValuesLimit); err != nil {
			return nil, fmt.Errorf("failed to load browsers: %w", err)
		}
		if result.OperatingSys, err = s.analytics.GetTopValues(ctx, link.ID, domain.DimensionOS, topValuesLimit); err != nil {
			return nil, fmt.Errorf("failed to load operating systems: %w", err)
		}
		if result.DeviceStats, err = s.analytics.GetDeviceStats(ctx, link.ID); err != nil {
			return nil, fmt.Errorf("failed to load device stats: %w", err)
		}
	}

	return result, nil
}

func (s *LinkService) ClickHistory(ctx context.Context, user *domain.User, secret string, page, pageSize int) (*domain.ClickHistory, error) {
	if !plans.Lookup(user.Plan).Allows(plans.AdvancedAnalytics) {
		return nil, fmt.Errorf("click history: %w", domain.ErrForbidden)
	}

	link, err := s.owned(ctx, user, secret)
	if err != nil {
		return nil, err
	}

	return s.analytics.GetClickHistory(ctx, link.ID, page, pageSize)
}

// QRCode renders the short URL of an owned link as a PNG.
func (s *LinkService) QRCode(ctx context.Context, user *domain.User, secret, level string, size int) ([]byte, error) {
	link, err := s.owned(ctx, user, secret)
	if err != nil {
		return nil, err
	}

	lvl, err := qrcode.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if size == 0 {
		size = qrcode.DefaultSize
	}

	png, err := qrcode.PNG(s.ShortURL(link.Key), lvl, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return png, nil
}

// ShortURL is the public redirect address for key.
func (s *LinkService) ShortURL(key string) string {
	return s.baseURL + "/" + key
}

// owned loads the active link for secret. Links owned by someone else are
// reported as not found.
func (s *LinkService) owned(ctx context.Context, user *domain.User, secret string) (*domain.Link, error) {
	link, err := s.links.GetBySecret(ctx, secret)
	if err != nil {
		return nil, err
	}
	if link.OwnerID != user.ID {
		return nil, domain.ErrNotFound
	}
	return link, nil
}

func (s *LinkService) invalidate(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.Warn("failed to invalidate cached link", "key", key, "error", err)
	}
}

func (s *LinkService) summary(link *domain.Link) domain.LinkInfo {
	return domain.LinkInfo{
		Link:     *link,
		URL:      s.ShortURL(link.Key),
		AdminURL: s.baseURL + "/admin/" + link.SecretKey,
	}
}

// info is summary plus an inline QR code.
func (s *LinkService) info(link *domain.Link) *domain.LinkInfo {
	info := s.summary(link)

	qr, err := qrcode.DataURI(info.URL)
	if err != nil {
		s.log.Warn("failed to render QR code", "key", link.Key, "error", err)
	} else {
		info.QRCode = qr
	}

	return &info
}

func pageCount(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
