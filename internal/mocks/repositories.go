package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sdarshil6/url-shortener/internal/domain"
)

type MockLinkRepository struct {
	mock.Mock
}

func (m *MockLinkRepository) Create(ctx context.Context, link *domain.Link) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockLinkRepository) KeyExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockLinkRepository) GetBySecret(ctx context.Context, secret string) (*domain.Link, error) {
	args := m.Called(ctx, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockLinkRepository) Deactivate(ctx context.Context, secret string) error {
	args := m.Called(ctx, secret)
	return args.Error(0)
}

func (m *MockLinkRepository) UpdateTarget(ctx context.Context, secret, targetURL string) (*domain.Link, error) {
	args := m.Called(ctx, secret, targetURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockLinkRepository) ListByOwner(ctx context.Context, ownerID int64, filter domain.LinkFilter, page, pageSize int) ([]domain.Link, int64, error) {
	args := m.Called(ctx, ownerID, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Link), args.Get(1).(int64), args.Error(2)
}

func (m *MockLinkRepository) CountCreatedSince(ctx context.Context, ownerID int64, since time.Time, customOnly bool) (int64, error) {
	args := m.Called(ctx, ownerID, since, customOnly)
	return args.Get(0).(int64), args.Error(1)
}

type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) GetSummary(ctx context.Context, linkID int64) (*domain.LinkAnalytics, error) {
	args := m.Called(ctx, linkID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LinkAnalytics), args.Error(1)
}

func (m *MockAnalyticsRepository) GetClicksByDate(ctx context.Context, linkID int64, days int) ([]domain.ClicksByDate, error) {
	args := m.Called(ctx, linkID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ClicksByDate), args.Error(1)
}

func (m *MockAnalyticsRepository) GetTopValues(ctx context.Context, linkID int64, dim domain.Dimension, limit int) ([]domain.CountByLabel, error) {
	args := m.Called(ctx, linkID, dim, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CountByLabel), args.Error(1)
}

func (m *MockAnalyticsRepository) GetDeviceStats(ctx context.Context, linkID int64) (*domain.DeviceStats, error) {
	args := m.Called(ctx, linkID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeviceStats), args.Error(1)
}

func (m *MockAnalyticsRepository) GetClickHistory(ctx context.Context, linkID int64, page, pageSize int) (*domain.ClickHistory, error) {
	args := m.Called(ctx, linkID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClickHistory), args.Error(1)
}

type MockCacheInvalidator struct {
	mock.Mock
}

func (m *MockCacheInvalidator) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
