package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sdarshil6/url-shortener/internal/domain"
	"github.com/sdarshil6/url-shortener/internal/redirect"
)

type MockRedirector struct {
	mock.Mock
}

func (m *MockRedirector) Handle(ctx context.Context, req redirect.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockLinkManager struct {
	mock.Mock
}

func (m *MockLinkManager) Create(ctx context.Context, user *domain.User, req *domain.CreateLinkRequest) (*domain.LinkInfo, error) {
	args := m.Called(ctx, user, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LinkInfo), args.Error(1)
}

func (m *MockLinkManager) Get(ctx context.Context, user *domain.User, secret string) (*domain.LinkInfo, error) {
	args := m.Called(ctx, user, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LinkInfo), args.Error(1)
}

func (m *MockLinkManager) Update(ctx context.Context, user *domain.User, secret string, req *domain.UpdateLinkRequest) (*domain.LinkInfo, error) {
	args := m.Called(ctx, user, secret, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LinkInfo), args.Error(1)
}

func (m *MockLinkManager) Deactivate(ctx context.Context, user *domain.User, secret string) error {
	args := m.Called(ctx, user, secret)
	return args.Error(0)
}

func (m *MockLinkManager) List(ctx context.Context, user *domain.User, filter domain.LinkFilter, page, pageSize int) (*domain.LinkList, error) {
	args := m.Called(ctx, user, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LinkList), args.Error(1)
}

func (m *MockLinkManager) Analytics(ctx context.Context, user *domain.User, secret string, days int) (*domain.LinkAnalytics, error) {
	args := m.Called(ctx, user, secret, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LinkAnalytics), args.Error(1)
}

func (m *MockLinkManager) ClickHistory(ctx context.Context, user *domain.User, secret string, page, pageSize int) (*domain.ClickHistory, error) {
	args := m.Called(ctx, user, secret, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClickHistory), args.Error(1)
}

func (m *MockLinkManager) QRCode(ctx context.Context, user *domain.User, secret, level string, size int) ([]byte, error) {
	args := m.Called(ctx, user, secret, level, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAccountService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.Token, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Token), args.Error(1)
}

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
