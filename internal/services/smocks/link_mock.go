package smocks

import (
	"context"
	"time"

	"github.com/fsdevblog/shortkit/internal/models"
	"github.com/stretchr/testify/mock"
)

type LinkRepoMock struct {
	mock.Mock
}

func (l *LinkRepoMock) Create(ctx context.Context, link *models.Link) error {
	args := l.Called(ctx, link)
	return args.Error(0) //nolint:wrapcheck,errcheck
}

func (l *LinkRepoMock) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	args := l.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

func (l *LinkRepoMock) UpdateStatus(ctx context.Context, code string, status models.LinkStatus) error {
	args := l.Called(ctx, code, status)
	return args.Error(0) //nolint:wrapcheck,errcheck
}

func (l *LinkRepoMock) SetExpiration(ctx context.Context, code string, expiresAt *time.Time) error {
	args := l.Called(ctx, code, expiresAt)
	return args.Error(0) //nolint:wrapcheck,errcheck
}

func (l *LinkRepoMock) Delete(ctx context.Context, code string) error {
	args := l.Called(ctx, code)
	return args.Error(0) //nolint:wrapcheck,errcheck
}

func (l *LinkRepoMock) GetAllByOwnerUUID(ctx context.Context, ownerUUID string) ([]models.Link, error) {
	args := l.Called(ctx, ownerUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).([]models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

func (l *LinkRepoMock) FindExpiringBefore(ctx context.Context, t time.Time) ([]models.Link, error) {
	args := l.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).([]models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}
