package smocks

import (
	"context"
	"time"

	"github.com/fsdevblog/shortkit/internal/models"
	"github.com/stretchr/testify/mock"
)

type VisitRepoMock struct {
	mock.Mock
}

func (v *VisitRepoMock) CreateBatch(ctx context.Context, visits []models.Visit) error {
	args := v.Called(ctx, visits)
	return args.Error(0) //nolint:wrapcheck,errcheck
}

func (v *VisitRepoMock) CountByCodes(ctx context.Context, codes []string, from, to time.Time) (*models.VisitStats, error) {
	args := v.Called(ctx, codes, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*models.VisitStats), args.Error(1) //nolint:wrapcheck,errcheck
}

func (v *VisitRepoMock) DeleteOlderThan(ctx context.Context, t time.Time) (int64, error) {
	args := v.Called(ctx, t)
	return args.Get(0).(int64), args.Error(1) //nolint:wrapcheck,errcheck
}
