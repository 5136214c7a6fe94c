package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/shortkit/internal/db"
	"github.com/fsdevblog/shortkit/internal/models"
	"github.com/fsdevblog/shortkit/internal/repositories"
	"github.com/fsdevblog/shortkit/internal/repositories/memstore"
	"github.com/fsdevblog/shortkit/internal/services/smocks"
)

// recordingSubmitter собирает поданные события; accept управляет ответом
// Submit, имитируя переполненный буфер конвейера.
type recordingSubmitter struct {
	mu     sync.Mutex
	visits []models.Visit
	accept bool
}

func (r *recordingSubmitter) Submit(visit models.Visit) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.accept {
		return false
	}
	r.visits = append(r.visits, visit)
	return true
}

func (r *recordingSubmitter) all() []models.Visit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Visit(nil), r.visits...)
}

type ResolverSuite struct {
	suite.Suite
	linkRepo  *memstore.LinkRepo
	service   *LinkService
	submitter *recordingSubmitter
	resolver  *Resolver
}

func (s *ResolverSuite) SetupTest() {
	store := db.NewMemStorage()
	s.linkRepo = memstore.NewLinkRepo(store)
	s.service = NewLinkService(s.linkRepo, memstore.NewVisitRepo(store), logrus.New())
	s.submitter = &recordingSubmitter{accept: true}
	s.resolver = NewResolver(s.linkRepo, s.submitter, logrus.New())
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

// Полный жизненный цикл одного кода глазами резолвера.
func (s *ResolverSuite) TestResolve_lifecycle() {
	ctx := context.Background()
	_, err := s.service.Create(ctx, CreateLinkArgs{
		TargetURL:  "https://example.com/promo",
		CustomCode: "promo1",
	})
	s.Require().NoError(err)

	meta := RequestMeta{ClientIP: "10.0.0.1", UserAgent: "curl/8.0", Referrer: "https://news.example"}

	link, resErr := s.resolver.Resolve(ctx, "promo1", meta)
	s.Require().NoError(resErr)
	s.Equal("https://example.com/promo", link.TargetURL)

	s.Require().NoError(s.service.Deactivate(ctx, "promo1"))
	_, resErr = s.resolver.Resolve(ctx, "promo1", meta)
	s.Require().ErrorIs(resErr, ErrGone)

	s.Require().NoError(s.service.Reactivate(ctx, "promo1"))
	_, resErr = s.resolver.Resolve(ctx, "promo1", meta)
	s.Require().NoError(resErr)

	visits := s.submitter.all()
	s.Require().Len(visits, 3)
	s.Equal(models.VisitOutcomeServed, visits[0].Outcome)
	s.Equal(models.VisitOutcomeBlocked, visits[1].Outcome)
	s.Equal(models.VisitOutcomeServed, visits[2].Outcome)
	s.Equal("10.0.0.1", visits[0].ClientIP)
	s.Equal("curl/8.0", visits[0].UserAgent)
}

func (s *ResolverSuite) TestResolve_expiredBeatsStatus() {
	ctx := context.Background()
	past := time.Now().UTC().Add(-time.Minute)
	_, err := s.service.Create(ctx, CreateLinkArgs{
		TargetURL:  "https://example.com/old-promo",
		CustomCode: "promo1",
		ExpiresAt:  &past,
	})
	s.Require().NoError(err)

	// Статус активен, но срок истек: Gone, событие помечено блокировкой.
	_, resErr := s.resolver.Resolve(ctx, "promo1", RequestMeta{})
	s.Require().ErrorIs(resErr, ErrGone)

	visits := s.submitter.all()
	s.Require().Len(visits, 1)
	s.Equal(models.VisitOutcomeBlocked, visits[0].Outcome)
}

func (s *ResolverSuite) TestResolve_notFoundNoEvent() {
	_, err := s.resolver.Resolve(context.Background(), "ghost1", RequestMeta{})
	s.Require().ErrorIs(err, ErrRecordNotFound)
	s.Empty(s.submitter.all())
}

func (s *ResolverSuite) TestResolve_invalidCode() {
	_, err := s.resolver.Resolve(context.Background(), "a!", RequestMeta{})
	s.Require().ErrorIs(err, ErrValidation)
	s.Empty(s.submitter.all())
}

func (s *ResolverSuite) TestResolve_fullPipelineDoesNotFail() {
	ctx := context.Background()
	_, err := s.service.Create(ctx, CreateLinkArgs{
		TargetURL:  "https://example.com/promo",
		CustomCode: "promo1",
	})
	s.Require().NoError(err)

	// Конвейер отбрасывает все подряд — ответ резолвера от этого не страдает.
	s.submitter.accept = false
	link, resErr := s.resolver.Resolve(ctx, "promo1", RequestMeta{})
	s.Require().NoError(resErr)
	s.Equal("https://example.com/promo", link.TargetURL)
}

func (s *ResolverSuite) TestResolve_transientStorage() {
	linkRepoMock := new(smocks.LinkRepoMock)
	linkRepoMock.On("GetByCode", mock.Anything, "promo1").Return(nil, repositories.ErrUnknown)
	resolver := NewResolver(linkRepoMock, s.submitter, logrus.New())

	_, err := resolver.Resolve(context.Background(), "promo1", RequestMeta{})
	s.Require().ErrorIs(err, ErrTransient)
	// Повторы чтения в рамках бюджета, событий нет.
	linkRepoMock.AssertNumberOfCalls(s.T(), "GetByCode", resolveMaxAttempts)
	s.Empty(s.submitter.all())
}

func (s *ResolverSuite) TestResolve_timeoutNoRetry() {
	linkRepoMock := new(smocks.LinkRepoMock)
	linkRepoMock.On("GetByCode", mock.Anything, "promo1").Return(nil, repositories.ErrTimeout)
	resolver := NewResolver(linkRepoMock, s.submitter, logrus.New())

	_, err := resolver.Resolve(context.Background(), "promo1", RequestMeta{})
	s.Require().ErrorIs(err, ErrTransient)
	linkRepoMock.AssertNumberOfCalls(s.T(), "GetByCode", 1)
}
