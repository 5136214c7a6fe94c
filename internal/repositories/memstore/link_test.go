package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/shortkit/internal/db"
	"github.com/fsdevblog/shortkit/internal/models"
	"github.com/fsdevblog/shortkit/internal/repositories"
)

type LinkRepoSuite struct {
	suite.Suite
	repo *LinkRepo
}

func (s *LinkRepoSuite) SetupTest() {
	s.repo = NewLinkRepo(db.NewMemStorage())
}

func TestLinkRepoSuite(t *testing.T) {
	suite.Run(t, new(LinkRepoSuite))
}

func (s *LinkRepoSuite) newLink(code string) *models.Link {
	return &models.Link{
		Code:      code,
		TargetURL: "https://example.com/" + code,
		Status:    models.LinkStatusActive,
	}
}

func (s *LinkRepoSuite) TestCreateAndGet() {
	link := s.newLink("promo1")
	s.Require().NoError(s.repo.Create(context.Background(), link))
	s.NotZero(link.ID)
	s.False(link.CreatedAt.IsZero())

	got, err := s.repo.GetByCode(context.Background(), "promo1")
	s.Require().NoError(err)
	s.Equal(link.TargetURL, got.TargetURL)
	s.Equal(link.ID, got.ID)
}

func (s *LinkRepoSuite) TestCreate_duplicateCode() {
	s.Require().NoError(s.repo.Create(context.Background(), s.newLink("promo1")))

	err := s.repo.Create(context.Background(), s.newLink("promo1"))
	s.Require().ErrorIs(err, repositories.ErrDuplicateKey)
}

func (s *LinkRepoSuite) TestGetByCode_notFound() {
	_, err := s.repo.GetByCode(context.Background(), "ghost1")
	s.Require().ErrorIs(err, repositories.ErrNotFound)
}

func (s *LinkRepoSuite) TestUpdateStatus() {
	s.Require().NoError(s.repo.Create(context.Background(), s.newLink("promo1")))

	s.Require().NoError(s.repo.UpdateStatus(context.Background(), "promo1", models.LinkStatusInactive))
	got, err := s.repo.GetByCode(context.Background(), "promo1")
	s.Require().NoError(err)
	s.Equal(models.LinkStatusInactive, got.Status)

	s.Require().ErrorIs(
		s.repo.UpdateStatus(context.Background(), "ghost1", models.LinkStatusInactive),
		repositories.ErrNotFound,
	)
}

func (s *LinkRepoSuite) TestSetExpiration() {
	s.Require().NoError(s.repo.Create(context.Background(), s.newLink("promo1")))

	exp := time.Now().UTC().Add(time.Hour)
	s.Require().NoError(s.repo.SetExpiration(context.Background(), "promo1", &exp))

	got, err := s.repo.GetByCode(context.Background(), "promo1")
	s.Require().NoError(err)
	s.Require().NotNil(got.ExpiresAt)
	s.WithinDuration(exp, *got.ExpiresAt, time.Second)

	s.Require().NoError(s.repo.SetExpiration(context.Background(), "promo1", nil))
	got, err = s.repo.GetByCode(context.Background(), "promo1")
	s.Require().NoError(err)
	s.Nil(got.ExpiresAt)
}

func (s *LinkRepoSuite) TestDelete() {
	s.Require().NoError(s.repo.Create(context.Background(), s.newLink("promo1")))
	s.Require().NoError(s.repo.Delete(context.Background(), "promo1"))

	_, err := s.repo.GetByCode(context.Background(), "promo1")
	s.Require().ErrorIs(err, repositories.ErrNotFound)

	s.Require().ErrorIs(s.repo.Delete(context.Background(), "promo1"), repositories.ErrNotFound)
}

func (s *LinkRepoSuite) TestGetAllByOwnerUUID() {
	mine := s.newLink("mine01")
	mine.OwnerUUID = "owner-1"
	other := s.newLink("other1")
	other.OwnerUUID = "owner-2"
	anon := s.newLink("anon01")

	for _, l := range []*models.Link{mine, other, anon} {
		s.Require().NoError(s.repo.Create(context.Background(), l))
	}

	links, err := s.repo.GetAllByOwnerUUID(context.Background(), "owner-1")
	s.Require().NoError(err)
	s.Require().Len(links, 1)
	s.Equal("mine01", links[0].Code)

	// Пустой владелец не матчит анонимные записи.
	links, err = s.repo.GetAllByOwnerUUID(context.Background(), "")
	s.Require().NoError(err)
	s.Empty(links)
}

func (s *LinkRepoSuite) TestFindExpiringBefore() {
	now := time.Now().UTC()
	soon := now.Add(30 * time.Minute)
	far := now.Add(72 * time.Hour)

	expiring := s.newLink("soon01")
	expiring.ExpiresAt = &soon
	distant := s.newLink("far001")
	distant.ExpiresAt = &far
	inactive := s.newLink("sleep1")
	inactive.ExpiresAt = &soon
	inactive.Status = models.LinkStatusInactive
	forever := s.newLink("never1")

	for _, l := range []*models.Link{expiring, distant, inactive, forever} {
		s.Require().NoError(s.repo.Create(context.Background(), l))
	}

	links, err := s.repo.FindExpiringBefore(context.Background(), now.Add(time.Hour))
	s.Require().NoError(err)
	s.Require().Len(links, 1)
	s.Equal("soon01", links[0].Code)
}
