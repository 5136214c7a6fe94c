package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/fsdevblog/shortkit/internal/db"
	"github.com/fsdevblog/shortkit/internal/db/memory"
	"github.com/fsdevblog/shortkit/internal/models"
	"github.com/pkg/errors"
)

// LinkRepo репозиторий ссылок в памяти. Ключ хранилища — короткий код, так что
// уникальность кода обеспечивает само хранилище (memory.Set без перезаписи).
type LinkRepo struct {
	s      *db.MemoryStorage
	nextID uint
	mu     sync.Mutex
}

func NewLinkRepo(store *db.MemoryStorage) *LinkRepo {
	return &LinkRepo{
		s: store,
	}
}

func (l *LinkRepo) Create(ctx context.Context, link *models.Link) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	link.ID = l.nextID
	now := time.Now().UTC()
	link.CreatedAt = now
	link.UpdatedAt = now
	if link.Status == "" {
		link.Status = models.LinkStatusActive
	}

	if err := memory.Set[models.Link](ctx, link.Code, link, l.s.Links); err != nil {
		l.nextID--
		return errors.Wrapf(convertErrorType(err), "failed to create record with code %s", link.Code)
	}
	return nil
}

func (l *LinkRepo) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	link, err := memory.Get[models.Link](ctx, code, l.s.Links)
	if err != nil {
		return nil, errors.Wrapf(convertErrorType(err), "failed to get record by code %s", code)
	}
	return link, nil
}

func (l *LinkRepo) UpdateStatus(ctx context.Context, code string, status models.LinkStatus) error {
	return l.update(ctx, code, func(link *models.Link) {
		link.Status = status
	})
}

func (l *LinkRepo) SetExpiration(ctx context.Context, code string, expiresAt *time.Time) error {
	return l.update(ctx, code, func(link *models.Link) {
		link.ExpiresAt = expiresAt
	})
}

func (l *LinkRepo) Delete(ctx context.Context, code string) error {
	if err := memory.Delete(ctx, code, l.s.Links); err != nil {
		return errors.Wrapf(convertErrorType(err), "failed to delete record by code %s", code)
	}
	return nil
}

func (l *LinkRepo) GetAllByOwnerUUID(ctx context.Context, ownerUUID string) ([]models.Link, error) {
	links, err := memory.FilterAll[models.Link](ctx, l.s.Links, func(val models.Link) bool {
		return val.OwnerUUID != "" && val.OwnerUUID == ownerUUID
	})
	if err != nil {
		return nil, errors.Wrapf(convertErrorType(err), "failed to get records by owner %s", ownerUUID)
	}
	return links, nil
}

func (l *LinkRepo) FindExpiringBefore(ctx context.Context, t time.Time) ([]models.Link, error) {
	links, err := memory.FilterAll[models.Link](ctx, l.s.Links, func(val models.Link) bool {
		return val.Status == models.LinkStatusActive && val.ExpiresAt != nil && !val.ExpiresAt.After(t)
	})
	if err != nil {
		return nil, errors.Wrap(convertErrorType(err), "failed to get expiring records")
	}
	return links, nil
}

// update читает запись и перезаписывает её под общей блокировкой.
func (l *LinkRepo) update(ctx context.Context, code string, fn func(*models.Link)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	link, err := memory.Get[models.Link](ctx, code, l.s.Links)
	if err != nil {
		return errors.Wrapf(convertErrorType(err), "failed to get record by code %s", code)
	}
	fn(link)
	link.UpdatedAt = time.Now().UTC()

	if setErr := memory.Set[models.Link](ctx, code, link, l.s.Links, memory.WithOverwrite()); setErr != nil {
		return errors.Wrapf(convertErrorType(setErr), "failed to update record by code %s", code)
	}
	return nil
}
