package services

import (
	"context"
	"time"

	"github.com/fsdevblog/shortkit/internal/models"
)

// LinkRepository описывает хранилище ссылок.
//
// Чтение всегда согласовано с последней зафиксированной записью: никакого
// кеширования на этом уровне нет. Уникальность кода обязан держать сам бекенд
// (уникальный индекс или эквивалент), а не вызывающий код.
type LinkRepository interface {
	// Create создает запись. Занятый код (в любом статусе) — repositories.ErrDuplicateKey.
	Create(ctx context.Context, link *models.Link) error
	// GetByCode находит запись по короткому коду.
	GetByCode(ctx context.Context, code string) (*models.Link, error)
	// UpdateStatus выставляет статус записи.
	UpdateStatus(ctx context.Context, code string, status models.LinkStatus) error
	// SetExpiration выставляет (или снимает, при nil) срок истечения.
	SetExpiration(ctx context.Context, code string, expiresAt *time.Time) error
	// Delete физически удаляет запись. Зависимые события не трогает.
	Delete(ctx context.Context, code string) error
	// GetAllByOwnerUUID возвращает записи, принадлежащие субъекту.
	GetAllByOwnerUUID(ctx context.Context, ownerUUID string) ([]models.Link, error)
	// FindExpiringBefore возвращает активные записи, истекающие до указанного момента.
	FindExpiringBefore(ctx context.Context, t time.Time) ([]models.Link, error)
}

// VisitRepository описывает append-only хранилище событий резолва.
type VisitRepository interface {
	// CreateBatch вставляет пачку событий.
	CreateBatch(ctx context.Context, visits []models.Visit) error
	// CountByCodes агрегирует события по кодам за полуинтервал [from, to).
	CountByCodes(ctx context.Context, codes []string, from, to time.Time) (*models.VisitStats, error)
	// DeleteOlderThan удаляет события старше отметки, возвращает число удаленных.
	DeleteOlderThan(ctx context.Context, t time.Time) (int64, error)
}

// VisitSubmitter неблокирующий прием событий. false — событие отброшено;
// вызывающий может только залогировать этот факт, ждать ему нельзя.
type VisitSubmitter interface {
	Submit(visit models.Visit) bool
}
