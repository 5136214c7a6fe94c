package sql

import (
	"context"
	"time"

	"github.com/fsdevblog/shortkit/internal/models"
	"github.com/fsdevblog/shortkit/internal/repositories"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type LinkRepo struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewLinkRepo(db *gorm.DB, logger *logrus.Logger) *LinkRepo {
	return &LinkRepo{
		db:     db,
		logger: logger.WithField("module", "repository/sql/link"),
	}
}

// Create вставляет новую запись. Уникальность кода держит уникальный индекс:
// при гонке двух аллокаторов за один код проигравший получает ErrDuplicateKey.
func (l *LinkRepo) Create(ctx context.Context, link *models.Link) error {
	if err := l.db.WithContext(ctx).Create(link).Error; err != nil {
		convErr := convertErrorType(err)
		if !errors.Is(convErr, repositories.ErrDuplicateKey) {
			l.logger.WithError(err).Errorf("failed to create record %+v", *link)
		}
		return convErr
	}
	return nil
}

func (l *LinkRepo) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	var link models.Link
	if err := l.db.WithContext(ctx).Where("code = ?", code).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		l.logger.WithError(err).Errorf("failed to get record by code %s", code)
		return nil, convertErrorType(err)
	}
	return &link, nil
}

// UpdateStatus выставляет статус записи. Повторная установка того же статуса не
// ошибка: нам важно итоговое состояние, а не факт изменения строки.
func (l *LinkRepo) UpdateStatus(ctx context.Context, code string, status models.LinkStatus) error {
	res := l.db.WithContext(ctx).
		Model(&models.Link{}).
		Where("code = ?", code).
		Update("status", status)
	if res.Error != nil {
		l.logger.WithError(res.Error).Errorf("failed to update status for code %s", code)
		return convertErrorType(res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (l *LinkRepo) SetExpiration(ctx context.Context, code string, expiresAt *time.Time) error {
	res := l.db.WithContext(ctx).
		Model(&models.Link{}).
		Where("code = ?", code).
		Update("expires_at", expiresAt)
	if res.Error != nil {
		l.logger.WithError(res.Error).Errorf("failed to set expiration for code %s", code)
		return convertErrorType(res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Delete физически удаляет запись. События остаются со слабой ссылкой на код,
// каскада по ним нет намеренно.
func (l *LinkRepo) Delete(ctx context.Context, code string) error {
	res := l.db.WithContext(ctx).Where("code = ?", code).Delete(&models.Link{})
	if res.Error != nil {
		l.logger.WithError(res.Error).Errorf("failed to delete record by code %s", code)
		return convertErrorType(res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (l *LinkRepo) GetAllByOwnerUUID(ctx context.Context, ownerUUID string) ([]models.Link, error) {
	var links []models.Link
	if err := l.db.WithContext(ctx).
		Where("owner_uuid = ?", ownerUUID).
		Order("id").
		Find(&links).Error; err != nil {
		l.logger.WithError(err).Errorf("failed to get records by owner %s", ownerUUID)
		return nil, convertErrorType(err)
	}
	return links, nil
}

// FindExpiringBefore возвращает активные записи, истекающие до указанного момента.
func (l *LinkRepo) FindExpiringBefore(ctx context.Context, t time.Time) ([]models.Link, error) {
	var links []models.Link
	if err := l.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", models.LinkStatusActive, t).
		Order("expires_at").
		Find(&links).Error; err != nil {
		l.logger.WithError(err).Error("failed to get expiring records")
		return nil, convertErrorType(err)
	}
	return links, nil
}
