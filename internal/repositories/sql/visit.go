package sql

import (
	"context"
	"time"

	"github.com/fsdevblog/shortkit/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type VisitRepo struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewVisitRepo(db *gorm.DB, logger *logrus.Logger) *VisitRepo {
	return &VisitRepo{
		db:     db,
		logger: logger.WithField("module", "repository/sql/visit"),
	}
}

// CreateBatch вставляет пачку событий одним запросом. Таблица append-only,
// конфликтовать тут нечему.
func (v *VisitRepo) CreateBatch(ctx context.Context, visits []models.Visit) error {
	if len(visits) == 0 {
		return nil
	}
	if err := v.db.WithContext(ctx).Create(&visits).Error; err != nil {
		v.logger.WithError(err).Errorf("failed to create batch of %d visits", len(visits))
		return convertErrorType(err)
	}
	return nil
}

// CountByCodes считает события по кодам за период, с разбивкой по исходу.
func (v *VisitRepo) CountByCodes(ctx context.Context, codes []string, from, to time.Time) (*models.VisitStats, error) {
	stats := models.VisitStats{From: from, To: to}
	if len(codes) == 0 {
		return &stats, nil
	}

	base := func() *gorm.DB {
		return v.db.WithContext(ctx).
			Model(&models.Visit{}).
			Where("code IN ?", codes).
			Where("occurred_at >= ? AND occurred_at < ?", from, to)
	}

	if err := base().Count(&stats.Total).Error; err != nil {
		v.logger.WithError(err).Error("failed to count visits")
		return nil, convertErrorType(err)
	}
	if err := base().Where("outcome = ?", models.VisitOutcomeServed).Count(&stats.Served).Error; err != nil {
		v.logger.WithError(err).Error("failed to count served visits")
		return nil, convertErrorType(err)
	}
	stats.Blocked = stats.Total - stats.Served

	return &stats, nil
}

// DeleteOlderThan удаляет события старше отметки. Возвращает число удаленных
// строк — оно уходит в аудит-лог вызывающего слоя.
func (v *VisitRepo) DeleteOlderThan(ctx context.Context, t time.Time) (int64, error) {
	res := v.db.WithContext(ctx).Where("occurred_at < ?", t).Delete(&models.Visit{})
	if res.Error != nil {
		v.logger.WithError(res.Error).Error("failed to delete old visits")
		return 0, convertErrorType(res.Error)
	}
	return res.RowsAffected, nil
}
