package services

import (
	"context"
	"time"

	"github.com/fsdevblog/shortkit/internal/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Period предопределенный период агрегации.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Range возвращает полуинтервал [from, to) для периода, отсчитанный от now.
func (p Period) Range(now time.Time) (time.Time, time.Time, error) {
	switch p {
	case PeriodDay:
		return now.AddDate(0, 0, -1), now, nil
	case PeriodWeek:
		return now.AddDate(0, 0, -7), now, nil
	case PeriodMonth:
		return now.AddDate(0, -1, 0), now, nil
	default:
		return time.Time{}, time.Time{}, errors.Wrapf(ErrValidation, "unknown period `%s`", p)
	}
}

// StatsService читатель агрегатов по событиям резолва. Только чтение.
//
// Счетчики best-effort: конвейер событий отдает доступность горячего пути в
// обмен на полноту аналитики, так что часть событий может быть потеряна.
// Это контракт API, а не дефект.
type StatsService struct {
	linkRepo  LinkRepository
	visitRepo VisitRepository
	logger    *logrus.Entry
}

func NewStatsService(linkRepo LinkRepository, visitRepo VisitRepository, logger *logrus.Logger) *StatsService {
	return &StatsService{
		linkRepo:  linkRepo,
		visitRepo: visitRepo,
		logger:    logger.WithField("module", "services/stats"),
	}
}

// StatsByCode агрегат по одному коду за предопределенный период.
// Код не обязан существовать в хранилище ссылок: после жесткого удаления
// события остаются и продолжают считаться под висячим кодом.
func (s *StatsService) StatsByCode(ctx context.Context, code string, period Period) (*models.VisitStats, error) {
	from, to, err := period.Range(time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return s.StatsByCodeRange(ctx, code, from, to)
}

// StatsByCodeRange агрегат по одному коду за произвольный интервал.
func (s *StatsService) StatsByCodeRange(ctx context.Context, code string, from, to time.Time) (*models.VisitStats, error) {
	if !to.After(from) {
		return nil, errors.Wrap(ErrValidation, "empty stats range")
	}
	stats, err := s.visitRepo.CountByCodes(ctx, []string{code}, from, to)
	if err != nil {
		return nil, convertRepoError(err)
	}
	return stats, nil
}

// StatsByOwner суммарный агрегат по всем кодам субъекта. Изоляция: запрашивать
// чужие агрегаты нельзя, личность вызывающего сверяется с владельцем до
// выполнения запроса.
func (s *StatsService) StatsByOwner(ctx context.Context, ownerUUID, callerUUID string, period Period) (*models.VisitStats, error) {
	from, to, err := period.Range(time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return s.StatsByOwnerRange(ctx, ownerUUID, callerUUID, from, to)
}

// StatsByOwnerRange то же, но за произвольный интервал.
func (s *StatsService) StatsByOwnerRange(ctx context.Context, ownerUUID, callerUUID string, from, to time.Time) (*models.VisitStats, error) {
	if ownerUUID == "" || ownerUUID != callerUUID {
		return nil, errors.Wrap(ErrPermissionDenied, "caller does not own the requested subject")
	}
	if !to.After(from) {
		return nil, errors.Wrap(ErrValidation, "empty stats range")
	}

	links, linksErr := s.linkRepo.GetAllByOwnerUUID(ctx, ownerUUID)
	if linksErr != nil {
		return nil, convertRepoError(linksErr)
	}
	codes := make([]string, len(links))
	for i, link := range links {
		codes[i] = link.Code
	}

	stats, err := s.visitRepo.CountByCodes(ctx, codes, from, to)
	if err != nil {
		return nil, convertRepoError(err)
	}
	return stats, nil
}
