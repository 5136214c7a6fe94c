package services

import (
	"context"
	"time"

	"github.com/fsdevblog/shortkit/internal/models"
	"github.com/fsdevblog/shortkit/internal/repositories"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// resolveMaxAttempts бюджет внутренних повторов чтения при неизвестной ошибке
// хранилища. Исчерпали — отдаем ErrTransient, клиенту можно повторить.
const resolveMaxAttempts = 3

// RequestMeta метаданные запроса на резолв. Best-effort: ничего кроме наличия
// не проверяем, пишем как есть.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referrer  string
}

// Resolver горячий путь: код -> целевой адрес. Синхронно делает только
// чтение и проверку жизненного цикла; событие уходит в конвейер после принятия
// решения и ни при каких обстоятельствах не влияет ни на латентность, ни на
// результат ответа.
type Resolver struct {
	linkRepo LinkRepository
	visits   VisitSubmitter
	logger   *logrus.Entry
}

func NewResolver(linkRepo LinkRepository, visits VisitSubmitter, logger *logrus.Logger) *Resolver {
	return &Resolver{
		linkRepo: linkRepo,
		visits:   visits,
		logger:   logger.WithField("module", "services/resolver"),
	}
}

// Resolve возвращает запись по коду либо типизированную ошибку:
// ErrValidation (кривой формат кода), ErrRecordNotFound (код неизвестен),
// ErrGone (неактивен или истек), ErrTransient (хранилище недоступно).
func (r *Resolver) Resolve(ctx context.Context, code string, meta RequestMeta) (*models.Link, error) {
	if err := ValidateCode(code); err != nil {
		return nil, err
	}

	link, getErr := r.getWithRetry(ctx, code)
	if getErr != nil {
		switch {
		case errors.Is(getErr, repositories.ErrNotFound):
			// Событие не пишем: на момент запроса идентификатора не существовало.
			return nil, errors.Wrapf(ErrRecordNotFound, "code `%s`", code)
		case errors.Is(getErr, repositories.ErrTimeout):
			return nil, ErrTransient
		default:
			return nil, ErrTransient
		}
	}

	now := time.Now().UTC()
	if !link.IsResolvable(now) {
		r.submitVisit(code, meta, models.VisitOutcomeBlocked, now)
		return nil, errors.Wrapf(ErrGone, "code `%s`", code)
	}

	r.submitVisit(code, meta, models.VisitOutcomeServed, now)
	return link, nil
}

func (r *Resolver) getWithRetry(ctx context.Context, code string) (*models.Link, error) {
	var link *models.Link
	var err error
	for attempt := 1; attempt <= resolveMaxAttempts; attempt++ {
		link, err = r.linkRepo.GetByCode(ctx, code)
		if err == nil ||
			errors.Is(err, repositories.ErrNotFound) ||
			errors.Is(err, repositories.ErrTimeout) {
			return link, err
		}
		// Неизвестная ошибка хранилища, пробуем еще раз в рамках бюджета.
		r.logger.WithError(err).WithFields(logrus.Fields{
			"code":    code,
			"attempt": attempt,
		}).Warn("transient lookup failure")
	}
	return nil, err
}

// submitVisit неблокирующая отправка события. Переполненный буфер — не ошибка
// горячего пути, только строчка в логе.
func (r *Resolver) submitVisit(code string, meta RequestMeta, outcome models.VisitOutcome, now time.Time) {
	accepted := r.visits.Submit(models.Visit{
		Code:       code,
		OccurredAt: now,
		Outcome:    outcome,
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	})
	if !accepted {
		r.logger.WithField("code", code).Warn("visit event dropped, pipeline buffer is full")
	}
}
