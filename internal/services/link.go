package services

import (
	"context"
	"time"

	"github.com/fsdevblog/shortkit/internal/models"
	"github.com/fsdevblog/shortkit/internal/repositories"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// maxGenerateAttempts бюджет попыток генерации кода. Его исчерпание означает
// насыщение пространства кодов — это сигнал тревоги, а не рядовая ошибка.
const maxGenerateAttempts = 5

// CreateLinkArgs аргументы создания короткой ссылки.
type CreateLinkArgs struct {
	TargetURL string
	// CustomCode пользовательский код. Пустая строка — сгенерировать.
	// Занятый пользовательский код — ErrCodeCollision, без отката на генерацию.
	CustomCode string
	// OwnerUUID владелец, пустая строка — анонимная ссылка.
	OwnerUUID string
	ExpiresAt *time.Time
}

type BulkOp string

const (
	BulkOpDeactivate    BulkOp = "deactivate"
	BulkOpReactivate    BulkOp = "reactivate"
	BulkOpDelete        BulkOp = "delete"
	BulkOpSetExpiration BulkOp = "setExpiration"
)

// LinkService сервис жизненного цикла коротких ссылок: аллокация кода,
// переходы статусов, пакетные операции и аудируемая чистка событий.
type LinkService struct {
	linkRepo  LinkRepository
	visitRepo VisitRepository
	logger    *logrus.Entry
}

func NewLinkService(linkRepo LinkRepository, visitRepo VisitRepository, logger *logrus.Logger) *LinkService {
	return &LinkService{
		linkRepo:  linkRepo,
		visitRepo: visitRepo,
		logger:    logger.WithField("module", "services/link"),
	}
}

// Create создает ссылку. Проверка занятости кода и вставка не разделяются:
// мы сразу вставляем и разбираем ошибку дубликата, иначе два конкурентных
// запроса на один код могли бы оба пройти проверку существования.
func (s *LinkService) Create(ctx context.Context, args CreateLinkArgs) (*models.Link, error) {
	if err := ValidateTargetURL(args.TargetURL); err != nil {
		return nil, err
	}

	if args.CustomCode != "" {
		return s.createWithCode(ctx, args, args.CustomCode, false)
	}

	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		code, genErr := GenerateCode()
		if genErr != nil {
			return nil, errors.Wrap(ErrUnknown, genErr.Error())
		}
		link, createErr := s.createWithCode(ctx, args, code, true)
		if createErr != nil {
			if errors.Is(createErr, ErrCodeCollision) {
				s.logger.WithField("attempt", attempt).Debugf("generated code `%s` collided, retrying", code)
				continue
			}
			return nil, createErr
		}
		return link, nil
	}
	s.logger.Errorf("failed to allocate a code in %d attempts, code space looks saturated", maxGenerateAttempts)
	return nil, ErrAllocationExhausted
}

func (s *LinkService) createWithCode(ctx context.Context, args CreateLinkArgs, code string, generated bool) (*models.Link, error) {
	if !generated {
		if err := ValidateCode(code); err != nil {
			return nil, err
		}
	}

	link := models.Link{
		Code:      code,
		TargetURL: args.TargetURL,
		OwnerUUID: args.OwnerUUID,
		Status:    models.LinkStatusActive,
		ExpiresAt: args.ExpiresAt,
	}
	if err := s.linkRepo.Create(ctx, &link); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, errors.Wrapf(ErrCodeCollision, "code `%s`", code)
		}
		return nil, convertRepoError(err)
	}
	return &link, nil
}

func (s *LinkService) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	link, err := s.linkRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, convertRepoError(err)
	}
	return link, nil
}

// Deactivate выключает ссылку. Идемпотентна: повторная деактивация уже
// неактивной записи молча успешна.
func (s *LinkService) Deactivate(ctx context.Context, code string) error {
	if err := s.linkRepo.UpdateStatus(ctx, code, models.LinkStatusInactive); err != nil {
		return convertRepoError(err)
	}
	return nil
}

// Reactivate включает ссылку обратно. Истекшую запись включить нельзя
// (ErrExpired), и реактивация никогда не сдвигает и не очищает expires_at.
func (s *LinkService) Reactivate(ctx context.Context, code string) error {
	link, err := s.linkRepo.GetByCode(ctx, code)
	if err != nil {
		return convertRepoError(err)
	}
	if link.IsExpired(time.Now().UTC()) {
		return errors.Wrapf(ErrExpired, "code `%s`", code)
	}
	if updErr := s.linkRepo.UpdateStatus(ctx, code, models.LinkStatusActive); updErr != nil {
		return convertRepoError(updErr)
	}
	return nil
}

// Delete жесткое удаление, операция более редкая и жесткая, чем деактивация.
// События остаются со слабой ссылкой на код — читатель статистики обязан
// переживать такие висячие ссылки.
func (s *LinkService) Delete(ctx context.Context, code string) error {
	if err := s.linkRepo.Delete(ctx, code); err != nil {
		return convertRepoError(err)
	}
	return nil
}

func (s *LinkService) SetExpiration(ctx context.Context, code string, expiresAt *time.Time) error {
	if err := s.linkRepo.SetExpiration(ctx, code, expiresAt); err != nil {
		return convertRepoError(err)
	}
	return nil
}

// BulkUpdateArgs аргументы пакетной операции.
type BulkUpdateArgs struct {
	Op BulkOp
	// ExpiresAt используется только операцией BulkOpSetExpiration.
	ExpiresAt *time.Time
}

// BulkUpdate применяет операцию к каждому коду независимо. Частичный провал —
// ожидаемое состояние: результат содержит по одному элементу на входной код,
// в исходном порядке, это не транзакция "все или ничего".
func (s *LinkService) BulkUpdate(ctx context.Context, codes []string, args BulkUpdateArgs) ([]repositories.BatchResult[string], error) {
	var apply func(context.Context, string) error
	switch args.Op {
	case BulkOpDeactivate:
		apply = s.Deactivate
	case BulkOpReactivate:
		apply = s.Reactivate
	case BulkOpDelete:
		apply = s.Delete
	case BulkOpSetExpiration:
		apply = func(ctx context.Context, code string) error {
			return s.SetExpiration(ctx, code, args.ExpiresAt)
		}
	default:
		return nil, errors.Wrapf(ErrValidation, "unknown bulk operation `%s`", args.Op)
	}

	results := make([]repositories.BatchResult[string], len(codes))
	for i, code := range codes {
		results[i] = repositories.BatchResult[string]{
			Value: code,
			Err:   apply(ctx, code),
		}
	}
	return results, nil
}

// FindExpiringSoon возвращает активные ссылки, истекающие в заданном горизонте.
func (s *LinkService) FindExpiringSoon(ctx context.Context, within time.Duration) ([]models.Link, error) {
	links, err := s.linkRepo.FindExpiringBefore(ctx, time.Now().UTC().Add(within))
	if err != nil {
		return nil, convertRepoError(err)
	}
	return links, nil
}

// PurgeVisits удаляет события старше отметки. Ядро эту операцию не планирует,
// retention — внешняя политика; каждый запуск фиксируется в логе.
func (s *LinkService) PurgeVisits(ctx context.Context, olderThan time.Time) (int64, error) {
	deleted, err := s.visitRepo.DeleteOlderThan(ctx, olderThan)
	if err != nil {
		return 0, convertRepoError(err)
	}
	s.logger.WithFields(logrus.Fields{
		"older_than": olderThan,
		"deleted":    deleted,
	}).Info("visit purge completed")
	return deleted, nil
}
