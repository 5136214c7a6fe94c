package sql

import (
	"context"

	"github.com/fsdevblog/shortkit/internal/repositories"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// convertErrorType преобразует ошибки gorm в общие ошибки уровня репозитория.
// Подключение открывается с TranslateError, так что ошибки уникального индекса
// обоих бекендов (sqlite/postgres) приходят уже как gorm.ErrDuplicatedKey.
func convertErrorType(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repositories.ErrDuplicateKey
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.ErrNotFound
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return repositories.ErrTimeout
	default:
		return repositories.ErrUnknown
	}
}
