package services

import (
	goerrors "errors"

	"github.com/fsdevblog/shortkit/internal/repositories"
)

// Таксономия ошибок сервисного слоя. Каждая пользовательская ошибка стабильно
// отличима от остальных: клиент обязан уметь различить "не существует",
// "существовал, но недоступен" и "повторите позже".
var (
	ErrValidation          = goerrors.New("[service]: validation failed")
	ErrCodeCollision       = goerrors.New("[service]: short code already in use")
	ErrAllocationExhausted = goerrors.New("[service]: short code generation attempts exhausted")
	ErrRecordNotFound      = goerrors.New("[service]: record not found")
	ErrGone                = goerrors.New("[service]: record is inactive or expired")
	ErrExpired             = goerrors.New("[service]: record has expired")
	ErrTransient           = goerrors.New("[service]: temporary storage failure")
	ErrPermissionDenied    = goerrors.New("[service]: permission denied")
	ErrUnknown             = goerrors.New("[service]: unknown error")
)

// convertRepoError переводит ошибки репозитория в ошибки сервисного слоя.
// Коллизию ключа каждый вызывающий обрабатывает сам: для аллокатора это
// ErrCodeCollision, для остальных операций её возникновение — баг.
func convertRepoError(err error) error {
	switch {
	case goerrors.Is(err, repositories.ErrNotFound):
		return ErrRecordNotFound
	case goerrors.Is(err, repositories.ErrTimeout):
		return ErrTransient
	default:
		return ErrUnknown
	}
}
