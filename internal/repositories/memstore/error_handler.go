package memstore

import (
	"context"

	"github.com/fsdevblog/shortkit/internal/db/memory"
	"github.com/fsdevblog/shortkit/internal/repositories"
	"github.com/pkg/errors"
)

func convertErrorType(err error) error {
	switch {
	case errors.Is(err, memory.ErrDuplicateKey):
		return repositories.ErrDuplicateKey
	case errors.Is(err, memory.ErrNotFound):
		return repositories.ErrNotFound
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return repositories.ErrTimeout
	default:
		return repositories.ErrUnknown
	}
}
