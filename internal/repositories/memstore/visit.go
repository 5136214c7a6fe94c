package memstore

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/fsdevblog/shortkit/internal/db"
	"github.com/fsdevblog/shortkit/internal/db/memory"
	"github.com/fsdevblog/shortkit/internal/models"
	"github.com/pkg/errors"
)

// VisitRepo хранилище событий в памяти. Ключи — последовательные номера,
// записи никогда не перезаписываются.
type VisitRepo struct {
	s      *db.MemoryStorage
	nextID uint
	mu     sync.Mutex
}

func NewVisitRepo(store *db.MemoryStorage) *VisitRepo {
	return &VisitRepo{
		s: store,
	}
}

func (v *VisitRepo) CreateBatch(ctx context.Context, visits []models.Visit) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i := range visits {
		v.nextID++
		visits[i].ID = v.nextID
		visits[i].CreatedAt = time.Now().UTC()
		key := strconv.FormatUint(uint64(v.nextID), 10)
		if err := memory.Set[models.Visit](ctx, key, &visits[i], v.s.Visits); err != nil {
			return errors.Wrap(convertErrorType(err), "failed to create visit record")
		}
	}
	return nil
}

func (v *VisitRepo) CountByCodes(ctx context.Context, codes []string, from, to time.Time) (*models.VisitStats, error) {
	stats := models.VisitStats{From: from, To: to}
	if len(codes) == 0 {
		return &stats, nil
	}

	matched, err := memory.FilterAll[models.Visit](ctx, v.s.Visits, func(val models.Visit) bool {
		if !slices.Contains(codes, val.Code) {
			return false
		}
		return !val.OccurredAt.Before(from) && val.OccurredAt.Before(to)
	})
	if err != nil {
		return nil, errors.Wrap(convertErrorType(err), "failed to count visits")
	}

	for _, visit := range matched {
		stats.Total++
		if visit.Outcome == models.VisitOutcomeServed {
			stats.Served++
		} else {
			stats.Blocked++
		}
	}
	return &stats, nil
}

func (v *VisitRepo) DeleteOlderThan(ctx context.Context, t time.Time) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	old, err := memory.FilterAll[models.Visit](ctx, v.s.Visits, func(val models.Visit) bool {
		return val.OccurredAt.Before(t)
	})
	if err != nil {
		return 0, errors.Wrap(convertErrorType(err), "failed to find old visits")
	}

	var deleted int64
	for _, visit := range old {
		key := strconv.FormatUint(uint64(visit.ID), 10)
		if delErr := memory.Delete(ctx, key, v.s.Visits); delErr != nil {
			return deleted, errors.Wrap(convertErrorType(delErr), "failed to delete old visit")
		}
		deleted++
	}
	return deleted, nil
}
