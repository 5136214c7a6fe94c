package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/fsdevblog/shortkit/internal/models"
	"github.com/fsdevblog/shortkit/internal/repositories"
)

// stubVisitRepo управляемый приемник пачек для тестов конвейера.
type stubVisitRepo struct {
	mu      sync.Mutex
	batches [][]models.Visit
	failAll bool
	block   chan struct{} // если не nil — CreateBatch висит до закрытия канала
}

func (s *stubVisitRepo) CreateBatch(_ context.Context, visits []models.Visit) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return repositories.ErrUnknown
	}
	batch := make([]models.Visit, len(visits))
	copy(batch, visits)
	s.batches = append(s.batches, batch)
	return nil
}

func (s *stubVisitRepo) CountByCodes(context.Context, []string, time.Time, time.Time) (*models.VisitStats, error) {
	return &models.VisitStats{}, nil
}

func (s *stubVisitRepo) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (s *stubVisitRepo) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

func (s *stubVisitRepo) batchSizes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sizes := make([]int, len(s.batches))
	for i, b := range s.batches {
		sizes[i] = len(b)
	}
	return sizes
}

func visitFixture(code string) models.Visit {
	return models.Visit{
		Code:       code,
		OccurredAt: time.Now().UTC(),
		Outcome:    models.VisitOutcomeServed,
	}
}

func TestVisitPipeline_flushBySize(t *testing.T) {
	repo := &stubVisitRepo{}
	p := NewVisitPipeline(VisitPipelineConfig{
		BufferSize:    16,
		BatchSize:     2,
		FlushInterval: time.Hour, // таймер не должен успеть
	}, repo, logrus.New())
	defer p.Close()

	require.True(t, p.Submit(visitFixture("promo1")))
	require.True(t, p.Submit(visitFixture("promo1")))

	require.Eventually(t, func() bool {
		return repo.total() == 2
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, []int{2}, repo.batchSizes())
}

func TestVisitPipeline_flushByTimer(t *testing.T) {
	repo := &stubVisitRepo{}
	p := NewVisitPipeline(VisitPipelineConfig{
		BufferSize:    16,
		BatchSize:     100, // по размеру не наберется
		FlushInterval: 50 * time.Millisecond,
	}, repo, logrus.New())
	defer p.Close()

	require.True(t, p.Submit(visitFixture("promo1")))

	require.Eventually(t, func() bool {
		return repo.total() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestVisitPipeline_dropOnFull(t *testing.T) {
	block := make(chan struct{})
	repo := &stubVisitRepo{block: block}
	p := NewVisitPipeline(VisitPipelineConfig{
		BufferSize:    2,
		BatchSize:     1,
		FlushInterval: time.Hour,
	}, repo, logrus.New())

	// Первое событие воркер забирает и виснет на записи; следующие два
	// заполняют буфер, четвертое отбрасывается.
	require.True(t, p.Submit(visitFixture("promo1")))
	require.Eventually(t, func() bool {
		return len(p.ch) == 0
	}, time.Second, time.Millisecond)

	require.True(t, p.Submit(visitFixture("promo1")))
	require.True(t, p.Submit(visitFixture("promo1")))
	require.False(t, p.Submit(visitFixture("promo1")))
	require.EqualValues(t, 1, p.Dropped())

	close(block)
	p.Close()
	// Принятые события дожили до хранилища, отброшенное — нет.
	require.Equal(t, 3, repo.total())
}

func TestVisitPipeline_retryBudgetExhausted(t *testing.T) {
	repo := &stubVisitRepo{failAll: true}
	p := NewVisitPipeline(VisitPipelineConfig{
		BufferSize:    4,
		BatchSize:     1,
		FlushInterval: time.Hour,
		FlushRetries:  2,
		RetryBackoff:  time.Millisecond,
	}, repo, logrus.New())
	defer p.Close()

	require.True(t, p.Submit(visitFixture("promo1")))

	require.Eventually(t, func() bool {
		return p.Lost() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestVisitPipeline_closeDrains(t *testing.T) {
	repo := &stubVisitRepo{}
	p := NewVisitPipeline(VisitPipelineConfig{
		BufferSize:    16,
		BatchSize:     100,
		FlushInterval: time.Hour,
	}, repo, logrus.New())

	for range 5 {
		require.True(t, p.Submit(visitFixture("promo1")))
	}
	p.Close()

	require.Equal(t, 5, repo.total())
	require.False(t, p.Submit(visitFixture("promo1")), "submit after close")
}
