package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsdevblog/shortkit/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// VisitPipelineConfig настройки конвейера событий.
type VisitPipelineConfig struct {
	// BufferSize емкость входного буфера. Буфер строго ограничен: при
	// переполнении новое событие отбрасывается, Submit никогда не блокирует.
	BufferSize int
	// BatchSize размер пачки, по достижении которого происходит сброс.
	BatchSize int
	// FlushInterval сброс по таймеру, если пачка не набралась.
	FlushInterval time.Duration
	// FlushRetries число попыток записи пачки.
	FlushRetries int
	// RetryBackoff пауза перед повтором, удваивается с каждой попыткой.
	RetryBackoff time.Duration
	// FlushTimeout бюджет времени на одну попытку записи. Свой, независимый
	// от контекстов запросов: воркер живет вне их жизненного цикла.
	FlushTimeout time.Duration
}

func (c *VisitPipelineConfig) setDefaults() {
	if c.BufferSize <= 0 {
		c.BufferSize = 1024
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 64
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 5 * time.Second
	}
	if c.FlushRetries <= 0 {
		c.FlushRetries = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 250 * time.Millisecond
	}
	if c.FlushTimeout <= 0 {
		c.FlushTimeout = 10 * time.Second
	}
}

// VisitPipeline асинхронная запись событий резолва: ограниченный канал плюс
// один фоновый воркер, который копит события и сбрасывает их пачками — по
// размеру или по таймеру, что наступит раньше.
//
// Семантика доставки at-most-effort: конвейер предпочитает доступность
// горячего пути полноте аналитики. Потерянные события только считаются
// (Dropped/Lost) и логируются, наружу деградация не выходит никогда.
type VisitPipeline struct {
	cfg    VisitPipelineConfig
	repo   VisitRepository
	logger *logrus.Entry

	ch        chan models.Visit
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	lost      atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func NewVisitPipeline(cfg VisitPipelineConfig, repo VisitRepository, logger *logrus.Logger) *VisitPipeline {
	cfg.setDefaults()

	p := &VisitPipeline{
		cfg:    cfg,
		repo:   repo,
		logger: logger.WithField("module", "services/pipeline"),
		ch:     make(chan models.Visit, cfg.BufferSize),
		done:   make(chan struct{}),
	}

	p.wg.Add(1)
	go p.run()

	return p
}

// Submit кладет событие в буфер. Никогда не блокирует: при переполнении
// событие отбрасывается и возвращается false.
func (p *VisitPipeline) Submit(visit models.Visit) bool {
	if p.closed.Load() {
		return false
	}
	select {
	case p.ch <- visit:
		return true
	default:
		p.dropped.Add(1)
		return false
	}
}

func (p *VisitPipeline) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]models.Visit, 0, p.cfg.BatchSize)

	for {
		select {
		case visit := <-p.ch:
			batch = append(batch, visit)
			if len(batch) >= p.cfg.BatchSize {
				p.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				p.flush(batch)
				batch = batch[:0]
			}
		case <-p.done:
			// Дочитываем буфер и сбрасываем остаток.
			for {
				select {
				case visit := <-p.ch:
					batch = append(batch, visit)
					if len(batch) >= p.cfg.BatchSize {
						p.flush(batch)
						batch = batch[:0]
					}
				default:
					if len(batch) > 0 {
						p.flush(batch)
					}
					return
				}
			}
		}
	}
}

// flush пишет пачку с ограниченным числом повторов. Исчерпали бюджет —
// пачка теряется, факт фиксируется счетчиком и логом.
func (p *VisitPipeline) flush(batch []models.Visit) {
	// Копия: срез batch переиспользуется воркером, а репозиторий мутирует ID.
	visits := make([]models.Visit, len(batch))
	copy(visits, batch)

	entry := p.logger.WithFields(logrus.Fields{
		"batch_id": uuid.NewString(),
		"size":     len(visits),
	})

	backoff := p.cfg.RetryBackoff
	for attempt := 1; attempt <= p.cfg.FlushRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), p.cfg.FlushTimeout)
		err := p.repo.CreateBatch(ctx, visits)
		cancel()

		if err == nil {
			return
		}
		entry.WithError(err).Warnf("visit batch flush attempt %d/%d failed", attempt, p.cfg.FlushRetries)

		if attempt < p.cfg.FlushRetries {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	p.lost.Add(uint64(len(visits)))
	entry.Error("visit batch dropped, retry budget exhausted")
}

// Close останавливает воркер, предварительно сбросив все принятые события.
func (p *VisitPipeline) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.done)
		p.wg.Wait()
	})
}

// Dropped число событий, отброшенных на входе из-за переполнения буфера.
func (p *VisitPipeline) Dropped() uint64 {
	return p.dropped.Load()
}

// Lost число событий, потерянных после исчерпания повторов записи.
func (p *VisitPipeline) Lost() uint64 {
	return p.lost.Load()
}
