// Package expirer отклоняет протухшие pending пополнения: QR был сгенерирован,
// но оплата в отведенный срок так и не подтвердилась.
package expirer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fsdevblog/groph-pay/internal/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultTTL                    = 24 * time.Hour
	defaultInterval               = time.Minute
	defaultLimitPerIteration uint = 100
	defaultWorkers           uint = 5
)

//go:generate mockgen -source=expirer.go -destination=mocks/mocks.go -package=mocks

type Servicer interface {
	ExpiredPending(ctx context.Context, olderThan time.Time, limit uint) ([]domain.Transaction, error)
	Reject(ctx context.Context, transactionID uuid.UUID) error
}

// Processor периодически собирает протухшие pending транзакции и отклоняет их через сервисный слой.
type Processor struct {
	svs               Servicer
	l                 *logrus.Entry
	ttl               time.Duration
	interval          time.Duration
	limitPerIteration uint
	workers           uint
}

// New создает новый экземпляр процессора отклонения протухших транзакций.
func New(svs Servicer, l *logrus.Logger) *Processor {
	loggerEntry := l.WithFields(logrus.Fields{
		"component": "expirer",
		"module":    "processor",
	})

	return &Processor{
		svs:               svs,
		l:                 loggerEntry,
		ttl:               defaultTTL,
		interval:          defaultInterval,
		limitPerIteration: defaultLimitPerIteration,
		workers:           defaultWorkers,
	}
}

// SetTTL устанавливает срок жизни pending транзакции.
func (p *Processor) SetTTL(ttl time.Duration) *Processor {
	p.ttl = ttl
	return p
}

// SetInterval устанавливает паузу между итерациями.
func (p *Processor) SetInterval(interval time.Duration) *Processor {
	p.interval = interval
	return p
}

// SetLimitPerIteration устанавливает кол-во транзакций, обрабатываемых в одной итерации.
func (p *Processor) SetLimitPerIteration(limit uint) *Processor {
	p.limitPerIteration = limit
	return p
}

// SetWorkers устанавливает кол-во воркеров, отклоняющих транзакции.
func (p *Processor) SetWorkers(workers uint) *Processor {
	p.workers = workers
	return p
}

// Run запускает обработку в бесконечном цикле до отмены контекста.
func (p *Processor) Run(ctx context.Context) {
	p.l.WithFields(logrus.Fields{
		"ttl":               p.ttl.String(),
		"interval":          p.interval.String(),
		"limitPerIteration": p.limitPerIteration,
		"workers":           p.workers,
	}).Info("Starting")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.l.Info("Got stop signal, exiting...")
			return
		case <-ticker.C:
			if err := p.process(ctx); err != nil {
				p.l.WithError(err).Error("process error")
			}
		}
	}
}

// process выполняет одну итерацию: выборка протухших транзакций и отклонение каждой из них
// пулом воркеров. Конфликт финализации не считается ошибкой: транзакцию успели завершить
// (или отклонить) между выборкой и отклонением.
func (p *Processor) process(ctx context.Context) error {
	expired, expiredErr := p.svs.ExpiredPending(ctx, time.Now().Add(-p.ttl), p.limitPerIteration)
	if expiredErr != nil {
		return expiredErr //nolint:wrapcheck
	}
	if len(expired) == 0 {
		return nil
	}

	ids := make(chan uuid.UUID)
	wg := new(sync.WaitGroup)

	for range p.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ids {
				p.rejectOne(ctx, id)
			}
		}()
	}

	for _, transaction := range expired {
		select {
		case <-ctx.Done():
			close(ids)
			wg.Wait()
			return ctx.Err() //nolint:wrapcheck
		case ids <- transaction.ID:
		}
	}
	close(ids)
	wg.Wait()

	p.l.WithField("count", len(expired)).Info("expired transactions processed")
	return nil
}

func (p *Processor) rejectOne(ctx context.Context, id uuid.UUID) {
	if err := p.svs.Reject(ctx, id); err != nil {
		if errors.Is(err, domain.ErrTransactionFinalized) {
			p.l.WithField("transactionID", id).Debug("transaction already finalized, skipping")
			return
		}
		p.l.WithError(err).WithField("transactionID", id).Error("reject expired transaction")
	}
}
