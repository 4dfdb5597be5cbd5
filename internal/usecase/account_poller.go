package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	drepo "DeskStream/internal/domain/repository"
	applogger "DeskStream/pkg/logger"

	"github.com/robfig/cron/v3"
)

// AccountPoller periodically pulls the account snapshot and publishes it:
// metrics replace the store's global metrics, positions replace the book.
type AccountPoller struct {
	source  drepo.AccountSource
	store   drepo.StateWriter
	book    *PortfolioBook
	timeout time.Duration
	log     *applogger.Logger
	cron    *cron.Cron
	now     func() time.Time
	wg      sync.WaitGroup
}

func NewAccountPoller(source drepo.AccountSource, store drepo.StateWriter, book *PortfolioBook, timeout time.Duration, l *applogger.Logger) *AccountPoller {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AccountPoller{
		source:  source,
		store:   store,
		book:    book,
		timeout: timeout,
		log:     l,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		now:     time.Now,
	}
}

// Start polls once immediately, then on schedule (standard cron expression or
// descriptors such as "@every 10s").
func (p *AccountPoller) Start(schedule string) error {
	if _, err := p.cron.AddFunc(schedule, p.tick); err != nil {
		return fmt.Errorf("account schedule %q: %w", schedule, err)
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.tick()
	}()
	p.cron.Start()
	p.log.Info("account poller started", applogger.String("schedule", schedule))
	return nil
}

// Stop waits for an in-flight poll to finish.
func (p *AccountPoller) Stop() {
	<-p.cron.Stop().Done()
	p.wg.Wait()
	p.log.Info("account poller stopped")
}

func (p *AccountPoller) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.PollNow(ctx); err != nil {
		p.log.Warn("account poll failed", applogger.Error(err))
	}
}

// PollNow fetches and publishes one snapshot. On error nothing is
// published and the previous figures stay in place.
func (p *AccountPoller) PollNow(ctx context.Context) error {
	snap, err := p.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch account: %w", err)
	}

	m := snap.Metrics
	if m.ActivePositions == 0 && len(snap.Positions) > 0 {
		m.ActivePositions = len(snap.Positions)
	}
	p.store.SetGlobalMetrics(m)
	p.book.Replace(snap.Positions, p.now())
	return nil
}
