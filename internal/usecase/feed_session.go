package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"DeskStream/internal/domain/models"
	drepo "DeskStream/internal/domain/repository"
	mid "DeskStream/internal/middleware"
	"DeskStream/internal/service/stream"
	applogger "DeskStream/pkg/logger"
	"DeskStream/pkg/util"

	"golang.org/x/time/rate"
)

// SessionConfig is the reconnect policy of one feed.
type SessionConfig struct {
	Scope                 string
	BackoffMin            time.Duration
	BackoffMax            time.Duration
	DialsPerMinute        int
	ResubscribeOnComplete bool
}

type endReason int

const (
	endCancelled endReason = iota
	endComplete
	endFault
)

// FeedSession consumes one scope. A single goroutine owns the connection and
// applies its messages to the store strictly in arrival order.
type FeedSession struct {
	cfg       SessionConfig
	transport drepo.Transport
	gate      *mid.Gate
	norm      *Normalizer
	store     drepo.StateWriter
	metrics   drepo.Metrics
	log       *applogger.Logger

	limiter *rate.Limiter
	backoff *util.Backoff

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewFeedSession(
	cfg SessionConfig,
	transport drepo.Transport,
	gate *mid.Gate,
	norm *Normalizer,
	store drepo.StateWriter,
	metrics drepo.Metrics,
	l *applogger.Logger,
) *FeedSession {
	if cfg.Scope == "" {
		cfg.Scope = stream.GlobalScope
	}
	limit := rate.Inf
	if cfg.DialsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.DialsPerMinute))
	}
	return &FeedSession{
		cfg:       cfg,
		transport: transport,
		gate:      gate,
		norm:      norm,
		store:     store,
		metrics:   metrics,
		log:       l.With(applogger.String("scope", cfg.Scope)),
		limiter:   rate.NewLimiter(limit, 1),
		backoff:   &util.Backoff{Min: cfg.BackoffMin, Max: cfg.BackoffMax},
	}
}

func (s *FeedSession) Scope() string { return s.cfg.Scope }

// Start launches the consumer loop. Calling Start on a running session is a no-op.
func (s *FeedSession) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
}

// Stop closes the connection and returns once the loop has exited; the
// store is not touched by this session afterwards.
func (s *FeedSession) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done is closed when the loop exits, either from Stop or after completion.
func (s *FeedSession) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *FeedSession) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer s.metrics.SetFeedLive(s.cfg.Scope, false)

	scope := s.cfg.Scope
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			s.metrics.RecordReconnect(scope)
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}

		s.store.SetLiveness(scope, models.LivenessConnecting)
		conn, err := stream.Open(ctx, s.transport, scope)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.store.SetLiveness(scope, models.LivenessOffline)
			wait := s.backoff.Next()
			s.log.Warn("feed dial failed", applogger.Error(err), applogger.Duration("retry_in_ms", wait))
			if !sleepCtx(ctx, wait) {
				return
			}
			continue
		}

		reason := s.consume(ctx, conn)
		_ = conn.Close()

		switch reason {
		case endCancelled:
			s.store.SetLiveness(scope, models.LivenessOffline)
			return
		case endComplete:
			if !s.cfg.ResubscribeOnComplete {
				s.log.Info("feed complete")
				return
			}
			s.backoff.Reset()
			if !sleepCtx(ctx, s.backoff.Next()) {
				return
			}
		case endFault:
			wait := s.backoff.Next()
			s.log.Info("feed reconnect scheduled", applogger.Duration("retry_in_ms", wait), applogger.Int("attempt", s.backoff.Attempts()))
			if !sleepCtx(ctx, wait) {
				return
			}
		}
	}
}

func (s *FeedSession) consume(ctx context.Context, conn *stream.Connection) endReason {
	scope := s.cfg.Scope
	for {
		select {
		case <-ctx.Done():
			return endCancelled
		case sig, ok := <-conn.Signals():
			if !ok {
				if ctx.Err() != nil {
					return endCancelled
				}
				s.store.SetLiveness(scope, models.LivenessOffline)
				return endFault
			}

			switch sig.Kind {
			case stream.SignalReady:
				s.backoff.Reset()
				s.store.SetLiveness(scope, models.LivenessLive)
				s.store.ClearWarnings(scope)
				s.metrics.SetFeedLive(scope, true)
				s.log.Info("feed live")
			case stream.SignalData:
				if s.handle(sig.Payload) {
					return endComplete
				}
			case stream.SignalFault:
				s.store.SetLiveness(scope, models.LivenessOffline)
				s.metrics.SetFeedLive(scope, false)
				s.log.Warn("feed fault", applogger.Error(sig.Err))
				return endFault
			}
		}
	}
}

// handle applies one payload and reports whether it completed the stream.
func (s *FeedSession) handle(raw string) bool {
	start := time.Now()
	scope := s.cfg.Scope

	env, err := s.gate.Validate(raw)
	switch {
	case errors.Is(err, mid.ErrStreamComplete):
		s.store.MarkComplete(scope)
		s.metrics.SetFeedLive(scope, false)
		s.metrics.RecordMessage(scope, drepo.OutcomeComplete)
		return true
	case errors.Is(err, mid.ErrNoise):
		s.metrics.RecordMessage(scope, drepo.OutcomeNoise)
		s.log.Debug("dropped unparsable payload", applogger.Int("bytes", len(raw)))
		return false
	case err != nil:
		se, ok := mid.IsMismatch(err)
		if !ok {
			se = &mid.SchemaError{Pattern: "unknown", Message: err.Error()}
		}
		s.metrics.RecordMessage(scope, drepo.OutcomeMismatch)
		if s.store.RaiseWarning(scope, se.Pattern, mid.Describe(se)) {
			s.metrics.RecordProtocolWarning(scope, se.Pattern)
			s.log.Warn("protocol mismatch", applogger.String("pattern", se.Pattern), applogger.String("detail", se.Message))
		}
		return false
	}

	routed := s.norm.Normalize(scope, env)
	s.store.AppendLog(routed.Entry)
	if routed.Instrument != nil {
		s.store.MergeInstrument(routed.Instrument.Ticker, routed.Instrument.Patch)
	}
	s.metrics.RecordMessage(scope, drepo.OutcomeAccepted)
	s.metrics.RecordLatency("ingest", time.Since(start))
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
