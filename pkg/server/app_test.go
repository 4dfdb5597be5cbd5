package server

import (
	"context"
	"io"
	"testing"
	"time"

	"DeskStream/internal/domain/repository"
	"DeskStream/internal/handler/api"
	mid "DeskStream/internal/middleware"
	internalrepo "DeskStream/internal/repository"
	"DeskStream/internal/usecase"
	"DeskStream/pkg/config"
	xhttp "DeskStream/pkg/http"
	applogger "DeskStream/pkg/logger"
	"DeskStream/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineStream struct {
	lines []string
}

func (s *lineStream) Next(ctx context.Context) (string, error) {
	if len(s.lines) > 0 {
		line := s.lines[0]
		s.lines = s.lines[1:]
		return line, nil
	}
	<-ctx.Done()
	return "", io.EOF
}

func (s *lineStream) Close() error { return nil }

type lineTransport struct {
	lines []string
}

func (t lineTransport) Dial(context.Context, string) (repository.Stream, error) {
	return &lineStream{lines: append([]string(nil), t.lines...)}, nil
}

func TestAppRunUntilAppliesFeedAndShutsDown(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	l := applogger.Nop()
	store := internalrepo.NewStateStore(cfg.Store.LogCapacity)
	session := usecase.NewFeedSession(
		usecase.SessionConfig{Scope: "NVDA", BackoffMin: time.Millisecond, BackoffMax: time.Millisecond},
		lineTransport{lines: []string{`{"ticker":"NVDA","agent":"Burry","signal":"bearish","score":20}`}},
		mid.NewGate(),
		usecase.NewNormalizer(usecase.NewBadgeTable(nil)),
		store, metrics.Nop{}, l,
	)
	broker := api.NewBroker(store, 10*time.Millisecond, l)
	book := usecase.NewPortfolioBook()
	httpServer := xhttp.NewServer(
		[]xhttp.Handler{api.NewDashboardHandler(store, book, broker, l)},
		xhttp.WithHost("127.0.0.1"),
		xhttp.WithPort(0),
	)

	app := New(cfg, l, usecase.NewFeedSupervisor(l, session), nil, broker, httpServer)

	var done <-chan struct{}
	err = app.RunUntil(func(ctx context.Context) {
		done = session.Done()
		assert.Eventually(t, func() bool {
			inst, ok := store.ReadAll().Instruments["NVDA"]
			return ok && inst.Score == 20
		}, 2*time.Second, 5*time.Millisecond)
	})
	require.NoError(t, err)

	select {
	case <-done:
	default:
		t.Fatal("feed session still running after shutdown")
	}

	snap := store.ReadAll()
	require.Len(t, snap.Log, 1)
	assert.Equal(t, "Burry", snap.Log[0].AgentID)
}
