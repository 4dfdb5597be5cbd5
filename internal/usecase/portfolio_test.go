package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"DeskStream/internal/domain/models"
	"DeskStream/internal/repository"
	"DeskStream/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(symbol, qty, target string) models.PortfolioPosition {
	return models.PortfolioPosition{
		Symbol:    symbol,
		Qty:       decimal.RequireFromString(qty),
		TargetQty: decimal.RequireFromString(target),
	}
}

func TestPortfolioProjection(t *testing.T) {
	book := NewPortfolioBook()
	at := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	book.Replace([]models.PortfolioPosition{
		pos("TSLA", "10", "4"),
		pos("AAPL", "5", "12.5"),
		pos("MSFT", "3", "3"),
	}, at)

	views, updated := book.Views()
	require.Len(t, views, 3)
	assert.Equal(t, at, updated)

	assert.Equal(t, "AAPL", views[0].Symbol)
	assert.Equal(t, "7.5", views[0].Delta.String())
	assert.Equal(t, models.IntentBuy, views[0].Intent)

	assert.Equal(t, "MSFT", views[1].Symbol)
	assert.True(t, views[1].Delta.IsZero())
	assert.Equal(t, models.IntentHold, views[1].Intent)

	assert.Equal(t, "TSLA", views[2].Symbol)
	assert.Equal(t, "-6", views[2].Delta.String())
	assert.Equal(t, models.IntentSell, views[2].Intent)
}

type stubSource struct {
	snap models.AccountSnapshot
	err  error
}

func (s stubSource) Fetch(context.Context) (models.AccountSnapshot, error) {
	return s.snap, s.err
}

func TestAccountPollerPublishes(t *testing.T) {
	store := repository.NewStateStore(10)
	book := NewPortfolioBook()
	src := stubSource{snap: models.AccountSnapshot{
		Metrics:   models.GlobalMetrics{NetEquity: decimal.NewFromInt(1000)},
		Positions: []models.PortfolioPosition{pos("NVDA", "1", "2"), pos("AMD", "2", "2")},
	}}

	p := NewAccountPoller(src, store, book, time.Second, logger.Nop())
	require.NoError(t, p.PollNow(context.Background()))

	m := store.ReadAll().Metrics
	assert.True(t, m.NetEquity.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, 2, m.ActivePositions)
	views, _ := book.Views()
	assert.Len(t, views, 2)
}

func TestAccountPollerKeepsLastOnError(t *testing.T) {
	store := repository.NewStateStore(10)
	store.SetGlobalMetrics(models.GlobalMetrics{ActivePositions: 3})

	p := NewAccountPoller(stubSource{err: errors.New("down")}, store, NewPortfolioBook(), time.Second, logger.Nop())
	assert.Error(t, p.PollNow(context.Background()))
	assert.Equal(t, 3, store.ReadAll().Metrics.ActivePositions)
}

func TestAccountPollerSchedule(t *testing.T) {
	p := NewAccountPoller(stubSource{}, repository.NewStateStore(10), NewPortfolioBook(), time.Second, logger.Nop())
	assert.Error(t, p.Start("not a schedule"))

	p = NewAccountPoller(stubSource{}, repository.NewStateStore(10), NewPortfolioBook(), time.Second, logger.Nop())
	require.NoError(t, p.Start("@every 1h"))
	p.Stop()
}
