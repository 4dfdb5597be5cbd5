package usecase

import (
	"sort"
	"sync"
	"time"

	"DeskStream/internal/domain/models"
)

// PortfolioBook keeps the last positions list received from the account
// source. Derived fields are projected on read and never stored.
type PortfolioBook struct {
	mu        sync.RWMutex
	positions []models.PortfolioPosition
	updatedAt time.Time
}

func NewPortfolioBook() *PortfolioBook {
	return &PortfolioBook{}
}

// Replace swaps the whole list.
func (b *PortfolioBook) Replace(positions []models.PortfolioPosition, at time.Time) {
	cp := make([]models.PortfolioPosition, len(positions))
	copy(cp, positions)

	b.mu.Lock()
	b.positions = cp
	b.updatedAt = at
	b.mu.Unlock()
}

// Views returns positions sorted by symbol with delta and intent attached.
func (b *PortfolioBook) Views() ([]models.PositionView, time.Time) {
	b.mu.RLock()
	views := make([]models.PositionView, 0, len(b.positions))
	for _, p := range b.positions {
		views = append(views, p.View())
	}
	at := b.updatedAt
	b.mu.RUnlock()

	sort.Slice(views, func(i, j int) bool { return views[i].Symbol < views[j].Symbol })
	return views, at
}
