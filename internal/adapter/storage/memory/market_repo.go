// Package memory holds in-process implementations of the storage ports,
// used with storage.driver=memory and in tests. Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"prediction-market-gateway/internal/core/domain"
	"prediction-market-gateway/internal/core/ports"

	"github.com/google/uuid"
)

// MarketRepo implements ports.MarketRepository with a mutex-guarded map.
type MarketRepo struct {
	mu      sync.RWMutex
	markets map[uuid.UUID]*domain.Market
}

// NewMarketRepo creates an empty in-memory market store.
func NewMarketRepo() *MarketRepo {
	return &MarketRepo{markets: make(map[uuid.UUID]*domain.Market)}
}

func (r *MarketRepo) Create(_ context.Context, m *domain.Market) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.markets[m.ID]; exists {
		return fmt.Errorf("market %s already exists", m.ID)
	}
	r.markets[m.ID] = clone(m)
	return nil
}

func (r *MarketRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Market, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.markets[id]
	if !ok {
		return nil, nil
	}
	return clone(m), nil
}

// List returns markets newest first.
func (r *MarketRepo) List(_ context.Context, params ports.MarketListParams) ([]domain.Market, int64, error) {
	r.mu.RLock()
	matched := make([]domain.Market, 0, len(r.markets))
	for _, m := range r.markets {
		if params.Status != nil && m.Status != *params.Status {
			continue
		}
		matched = append(matched, *clone(m))
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (params.Page - 1) * params.PageSize
	if start < 0 || start >= len(matched) {
		return []domain.Market{}, total, nil
	}
	end := min(start+params.PageSize, len(matched))
	return matched[start:end], total, nil
}

// CompareAndSetResolved checks and writes the status under one lock.
func (r *MarketRepo) CompareAndSetResolved(_ context.Context, id uuid.UUID, expected domain.MarketStatus, outcome bool, resolvedBy string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.markets[id]
	if !ok || m.Status != expected {
		return false, nil
	}

	at = at.UTC()
	m.Status = domain.MarketStatusResolved
	m.ResolvedOutcome = &outcome
	m.ResolvedBy = &resolvedBy
	m.ResolvedAt = &at
	m.UpdatedAt = at
	return true, nil
}

// clone copies m including the values behind its pointer fields.
func clone(m *domain.Market) *domain.Market {
	cp := *m
	if m.ResolvedOutcome != nil {
		v := *m.ResolvedOutcome
		cp.ResolvedOutcome = &v
	}
	if m.ResolvedBy != nil {
		v := *m.ResolvedBy
		cp.ResolvedBy = &v
	}
	if m.ResolvedAt != nil {
		v := *m.ResolvedAt
		cp.ResolvedAt = &v
	}
	return &cp
}
