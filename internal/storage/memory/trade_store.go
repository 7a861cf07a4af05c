package memory

import (
	"context"
	"sort"
	"sync"

	"etf-turtle/internal/domain"
	"etf-turtle/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Trade // keyed by trade id
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{data: make(map[string]*domain.Trade)}
}

var _ storage.TradeStore = (*TradeStore)(nil)

// Save upserts a trade by ID. On replace, entry fields keep their stored
// values, mirroring the SQL conflict-update clause.
func (s *TradeStore) Save(_ context.Context, t *domain.Trade) error {
	if t == nil || t.ID == "" || t.EntryContracts <= 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *t
	if prev, exists := s.data[t.ID]; exists {
		stored.Symbol = prev.Symbol
		stored.Direction = prev.Direction
		stored.System = prev.System
		stored.EntryPrice = prev.EntryPrice
		stored.EntryDate = prev.EntryDate
		stored.EntryContracts = prev.EntryContracts
		stored.NAtEntry = prev.NAtEntry
	}
	s.data[t.ID] = &stored
	return nil
}

// LastBySystem retrieves the newest trade (by exit date) for a symbol
// restricted to one strategy system.
func (s *TradeStore) LastBySystem(ctx context.Context, symbol string, system domain.System) (*domain.Trade, error) {
	return s.LastMatching(ctx, symbol, &system, nil)
}

// RecentBySymbol retrieves up to limit trades for a symbol, newest-first by
// exit date.
func (s *TradeStore) RecentBySymbol(_ context.Context, symbol string, limit int) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.data {
		if t.Symbol != symbol {
			continue
		}
		out := *t
		result = append(result, &out)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ExitDate.After(result[j].ExitDate)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// LastMatching retrieves the newest matching trade for a symbol with the
// optional filters applied conjunctively.
func (s *TradeStore) LastMatching(_ context.Context, symbol string, system *domain.System, direction *domain.Direction) (*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.Trade
	for _, t := range s.data {
		if t.Symbol != symbol {
			continue
		}
		if system != nil && t.System != *system {
			continue
		}
		if direction != nil && t.Direction != *direction {
			continue
		}
		if best == nil || t.ExitDate.After(best.ExitDate) {
			best = t
		}
	}

	if best == nil {
		return nil, storage.ErrNotFound
	}

	out := *best
	return &out, nil
}
