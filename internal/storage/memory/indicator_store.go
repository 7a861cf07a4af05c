package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"etf-turtle/internal/domain"
	"etf-turtle/internal/storage"
)

// IndicatorStore is an in-memory implementation of storage.IndicatorStore.
type IndicatorStore struct {
	mu   sync.RWMutex
	data map[string]*domain.IndicatorSnapshot // keyed by symbol|date
}

// NewIndicatorStore creates a new in-memory indicator store.
func NewIndicatorStore() *IndicatorStore {
	return &IndicatorStore{data: make(map[string]*domain.IndicatorSnapshot)}
}

var _ storage.IndicatorStore = (*IndicatorStore)(nil)

func snapshotKey(symbol string, date time.Time) string {
	return symbol + "|" + date.Format("2006-01-02")
}

// SaveSnapshot upserts a snapshot by (symbol, calc date). The whole row is
// replaced, matching the postgres full-row overwrite on conflict.
func (s *IndicatorStore) SaveSnapshot(_ context.Context, snap *domain.IndicatorSnapshot) error {
	if snap == nil || snap.Symbol == "" || snap.CalcDate.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copySnapshot(snap)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.data[snapshotKey(snap.Symbol, snap.CalcDate)] = stored
	return nil
}

// Latest retrieves the newest snapshot by date for a symbol.
func (s *IndicatorStore) Latest(_ context.Context, symbol string) (*domain.IndicatorSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.IndicatorSnapshot
	for _, snap := range s.data {
		if snap.Symbol != symbol {
			continue
		}
		if best == nil || snap.CalcDate.After(best.CalcDate) {
			best = snap
		}
	}

	if best == nil {
		return nil, storage.ErrNotFound
	}
	return copySnapshot(best), nil
}

// PreviousN retrieves the N value from the newest snapshot strictly before
// the given date.
func (s *IndicatorStore) PreviousN(_ context.Context, symbol string, before time.Time) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.IndicatorSnapshot
	for _, snap := range s.data {
		if snap.Symbol != symbol || !snap.CalcDate.Before(before) {
			continue
		}
		if best == nil || snap.CalcDate.After(best.CalcDate) {
			best = snap
		}
	}

	if best == nil {
		return 0, storage.ErrNotFound
	}
	return best.N, nil
}

// History retrieves up to limit most recent (date, N) pairs, oldest-first.
func (s *IndicatorStore) History(_ context.Context, symbol string, limit int) ([]domain.NPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var points []domain.NPoint
	for _, snap := range s.data {
		if snap.Symbol == symbol {
			points = append(points, domain.NPoint{Date: snap.CalcDate, N: snap.N})
		}
	}

	// Keep the limit-many newest, then present oldest-first.
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.After(points[j].Date)
	})
	if limit > 0 && len(points) > limit {
		points = points[:limit]
	}
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}

// copySnapshot clones a snapshot including its optional channels.
func copySnapshot(s *domain.IndicatorSnapshot) *domain.IndicatorSnapshot {
	out := *s
	if s.Donchian10 != nil {
		c := *s.Donchian10
		out.Donchian10 = &c
	}
	if s.Donchian20 != nil {
		c := *s.Donchian20
		out.Donchian20 = &c
	}
	if s.Donchian55 != nil {
		c := *s.Donchian55
		out.Donchian55 = &c
	}
	return &out
}
