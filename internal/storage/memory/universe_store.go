package memory

import (
	"context"
	"sort"
	"sync"

	"etf-turtle/internal/domain"
	"etf-turtle/internal/storage"
)

// UniverseStore is an in-memory implementation of storage.UniverseStore.
// Put exists so tests and the --use-memory cmd path can load a catalog; the
// interface itself stays read-only.
type UniverseStore struct {
	mu   sync.RWMutex
	data map[string]domain.UniverseEntry
}

// NewUniverseStore creates a new in-memory universe store.
func NewUniverseStore() *UniverseStore {
	return &UniverseStore{data: make(map[string]domain.UniverseEntry)}
}

var _ storage.UniverseStore = (*UniverseStore)(nil)

// Put adds or replaces a catalog entry.
func (s *UniverseStore) Put(e domain.UniverseEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[e.Symbol] = e
}

// ActiveSymbols retrieves all active catalog entries, ordered by symbol.
func (s *UniverseStore) ActiveSymbols(_ context.Context) ([]domain.UniverseEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []domain.UniverseEntry
	for _, e := range s.data {
		if e.Active {
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Symbol < entries[j].Symbol
	})
	return entries, nil
}

// BySymbol retrieves one catalog entry. Returns ErrNotFound if not exists.
func (s *UniverseStore) BySymbol(_ context.Context, symbol string) (*domain.UniverseEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[symbol]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return &e, nil
}
