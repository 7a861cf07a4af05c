package postgres

import (
	"context"
	"fmt"

	"etf-turtle/internal/domain"
	"etf-turtle/internal/storage"
)

// UniverseStore implements storage.UniverseStore using PostgreSQL. The
// catalog is maintained elsewhere; this store only reads it.
type UniverseStore struct {
	pool *Pool
}

// NewUniverseStore creates a new UniverseStore.
func NewUniverseStore(pool *Pool) *UniverseStore {
	return &UniverseStore{pool: pool}
}

// Compile-time interface check.
var _ storage.UniverseStore = (*UniverseStore)(nil)

// ActiveSymbols retrieves all active catalog entries, ordered by symbol.
func (s *UniverseStore) ActiveSymbols(ctx context.Context) ([]domain.UniverseEntry, error) {
	query := `
		SELECT symbol, name, point_value, active
		FROM etf_universe
		WHERE active
		ORDER BY symbol
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active universe symbols: %w", err)
	}
	defer rows.Close()

	var entries []domain.UniverseEntry
	for rows.Next() {
		var e domain.UniverseEntry
		if err := rows.Scan(&e.Symbol, &e.Name, &e.PointValue, &e.Active); err != nil {
			return nil, fmt.Errorf("scan universe row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate universe rows: %w", err)
	}
	return entries, nil
}

// BySymbol retrieves one catalog entry. Returns ErrNotFound if not exists.
func (s *UniverseStore) BySymbol(ctx context.Context, symbol string) (*domain.UniverseEntry, error) {
	query := `
		SELECT symbol, name, point_value, active
		FROM etf_universe
		WHERE symbol = $1
	`

	var e domain.UniverseEntry
	err := s.pool.QueryRow(ctx, query, symbol).Scan(&e.Symbol, &e.Name, &e.PointValue, &e.Active)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get universe entry: %w", err)
	}
	return &e, nil
}
