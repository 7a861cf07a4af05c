package migrations

import (
	"context"
	"fmt"

	"etf-turtle/internal/domain"
	"etf-turtle/internal/storage/postgres"
)

// Seed loads universe entries and indicator snapshots in one explicit
// transaction, so a partially applied seed never survives. The hot
// SaveSnapshot path stays a single implicit transaction per call; only this
// migration-adjacent script batches snapshot writes transactionally.
func Seed(ctx context.Context, pool *postgres.Pool, entries []domain.UniverseEntry, snapshots []*domain.IndicatorSnapshot) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		_, err := tx.Exec(ctx, `
			INSERT INTO etf_universe (symbol, name, point_value, active)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (symbol) DO UPDATE SET
				name = EXCLUDED.name,
				point_value = EXCLUDED.point_value,
				active = EXCLUDED.active
		`, e.Symbol, e.Name, e.PointValue, e.Active)
		if err != nil {
			return fmt.Errorf("seed universe entry %s: %w", e.Symbol, err)
		}
	}

	for _, s := range snapshots {
		var u10, l10, u20, l20, u55, l55 *float64
		if c := s.Donchian10; c != nil {
			u10, l10 = &c.Upper, &c.Lower
		}
		if c := s.Donchian20; c != nil {
			u20, l20 = &c.Upper, &c.Lower
		}
		if c := s.Donchian55; c != nil {
			u55, l55 = &c.Upper, &c.Lower
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO calculated_indicators (
				symbol, calc_date, n_value,
				donchian_10_upper, donchian_10_lower,
				donchian_20_upper, donchian_20_lower,
				donchian_55_upper, donchian_55_lower
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (symbol, calc_date) DO UPDATE SET
				n_value = EXCLUDED.n_value,
				donchian_10_upper = EXCLUDED.donchian_10_upper,
				donchian_10_lower = EXCLUDED.donchian_10_lower,
				donchian_20_upper = EXCLUDED.donchian_20_upper,
				donchian_20_lower = EXCLUDED.donchian_20_lower,
				donchian_55_upper = EXCLUDED.donchian_55_upper,
				donchian_55_lower = EXCLUDED.donchian_55_lower
		`, s.Symbol, s.CalcDate, s.N, u10, l10, u20, l20, u55, l55)
		if err != nil {
			return fmt.Errorf("seed snapshot %s@%s: %w", s.Symbol, s.CalcDate.Format("2006-01-02"), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
