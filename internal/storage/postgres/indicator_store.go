package postgres

import (
	"context"
	"fmt"
	"time"

	"etf-turtle/internal/domain"
	"etf-turtle/internal/storage"
)

// IndicatorStore implements storage.IndicatorStore using PostgreSQL.
type IndicatorStore struct {
	pool *Pool
}

// NewIndicatorStore creates a new IndicatorStore.
func NewIndicatorStore(pool *Pool) *IndicatorStore {
	return &IndicatorStore{pool: pool}
}

// Compile-time interface check.
var _ storage.IndicatorStore = (*IndicatorStore)(nil)

// SaveSnapshot upserts a snapshot by (symbol, calc_date).
//
// On conflict the whole row is overwritten: channel columns absent from the
// new snapshot are set to NULL rather than left at their stored values. This
// matches the daily calculation job, which always recomputes all three
// channels per write; a caller attempting a partial channel update will lose
// the channels it did not supply. See DESIGN.md before changing this to
// column-level merge semantics.
func (s *IndicatorStore) SaveSnapshot(ctx context.Context, snap *domain.IndicatorSnapshot) error {
	if snap == nil || snap.Symbol == "" || snap.CalcDate.IsZero() {
		return storage.ErrInvalidInput
	}

	query := `
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
	`

	u10, l10 := channelBounds(snap.Donchian10)
	u20, l20 := channelBounds(snap.Donchian20)
	u55, l55 := channelBounds(snap.Donchian55)

	_, err := s.pool.Exec(ctx, query,
		snap.Symbol, snap.CalcDate, snap.N,
		u10, l10, u20, l20, u55, l55,
	)
	if err != nil {
		return fmt.Errorf("save indicator snapshot: %w", err)
	}
	if s.pool.metrics != nil {
		s.pool.metrics.SnapshotsWritten.Inc()
	}
	return nil
}

// Latest retrieves the newest snapshot by date for a symbol.
func (s *IndicatorStore) Latest(ctx context.Context, symbol string) (*domain.IndicatorSnapshot, error) {
	query := `
		SELECT symbol, calc_date, n_value,
			donchian_10_upper, donchian_10_lower,
			donchian_20_upper, donchian_20_lower,
			donchian_55_upper, donchian_55_lower,
			created_at
		FROM calculated_indicators
		WHERE symbol = $1
		ORDER BY calc_date DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query, symbol)

	var snap domain.IndicatorSnapshot
	var u10, l10, u20, l20, u55, l55 *float64

	err := row.Scan(
		&snap.Symbol, &snap.CalcDate, &snap.N,
		&u10, &l10, &u20, &l20, &u55, &l55,
		&snap.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest indicator snapshot: %w", err)
	}

	snap.Donchian10 = newChannel(domain.ChannelPeriod10, u10, l10)
	snap.Donchian20 = newChannel(domain.ChannelPeriod20, u20, l20)
	snap.Donchian55 = newChannel(domain.ChannelPeriod55, u55, l55)
	return &snap, nil
}

// PreviousN retrieves the N value from the newest snapshot strictly before
// the given date. The incremental N calculation bootstraps from it.
func (s *IndicatorStore) PreviousN(ctx context.Context, symbol string, before time.Time) (float64, error) {
	query := `
		SELECT n_value
		FROM calculated_indicators
		WHERE symbol = $1 AND calc_date < $2::date
		ORDER BY calc_date DESC
		LIMIT 1
	`

	var n float64
	err := s.pool.QueryRow(ctx, query, symbol, before).Scan(&n)
	if err != nil {
		if isNotFoundError(err) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("get previous n value: %w", err)
	}
	return n, nil
}

// History retrieves up to limit most recent (date, N) pairs for a symbol.
// The query fetches newest-first so LIMIT keeps the right rows, then the
// result is reversed to the oldest-first output contract.
func (s *IndicatorStore) History(ctx context.Context, symbol string, limit int) ([]domain.NPoint, error) {
	query := `
		SELECT calc_date, n_value
		FROM calculated_indicators
		WHERE symbol = $1
		ORDER BY calc_date DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("get indicator history: %w", err)
	}
	defer rows.Close()

	var points []domain.NPoint
	for rows.Next() {
		var p domain.NPoint
		if err := rows.Scan(&p.Date, &p.N); err != nil {
			return nil, fmt.Errorf("scan indicator history row: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate indicator history rows: %w", err)
	}

	// Reverse to oldest-first
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}

// channelBounds splits an optional channel into its two nullable columns.
func channelBounds(c *domain.Channel) (upper, lower *float64) {
	if c == nil {
		return nil, nil
	}
	return &c.Upper, &c.Lower
}

// newChannel assembles an optional channel from its two nullable columns.
func newChannel(period int, upper, lower *float64) *domain.Channel {
	if upper == nil || lower == nil {
		return nil
	}
	return &domain.Channel{Period: period, Upper: *upper, Lower: *lower}
}
