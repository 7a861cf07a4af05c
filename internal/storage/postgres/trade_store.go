package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"etf-turtle/internal/domain"
	"etf-turtle/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const tradeColumns = `
	id, symbol, direction, system,
	entry_price, entry_date, entry_contracts, n_at_entry,
	exit_price, exit_date, exit_reason,
	realized_pnl, commission, max_units
`

// Save upserts a trade by ID. Entry fields are immutable after the first
// insert: the conflict-update clause intentionally omits them, so a same-ID
// save can only correct exit fields and the max-unit count.
func (s *TradeStore) Save(ctx context.Context, t *domain.Trade) error {
	if t == nil || t.ID == "" || t.EntryContracts <= 0 {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trades (` + tradeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			exit_price = EXCLUDED.exit_price,
			exit_date = EXCLUDED.exit_date,
			exit_reason = EXCLUDED.exit_reason,
			realized_pnl = EXCLUDED.realized_pnl,
			commission = EXCLUDED.commission,
			max_units = EXCLUDED.max_units
	`

	_, err := s.pool.Exec(ctx, query,
		t.ID, t.Symbol, t.Direction, t.System,
		t.EntryPrice, t.EntryDate, t.EntryContracts, t.NAtEntry,
		t.ExitPrice, t.ExitDate, t.ExitReason,
		t.RealizedPnL, t.Commission, t.MaxUnits,
	)
	if err != nil {
		return fmt.Errorf("save trade: %w", err)
	}
	if s.pool.metrics != nil {
		s.pool.metrics.TradesWritten.Inc()
	}
	return nil
}

// LastBySystem retrieves the newest trade (by exit date) for a symbol
// restricted to one strategy system. Used by the S1 last-trade-loser filter.
func (s *TradeStore) LastBySystem(ctx context.Context, symbol string, system domain.System) (*domain.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE symbol = $1 AND system = $2
		ORDER BY exit_date DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query, symbol, system)
	t, err := scanTrade(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get last trade by system: %w", err)
	}
	return t, nil
}

// RecentBySymbol retrieves up to limit trades for a symbol, newest-first by
// exit date.
func (s *TradeStore) RecentBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE symbol = $1
		ORDER BY exit_date DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent trades by symbol: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// LastMatching retrieves the newest trade for a symbol satisfying the
// optional system and direction filters, applied conjunctively. Predicates
// are appended as parameterized conditions; values never enter the SQL text.
func (s *TradeStore) LastMatching(ctx context.Context, symbol string, system *domain.System, direction *domain.Direction) (*domain.Trade, error) {
	conds := []string{"symbol = $1"}
	args := []any{symbol}

	if system != nil {
		args = append(args, *system)
		conds = append(conds, fmt.Sprintf("system = $%d", len(args)))
	}
	if direction != nil {
		args = append(args, *direction)
		conds = append(conds, fmt.Sprintf("direction = $%d", len(args)))
	}

	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY exit_date DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query, args...)
	t, err := scanTrade(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get last matching trade: %w", err)
	}
	return t, nil
}

// scanTrade scans a single row into a Trade.
func scanTrade(row pgx.Row) (*domain.Trade, error) {
	var t domain.Trade

	err := row.Scan(
		&t.ID, &t.Symbol, &t.Direction, &t.System,
		&t.EntryPrice, &t.EntryDate, &t.EntryContracts, &t.NAtEntry,
		&t.ExitPrice, &t.ExitDate, &t.ExitReason,
		&t.RealizedPnL, &t.Commission, &t.MaxUnits,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// scanTrades scans multiple rows into a slice of Trade.
func scanTrades(rows pgx.Rows) ([]*domain.Trade, error) {
	var trades []*domain.Trade

	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}
	return trades, nil
}
