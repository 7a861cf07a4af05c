package storage

import (
	"context"
	"time"

	"etf-turtle/internal/domain"
)

// Ordering note: "most recent" queries order strictly by the relevant
// timestamp/date column. Rows sharing that value come back in the store's
// natural order; callers must not rely on tie order.

// RunStore provides access to runs storage.
type RunStore interface {
	// Save upserts a run by ID. The task type and start time are immutable
	// after the first insert; a same-ID save replaces the terminal fields
	// (completion time, counters, status, summary, details).
	Save(ctx context.Context, r *domain.Run) error

	// ByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	ByID(ctx context.Context, id string) (*domain.Run, error)

	// Recent retrieves up to limit runs, newest-first by start time,
	// optionally restricted to one task type.
	Recent(ctx context.Context, taskType *domain.TaskType, limit int) ([]*domain.Run, error)

	// ByDate retrieves all runs whose start time falls on the given calendar
	// date (by the store's date truncation), newest-first, optionally
	// restricted to one task type.
	ByDate(ctx context.Context, day time.Time, taskType *domain.TaskType) ([]*domain.Run, error)
}

// TradeStore provides access to trades storage.
type TradeStore interface {
	// Save upserts a trade by ID. Entry fields are immutable after the first
	// insert; a same-ID save replaces exit fields and MaxUnits only.
	Save(ctx context.Context, t *domain.Trade) error

	// LastBySystem retrieves the newest trade (by exit date) for a symbol
	// restricted to one strategy system. Returns ErrNotFound if none exist.
	LastBySystem(ctx context.Context, symbol string, system domain.System) (*domain.Trade, error)

	// RecentBySymbol retrieves up to limit trades for a symbol, newest-first
	// by exit date.
	RecentBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error)

	// LastMatching retrieves the newest trade for a symbol satisfying the
	// optional system and direction filters, applied conjunctively. Returns
	// ErrNotFound if none match.
	LastMatching(ctx context.Context, symbol string, system *domain.System, direction *domain.Direction) (*domain.Trade, error)
}

// IndicatorStore provides access to calculated_indicators storage.
type IndicatorStore interface {
	// SaveSnapshot upserts a snapshot by (symbol, calc date). On conflict the
	// whole row is overwritten, including channel columns absent from the new
	// snapshot (see the postgres implementation for why).
	SaveSnapshot(ctx context.Context, s *domain.IndicatorSnapshot) error

	// Latest retrieves the newest snapshot by date for a symbol. Returns
	// ErrNotFound if none exist.
	Latest(ctx context.Context, symbol string) (*domain.IndicatorSnapshot, error)

	// PreviousN retrieves the N value from the newest snapshot strictly
	// before the given date. Returns ErrNotFound if none exist.
	PreviousN(ctx context.Context, symbol string, before time.Time) (float64, error)

	// History retrieves up to limit most recent (date, N) pairs for a symbol,
	// returned oldest-first.
	History(ctx context.Context, symbol string, limit int) ([]domain.NPoint, error)
}

// UniverseStore provides read-only access to the ETF catalog.
type UniverseStore interface {
	// ActiveSymbols retrieves all active catalog entries, ordered by symbol.
	ActiveSymbols(ctx context.Context) ([]domain.UniverseEntry, error)

	// BySymbol retrieves one catalog entry. Returns ErrNotFound if not exists.
	BySymbol(ctx context.Context, symbol string) (*domain.UniverseEntry, error)
}
