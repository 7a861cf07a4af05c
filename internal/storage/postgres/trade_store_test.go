package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etf-turtle/internal/domain"
	"etf-turtle/internal/storage"
)

func closedTrade(id, symbol string, system domain.System, direction domain.Direction, exitDate time.Time) *domain.Trade {
	return &domain.Trade{
		ID:             id,
		Symbol:         symbol,
		Direction:      direction,
		System:         system,
		EntryPrice:     100,
		EntryDate:      exitDate.AddDate(0, 0, -10),
		EntryContracts: 2,
		NAtEntry:       2.5,
		ExitPrice:      110,
		ExitDate:       exitDate,
		ExitReason:     "channel exit",
		RealizedPnL:    20,
		Commission:     1,
		MaxUnits:       1,
	}
}

func TestTradeStore_SaveAndReadBack(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()

	exit := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
	trade := closedTrade("t-1", "SPY", domain.SystemS1, domain.DirectionLong, exit)
	require.NoError(t, store.Save(ctx, trade))

	got, err := store.LastBySystem(ctx, "SPY", domain.SystemS1)
	require.NoError(t, err)
	assert.Equal(t, trade.ID, got.ID)
	assert.Equal(t, trade.Symbol, got.Symbol)
	assert.Equal(t, domain.DirectionLong, got.Direction)
	assert.Equal(t, domain.SystemS1, got.System)
	assert.Equal(t, trade.EntryPrice, got.EntryPrice)
	assert.Equal(t, trade.EntryContracts, got.EntryContracts)
	assert.Equal(t, trade.NAtEntry, got.NAtEntry)
	assert.True(t, got.ExitDate.Equal(exit))
	assert.Equal(t, "channel exit", got.ExitReason)
	assert.Equal(t, 20.0, got.RealizedPnL)
	assert.Equal(t, 1.0, got.Commission)
	assert.Equal(t, 1, got.MaxUnits)
}

func TestTradeStore_SaveKeepsEntryFieldsOnConflict(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()

	exit := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
	original := closedTrade("t-1", "SPY", domain.SystemS1, domain.DirectionLong, exit)
	require.NoError(t, store.Save(ctx, original))

	// Correction pass: exit fields may change, entry fields must not
	update := *original
	update.Symbol = "QQQ"
	update.Direction = domain.DirectionShort
	update.EntryPrice = 999
	update.EntryContracts = 50
	update.NAtEntry = 99
	update.ExitPrice = 130
	update.ExitReason = "stop"
	update.RealizedPnL = 60
	update.Commission = 3
	update.MaxUnits = 4
	require.NoError(t, store.Save(ctx, &update))

	got, err := store.LastMatching(ctx, "SPY", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "SPY", got.Symbol)
	assert.Equal(t, domain.DirectionLong, got.Direction)
	assert.Equal(t, 100.0, got.EntryPrice)
	assert.Equal(t, 2, got.EntryContracts)
	assert.Equal(t, 2.5, got.NAtEntry)
	assert.Equal(t, 130.0, got.ExitPrice)
	assert.Equal(t, "stop", got.ExitReason)
	assert.Equal(t, 60.0, got.RealizedPnL)
	assert.Equal(t, 3.0, got.Commission)
	assert.Equal(t, 4, got.MaxUnits)

	// No second row appeared under the drifted symbol
	_, err = store.LastMatching(ctx, "QQQ", nil, nil)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTradeStore_LastBySystemIgnoresOtherSystem(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, closedTrade("s1-old", "SPY", domain.SystemS1, domain.DirectionLong, base)))
	require.NoError(t, store.Save(ctx, closedTrade("s1-new", "SPY", domain.SystemS1, domain.DirectionShort, base.AddDate(0, 0, 5))))
	require.NoError(t, store.Save(ctx, closedTrade("s2-latest", "SPY", domain.SystemS2, domain.DirectionLong, base.AddDate(0, 0, 20))))

	got, err := store.LastBySystem(ctx, "SPY", domain.SystemS1)
	require.NoError(t, err)
	assert.Equal(t, "s1-new", got.ID)

	_, err = store.LastBySystem(ctx, "GLD", domain.SystemS1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTradeStore_LastMatchingFilters(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, closedTrade("long-s1", "GLD", domain.SystemS1, domain.DirectionLong, base)))
	require.NoError(t, store.Save(ctx, closedTrade("short-s1", "GLD", domain.SystemS1, domain.DirectionShort, base.AddDate(0, 0, 3))))
	require.NoError(t, store.Save(ctx, closedTrade("long-s2", "GLD", domain.SystemS2, domain.DirectionLong, base.AddDate(0, 0, 6))))

	got, err := store.LastMatching(ctx, "GLD", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "long-s2", got.ID)

	got, err = store.LastMatching(ctx, "GLD", ptr(domain.SystemS1), nil)
	require.NoError(t, err)
	assert.Equal(t, "short-s1", got.ID)

	got, err = store.LastMatching(ctx, "GLD", ptr(domain.SystemS1), ptr(domain.DirectionLong))
	require.NoError(t, err)
	assert.Equal(t, "long-s1", got.ID)

	got, err = store.LastMatching(ctx, "GLD", nil, ptr(domain.DirectionShort))
	require.NoError(t, err)
	assert.Equal(t, "short-s1", got.ID)
}

func TestTradeStore_RecentBySymbol(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	ids := []string{"t-0", "t-1", "t-2", "t-3"}
	for i, id := range ids {
		require.NoError(t, store.Save(ctx, closedTrade(id, "SPY", domain.SystemS1, domain.DirectionLong, base.AddDate(0, 0, i))))
	}
	require.NoError(t, store.Save(ctx, closedTrade("other", "QQQ", domain.SystemS1, domain.DirectionLong, base.AddDate(0, 0, 30))))

	recent, err := store.RecentBySymbol(ctx, "SPY", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "t-3", recent[0].ID)
	assert.Equal(t, "t-2", recent[1].ID)
}

func TestTradeStore_SaveInvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, nil), storage.ErrInvalidInput)

	noID := closedTrade("", "SPY", domain.SystemS1, domain.DirectionLong, time.Now())
	assert.ErrorIs(t, store.Save(ctx, noID), storage.ErrInvalidInput)

	noContracts := closedTrade("t-1", "SPY", domain.SystemS1, domain.DirectionLong, time.Now())
	noContracts.EntryContracts = 0
	assert.ErrorIs(t, store.Save(ctx, noContracts), storage.ErrInvalidInput)
}
