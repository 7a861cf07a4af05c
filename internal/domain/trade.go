package domain

import "time"

// Direction of a position.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// System identifies the breakout strategy variant that produced a trade.
// S1 uses the 20-day channel with a last-trade-loser entry filter; S2 uses
// the 55-day channel unconditionally.
type System string

const (
	SystemS1 System = "S1"
	SystemS2 System = "S2"
)

// Trade is the immutable audit record of one fully closed position.
// Corresponds to the trades table. Entry fields never change after the first
// save; a same-ID save replaces exit fields only (write-then-correct, not
// mutation).
type Trade struct {
	ID        string
	Symbol    string
	Direction Direction
	System    System

	// Entry (immutable after first insert)
	EntryPrice     float64
	EntryDate      time.Time
	EntryContracts int // must be > 0
	NAtEntry       float64

	// Exit
	ExitPrice  float64
	ExitDate   time.Time
	ExitReason string

	RealizedPnL float64
	Commission  float64
	MaxUnits    int // maximum concurrent unit count reached
}

// NewClosedTrade fills in RealizedPnL from the direction-aware price
// difference, contract count and per-point dollar value, and returns the
// completed record. All other fields are taken from t as given.
func NewClosedTrade(t Trade, pointValue float64) *Trade {
	diff := t.ExitPrice - t.EntryPrice
	if t.Direction == DirectionShort {
		diff = -diff
	}
	t.RealizedPnL = diff * float64(t.EntryContracts) * pointValue
	return &t
}

// NetPnL is the realized P&L after commission. Recomputed on every call,
// never stored.
func (t *Trade) NetPnL() float64 {
	return t.RealizedPnL - t.Commission
}

// IsWinner reports whether the trade was profitable after commission.
func (t *Trade) IsWinner() bool {
	return t.NetPnL() > 0
}

// HoldingDays is the holding period in whole days.
func (t *Trade) HoldingDays() int {
	return int(t.ExitDate.Sub(t.EntryDate).Hours() / 24)
}

// RMultiple is the realized P&L normalized by the initial dollar risk
// (2 x N-at-entry x entry contracts). Zero when the denominator is zero.
func (t *Trade) RMultiple() float64 {
	risk := 2 * t.NAtEntry * float64(t.EntryContracts)
	if risk == 0 {
		return 0
	}
	return t.RealizedPnL / risk
}
