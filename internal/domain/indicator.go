package domain

import "time"

// Donchian channel periods calculated each day.
const (
	ChannelPeriod10 = 10
	ChannelPeriod20 = 20
	ChannelPeriod55 = 55
)

// Channel is a Donchian channel band: the highest high and lowest low over a
// trailing window of Period days.
type Channel struct {
	Period int     `json:"period"`
	Upper  float64 `json:"upper"`
	Lower  float64 `json:"lower"`
}

// IndicatorSnapshot holds one symbol's calculated values for one calendar
// date. Corresponds to the calculated_indicators table; at most one snapshot
// exists per (symbol, calc date). Channel fields are independently optional:
// a snapshot may carry N without any channel, or any subset of the three
// periods.
type IndicatorSnapshot struct {
	Symbol   string
	CalcDate time.Time
	N        float64 // volatility measure (average true range)

	Donchian10 *Channel
	Donchian20 *Channel
	Donchian55 *Channel

	CreatedAt time.Time
}

// NPoint is one (date, N) pair from a snapshot history query.
type NPoint struct {
	Date time.Time
	N    float64
}
