// Package universe carries the built-in ETF catalog used for seeding and for
// memory-backed runs. The authoritative catalog lives in the etf_universe
// table and is maintained outside this system.
package universe

import "etf-turtle/internal/domain"

// Defaults returns the built-in catalog entries.
func Defaults() []domain.UniverseEntry {
	return []domain.UniverseEntry{
		{Symbol: "EEM", Name: "iShares MSCI Emerging Markets", PointValue: 1, Active: true},
		{Symbol: "EFA", Name: "iShares MSCI EAFE", PointValue: 1, Active: true},
		{Symbol: "GLD", Name: "SPDR Gold Shares", PointValue: 1, Active: true},
		{Symbol: "IWM", Name: "iShares Russell 2000", PointValue: 1, Active: true},
		{Symbol: "QQQ", Name: "Invesco QQQ Trust", PointValue: 1, Active: true},
		{Symbol: "SPY", Name: "SPDR S&P 500", PointValue: 1, Active: true},
		{Symbol: "TLT", Name: "iShares 20+ Year Treasury Bond", PointValue: 1, Active: true},
		{Symbol: "USO", Name: "United States Oil Fund", PointValue: 1, Active: true},
	}
}
