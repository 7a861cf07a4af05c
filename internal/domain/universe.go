package domain

// UniverseEntry is one tradable instrument from the ETF catalog. The catalog
// is maintained outside this system; the persistence layer only reads it.
type UniverseEntry struct {
	Symbol     string
	Name       string
	PointValue float64 // dollar value of a one-point move per contract
	Active     bool
}
