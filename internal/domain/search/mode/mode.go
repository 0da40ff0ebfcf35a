// Package mode defines the requested search strategies and the strategy
// actually used, which the response reports so degraded service stays
// observable without being an error.
package mode

// Mode is the search strategy requested by the caller.
type Mode string

// Requested search mode constants.
const (
	// Auto tries the vector backend and cascades to lexical fallback on
	// fault or an empty first page.
	Auto Mode = "auto"
	// Semantic pins the vector backend; faults are surfaced, never cascaded.
	Semantic Mode = "semantic"
	// Name skips the vector backend and matches on names directly.
	Name Mode = "name"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Auto || m == Semantic || m == Name
}

// Used is the search strategy that actually produced the results.
type Used string

// Reported search mode constants.
const (
	UsedVector   Used = "vector"
	UsedFallback Used = "fallback"
	UsedName     Used = "name"
)
