// Package mode enumerates the supported ranking modes.
package mode

// Mode is the ranking strategy requested by a caller.
type Mode string

// Ranking mode constants.
const (
	// Structured fuses semantic text similarity with parsed-facet
	// metadata matching.
	Structured Mode = "structured"
	// Semantic ranks purely by sentence-embedding similarity.
	Semantic Mode = "semantic"
	// Visual ranks by room-image similarity, optionally fused with a
	// cross-modal text signal.
	Visual Mode = "visual"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Structured || m == Semantic || m == Visual
}
