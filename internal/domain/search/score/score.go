// Package score models ranking scores as an explicit tri-state:
// a finite comparable value, or an exclusion marker for items that
// failed price validation or lack an embedding. Excluded items stay in
// the candidate set and sort below every valid score, so a catalog row
// is never silently dropped from a ranking pass.
package score

import "sort"

// Score is a ranking score or an exclusion marker.
type Score struct {
	value    float64
	excluded bool
}

// Valid creates a comparable score.
func Valid(v float64) Score { return Score{value: v} }

// Excluded creates an exclusion marker.
func Excluded() Score { return Score{excluded: true} }

// Value returns the score value. Zero for excluded scores.
func (s Score) Value() float64 { return s.value }

// IsExcluded reports whether the item was excluded from ranking.
func (s Score) IsExcluded() bool { return s.excluded }

// Better reports whether s ranks strictly above other. Any valid score
// ranks above an excluded one; two excluded scores are equal.
func (s Score) Better(other Score) bool {
	if s.excluded {
		return false
	}
	if other.excluded {
		return true
	}
	return s.value > other.value
}

// TopK returns the indices of the k best scores in descending order.
// Ties keep the original index order, which makes the ranking a
// deterministic function of the input. Excluded scores sort last but
// are still selectable when k exceeds the number of valid scores.
func TopK(scores []Score, k int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]].Better(scores[idx[b]])
	})
	if k < 0 {
		k = 0
	}
	if k > len(idx) {
		k = len(idx)
	}
	return idx[:k]
}
