// Package result holds ranked search hits.
package result

import (
	"github.com/loomline/rugdex/internal/domain/catalog"
	"github.com/loomline/rugdex/internal/domain/search/score"
)

// Result is a single ranked catalog hit.
type Result struct {
	entry catalog.Entry
	score score.Score
}

// New creates a search result.
func New(entry catalog.Entry, s score.Score) Result {
	return Result{entry: entry, score: s}
}

// Entry returns the matched catalog entry.
func (r Result) Entry() catalog.Entry { return r.entry }

// Score returns the fused ranking score.
func (r Result) Score() score.Score { return r.score }
