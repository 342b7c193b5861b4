package structured

import (
	"context"

	"github.com/loomline/rugdex/internal/domain/query"
)

// Parser converts a free text query into structured facets.
type Parser interface {
	Parse(ctx context.Context, text string) (query.Parsed, error)
}

// Embedder produces a sentence embedding for a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
