package rugdex

import (
	"context"
	"fmt"

	"github.com/loomline/rugdex/internal/domain/search/result"
)

// defaultTopK bounds a search when the caller does not set one.
const defaultTopK = 5

// Hit is a ranked catalog product.
type Hit struct {
	Handle    string
	Title     string
	Price     float64
	ImagePath string
	Score     float64
}

// ParsedQuery is the structured facet set extracted from a free text
// query. Empty fields mean the facet was not found.
type ParsedQuery struct {
	Size  string
	Color string
	Style string
	Shape string
}

// SearchBuilder is a fluent builder for catalog searches.
type SearchBuilder struct {
	client *Client

	query    string
	topK     int
	minPrice *float64
	maxPrice *float64
}

// TopK sets the maximum number of hits to return.
func (b *SearchBuilder) TopK(k int) *SearchBuilder {
	b.topK = k
	return b
}

// MinPrice sets the inclusive lower price bound.
func (b *SearchBuilder) MinPrice(p float64) *SearchBuilder {
	b.minPrice = &p
	return b
}

// MaxPrice sets the inclusive upper price bound.
func (b *SearchBuilder) MaxPrice(p float64) *SearchBuilder {
	b.maxPrice = &p
	return b
}

// Structured ranks by parsed facets fused with semantic similarity and
// returns the hits with the parsed query.
func (b *SearchBuilder) Structured(ctx context.Context) ([]Hit, ParsedQuery, error) {
	results, parsed, err := b.client.structured.Search(ctx, b.query, b.k(), b.minPrice, b.maxPrice)
	if err != nil {
		return nil, ParsedQuery{}, fmt.Errorf("structured search: %w", err)
	}
	pq := ParsedQuery{
		Size:  parsed.Size(),
		Color: parsed.Color(),
		Style: parsed.Style(),
		Shape: parsed.Shape(),
	}
	return toHits(results), pq, nil
}

// Semantic ranks purely by text embedding similarity.
func (b *SearchBuilder) Semantic(ctx context.Context) ([]Hit, error) {
	results, err := b.client.multimodal.SearchText(ctx, b.query, b.k(), b.minPrice, b.maxPrice)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	return toHits(results), nil
}

// Visual ranks by similarity to a room image, fused with the builder's
// text query when one is set.
func (b *SearchBuilder) Visual(ctx context.Context, imagePath string) ([]Hit, error) {
	results, err := b.client.multimodal.SearchImage(ctx, imagePath, b.query, b.k(), b.minPrice, b.maxPrice)
	if err != nil {
		return nil, fmt.Errorf("visual search: %w", err)
	}
	return toHits(results), nil
}

func (b *SearchBuilder) k() int {
	if b.topK > 0 {
		return b.topK
	}
	return defaultTopK
}

// toHits drops excluded candidates and converts the rest.
func toHits(results []result.Result) []Hit {
	hits := make([]Hit, 0, len(results))
	for i := range results {
		sc := results[i].Score()
		if sc.IsExcluded() {
			continue
		}
		entry := results[i].Entry()
		hits = append(hits, Hit{
			Handle:    entry.Handle(),
			Title:     entry.Title(),
			Price:     entry.Price(),
			ImagePath: entry.ImagePath(),
			Score:     sc.Value(),
		})
	}
	return hits
}
