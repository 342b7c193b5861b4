package parse

import (
	"context"
	"fmt"

	"github.com/loomline/rugdex/internal/domain/query"
	"github.com/loomline/rugdex/internal/domain/vector"
)

// StyleIndex matches single words against the fixed style concept
// vocabulary by embedding similarity. Concept vectors are embedded once
// at construction.
type StyleIndex struct {
	embedder Embedder
	concepts []string
	vectors  [][]float32
}

// NewStyleIndex embeds the style concept vocabulary and returns a
// matcher over it.
func NewStyleIndex(ctx context.Context, embedder Embedder) (*StyleIndex, error) {
	concepts := query.StyleConcepts
	vectors := make([][]float32, len(concepts))
	for i, c := range concepts {
		v, err := embedder.Embed(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("embed style concept %q: %w", c, err)
		}
		vectors[i] = v
	}
	return &StyleIndex{embedder: embedder, concepts: concepts, vectors: vectors}, nil
}

// BestMatch returns the style concept closest to word and its cosine
// similarity.
func (s *StyleIndex) BestMatch(ctx context.Context, word string) (string, float64, error) {
	wv, err := s.embedder.Embed(ctx, word)
	if err != nil {
		return "", 0, fmt.Errorf("embed word %q: %w", word, err)
	}

	bestIdx := 0
	bestSim := -1.0
	for i, cv := range s.vectors {
		if sim := vector.Cosine(wv, cv); sim > bestSim {
			bestSim = sim
			bestIdx = i
		}
	}
	return s.concepts[bestIdx], bestSim, nil
}
