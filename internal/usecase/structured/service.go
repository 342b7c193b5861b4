// Package structured ranks catalog entries by fusing semantic text
// similarity with a metadata-match score derived from parsed query
// facets.
package structured

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/loomline/rugdex/internal/domain/catalog"
	"github.com/loomline/rugdex/internal/domain/query"
	"github.com/loomline/rugdex/internal/domain/search/result"
	"github.com/loomline/rugdex/internal/domain/search/score"
	"github.com/loomline/rugdex/internal/domain/vector"
)

// Metadata score contributions. Color and shape are directly checkable
// against catalog text, so a stated-but-missing value is penalized;
// style and size only ever boost.
const (
	colorMatchBoost  = 3.0
	colorMissPenalty = 2.0
	shapeMatchBoost  = 1.5
	shapeMissPenalty = 1.0
	styleMatchBoost  = 1.0
	sizeMatchBoost   = 0.5
)

// Fusion weights. An explicit color or shape facet makes the metadata
// score dominate; free-form descriptive queries lean on semantics.
const (
	semanticWeightFreeform = 0.7
	metadataWeightFreeform = 0.3
	semanticWeightFaceted  = 0.3
	metadataWeightFaceted  = 0.7
)

// Service is the structured ranking engine. Text embeddings for the
// whole catalog are built once at construction and read-only afterward,
// so concurrent searches need no locking.
type Service struct {
	entries    []catalog.Entry
	parser     Parser
	embedder   Embedder
	embeddings [][]float32
	workers    int
	logger     *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithBuildWorkers sets the worker pool size for the startup embedding
// build. Default is runtime.NumCPU(), minimum 1.
func WithBuildWorkers(n int) Option {
	return func(s *Service) {
		if n < 1 {
			n = 1
		}
		s.workers = n
	}
}

// New creates a structured ranking engine and precomputes one text
// embedding per catalog entry from its title and description. An entry
// whose embedding fails degrades to excluded in every ranking instead
// of aborting the build.
func New(
	ctx context.Context, entries []catalog.Entry,
	parser Parser, embedder Embedder, logger *zap.Logger, opts ...Option,
) (*Service, error) {
	s := &Service{
		entries:  entries,
		parser:   parser,
		embedder: embedder,
		workers:  runtime.NumCPU(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	embeddings, err := buildTextEmbeddings(ctx, entries, embedder, s.workers, logger)
	if err != nil {
		return nil, fmt.Errorf("build text embeddings: %w", err)
	}
	s.embeddings = embeddings

	return s, nil
}

// Search parses the query, scores every catalog entry, and returns the
// topK ranked results together with the parsed facets. An empty query
// returns an empty list. Entries with invalid or out-of-bounds prices
// (or without an embedding) receive the exclusion score and stay at the
// bottom of the candidate set rather than being removed from it.
func (s *Service) Search(
	ctx context.Context, text string, topK int, minPrice, maxPrice *float64,
) ([]result.Result, query.Parsed, error) {
	if strings.TrimSpace(text) == "" {
		return nil, query.Parsed{}, nil
	}

	parsed, err := s.parser.Parse(ctx, text)
	if err != nil {
		return nil, query.Parsed{}, fmt.Errorf("parse query: %w", err)
	}

	queryVec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, query.Parsed{}, fmt.Errorf("vectorize query: %w", err)
	}

	wSemantic, wMetadata := weightsFor(parsed)
	s.logger.Debug("structured search",
		zap.String("size", parsed.Size()),
		zap.String("color", parsed.Color()),
		zap.String("style", parsed.Style()),
		zap.String("shape", parsed.Shape()),
		zap.Float64("w_semantic", wSemantic),
		zap.Float64("w_metadata", wMetadata),
	)

	scores := make([]score.Score, len(s.entries))
	for i := range s.entries {
		e := &s.entries[i]
		if !e.PriceValid() || !e.PriceWithin(minPrice, maxPrice) || s.embeddings[i] == nil {
			scores[i] = score.Excluded()
			continue
		}
		semantic := vector.Cosine(queryVec, s.embeddings[i])
		scores[i] = score.Valid(wSemantic*semantic + wMetadata*metadataScore(e, parsed))
	}

	top := score.TopK(scores, topK)
	results := make([]result.Result, 0, len(top))
	for _, i := range top {
		results = append(results, result.New(s.entries[i], scores[i]))
	}
	return results, parsed, nil
}

// weightsFor selects the fusion weights for a parsed query.
func weightsFor(p query.Parsed) (wSemantic, wMetadata float64) {
	if p.HasSpecificFacet() {
		return semanticWeightFaceted, metadataWeightFaceted
	}
	return semanticWeightFreeform, metadataWeightFreeform
}

// metadataScore sums the facet contributions for one entry against the
// parsed query. Matching is substring containment in the lowercased
// title+description; colors match through synonym expansion.
func metadataScore(e *catalog.Entry, p query.Parsed) float64 {
	var s float64
	text := e.MatchText()

	if p.HasColor() {
		matched := false
		for _, v := range query.ExpandColor(p.Color()) {
			if strings.Contains(text, v) {
				matched = true
				break
			}
		}
		if matched {
			s += colorMatchBoost
		} else {
			s -= colorMissPenalty
		}
	}

	if p.HasShape() {
		if strings.Contains(text, strings.ToLower(p.Shape())) {
			s += shapeMatchBoost
		} else {
			s -= shapeMissPenalty
		}
	}

	if p.HasStyle() && strings.Contains(text, strings.ToLower(p.Style())) {
		s += styleMatchBoost
	}

	if p.HasSize() && strings.Contains(text, strings.ToLower(p.Size())) {
		s += sizeMatchBoost
	}

	return s
}

// buildTextEmbeddings embeds every entry's title+description on a
// worker pool. Per-item failures are logged and leave a nil slot.
func buildTextEmbeddings(
	ctx context.Context, entries []catalog.Entry,
	embedder Embedder, workers int, logger *zap.Logger,
) ([][]float32, error) {
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	embeddings := make([][]float32, len(entries))
	var wg sync.WaitGroup
	for i := range entries {
		i := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			vec, err := embedder.Embed(ctx, entries[i].EmbedText())
			if err != nil {
				logger.Warn("text embedding failed",
					zap.String("handle", entries[i].Handle()),
					zap.Error(err),
				)
				return
			}
			embeddings[i] = vec
		}); err != nil {
			wg.Done()
			return nil, fmt.Errorf("submit embedding task: %w", err)
		}
	}
	wg.Wait()

	return embeddings, nil
}
