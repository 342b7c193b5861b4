// Package multimodal ranks catalog entries against a room photo, a
// text query, or both, using precomputed per-item embeddings.
package multimodal

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/loomline/rugdex/internal/domain/catalog"
	"github.com/loomline/rugdex/internal/domain/search/result"
	"github.com/loomline/rugdex/internal/domain/search/score"
	"github.com/loomline/rugdex/internal/domain/vector"
)

// Default fusion weights for image+text search.
const (
	defaultImageWeight = 0.6
	defaultTextWeight  = 0.4
)

// emptyTextFallback stands in for entries whose title and description
// are both empty, so every row still gets a text embedding.
const emptyTextFallback = "rug"

// Service is the multimodal ranking engine. All three embedding caches
// (semantic text, item image, cross-modal title) are built once at
// construction and read-only afterward; a per-item failure degrades
// that entry to "no embedding" without aborting the build.
type Service struct {
	entries []catalog.Entry
	text    TextEmbedder
	cross   CrossModalEncoder

	textEmbeddings  [][]float32
	imageEmbeddings [][]float32
	titleEmbeddings [][]float32

	imageWeight float64
	textWeight  float64
	workers     int
	logger      *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithBuildWorkers sets the worker pool size for the startup embedding
// builds. Default is runtime.NumCPU(), minimum 1.
func WithBuildWorkers(n int) Option {
	return func(s *Service) {
		if n < 1 {
			n = 1
		}
		s.workers = n
	}
}

// WithFusionWeights overrides the image/text fusion weights.
func WithFusionWeights(image, text float64) Option {
	return func(s *Service) {
		s.imageWeight = image
		s.textWeight = text
	}
}

// New creates a multimodal ranking engine and precomputes the per-item
// embedding caches from the catalog.
func New(
	ctx context.Context, entries []catalog.Entry,
	text TextEmbedder, cross CrossModalEncoder, logger *zap.Logger, opts ...Option,
) (*Service, error) {
	s := &Service{
		entries:     entries,
		text:        text,
		cross:       cross,
		imageWeight: defaultImageWeight,
		textWeight:  defaultTextWeight,
		workers:     runtime.NumCPU(),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.buildCaches(ctx); err != nil {
		return nil, err
	}

	logger.Info("multimodal caches built",
		zap.Int("entries", len(entries)),
		zap.Int("image_embeddings", countPresent(s.imageEmbeddings)),
		zap.Int("title_embeddings", countPresent(s.titleEmbeddings)),
	)
	return s, nil
}

// SearchText ranks purely by semantic similarity between the query and
// each precomputed item text embedding. An empty query returns an
// empty list.
func (s *Service) SearchText(
	ctx context.Context, text string, topK int, minPrice, maxPrice *float64,
) ([]result.Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	queryVec, err := s.text.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	scores := make([]score.Score, len(s.entries))
	for i := range s.entries {
		e := &s.entries[i]
		if !e.PriceValid() || !e.PriceWithin(minPrice, maxPrice) || s.textEmbeddings[i] == nil {
			scores[i] = score.Excluded()
			continue
		}
		scores[i] = score.Valid(vector.Cosine(queryVec, s.textEmbeddings[i]))
	}

	return s.collect(scores, topK), nil
}

// SearchImage ranks by visual similarity between the room image and
// each item image, optionally fused with a cross-modal text signal
// when textQuery is non-empty. Items without an image embedding are
// excluded.
func (s *Service) SearchImage(
	ctx context.Context, imagePath, textQuery string, topK int, minPrice, maxPrice *float64,
) ([]result.Result, error) {
	roomVec, err := s.cross.EncodeImage(ctx, imagePath)
	if err != nil {
		return nil, fmt.Errorf("encode room image: %w", err)
	}

	var queryVec []float32
	textQuery = strings.TrimSpace(textQuery)
	if textQuery != "" {
		queryVec, err = s.cross.EncodeText(ctx, textQuery)
		if err != nil {
			return nil, fmt.Errorf("encode text query: %w", err)
		}
	}

	scores := make([]score.Score, len(s.entries))
	for i := range s.entries {
		e := &s.entries[i]
		if s.imageEmbeddings[i] == nil || !e.PriceValid() || !e.PriceWithin(minPrice, maxPrice) {
			scores[i] = score.Excluded()
			continue
		}

		imageSim := vector.Cosine(roomVec, s.imageEmbeddings[i])
		if queryVec == nil {
			scores[i] = score.Valid(imageSim)
			continue
		}

		if s.titleEmbeddings[i] == nil {
			scores[i] = score.Excluded()
			continue
		}
		textSim := vector.Cosine(queryVec, s.titleEmbeddings[i])
		scores[i] = score.Valid(s.imageWeight*imageSim + s.textWeight*textSim)
	}

	return s.collect(scores, topK), nil
}

func (s *Service) collect(scores []score.Score, topK int) []result.Result {
	top := score.TopK(scores, topK)
	results := make([]result.Result, 0, len(top))
	for _, i := range top {
		results = append(results, result.New(s.entries[i], scores[i]))
	}
	return results
}

// buildCaches fills the three embedding caches on a shared worker pool.
// Slots are index-addressed, so no synchronization beyond the wait
// group is needed.
func (s *Service) buildCaches(ctx context.Context) error {
	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	s.textEmbeddings = make([][]float32, len(s.entries))
	s.imageEmbeddings = make([][]float32, len(s.entries))
	s.titleEmbeddings = make([][]float32, len(s.entries))

	var wg sync.WaitGroup
	for i := range s.entries {
		i := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			s.buildEntry(ctx, i)
		}); err != nil {
			wg.Done()
			return fmt.Errorf("submit embedding task: %w", err)
		}
	}
	wg.Wait()

	return nil
}

func (s *Service) buildEntry(ctx context.Context, i int) {
	e := &s.entries[i]

	text := strings.TrimSpace(e.EmbedText())
	if text == "" {
		text = emptyTextFallback
	}
	if vec, err := s.text.Embed(ctx, text); err != nil {
		s.logger.Warn("text embedding failed",
			zap.String("handle", e.Handle()), zap.Error(err))
	} else {
		s.textEmbeddings[i] = vec
	}

	if path := e.ImagePath(); path != "" {
		if vec, err := s.cross.EncodeImage(ctx, path); err != nil {
			s.logger.Warn("image embedding failed",
				zap.String("handle", e.Handle()),
				zap.String("path", path),
				zap.Error(err))
		} else {
			s.imageEmbeddings[i] = vec
		}
	}

	if vec, err := s.cross.EncodeText(ctx, e.Title()); err != nil {
		s.logger.Warn("title embedding failed",
			zap.String("handle", e.Handle()), zap.Error(err))
	} else {
		s.titleEmbeddings[i] = vec
	}
}

func countPresent(vecs [][]float32) int {
	n := 0
	for _, v := range vecs {
		if v != nil {
			n++
		}
	}
	return n
}
