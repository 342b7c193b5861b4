// Package rugdex embeds the rug catalog ranking engines as a library,
// without the HTTP server. The caller supplies the embedding providers
// and a catalog CSV; the client wires the parser and both engines and
// precomputes the embedding caches.
package rugdex

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	domcat "github.com/loomline/rugdex/internal/domain/catalog"
	catalogrepo "github.com/loomline/rugdex/internal/repository/catalog"
	prosepkg "github.com/loomline/rugdex/internal/transport/prose"
	"github.com/loomline/rugdex/internal/usecase/multimodal"
	"github.com/loomline/rugdex/internal/usecase/parse"
	"github.com/loomline/rugdex/internal/usecase/structured"
)

// Embedder produces a sentence embedding for a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CrossModalEncoder encodes images and text into a joint vector space.
type CrossModalEncoder interface {
	EncodeImage(ctx context.Context, path string) ([]float32, error)
	EncodeText(ctx context.Context, text string) ([]float32, error)
}

// TaggedToken is a single token with its Penn Treebank part-of-speech tag.
type TaggedToken = parse.TaggedToken

// Tagger tokenizes text and tags each token with a part of speech.
type Tagger interface {
	Tag(text string) ([]TaggedToken, error)
}

// Client is the rugdex embedded entry point.
type Client struct {
	entries    []domcat.Entry
	parser     *parse.Service
	structured *structured.Service
	multimodal *multimodal.Service
}

// New loads the catalog, builds the query parser, and precomputes the
// embedding caches for both ranking engines. The provided context
// bounds the catalog embedding pass.
func New(ctx context.Context, semantic Embedder, cross CrossModalEncoder, opts ...Option) (*Client, error) {
	if semantic == nil {
		return nil, errors.New("rugdex: semantic embedder required")
	}
	if cross == nil {
		return nil, errors.New("rugdex: cross-modal encoder required")
	}

	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.csvPath == "" {
		return nil, errors.New("rugdex: catalog CSV required (use WithCatalogCSV)")
	}

	entries, err := catalogrepo.Load(cfg.csvPath)
	if err != nil {
		return nil, fmt.Errorf("rugdex: load catalog: %w", err)
	}
	if cfg.imagesDir != "" {
		entries = resolveImages(entries, cfg.imagesDir)
	}

	logger := zap.NewNop()

	var tagger parse.Tagger
	if cfg.tagger != nil {
		tagger = taggerAdapter{inner: cfg.tagger}
	} else {
		tagger = prosepkg.NewTagger()
	}

	styles, err := parse.NewStyleIndex(ctx, semantic)
	if err != nil {
		return nil, fmt.Errorf("rugdex: build style index: %w", err)
	}
	parser := parse.New(tagger, styles)

	var structuredOpts []structured.Option
	var multimodalOpts []multimodal.Option
	if cfg.buildWorkers > 0 {
		structuredOpts = append(structuredOpts, structured.WithBuildWorkers(cfg.buildWorkers))
		multimodalOpts = append(multimodalOpts, multimodal.WithBuildWorkers(cfg.buildWorkers))
	}
	if cfg.imageWeight > 0 || cfg.textWeight > 0 {
		multimodalOpts = append(multimodalOpts, multimodal.WithFusionWeights(cfg.imageWeight, cfg.textWeight))
	}

	structuredSvc, err := structured.New(ctx, entries, parser, semantic, logger, structuredOpts...)
	if err != nil {
		return nil, fmt.Errorf("rugdex: build structured engine: %w", err)
	}
	multimodalSvc, err := multimodal.New(ctx, entries, semantic, cross, logger, multimodalOpts...)
	if err != nil {
		return nil, fmt.Errorf("rugdex: build multimodal engine: %w", err)
	}

	return &Client{
		entries:    entries,
		parser:     parser,
		structured: structuredSvc,
		multimodal: multimodalSvc,
	}, nil
}

// CatalogSize returns the number of cleaned catalog entries.
func (c *Client) CatalogSize() int { return len(c.entries) }

// ParseQuery extracts the structured facets from a free text query
// without ranking anything.
func (c *Client) ParseQuery(ctx context.Context, text string) (ParsedQuery, error) {
	parsed, err := c.parser.Parse(ctx, text)
	if err != nil {
		return ParsedQuery{}, fmt.Errorf("parse query: %w", err)
	}
	return ParsedQuery{
		Size:  parsed.Size(),
		Color: parsed.Color(),
		Style: parsed.Style(),
		Shape: parsed.Shape(),
	}, nil
}

// Search starts a fluent search over the catalog.
func (c *Client) Search(query string) *SearchBuilder {
	return &SearchBuilder{client: c, query: query}
}

// taggerAdapter wraps the public Tagger to satisfy the parser contract.
type taggerAdapter struct {
	inner Tagger
}

func (a taggerAdapter) Tag(text string) ([]parse.TaggedToken, error) {
	return a.inner.Tag(text)
}

func resolveImages(entries []domcat.Entry, dir string) []domcat.Entry {
	out := make([]domcat.Entry, 0, len(entries))
	for _, e := range entries {
		path := e.ImagePath()
		if path != "" && !filepath.IsAbs(path) {
			path = filepath.Join(dir, filepath.Base(path))
		}
		out = append(out, domcat.New(e.Handle(), e.Title(), e.Description(), path, e.Price()))
	}
	return out
}
