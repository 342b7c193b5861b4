// Package prose adapts the prose NLP library as the part-of-speech
// tagger behind the query parser.
package prose

import (
	"fmt"

	prose "github.com/jdkato/prose/v2"

	"github.com/loomline/rugdex/internal/usecase/parse"
)

// Tagger tags tokens with Penn Treebank parts of speech using a local
// model, so query parsing needs no network round trip.
type Tagger struct{}

// NewTagger creates a tagger.
func NewTagger() *Tagger { return &Tagger{} }

// Tag implements parse.Tagger.
func (t *Tagger) Tag(text string) ([]parse.TaggedToken, error) {
	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, fmt.Errorf("tag text: %w", err)
	}

	tokens := doc.Tokens()
	out := make([]parse.TaggedToken, len(tokens))
	for i, tok := range tokens {
		out[i] = parse.TaggedToken{Text: tok.Text, Tag: tok.Tag}
	}
	return out, nil
}
