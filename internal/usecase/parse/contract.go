package parse

import "context"

// TaggedToken is a single token with its Penn Treebank part-of-speech tag.
type TaggedToken struct {
	Text string
	Tag  string
}

// Tagger tokenizes text and tags each token with a part of speech.
type Tagger interface {
	Tag(text string) ([]TaggedToken, error)
}

// StyleMatcher finds the style concept closest to a word, with its
// cosine similarity.
type StyleMatcher interface {
	BestMatch(ctx context.Context, word string) (concept string, similarity float64, err error)
}

// Embedder produces a sentence embedding for a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
