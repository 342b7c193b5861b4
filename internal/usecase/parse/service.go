// Package parse converts a free text query into the structured facet
// set {size, color, style, shape}.
package parse

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/loomline/rugdex/internal/domain/query"
)

// styleSimilarityThreshold is the minimum cosine similarity between a
// query token and its best style concept for the style to be accepted.
const styleSimilarityThreshold = 0.6

var (
	dimensionsPattern = regexp.MustCompile(`(\d+)\s*[x×]\s*(\d+)`)
	feetPattern       = regexp.MustCompile(`(\d+)\s*(ft|feet|foot)`)
	digitPattern      = regexp.MustCompile(`\d`)
)

// Service is the query attribute parser.
type Service struct {
	tagger Tagger
	styles StyleMatcher
}

// New creates a parser service.
func New(tagger Tagger, styles StyleMatcher) *Service {
	return &Service{tagger: tagger, styles: styles}
}

// Parse extracts the structured facets from a free text query.
// Attributes are resolved in a fixed order — size, shape, style, color —
// so later stages can consult earlier results and avoid claiming the
// same word twice. A query with no recognizable attributes yields an
// empty Parsed, not an error.
func (s *Service) Parse(ctx context.Context, text string) (query.Parsed, error) {
	q := strings.ToLower(text)

	size := extractSize(q)

	// Shape: first vocabulary entry found as a substring wins.
	var shape string
	for _, sh := range query.ShapeWords {
		if strings.Contains(q, sh) {
			shape = sh
			break
		}
	}

	tokens, err := s.tagger.Tag(q)
	if err != nil {
		return query.Parsed{}, fmt.Errorf("tag query: %w", err)
	}

	words := make([]string, len(tokens))
	var candidates []string
	for i, tok := range tokens {
		w := strings.ToLower(tok.Text)
		words[i] = w
		if isDescriptive(tok.Tag) {
			candidates = append(candidates, w)
		}
	}

	// Style: first candidate token whose best concept clears the
	// threshold wins. Earliest mention, not global best.
	var style string
	for _, w := range candidates {
		concept, sim, err := s.styles.BestMatch(ctx, w)
		if err != nil {
			return query.Parsed{}, fmt.Errorf("match style for %q: %w", w, err)
		}
		if sim > styleSimilarityThreshold {
			style = strings.TrimSuffix(concept, query.StyleSuffix)
			break
		}
	}

	color := pickColorPair(words, style)
	if color == "" {
		color = pickColorWord(candidates, style)
	}

	return query.NewParsed(size, color, style, shape), nil
}

// extractSize normalizes "<N> x <M>" to "<N>x<M>", else "<N> ft" (or
// feet/foot) to "<N>ft". First pattern wins.
func extractSize(q string) string {
	if m := dimensionsPattern.FindStringSubmatch(q); m != nil {
		return m[1] + "x" + m[2]
	}
	if m := feetPattern.FindStringSubmatch(q); m != nil {
		return m[1] + "ft"
	}
	return ""
}

// pickColorPair scans adjacent word pairs left to right and returns the
// first pair that survives the exclusion rules, joined by a space.
// When the literal word "rug" occurs, only pairs strictly before its
// first occurrence are considered.
func pickColorPair(words []string, style string) string {
	rugIdx := -1
	for i, w := range words {
		if w == "rug" {
			rugIdx = i
			break
		}
	}

	for i := 0; i+1 < len(words); i++ {
		w1, w2 := words[i], words[i+1]
		if query.IsSizeUnit(w1) || query.IsSizeUnit(w2) {
			continue
		}
		if !isAlpha(w1) || !isAlpha(w2) {
			continue
		}
		if query.IsGenericWord(w1) || query.IsGenericWord(w2) {
			continue
		}
		if query.IsShapeWord(w1) || query.IsShapeWord(w2) {
			continue
		}
		if style != "" && (strings.Contains(style, w1) || strings.Contains(style, w2)) {
			continue
		}
		if looksNumeric(w1) || looksNumeric(w2) {
			continue
		}
		if rugIdx >= 0 && i >= rugIdx {
			continue
		}
		return w1 + " " + w2
	}
	return ""
}

// pickColorWord is the one-word fallback over the adjective/noun
// candidates, applying the same exclusion rules.
func pickColorWord(candidates []string, style string) string {
	for _, w := range candidates {
		if query.IsGenericWord(w) {
			continue
		}
		if query.IsShapeWord(w) {
			continue
		}
		if style != "" && strings.Contains(style, w) {
			continue
		}
		if query.IsSizeUnit(w) {
			continue
		}
		if looksNumeric(w) {
			continue
		}
		return w
	}
	return ""
}

// isDescriptive reports whether a Penn Treebank tag marks an adjective
// or a noun.
func isDescriptive(tag string) bool {
	return strings.HasPrefix(tag, "JJ") || strings.HasPrefix(tag, "NN")
}

func isAlpha(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func looksNumeric(w string) bool {
	return digitPattern.MatchString(w)
}
