package query

import "strings"

// ShapeWords are the recognized rug shapes, in match-priority order.
var ShapeWords = []string{"round", "runner", "square", "rectangle", "rectangular", "oval"}

// SizeUnits are the foot-unit words recognized by size extraction and
// excluded from color candidates.
var SizeUnits = []string{"ft", "feet", "foot"}

// StyleConcepts are the style vocabulary used for semantic matching.
// Each concept carries a " style" suffix so single adjectives embed
// close to the styling sense of the word.
var StyleConcepts = []string{
	"modern style", "traditional style", "persian style", "vintage style",
	"bohemian style", "minimal style", "contemporary style", "classic style",
	"abstract style", "oriental style",
}

// StyleSuffix is stripped from an accepted style concept.
const StyleSuffix = " style"

// genericWords are filler words never treated as a color or descriptor.
var genericWords = map[string]struct{}{
	"rug": {}, "rugs": {}, "carpet": {}, "carpets": {}, "area": {},
	"for": {}, "with": {}, "and": {}, "the": {}, "a": {}, "an": {},
	"large": {}, "small": {}, "medium": {}, "room": {}, "living": {},
	"dining": {},
}

// colorSynonyms maps a color to the variants matched against catalog
// text. Expansion is one-way: some variants (wine, dark grey) have no
// entry of their own, and the beige/cream/ivory group is not a closure.
var colorSynonyms = map[string][]string{
	"grey":      {"grey", "gray"},
	"gray":      {"grey", "gray"},
	"beige":     {"beige", "cream", "ivory"},
	"navy":      {"navy", "navy blue"},
	"navy blue": {"navy", "navy blue"},
	"off white": {"off white", "offwhite", "ivory", "cream"},
	"offwhite":  {"off white", "offwhite", "ivory", "cream"},
	"cream":     {"cream", "ivory", "beige", "off white"},
	"ivory":     {"ivory", "cream", "off white"},
	"charcoal":  {"charcoal", "dark grey", "dark gray"},
	"teal":      {"teal", "turquoise"},
	"turquoise": {"teal", "turquoise"},
	"maroon":    {"maroon", "burgundy", "wine"},
	"burgundy":  {"maroon", "burgundy", "wine"},
}

// IsGenericWord reports whether w is a filler word.
func IsGenericWord(w string) bool {
	_, ok := genericWords[w]
	return ok
}

// IsShapeWord reports whether w is a recognized shape.
func IsShapeWord(w string) bool {
	for _, sh := range ShapeWords {
		if w == sh {
			return true
		}
	}
	return false
}

// IsSizeUnit reports whether w is a foot-unit word.
func IsSizeUnit(w string) bool {
	for _, u := range SizeUnits {
		if w == u {
			return true
		}
	}
	return false
}

// ExpandColor returns the variants to match against catalog text for a
// color. Unknown colors expand to themselves; an empty color expands
// to nothing.
func ExpandColor(color string) []string {
	if color == "" {
		return nil
	}
	c := strings.ToLower(strings.TrimSpace(color))
	if variants, ok := colorSynonyms[c]; ok {
		return variants
	}
	return []string{c}
}
