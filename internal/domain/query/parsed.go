// Package query holds the structured facet set extracted from a free
// text query and the fixed vocabularies the parser matches against.
package query

// Parsed is the structured facet set derived from a free text query.
// Every field is independently optional; the empty string means the
// facet was not found.
type Parsed struct {
	size  string
	color string
	style string
	shape string
}

// NewParsed creates a parsed query. Empty strings mark absent facets.
func NewParsed(size, color, style, shape string) Parsed {
	return Parsed{size: size, color: color, style: style, shape: shape}
}

// Size returns the normalized size ("8x10" or "6ft"), or "".
func (p Parsed) Size() string { return p.size }

// Color returns the extracted color (one or two lowercase words), or "".
func (p Parsed) Color() string { return p.color }

// Style returns the matched style concept with the " style" suffix
// stripped, or "".
func (p Parsed) Style() string { return p.style }

// Shape returns the matched shape word, or "".
func (p Parsed) Shape() string { return p.shape }

// HasSize reports whether a size was extracted.
func (p Parsed) HasSize() bool { return p.size != "" }

// HasColor reports whether a color was extracted.
func (p Parsed) HasColor() bool { return p.color != "" }

// HasStyle reports whether a style was extracted.
func (p Parsed) HasStyle() bool { return p.style != "" }

// HasShape reports whether a shape was extracted.
func (p Parsed) HasShape() bool { return p.shape != "" }

// HasSpecificFacet reports whether the query names a directly checkable
// attribute (color or shape). Those queries weight metadata matching
// over semantic similarity.
func (p Parsed) HasSpecificFacet() bool { return p.color != "" || p.shape != "" }

// IsEmpty reports whether no facet was extracted at all.
func (p Parsed) IsEmpty() bool {
	return p.size == "" && p.color == "" && p.style == "" && p.shape == ""
}
