package query

import (
	"slices"
	"testing"
)

func TestExpandColorKnown(t *testing.T) {
	got := ExpandColor("Grey")
	want := []string{"grey", "gray"}
	if !slices.Equal(got, want) {
		t.Errorf("ExpandColor(grey) = %v, want %v", got, want)
	}
}

func TestExpandColorUnknown(t *testing.T) {
	got := ExpandColor("fuchsia")
	if !slices.Equal(got, []string{"fuchsia"}) {
		t.Errorf("ExpandColor(fuchsia) = %v", got)
	}
}

func TestExpandColorEmpty(t *testing.T) {
	if got := ExpandColor(""); got != nil {
		t.Errorf("ExpandColor(\"\") = %v, want nil", got)
	}
}

// The synonym table is only partially symmetric: these pairs expand to
// each other in both directions. Other variants (wine, dark grey, the
// beige/cream/ivory group) are one-way on purpose.
func TestExpandColorSymmetricPairs(t *testing.T) {
	pairs := [][2]string{
		{"grey", "gray"},
		{"navy", "navy blue"},
		{"teal", "turquoise"},
		{"maroon", "burgundy"},
	}
	for _, p := range pairs {
		if !slices.Contains(ExpandColor(p[0]), p[1]) {
			t.Errorf("ExpandColor(%q) = %v does not contain %q", p[0], ExpandColor(p[0]), p[1])
		}
		if !slices.Contains(ExpandColor(p[1]), p[0]) {
			t.Errorf("ExpandColor(%q) = %v does not contain %q", p[1], ExpandColor(p[1]), p[0])
		}
	}
}

// One-way expansions stay one-way: a variant without its own table
// entry expands only to itself.
func TestExpandColorOneWayVariants(t *testing.T) {
	if got := ExpandColor("wine"); !slices.Equal(got, []string{"wine"}) {
		t.Errorf("ExpandColor(wine) = %v, want [wine]", got)
	}
	if slices.Contains(ExpandColor("ivory"), "beige") {
		t.Error("ivory should not expand to beige")
	}
}

func TestExpandColorSelfContained(t *testing.T) {
	for _, c := range []string{"grey", "beige", "navy", "cream", "ivory", "charcoal", "teal", "maroon"} {
		if !slices.Contains(ExpandColor(c), c) {
			t.Errorf("ExpandColor(%q) = %v does not contain itself", c, ExpandColor(c))
		}
	}
}

func TestParsedFacets(t *testing.T) {
	p := NewParsed("8x10", "beige", "modern", "")
	if !p.HasSize() || !p.HasColor() || !p.HasStyle() || p.HasShape() {
		t.Errorf("facet presence wrong: %+v", p)
	}
	if !p.HasSpecificFacet() {
		t.Error("color should count as a specific facet")
	}

	shapeOnly := NewParsed("", "", "", "round")
	if !shapeOnly.HasSpecificFacet() {
		t.Error("shape should count as a specific facet")
	}

	empty := NewParsed("", "", "", "")
	if !empty.IsEmpty() || empty.HasSpecificFacet() {
		t.Error("empty parsed query misreported")
	}
}

func TestVocabularyMembership(t *testing.T) {
	if !IsShapeWord("runner") || IsShapeWord("navy") {
		t.Error("IsShapeWord wrong")
	}
	if !IsSizeUnit("ft") || IsSizeUnit("meters") {
		t.Error("IsSizeUnit wrong")
	}
	if !IsGenericWord("rug") || IsGenericWord("teal") {
		t.Error("IsGenericWord wrong")
	}
}
