// Package catalog holds the immutable product records the ranking
// engines score against.
package catalog

import (
	"math"
	"strings"
)

// Entry is a single cleaned catalog product.
type Entry struct {
	handle      string
	title       string
	description string
	imagePath   string
	price       float64
}

// New creates a catalog entry.
func New(handle, title, description, imagePath string, price float64) Entry {
	return Entry{
		handle:      handle,
		title:       title,
		description: description,
		imagePath:   imagePath,
		price:       price,
	}
}

// Handle returns the unique product key.
func (e Entry) Handle() string { return e.handle }

// Title returns the product title.
func (e Entry) Title() string { return e.title }

// Description returns the product description, possibly empty.
func (e Entry) Description() string { return e.description }

// ImagePath returns the local image path, possibly empty.
func (e Entry) ImagePath() string { return e.imagePath }

// Price returns the product price.
func (e Entry) Price() float64 { return e.price }

// PriceValid reports whether the price is a finite positive number.
// Upstream cleaning should never produce anything else, but the
// engines defend against it anyway.
func (e Entry) PriceValid() bool {
	return !math.IsNaN(e.price) && !math.IsInf(e.price, 0) && e.price > 0
}

// PriceWithin reports whether the price falls inside the inclusive
// [min, max] bounds. A nil bound imposes no restriction.
func (e Entry) PriceWithin(min, max *float64) bool {
	if min != nil && e.price < *min {
		return false
	}
	if max != nil && e.price > *max {
		return false
	}
	return true
}

// EmbedText returns the text embedded for semantic similarity:
// title and description joined by a space.
func (e Entry) EmbedText() string {
	return e.title + " " + e.description
}

// MatchText returns the lowercased title+description used for
// substring facet matching.
func (e Entry) MatchText() string {
	return strings.ToLower(e.title + " " + e.description)
}
