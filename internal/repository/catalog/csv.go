// Package catalog loads and cleans a Shopify product-export CSV into
// catalog entries.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	domcat "github.com/loomline/rugdex/internal/domain/catalog"
)

// Shopify export column names.
const (
	colHandle        = "Handle"
	colTitle         = "Title"
	colBody          = "Body (HTML)"
	colVariantPrice  = "Variant Price"
	colImagePosition = "Image Position"
	colImage         = "image"
)

// accessoryMarker filters out rug pads, which are accessories rather
// than products to rank.
const accessoryMarker = "rug pad"

type row struct {
	handle      string
	title       string
	description string
	image       string
	price       float64
	hasPrice    bool
	imagePos    int
	hasPos      bool
}

// Load reads and cleans the catalog CSV at path.
func Load(path string) ([]domcat.Entry, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return entries, nil
}

// Parse reads a Shopify product export and applies the cleaning rules:
// variant rows inherit price, title and description from the rows above
// them (forward fill), the Image Position 1 row becomes the product's
// main row (first row as fallback), products are deduplicated by
// handle, and rows without a positive price or a local image path —
// plus rug pad accessories — are dropped.
func Parse(r io.Reader) ([]domcat.Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	if _, ok := cols[colHandle]; !ok {
		return nil, fmt.Errorf("missing %q column", colHandle)
	}

	rows, err := readRows(cr, cols)
	if err != nil {
		return nil, err
	}

	_, hasPosCol := cols[colImagePosition]
	if hasPosCol {
		rows = selectMainRows(rows)
	}
	rows = dedupByHandle(rows)

	var entries []domcat.Entry
	for _, rw := range rows {
		if !rw.hasPrice || rw.price <= 0 {
			continue
		}
		if strings.TrimSpace(rw.image) == "" {
			continue
		}
		if strings.Contains(strings.ToLower(rw.title), accessoryMarker) {
			continue
		}
		entries = append(entries, domcat.New(rw.handle, rw.title, rw.description, rw.image, rw.price))
	}
	return entries, nil
}

// readRows parses records with forward fill: a variant row with a
// missing or zero price, or a missing title/description, inherits the
// last seen value.
func readRows(cr *csv.Reader, cols map[string]int) ([]row, error) {
	var (
		rows      []row
		lastPrice float64
		havePrice bool
		lastTitle string
		lastDesc  string
	)

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}

		rw := row{
			handle: strings.TrimSpace(field(colHandle)),
			image:  field(colImage),
		}

		if p, err := strconv.ParseFloat(strings.TrimSpace(field(colVariantPrice)), 64); err == nil && p != 0 {
			lastPrice, havePrice = p, true
		}
		rw.price, rw.hasPrice = lastPrice, havePrice

		if t := field(colTitle); t != "" {
			lastTitle = t
		}
		rw.title = lastTitle

		if d := field(colBody); d != "" {
			lastDesc = d
		}
		rw.description = lastDesc

		if pos, err := strconv.Atoi(strings.TrimSpace(field(colImagePosition))); err == nil {
			rw.imagePos, rw.hasPos = pos, true
		}

		rows = append(rows, rw)
	}
	return rows, nil
}

// selectMainRows keeps the Image Position 1 row per product, then
// appends the first row of every handle that has no position-1 row.
func selectMainRows(rows []row) []row {
	var mains []row
	withMain := make(map[string]struct{})
	for _, rw := range rows {
		if rw.hasPos && rw.imagePos == 1 {
			mains = append(mains, rw)
			if rw.handle != "" {
				withMain[rw.handle] = struct{}{}
			}
		}
	}

	seen := make(map[string]struct{})
	for _, rw := range rows {
		if _, ok := withMain[rw.handle]; ok {
			continue
		}
		if _, ok := seen[rw.handle]; ok {
			continue
		}
		seen[rw.handle] = struct{}{}
		mains = append(mains, rw)
	}
	return mains
}

func dedupByHandle(rows []row) []row {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	for _, rw := range rows {
		if _, ok := seen[rw.handle]; ok {
			continue
		}
		seen[rw.handle] = struct{}{}
		out = append(out, rw)
	}
	return out
}
