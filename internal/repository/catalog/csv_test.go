package catalog

import (
	"strings"
	"testing"
)

const sampleCSV = `Handle,Title,Body (HTML),Variant Price,Image Position,image
nordic-loom,Nordic Loom Rug,<p>Flatwoven grey wool</p>,249.00,1,data/rugs/nordic-loom.jpg
nordic-loom,,,0,2,data/rugs/nordic-loom-2.jpg
nordic-loom,,,199.00,,data/rugs/nordic-loom-3.jpg
atlas-runner,Atlas Runner,<p>Navy runner</p>,,2,data/rugs/atlas-2.jpg
atlas-runner,,,129.00,3,data/rugs/atlas-3.jpg
pad-basic,Premium Rug Pad,<p>Non-slip pad</p>,29.00,1,data/rugs/pad.jpg
no-image,Bare Product,<p>No local image</p>,59.00,1,
freebie,Free Sample,<p>Zero price</p>,0,1,data/rugs/freebie.jpg
`

func TestParseCleansExport(t *testing.T) {
	entries, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3 (%+v)", len(entries), entries)
	}

	first := entries[0]
	if first.Handle() != "nordic-loom" {
		t.Errorf("first handle = %q", first.Handle())
	}
	if first.Price() != 249.00 {
		t.Errorf("first price = %v, want the position-1 row price", first.Price())
	}
	if first.ImagePath() != "data/rugs/nordic-loom.jpg" {
		t.Errorf("first image = %q, want the position-1 image", first.ImagePath())
	}

	second := entries[1]
	if second.Handle() != "atlas-runner" {
		t.Errorf("second handle = %q", second.Handle())
	}
	// atlas-runner has no position-1 row: its first row is the fallback,
	// and its missing price forward-fills from the nordic-loom variant
	// row above it.
	if second.ImagePath() != "data/rugs/atlas-2.jpg" {
		t.Errorf("fallback image = %q", second.ImagePath())
	}
	if second.Price() != 199.00 {
		t.Errorf("forward-filled price = %v, want 199.00", second.Price())
	}
	if second.Title() != "Atlas Runner" {
		t.Errorf("title = %q", second.Title())
	}

	// A zero price reads as missing and forward-fills from the last
	// priced row, so the freebie row survives with that price.
	third := entries[2]
	if third.Handle() != "freebie" {
		t.Errorf("third handle = %q", third.Handle())
	}
	if third.Price() != 59.00 {
		t.Errorf("forward-filled zero price = %v, want 59.00", third.Price())
	}
}

func TestParseDropsAccessoriesAndInvalidRows(t *testing.T) {
	entries, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	kept := make(map[string]bool, len(entries))
	for _, e := range entries {
		switch e.Handle() {
		case "pad-basic":
			t.Error("rug pad accessory kept")
		case "no-image":
			t.Error("row without local image kept")
		}
		kept[e.Handle()] = true
	}
	if !kept["freebie"] {
		t.Error("zero-price row dropped instead of inheriting the forward-filled price")
	}
}

func TestParseForwardFillsVariantRows(t *testing.T) {
	csv := `Handle,Title,Body (HTML),Variant Price,image
solo,Solo Rug,<p>desc</p>,99.00,data/rugs/solo.jpg
solo,,,,data/rugs/solo-b.jpg
`
	entries, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Title() != "Solo Rug" || entries[0].Price() != 99.00 {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestParseWithoutImagePositionColumn(t *testing.T) {
	csv := `Handle,Title,Body (HTML),Variant Price,image
a,Rug A,<p>a</p>,10.00,data/a.jpg
a,,,12.00,data/a2.jpg
b,Rug B,<p>b</p>,20.00,data/b.jpg
`
	entries, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Handle() != "a" || entries[0].Price() != 10.00 {
		t.Errorf("first-row-wins dedup broken: %+v", entries[0])
	}
}

func TestParseMissingHandleColumn(t *testing.T) {
	if _, err := Parse(strings.NewReader("Title,price\nx,1\n")); err == nil {
		t.Fatal("expected error for missing Handle column")
	}
}

func TestParseEmptyFile(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}
