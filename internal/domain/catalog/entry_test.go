package catalog

import (
	"math"
	"testing"
)

func fptr(v float64) *float64 { return &v }

func TestPriceValid(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		want  bool
	}{
		{"positive", 129.99, true},
		{"zero", 0, false},
		{"negative", -5, false},
		{"nan", math.NaN(), false},
		{"inf", math.Inf(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New("h", "t", "d", "", tt.price)
			if got := e.PriceValid(); got != tt.want {
				t.Errorf("PriceValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPriceWithin(t *testing.T) {
	e := New("h", "t", "d", "", 100)

	tests := []struct {
		name     string
		min, max *float64
		want     bool
	}{
		{"no bounds", nil, nil, true},
		{"inside", fptr(50), fptr(150), true},
		{"min inclusive", fptr(100), nil, true},
		{"max inclusive", nil, fptr(100), true},
		{"below min", fptr(101), nil, false},
		{"above max", nil, fptr(99), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.PriceWithin(tt.min, tt.max); got != tt.want {
				t.Errorf("PriceWithin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchText(t *testing.T) {
	e := New("h", "Navy Blue Runner", "Hand-knotted WOOL", "", 10)
	want := "navy blue runner hand-knotted wool"
	if got := e.MatchText(); got != want {
		t.Errorf("MatchText() = %q, want %q", got, want)
	}
}

func TestEmbedTextKeepsCase(t *testing.T) {
	e := New("h", "Title", "Desc", "", 10)
	if got := e.EmbedText(); got != "Title Desc" {
		t.Errorf("EmbedText() = %q", got)
	}
}
