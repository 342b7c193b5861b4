package multimodal

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/loomline/rugdex/internal/domain/catalog"
)

// --- Mocks ---

type mockTextEmbedder struct {
	vecs   map[string][]float32
	errFor map[string]error
}

func (m *mockTextEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if err, ok := m.errFor[text]; ok {
		return nil, err
	}
	if v, ok := m.vecs[text]; ok {
		return v, nil
	}
	return []float32{1, 0}, nil
}

type mockCrossEncoder struct {
	imageVecs   map[string][]float32
	textVecs    map[string][]float32
	imageErrFor map[string]error
	textErrFor  map[string]error
}

func (m *mockCrossEncoder) EncodeImage(_ context.Context, path string) ([]float32, error) {
	if err, ok := m.imageErrFor[path]; ok {
		return nil, err
	}
	if v, ok := m.imageVecs[path]; ok {
		return v, nil
	}
	return []float32{0, 1}, nil
}

func (m *mockCrossEncoder) EncodeText(_ context.Context, text string) ([]float32, error) {
	if err, ok := m.textErrFor[text]; ok {
		return nil, err
	}
	if v, ok := m.textVecs[text]; ok {
		return v, nil
	}
	return []float32{0, 1}, nil
}

func fptr(v float64) *float64 { return &v }

func testEntries() []catalog.Entry {
	return []catalog.Entry{
		catalog.New("blue-1", "Blue Rug", "cool tones", "img/blue.jpg", 150),
		catalog.New("warm-1", "Warm Rug", "red tones", "img/warm.jpg", 90),
		catalog.New("bare-1", "Bare Rug", "", "", 60),
	}
}

func newService(t *testing.T, entries []catalog.Entry, text *mockTextEmbedder, cross *mockCrossEncoder, opts ...Option) *Service {
	t.Helper()
	opts = append(opts, WithBuildWorkers(2))
	s, err := New(context.Background(), entries, text, cross, zap.NewNop(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// --- Tests ---

func TestSearchTextRanksBySimilarity(t *testing.T) {
	entries := testEntries()
	text := &mockTextEmbedder{vecs: map[string][]float32{
		"Blue Rug cool tones": {1, 0},
		"Warm Rug red tones":  {0, 1},
		"cozy blue":           {1, 0},
	}}
	s := newService(t, entries, text, &mockCrossEncoder{})

	results, err := s.SearchText(context.Background(), "cozy blue", 2, nil, nil)
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if got := results[0].Entry().Handle(); got != "blue-1" {
		t.Errorf("top result = %q, want blue-1", got)
	}
}

func TestSearchTextEmptyQuery(t *testing.T) {
	s := newService(t, testEntries(), &mockTextEmbedder{}, &mockCrossEncoder{})

	results, err := s.SearchText(context.Background(), "", 5, nil, nil)
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("empty query returned %d results", len(results))
	}
}

func TestSearchTextPriceBounds(t *testing.T) {
	s := newService(t, testEntries(), &mockTextEmbedder{}, &mockCrossEncoder{})

	results, err := s.SearchText(context.Background(), "rug", 3, fptr(100), nil)
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	for _, r := range results {
		if r.Score().IsExcluded() {
			continue
		}
		if r.Entry().Price() < 100 {
			t.Errorf("entry %q below min price surfaced with a valid score", r.Entry().Handle())
		}
	}
	if results[0].Entry().Handle() != "blue-1" {
		t.Errorf("only blue-1 is price-eligible, got %q first", results[0].Entry().Handle())
	}
}

// Entries whose title+description are empty still get a text embedding
// via the fallback text.
func TestBuildUsesFallbackTextForEmptyEntries(t *testing.T) {
	entries := []catalog.Entry{catalog.New("empty", "", "", "", 40)}
	text := &mockTextEmbedder{vecs: map[string][]float32{emptyTextFallback: {1, 1}}}
	s := newService(t, entries, text, &mockCrossEncoder{})

	if s.textEmbeddings[0] == nil {
		t.Fatal("fallback text embedding missing")
	}
}

func TestSearchImageVisualOnly(t *testing.T) {
	entries := testEntries()
	cross := &mockCrossEncoder{imageVecs: map[string][]float32{
		"room.jpg":     {1, 0},
		"img/blue.jpg": {1, 0},
		"img/warm.jpg": {0, 1},
	}}
	s := newService(t, entries, &mockTextEmbedder{}, cross)

	results, err := s.SearchImage(context.Background(), "room.jpg", "", 3, nil, nil)
	if err != nil {
		t.Fatalf("SearchImage: %v", err)
	}
	if results[0].Entry().Handle() != "blue-1" {
		t.Errorf("top result = %q, want blue-1", results[0].Entry().Handle())
	}
	// bare-1 has no image path, so it can only appear excluded.
	for _, r := range results {
		if r.Entry().Handle() == "bare-1" && !r.Score().IsExcluded() {
			t.Error("entry without image embedding got a valid score")
		}
	}
}

func TestSearchImageFusesTextSignal(t *testing.T) {
	entries := testEntries()
	cross := &mockCrossEncoder{
		imageVecs: map[string][]float32{
			"room.jpg":     {1, 0},
			"img/blue.jpg": {1, 0}, // perfect visual match
			"img/warm.jpg": {0.8, 0.6},
		},
		textVecs: map[string][]float32{
			"warm minimal": {0, 1},
			"Blue Rug":     {1, 0}, // no text match
			"Warm Rug":     {0, 1}, // perfect text match
		},
	}
	s := newService(t, entries, &mockTextEmbedder{}, cross)

	results, err := s.SearchImage(context.Background(), "room.jpg", "warm minimal", 2, nil, nil)
	if err != nil {
		t.Fatalf("SearchImage: %v", err)
	}
	// blue-1: 0.6*1.0 + 0.4*0 = 0.60; warm-1: 0.6*0.8 + 0.4*1.0 = 0.88.
	if got := results[0].Entry().Handle(); got != "warm-1" {
		t.Errorf("top result = %q, want warm-1", got)
	}
}

func TestSearchImageCustomWeights(t *testing.T) {
	entries := testEntries()[:2]
	cross := &mockCrossEncoder{
		imageVecs: map[string][]float32{
			"room.jpg":     {1, 0},
			"img/blue.jpg": {1, 0},
			"img/warm.jpg": {0.8, 0.6},
		},
		textVecs: map[string][]float32{
			"warm": {0, 1}, "Blue Rug": {1, 0}, "Warm Rug": {0, 1},
		},
	}
	// All weight on the image signal: blue-1 wins despite the text miss.
	s := newService(t, entries, &mockTextEmbedder{}, cross, WithFusionWeights(1, 0))

	results, err := s.SearchImage(context.Background(), "room.jpg", "warm", 1, nil, nil)
	if err != nil {
		t.Fatalf("SearchImage: %v", err)
	}
	if got := results[0].Entry().Handle(); got != "blue-1" {
		t.Errorf("top result = %q, want blue-1", got)
	}
}

// One unreadable catalog image degrades only that entry; the build
// completes and the entry stays excluded from visual ranking.
func TestBuildToleratesUnreadableImage(t *testing.T) {
	entries := testEntries()
	cross := &mockCrossEncoder{
		imageErrFor: map[string]error{"img/blue.jpg": errors.New("unreadable")},
		imageVecs:   map[string][]float32{"room.jpg": {1, 0}, "img/warm.jpg": {1, 0}},
	}
	s := newService(t, entries, &mockTextEmbedder{}, cross)

	if s.imageEmbeddings[0] != nil {
		t.Error("unreadable image produced an embedding")
	}
	if s.imageEmbeddings[1] == nil {
		t.Error("healthy sibling embedding missing")
	}

	results, err := s.SearchImage(context.Background(), "room.jpg", "", 1, nil, nil)
	if err != nil {
		t.Fatalf("SearchImage: %v", err)
	}
	if got := results[0].Entry().Handle(); got != "warm-1" {
		t.Errorf("top result = %q, want warm-1", got)
	}
}

func TestSearchImageRoomEncodeErrorPropagates(t *testing.T) {
	wantErr := errors.New("bad upload")
	cross := &mockCrossEncoder{imageErrFor: map[string]error{"room.jpg": wantErr}}
	s := newService(t, testEntries(), &mockTextEmbedder{}, cross)

	if _, err := s.SearchImage(context.Background(), "room.jpg", "", 1, nil, nil); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

func TestSearchTextTopKInvariant(t *testing.T) {
	s := newService(t, testEntries(), &mockTextEmbedder{}, &mockCrossEncoder{})

	for k := 0; k <= 3; k++ {
		results, err := s.SearchText(context.Background(), "rug", k, nil, nil)
		if err != nil {
			t.Fatalf("SearchText: %v", err)
		}
		if len(results) != k {
			t.Errorf("topK=%d returned %d results", k, len(results))
		}
	}
}
