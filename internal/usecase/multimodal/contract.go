package multimodal

import "context"

// TextEmbedder produces a sentence embedding for semantic text ranking.
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CrossModalEncoder encodes images and text into a joint vector space.
type CrossModalEncoder interface {
	EncodeImage(ctx context.Context, path string) ([]float32, error)
	EncodeText(ctx context.Context, text string) ([]float32, error)
}
