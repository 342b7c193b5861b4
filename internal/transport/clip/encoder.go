// Package clip provides the cross-modal encoder used for image-text
// ranking. It speaks the OpenAI-compatible /embeddings format of
// CLIP-class inference servers, which accept either raw text or a
// base64 data-URI image as input.
package clip

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/loomline/rugdex/internal/domain"
	"github.com/loomline/rugdex/internal/metrics"
)

// maxErrorBody limits how much of an error response is kept for logs.
const maxErrorBody = 2048

// Encoder encodes images and text into the joint CLIP vector space.
type Encoder struct {
	endpoint string
	apiKey   string
	model    string
	provider string
	http     *http.Client
	logger   *zap.Logger
}

// Config holds the cross-modal provider settings.
type Config struct {
	BaseURL    string // e.g. http://localhost:8800/v1
	APIKey     string
	Model      string
	TimeoutSec int
	Provider   string
	Logger     *zap.Logger
}

// NewEncoder creates a cross-modal encoder client.
func NewEncoder(cfg *Config) *Encoder {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Encoder{
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/embeddings",
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		provider: cfg.Provider,
		http:     &http.Client{Timeout: timeout},
		logger:   cfg.Logger,
	}
}

type embeddingRequest struct {
	Model    string   `json:"model"`
	Input    []string `json:"input"`
	Modality string   `json:"modality,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// EncodeText embeds a text into the joint space.
func (e *Encoder) EncodeText(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, embeddingRequest{Model: e.model, Input: []string{text}})
}

// EncodeImage reads the image at path and embeds it into the joint
// space as a base64 data URI.
func (e *Encoder) EncodeImage(ctx context.Context, path string) ([]float32, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}

	uri := "data:" + imageMIME(path) + ";base64," + base64.StdEncoding.EncodeToString(data)
	return e.embed(ctx, embeddingRequest{Model: e.model, Input: []string{uri}, Modality: "image"})
}

func (e *Encoder) embed(ctx context.Context, payload embeddingRequest) ([]float32, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	start := time.Now()

	resp, err := e.http.Do(req)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, e.model, "transport").Inc()
		return nil, fmt.Errorf("embedding request: %v: %w", err, domain.ErrEmbeddingProviderError)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, e.model, "api_error").Inc()
		return nil, fmt.Errorf("embedding API error %d: %s: %w",
			resp.StatusCode, strings.TrimSpace(string(snippet)), domain.ErrEmbeddingProviderError)
	}

	var decoded embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, e.model, "decode").Inc()
		return nil, fmt.Errorf("decode response: %v: %w", err, domain.ErrEmbeddingProviderError)
	}
	if len(decoded.Data) == 0 || len(decoded.Data[0].Embedding) == 0 {
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, e.model, "empty_response").Inc()
		return nil, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, e.model).Observe(time.Since(start).Seconds())

	return decoded.Data[0].Embedding, nil
}

func imageMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
