// Package chi exposes the ranking engines over a JSON HTTP API.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/loomline/rugdex/internal/domain"
	"github.com/loomline/rugdex/internal/domain/query"
	"github.com/loomline/rugdex/internal/domain/search/mode"
	"github.com/loomline/rugdex/internal/domain/search/result"
	"github.com/loomline/rugdex/internal/metrics"
)

// maxUploadBytes bounds the multipart form, so a room photo upload
// cannot exhaust memory.
const maxUploadBytes = 32 << 20

// StructuredSearcher is the structured ranking engine contract.
type StructuredSearcher interface {
	Search(ctx context.Context, text string, topK int, minPrice, maxPrice *float64) ([]result.Result, query.Parsed, error)
}

// MultimodalSearcher is the multimodal ranking engine contract.
type MultimodalSearcher interface {
	SearchText(ctx context.Context, text string, topK int, minPrice, maxPrice *float64) ([]result.Result, error)
	SearchImage(ctx context.Context, imagePath, textQuery string, topK int, minPrice, maxPrice *float64) ([]result.Result, error)
}

// Server handles search requests across the three ranking modes.
type Server struct {
	structured  StructuredSearcher
	multimodal  MultimodalSearcher
	defaultTopK int
	maxTopK     int
	uploadDir   string
	logger      *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	structured StructuredSearcher, multimodal MultimodalSearcher,
	defaultTopK, maxTopK int, uploadDir string, logger *zap.Logger,
) *Server {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	if maxTopK <= 0 {
		maxTopK = 50
	}
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	return &Server{
		structured:  structured,
		multimodal:  multimodal,
		defaultTopK: defaultTopK,
		maxTopK:     maxTopK,
		uploadDir:   uploadDir,
		logger:      logger,
	}
}

// Routes registers the API endpoints on a chi router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/search", s.HandleSearch)
	r.Get("/v1/healthz", s.HandleHealth)
}

// searchResponse is the JSON payload for a search call.
type searchResponse struct {
	Results     []resultPayload `json:"results"`
	ParsedQuery *parsedPayload  `json:"parsed_query"`
}

type resultPayload struct {
	Handle string  `json:"handle"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
	Score  float64 `json:"score"`
	Image  string  `json:"image"`
	Model  string  `json:"model"`
	Why    string  `json:"why"`
}

type parsedPayload struct {
	Size  *string `json:"size"`
	Color *string `json:"color"`
	Style *string `json:"style"`
	Shape *string `json:"shape"`
}

// HandleSearch handles POST /v1/search. The request is a multipart
// form: mode, text_query, top_k, min_price, max_price and an optional
// image file. Missing query input yields an empty result list, an
// unknown mode a 400.
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	m := mode.Mode(r.FormValue("mode"))
	if !m.IsValid() {
		metrics.SearchRequestsTotal.WithLabelValues(string(m), "invalid").Inc()
		writeError(w, http.StatusBadRequest, codeUnknownMode,
			fmt.Sprintf("%s: use %q, %q or %q", domain.ErrUnknownSearchMode, mode.Structured, mode.Semantic, mode.Visual))
		return
	}

	topK, err := s.parseTopK(r.FormValue("top_k"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	minPrice, err := parseOptionalFloat(r.FormValue("min_price"), "min_price")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	maxPrice, err := parseOptionalFloat(r.FormValue("max_price"), "max_price")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	text := strings.TrimSpace(r.FormValue("text_query"))

	start := time.Now()
	resp, err := s.dispatch(r, m, text, topK, minPrice, maxPrice)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(m), "error").Inc()
		s.handleDomainError(w, err)
		return
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(m), "success").Inc()
	metrics.SearchDuration.WithLabelValues(string(m)).Observe(time.Since(start).Seconds())

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) dispatch(
	r *http.Request, m mode.Mode, text string,
	topK int, minPrice, maxPrice *float64,
) (searchResponse, error) {
	ctx := r.Context()

	switch m {
	case mode.Structured:
		results, parsed, err := s.structured.Search(ctx, text, topK, minPrice, maxPrice)
		if err != nil {
			return searchResponse{}, err
		}
		return searchResponse{
			Results:     s.resultPayloads(results, m, text, parsed),
			ParsedQuery: parsedToPayload(parsed, text != ""),
		}, nil

	case mode.Semantic:
		results, err := s.multimodal.SearchText(ctx, text, topK, minPrice, maxPrice)
		if err != nil {
			return searchResponse{}, err
		}
		return searchResponse{Results: s.resultPayloads(results, m, text, query.Parsed{})}, nil

	case mode.Visual:
		imagePath, cleanup, err := s.saveUpload(r)
		if err != nil {
			return searchResponse{}, err
		}
		if imagePath == "" {
			// No room photo supplied: empty-result condition, not an error.
			return searchResponse{Results: []resultPayload{}}, nil
		}
		defer cleanup()

		results, err := s.multimodal.SearchImage(ctx, imagePath, text, topK, minPrice, maxPrice)
		if err != nil {
			return searchResponse{}, err
		}
		return searchResponse{Results: s.resultPayloads(results, m, text, query.Parsed{})}, nil

	default:
		return searchResponse{}, domain.ErrUnknownSearchMode
	}
}

// resultPayloads converts ranked results to JSON rows. Excluded and
// invalid-price rows are the ranked list's bottom padding and are
// dropped from the payload.
func (s *Server) resultPayloads(
	results []result.Result, m mode.Mode, text string, parsed query.Parsed,
) []resultPayload {
	payloads := make([]resultPayload, 0, len(results))
	for i := range results {
		sc := results[i].Score()
		if sc.IsExcluded() {
			continue
		}
		entry := results[i].Entry()
		if !entry.PriceValid() {
			continue
		}

		title := strings.TrimSpace(entry.Title())
		if title == "" {
			title = entry.Handle()
		}

		imageURL := ""
		if p := entry.ImagePath(); p != "" {
			imageURL = "/images/" + filepath.Base(p)
		}

		payloads = append(payloads, resultPayload{
			Handle: entry.Handle(),
			Title:  title,
			Price:  entry.Price(),
			Score:  sc.Value(),
			Image:  imageURL,
			Model:  strings.ToUpper(string(m)),
			Why:    whyText(m, text, parsed),
		})
	}
	return payloads
}

// whyText builds the user-facing match explanation.
func whyText(m mode.Mode, text string, parsed query.Parsed) string {
	switch m {
	case mode.Visual:
		if text != "" {
			return "Matches the room visually and your text preference."
		}
		return "Strong visual similarity to the room."
	case mode.Structured:
		var parts []string
		if parsed.HasColor() {
			parts = append(parts, "color: "+parsed.Color())
		}
		if parsed.HasStyle() {
			parts = append(parts, "style: "+parsed.Style())
		}
		if parsed.HasSize() {
			parts = append(parts, "size: "+parsed.Size())
		}
		if parsed.HasShape() {
			parts = append(parts, "shape: "+parsed.Shape())
		}
		if len(parts) == 0 {
			return "Matches your structured query."
		}
		return "Matched on " + strings.Join(parts, ", ")
	default:
		return "Matches your text query semantically."
	}
}

// saveUpload writes the uploaded room image to a temp file and returns
// its path with a cleanup func. Returns "" when no image was supplied.
func (s *Server) saveUpload(r *http.Request) (string, func(), error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("read image upload: %w", err)
	}
	defer file.Close()

	tmp, err := os.CreateTemp(s.uploadDir, "room-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", nil, fmt.Errorf("create temp upload: %w", err)
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("save upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("save upload: %w", err)
	}

	path := tmp.Name()
	return path, func() {
		if err := os.Remove(path); err != nil {
			s.logger.Warn("remove temp upload", zap.String("path", path), zap.Error(err))
		}
	}, nil
}

// HandleHealth handles GET /v1/healthz.
func (s *Server) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) parseTopK(raw string) (int, error) {
	if raw == "" {
		return s.defaultTopK, nil
	}
	k, err := strconv.Atoi(raw)
	if err != nil || k < 0 {
		return 0, fmt.Errorf("top_k must be a non-negative integer, got %q", raw)
	}
	if k > s.maxTopK {
		k = s.maxTopK
	}
	return k, nil
}

func parseOptionalFloat(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number, got %q", name, raw)
	}
	return &v, nil
}

func parsedToPayload(p query.Parsed, hadQuery bool) *parsedPayload {
	if !hadQuery {
		return nil
	}
	return &parsedPayload{
		Size:  optString(p.Size()),
		Color: optString(p.Color()),
		Style: optString(p.Style()),
		Shape: optString(p.Shape()),
	}
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// handleDomainError maps domain errors to HTTP responses.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownSearchMode):
		writeError(w, http.StatusBadRequest, codeUnknownMode, err.Error())
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		writeError(w, http.StatusBadGateway, codeEmbeddingProvider, err.Error())
	default:
		s.logger.Error("search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

// errorCode identifies an error class in API responses.
type errorCode string

const (
	codeBadRequest        errorCode = "bad_request"
	codeUnknownMode       errorCode = "unknown_search_mode"
	codeEmbeddingProvider errorCode = "embedding_provider_error"
	codeInternal          errorCode = "internal_error"
	codeUnauthorized      errorCode = "unauthorized"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code errorCode, msg string) {
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
