package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/loomline/rugdex/internal/config"
	domcat "github.com/loomline/rugdex/internal/domain/catalog"
	logpkg "github.com/loomline/rugdex/internal/logger"
	"github.com/loomline/rugdex/internal/metrics"
	catalogrepo "github.com/loomline/rugdex/internal/repository/catalog"
	chiTransport "github.com/loomline/rugdex/internal/transport/chi"
	"github.com/loomline/rugdex/internal/transport/clip"
	openaiEmb "github.com/loomline/rugdex/internal/transport/openai"
	prosepkg "github.com/loomline/rugdex/internal/transport/prose"
	"github.com/loomline/rugdex/internal/usecase/multimodal"
	"github.com/loomline/rugdex/internal/usecase/parse"
	"github.com/loomline/rugdex/internal/usecase/structured"
	"github.com/loomline/rugdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting rugdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_csv", cfg.Catalog.CSVPath),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	// Load and clean the catalog
	entries, err := catalogrepo.Load(cfg.Catalog.CSVPath)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	entries = resolveImagePaths(entries, cfg.Catalog.ImagesDir)
	logger.Info("Catalog loaded", zap.Int("entries", len(entries)))

	// Embedding providers — composition root
	semanticEmbedder := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.Semantic.APIKey,
		BaseURL:    cfg.Embedding.Semantic.BaseURL,
		Model:      cfg.Embedding.Semantic.Model,
		Dimensions: cfg.Embedding.Semantic.Dimensions,
		Provider:   "semantic",
		Logger:     logger,
	})
	crossEncoder := clip.NewEncoder(&clip.Config{
		APIKey:     cfg.Embedding.CrossModal.APIKey,
		BaseURL:    cfg.Embedding.CrossModal.BaseURL,
		Model:      cfg.Embedding.CrossModal.Model,
		TimeoutSec: cfg.Embedding.CrossModal.TimeoutSec,
		Provider:   "crossmodal",
		Logger:     logger,
	})

	ctx := context.Background()

	// Query attribute parser: POS tagger + style concept index
	styles, err := parse.NewStyleIndex(ctx, semanticEmbedder)
	if err != nil {
		logger.Fatal("Failed to build style index", zap.Error(err))
	}
	parser := parse.New(prosepkg.NewTagger(), styles)

	// Ranking engines — precompute embedding caches at startup
	structuredSvc, err := structured.New(
		ctx, entries, parser, semanticEmbedder, logger,
		structured.WithBuildWorkers(cfg.Search.BuildWorkers),
	)
	if err != nil {
		logger.Fatal("Failed to build structured engine", zap.Error(err))
	}
	multimodalSvc, err := multimodal.New(
		ctx, entries, semanticEmbedder, crossEncoder, logger,
		multimodal.WithBuildWorkers(cfg.Search.BuildWorkers),
	)
	if err != nil {
		logger.Fatal("Failed to build multimodal engine", zap.Error(err))
	}

	// Create chi server
	server := chiTransport.NewServer(
		structuredSvc, multimodalSvc,
		cfg.Search.DefaultTopK, cfg.Search.MaxTopK,
		cfg.Catalog.UploadDir, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())

	server.Routes(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/images/*", http.StripPrefix("/images/",
		http.FileServer(http.Dir(cfg.Catalog.ImagesDir))))

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// resolveImagePaths rebuilds entries whose image path is relative so it
// points inside the configured images directory.
func resolveImagePaths(entries []domcat.Entry, dir string) []domcat.Entry {
	if dir == "" {
		return entries
	}
	out := make([]domcat.Entry, 0, len(entries))
	for _, e := range entries {
		path := e.ImagePath()
		if path != "" && !filepath.IsAbs(path) {
			path = filepath.Join(dir, filepath.Base(path))
		}
		out = append(out, domcat.New(e.Handle(), e.Title(), e.Description(), path, e.Price()))
	}
	return out
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
