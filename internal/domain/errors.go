package domain

import "errors"

var (
	// ErrUnknownSearchMode signals a ranking mode this server does not support.
	ErrUnknownSearchMode = errors.New("unknown search mode")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrCatalogEmpty signals that the cleaned catalog contains no entries.
	ErrCatalogEmpty = errors.New("catalog is empty")
)
