package pipeline

import "errors"

var (
	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrCollectionRequired is returned when a vector store collection is not provided.
	ErrCollectionRequired = errors.New("vector store collection required")

	// ErrScorerRequired is returned when a keyword scorer is not provided.
	ErrScorerRequired = errors.New("keyword scorer required")

	// ErrLayoutRequired is returned when an artifact layout is not provided.
	ErrLayoutRequired = errors.New("artifact layout required")

	// ErrInvalidMaxAttempts is returned for a non-positive retry attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")

	// ErrInvalidTopK is returned for a non-positive result count per keyword.
	ErrInvalidTopK = errors.New("top-k must be greater than zero")

	// ErrInvalidBatchSize is returned for a non-positive embedding batch size.
	ErrInvalidBatchSize = errors.New("batch size must be greater than zero")

	// ErrInvalidWorkers is returned for a non-positive worker pool size.
	ErrInvalidWorkers = errors.New("worker count must be greater than zero")

	// ErrInvalidCallTimeout is returned for a non-positive per-call timeout.
	ErrInvalidCallTimeout = errors.New("call timeout must be greater than zero")
)
