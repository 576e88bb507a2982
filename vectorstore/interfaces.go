package vectorstore

import "context"

// Entry is one embedded document to store: a stable string id, its embedding
// vector, the raw document text, and flat string metadata.
type Entry struct {
	ID       string
	Vector   []float32
	Document string
	Metadata map[string]string
}

// Result is one nearest-neighbor match. Distance is cosine distance, so
// results order ascending with the closest match first. The relative order
// of exactly-equal distances is store-dependent.
type Result struct {
	ID       string
	Document string
	Metadata map[string]string
	Distance float32
}

// Collection is a named set of embedded documents supporting batch inserts
// and top-K nearest-neighbor queries.
// Implementations must be safe for concurrent queries.
type Collection interface {
	// UpsertBatch stores the given entries, replacing any existing entries
	// with the same ids. All vectors in a collection must share one
	// dimensionality; a mismatch returns ErrDimensionMismatch.
	UpsertBatch(ctx context.Context, entries []Entry) error

	// Query returns up to k entries nearest to the given vector, ordered by
	// ascending cosine distance.
	Query(ctx context.Context, vector []float32, k int) ([]Result, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Dimension returns the collection's vector dimensionality, or 0 if the
	// collection is still empty.
	Dimension(ctx context.Context) (int, error)

	// Close releases resources held by the collection.
	Close() error
}
