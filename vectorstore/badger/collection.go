package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/quotecloud/vectorstore"
)

// Collection is a BadgerDB-backed vectorstore.Collection.
// Vectors are normalized to unit length at insert and query time, so cosine
// distance reduces to 1 - dot product. Queries scan the collection's entries
// and rank them brute-force; the corpus sizes this pipeline handles do not
// justify an approximate index.
type Collection struct {
	backend *Backend
	name    string
	logger  *slog.Logger

	mu   sync.Mutex // guards meta during upserts
	meta vectorstore.Meta
}

var _ vectorstore.Collection = (*Collection)(nil)

// CreateCollection creates a fresh collection with the given name, dropping
// any stored entries a previous run left under it.
//
// Returns vectorstore.Collection interface to enforce abstraction.
func CreateCollection(backend *Backend, name string) (vectorstore.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name required")
	}

	c := &Collection{
		backend: backend,
		name:    name,
		logger:  slog.Default().With("component", "vectorstore", "collection", name),
		meta:    vectorstore.Meta{Name: name},
	}

	if err := c.drop(); err != nil {
		return nil, fmt.Errorf("drop existing collection: %w", err)
	}
	if err := c.writeMeta(); err != nil {
		return nil, fmt.Errorf("write collection meta: %w", err)
	}

	c.logger.Debug("created collection")
	return c, nil
}

// OpenCollection opens an existing collection.
// Returns vectorstore.ErrCollectionNotFound if no collection with the given
// name has been created.
func OpenCollection(backend *Backend, name string) (vectorstore.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name required")
	}

	c := &Collection{
		backend: backend,
		name:    name,
		logger:  slog.Default().With("component", "vectorstore", "collection", name),
	}

	err := backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeMetaKey(name))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return vectorstore.ErrCollectionNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			meta, err := vectorstore.UnmarshalMeta(val)
			if err != nil {
				return fmt.Errorf("%w: %w", vectorstore.ErrSerializationFailed, err)
			}
			c.meta = *meta
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// UpsertBatch stores the given entries, replacing existing entries with the
// same ids. The first batch fixes the collection's dimensionality; later
// batches must match it.
func (c *Collection) UpsertBatch(ctx context.Context, entries []vectorstore.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range entries {
		if len(entries[i].Vector) == 0 {
			return fmt.Errorf("%w: entry %s", vectorstore.ErrEmptyVector, entries[i].ID)
		}
		if c.meta.Dimension == 0 {
			c.meta.Dimension = len(entries[i].Vector)
		} else if len(entries[i].Vector) != c.meta.Dimension {
			return fmt.Errorf("%w: entry %s has %d, collection has %d",
				vectorstore.ErrDimensionMismatch, entries[i].ID, len(entries[i].Vector), c.meta.Dimension)
		}
	}

	return c.backend.WithTx(func(tx *badger.Txn) error {
		for i := range entries {
			stored := entries[i]
			stored.Vector = normalizeVector(stored.Vector)
			if err := tx.Set(makeEntryKey(c.name, stored.ID), vectorstore.MarshalEntry(&stored)); err != nil {
				return err
			}
		}
		if err := tx.Set(makeMetaKey(c.name), vectorstore.MarshalMeta(&c.meta)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Query returns up to k entries nearest to the given vector, ordered by
// ascending cosine distance. Entries at exactly equal distance keep their
// iteration order, which is store-dependent.
func (c *Collection) Query(ctx context.Context, vector []float32, k int) ([]vectorstore.Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", vectorstore.ErrInvalidQuery)
	}
	if len(vector) == 0 {
		return nil, vectorstore.ErrEmptyVector
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	query := normalizeVector(vector)

	var results []vectorstore.Result
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEntryScanPrefix(c.name)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var entry *vectorstore.Entry
			err := item.Value(func(val []byte) error {
				var err error
				entry, err = vectorstore.UnmarshalEntry(val)
				return err
			})
			if err != nil {
				return fmt.Errorf("%w: %w", vectorstore.ErrSerializationFailed, err)
			}

			// Stored vectors are unit length: cosine distance is 1 - dot
			distance := 1 - dotProduct(query, entry.Vector)
			results = append(results, vectorstore.Result{
				ID:       entry.ID,
				Document: entry.Document,
				Metadata: entry.Metadata,
				Distance: distance,
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by distance ascending
	slices.SortStableFunc(results, func(a, b vectorstore.Result) int {
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		return 0
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Count returns the number of stored entries.
func (c *Collection) Count(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	count := 0
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEntryScanPrefix(c.name)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Dimension returns the collection's vector dimensionality, or 0 while the
// collection is empty.
func (c *Collection) Dimension(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meta.Dimension, nil
}

// Close releases resources held by the collection.
// The shared backend stays open; the caller owns its lifecycle.
func (c *Collection) Close() error {
	return nil
}

// drop removes every stored entry and the meta record of the collection.
func (c *Collection) drop() error {
	// Collect keys first; deleting during iteration invalidates the iterator
	var keys [][]byte
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEntryScanPrefix(c.name)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return err
	}

	return c.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		if err := tx.Delete(makeMetaKey(c.name)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return tx.Commit()
	}, true)
}

// writeMeta persists the collection meta record.
func (c *Collection) writeMeta() error {
	return c.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeMetaKey(c.name), vectorstore.MarshalMeta(&c.meta)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
