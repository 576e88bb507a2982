// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/quotecloud/ai"
	"github.com/poiesic/quotecloud/core"
	"github.com/poiesic/quotecloud/corpus"
	"github.com/poiesic/quotecloud/keywords"
	"github.com/poiesic/quotecloud/vectorstore"
)

// Indexer runs the indexing phase: normalize the raw corpus, embed every
// quote into the vector store, and score keywords per category.
type Indexer struct {
	embedder   ai.Embedder
	collection vectorstore.Collection
	scorer     *keywords.Scorer
	config     *Config
	progress   io.Writer
	logger     *slog.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithIndexerConfig overrides the default configuration.
func WithIndexerConfig(config *Config) IndexerOption {
	return func(ix *Indexer) {
		if config != nil {
			ix.config = config
		}
	}
}

// WithIndexerProgressWriter sets where progress output is written.
// Default is os.Stderr.
func WithIndexerProgressWriter(w io.Writer) IndexerOption {
	return func(ix *Indexer) {
		if w != nil {
			ix.progress = w
		}
	}
}

// WithIndexerLogger sets a custom logger.
// Default is slog.Default().
func WithIndexerLogger(logger *slog.Logger) IndexerOption {
	return func(ix *Indexer) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// NewIndexer creates an indexer over the given embedder, collection, and
// keyword scorer.
func NewIndexer(embedder ai.Embedder, collection vectorstore.Collection, scorer *keywords.Scorer, opts ...IndexerOption) (*Indexer, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if collection == nil {
		return nil, ErrCollectionRequired
	}
	if scorer == nil {
		return nil, ErrScorerRequired
	}

	ix := &Indexer{
		embedder:   embedder,
		collection: collection,
		scorer:     scorer,
		config:     DefaultConfig(),
		progress:   os.Stderr,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(ix)
	}

	if err := ix.config.Validate(); err != nil {
		return nil, err
	}

	return ix, nil
}

// IndexResult carries everything the indexing phase produced: the normalized
// corpus, the keyword table, and the corpus statistics.
type IndexResult struct {
	Corpus   *corpus.Result
	Keywords KeywordTable
	Stats    *Stats
}

// Run executes the indexing phase over the raw records. Embedding batches
// and category scoring run on a worker pool; any embedding or store failure
// aborts the run.
func (ix *Indexer) Run(ctx context.Context, records []corpus.Record) (*IndexResult, error) {
	result := corpus.Normalize(records)

	ix.logger.Info("corpus normalized",
		"quotes", len(result.Quotes),
		"categories", len(result.Buckets),
		"duplicates", result.Duplicates,
		"skipped", result.Skipped)

	pool, err := ants.NewPool(ix.config.Workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	if err := ix.embedCorpus(ctx, pool, result.Quotes); err != nil {
		return nil, err
	}

	table := ix.scoreCategories(pool, result.Buckets)

	dimensions, err := ix.collection.Dimension(ctx)
	if err != nil {
		return nil, fmt.Errorf("read collection dimension: %w", err)
	}

	stats := BuildStats(result, table, ix.config.EmbeddingModel, dimensions)

	ix.logger.Info("indexing complete",
		"quotes", stats.TotalQuotes,
		"categories", stats.TotalCategories,
		"dimensions", stats.EmbeddingDimensions)

	return &IndexResult{
		Corpus:   result,
		Keywords: table,
		Stats:    stats,
	}, nil
}

// embedCorpus embeds all quotes in batches and upserts them into the
// collection. Batches run concurrently; the first error from any batch
// fails the phase.
func (ix *Indexer) embedCorpus(ctx context.Context, pool *ants.Pool, quotes []*core.Quote) error {
	if len(quotes) == 0 {
		ix.logger.Warn("no quotes to embed")
		return nil
	}

	tracker := NewProgressTracker(ix.progress, len(quotes), ix.config.ReportInterval)
	tracker.Start()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for start := 0; start < len(quotes); start += ix.config.BatchSize {
		end := start + ix.config.BatchSize
		if end > len(quotes) {
			end = len(quotes)
		}
		batch := quotes[start:end]

		wg.Add(1)
		task := func() {
			defer wg.Done()

			if err := ix.embedBatch(ctx, batch); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			tracker.Increment(len(batch))
		}

		if err := pool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("submit batch: %w", err))
			mu.Unlock()
			break
		}
	}

	wg.Wait()
	tracker.Finish()

	if len(errs) > 0 {
		return fmt.Errorf("embed corpus: %w", errors.Join(errs...))
	}

	ix.logger.Debug("corpus embedded", "quotes", len(quotes), "elapsed", tracker.Elapsed())
	return nil
}

// embedBatch embeds one batch of quotes and upserts the entries. Both
// external calls retry with backoff.
func (ix *Indexer) embedBatch(ctx context.Context, batch []*core.Quote) error {
	texts := make([]string, len(batch))
	for i, quote := range batch {
		texts[i] = quote.Text
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func(callCtx context.Context) error {
		var embedErr error
		vectors, embedErr = ix.embedder.EmbedTexts(callCtx, texts)
		return embedErr
	}, ix.config.MaxRetries, ix.config.RetryDelay, ix.config.CallTimeout)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}

	if len(vectors) != len(batch) {
		return fmt.Errorf("embed batch: got %d vectors for %d texts", len(vectors), len(batch))
	}

	entries := make([]vectorstore.Entry, len(batch))
	for i, quote := range batch {
		entries[i] = vectorstore.Entry{
			ID:       strconv.Itoa(quote.Id),
			Vector:   vectors[i],
			Document: quote.Text,
			Metadata: map[string]string{
				"author":     quote.Author,
				"category":   quote.Category,
				"tags":       strings.Join(quote.Tags, ","),
				"popularity": strconv.Itoa(quote.Popularity),
			},
		}
	}

	err = RetryWithBackoff(ctx, func(callCtx context.Context) error {
		return ix.collection.UpsertBatch(callCtx, entries)
	}, ix.config.MaxRetries, ix.config.RetryDelay, ix.config.CallTimeout)
	if err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}

	return nil
}

// scoreCategories scores every category on the worker pool. Categories are
// independent, so they share nothing but the read-only buckets.
func (ix *Indexer) scoreCategories(pool *ants.Pool, buckets map[string][]*core.Quote) KeywordTable {
	categories := make([]string, 0, len(buckets))
	for category := range buckets {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	table := make(KeywordTable, len(categories))

	for _, category := range categories {
		category := category
		quotes := buckets[category]

		wg.Add(1)
		task := func() {
			defer wg.Done()

			scored := ix.scorer.Score(category, quotes)
			mu.Lock()
			table[category] = scored
			mu.Unlock()
		}

		if err := pool.Submit(task); err != nil {
			// Pool rejected the task; score inline rather than dropping
			// the category.
			ix.logger.Warn("scoring task rejected by pool", "category", category, "err", err)
			task()
		}
	}

	wg.Wait()

	for _, category := range categories {
		ix.logger.Debug("category scored", "category", category, "keywords", len(table[category]))
	}

	return table
}
