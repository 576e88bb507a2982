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
	"strconv"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/quotecloud/ai"
	"github.com/poiesic/quotecloud/core"
	"github.com/poiesic/quotecloud/vectorstore"
)

// Materializer runs the generation phase: for every unique keyword it embeds
// the keyword text, queries the vector store for the nearest quotes, and
// writes one artifact per keyword, plus a keyword-independent full index of
// the corpus.
type Materializer struct {
	embedder   ai.Embedder
	collection vectorstore.Collection
	layout     *Layout
	config     *Config
	progress   io.Writer
	logger     *slog.Logger
}

// MaterializerOption configures a Materializer.
type MaterializerOption func(*Materializer)

// WithMaterializerConfig overrides the default configuration.
func WithMaterializerConfig(config *Config) MaterializerOption {
	return func(m *Materializer) {
		if config != nil {
			m.config = config
		}
	}
}

// WithMaterializerProgressWriter sets where progress output is written.
// Default is os.Stderr.
func WithMaterializerProgressWriter(w io.Writer) MaterializerOption {
	return func(m *Materializer) {
		if w != nil {
			m.progress = w
		}
	}
}

// WithMaterializerLogger sets a custom logger.
// Default is slog.Default().
func WithMaterializerLogger(logger *slog.Logger) MaterializerOption {
	return func(m *Materializer) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMaterializer creates a materializer writing into the given layout.
func NewMaterializer(embedder ai.Embedder, collection vectorstore.Collection, layout *Layout, opts ...MaterializerOption) (*Materializer, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if collection == nil {
		return nil, ErrCollectionRequired
	}
	if layout == nil {
		return nil, ErrLayoutRequired
	}

	m := &Materializer{
		embedder:   embedder,
		collection: collection,
		layout:     layout,
		config:     DefaultConfig(),
		progress:   os.Stderr,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if err := m.config.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Run resets the artifact tree and materializes every keyword artifact plus
// the full index. Keywords are queried concurrently; per-keyword failures
// are collected and reported together at the end, since a missing artifact
// for an advertised keyword breaks consumers.
func (m *Materializer) Run(ctx context.Context, table KeywordTable, quotes []*core.Quote) error {
	if err := m.layout.Reset(); err != nil {
		return err
	}

	vocabulary := table.Vocabulary()
	m.logger.Info("materializing artifacts",
		"keywords", len(vocabulary),
		"quotes", len(quotes),
		"root", m.layout.Root())

	if err := m.materializeKeywords(ctx, vocabulary); err != nil {
		return err
	}

	if err := m.writeFullIndex(quotes); err != nil {
		return err
	}

	m.logger.Info("materialization complete", "keywords", len(vocabulary))
	return nil
}

// materializeKeywords writes one artifact per vocabulary word on a worker
// pool. Each word is embedded and queried exactly once regardless of how
// many categories scored it.
func (m *Materializer) materializeKeywords(ctx context.Context, vocabulary []string) error {
	if len(vocabulary) == 0 {
		m.logger.Warn("empty keyword vocabulary, no keyword artifacts written")
		return nil
	}

	pool, err := ants.NewPool(m.config.Workers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	tracker := NewProgressTracker(m.progress, len(vocabulary), m.config.ReportInterval)
	tracker.Start()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, word := range vocabulary {
		word := word

		wg.Add(1)
		task := func() {
			defer wg.Done()

			if err := m.materializeKeyword(ctx, word); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("keyword %q: %w", word, err))
				mu.Unlock()
				return
			}
			tracker.Increment(1)
		}

		if err := pool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("keyword %q: submit: %w", word, err))
			mu.Unlock()
		}
	}

	wg.Wait()
	tracker.Finish()

	if len(errs) > 0 {
		return fmt.Errorf("materialize %d of %d keywords failed: %w",
			len(errs), len(vocabulary), errors.Join(errs...))
	}

	m.logger.Debug("keyword artifacts written", "count", len(vocabulary), "elapsed", tracker.Elapsed())
	return nil
}

// materializeKeyword embeds one keyword, queries the store, and writes the
// ranked result artifact. Both external calls retry with backoff.
func (m *Materializer) materializeKeyword(ctx context.Context, word string) error {
	var vector []float32
	err := RetryWithBackoff(ctx, func(callCtx context.Context) error {
		var embedErr error
		vector, embedErr = m.embedder.EmbedText(callCtx, word)
		return embedErr
	}, m.config.MaxRetries, m.config.RetryDelay, m.config.CallTimeout)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	var matches []vectorstore.Result
	err = RetryWithBackoff(ctx, func(callCtx context.Context) error {
		var queryErr error
		matches, queryErr = m.collection.Query(callCtx, vector, m.config.TopK)
		return queryErr
	}, m.config.MaxRetries, m.config.RetryDelay, m.config.CallTimeout)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	results := make([]QuoteResult, len(matches))
	for i, match := range matches {
		results[i] = QuoteResult{
			ID:         match.ID,
			Quote:      match.Document,
			Author:     match.Metadata["author"],
			Category:   match.Metadata["category"],
			Tags:       splitTags(match.Metadata["tags"]),
			Popularity: parsePopularity(match.Metadata["popularity"]),
		}
	}

	return WriteJSON(m.layout.KeywordFile(word), results)
}

// writeFullIndex emits the complete corpus in id order with abbreviated
// field names. It is regenerated from the normalized corpus, never from
// query results, so it is never capped.
func (m *Materializer) writeFullIndex(quotes []*core.Quote) error {
	entries := make([]IndexEntry, len(quotes))
	for i, quote := range quotes {
		entries[i] = IndexEntry{
			I: quote.Id,
			Q: quote.Text,
			A: quote.Author,
			C: quote.Category,
			T: quote.Tags,
		}
	}

	if err := WriteJSON(m.layout.FullIndexFile(), entries); err != nil {
		return err
	}

	m.logger.Debug("full index written", "entries", len(entries))
	return nil
}

// splitTags restores the tag list from its comma-joined stored form. An
// empty stored value means no tags, not one empty tag.
func splitTags(stored string) []string {
	if stored == "" {
		return []string{}
	}
	return strings.Split(stored, ",")
}

func parsePopularity(stored string) int {
	popularity, err := strconv.Atoi(stored)
	if err != nil {
		return 0
	}
	return popularity
}
