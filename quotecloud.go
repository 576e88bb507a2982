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


package quotecloud

import (
	"log/slog"

	"github.com/poiesic/quotecloud/ai"
	"github.com/poiesic/quotecloud/ai/openai"
	"github.com/poiesic/quotecloud/keywords"
	"github.com/poiesic/quotecloud/pipeline"
	"github.com/poiesic/quotecloud/vectorstore"
	"github.com/poiesic/quotecloud/vectorstore/badger"
)

// CollectionName is the vector store collection holding the quote corpus.
const CollectionName = "quotes"

// Engine wires the storage backend, the embedding client, and the quote
// collection together for the two pipeline phases.
type Engine struct {
	backend    *badger.Backend
	collection vectorstore.Collection
	embedder   ai.Embedder
	logger     *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig *ai.Config
	fresh    bool
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithFreshCollection drops any existing quote collection on open. The
// indexing phase uses this so every run starts from an empty store.
func WithFreshCollection() EngineOption {
	return func(o *engineOptions) {
		o.fresh = true
	}
}

// NewEngine opens the vector store at dbPath and connects to the embedding
// service.
func NewEngine(dbPath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return nil, err
	}

	var collection vectorstore.Collection
	if options.fresh {
		collection, err = badger.CreateCollection(backend, CollectionName)
	} else {
		collection, err = badger.OpenCollection(backend, CollectionName)
	}
	if err != nil {
		backend.Close()
		return nil, err
	}

	embedder, err := openai.NewEmbedder(options.aiConfig)
	if err != nil {
		collection.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		backend:    backend,
		collection: collection,
		embedder:   embedder,
		logger:     slog.Default(),
	}, nil
}

func (e *Engine) Close() error {
	if err := e.collection.Close(); err != nil {
		e.logger.Error("error closing collection", "err", err)
		return err
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (e *Engine) Collection() vectorstore.Collection {
	return e.collection
}

func (e *Engine) Embedder() ai.Embedder {
	return e.embedder
}

func (e *Engine) NewIndexer(scorer *keywords.Scorer, opts ...pipeline.IndexerOption) (*pipeline.Indexer, error) {
	return pipeline.NewIndexer(e.embedder, e.collection, scorer, opts...)
}

func (e *Engine) NewMaterializer(layout *pipeline.Layout, opts ...pipeline.MaterializerOption) (*pipeline.Materializer, error) {
	return pipeline.NewMaterializer(e.embedder, e.collection, layout, opts...)
}
