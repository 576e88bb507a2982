package pipeline

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/quotecloud/ai/mock"
	"github.com/poiesic/quotecloud/corpus"
	"github.com/poiesic/quotecloud/keywords"
	"github.com/poiesic/quotecloud/vectorstore"
	vbadger "github.com/poiesic/quotecloud/vectorstore/badger"
)

func newTestCollection(t *testing.T) vectorstore.Collection {
	t.Helper()

	collection, backend, err := vbadger.NewMemoryCollection("quotes")
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	return collection
}

func testConfig() *Config {
	return &Config{
		TopK:           50,
		BatchSize:      2,
		Workers:        2,
		ReportInterval: 1000,
		MaxRetries:     1,
		RetryDelay:     time.Millisecond,
		CallTimeout:    time.Minute,
		EmbeddingModel: "all-minilm",
	}
}

func testScorer() *keywords.Scorer {
	terms := &keywords.TFIDF{MaxFeatures: 10, MinDocFreq: 1}
	return keywords.NewScorer(terms, keywords.WithMinTagFrequency(1))
}

func testRecords() []corpus.Record {
	return []corpus.Record{
		{Quote: "Love conquers all things", Author: "Virgil", Category: "Love", Tags: []string{"love"}},
		{Quote: "Love conquers all things", Author: "Virgil", Category: "Love"}, // duplicate
		{Quote: "The unexamined life is not worth living", Author: "Socrates", Category: "Life", Tags: []string{"wisdom"}},
		{Quote: "Life is what happens while you make plans", Author: "Lennon", Category: "Life"},
		{Quote: "   ", Author: "Nobody", Category: "Life"}, // skipped
	}
}

func TestNewIndexer_Validation(t *testing.T) {
	collection := newTestCollection(t)
	embedder := mock.NewMockEmbedder()
	scorer := testScorer()

	_, err := NewIndexer(nil, collection, scorer)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewIndexer(embedder, nil, scorer)
	assert.ErrorIs(t, err, ErrCollectionRequired)

	_, err = NewIndexer(embedder, collection, nil)
	assert.ErrorIs(t, err, ErrScorerRequired)

	bad := testConfig()
	bad.BatchSize = 0
	_, err = NewIndexer(embedder, collection, scorer, WithIndexerConfig(bad))
	assert.ErrorIs(t, err, ErrInvalidBatchSize)

	bad = testConfig()
	bad.CallTimeout = 0
	_, err = NewIndexer(embedder, collection, scorer, WithIndexerConfig(bad))
	assert.ErrorIs(t, err, ErrInvalidCallTimeout)
}

func TestIndexer_Run(t *testing.T) {
	collection := newTestCollection(t)
	embedder := mock.NewMockEmbedder()

	ix, err := NewIndexer(embedder, collection, testScorer(),
		WithIndexerConfig(testConfig()),
		WithIndexerProgressWriter(io.Discard))
	require.NoError(t, err)

	result, err := ix.Run(context.Background(), testRecords())
	require.NoError(t, err)

	assert.Len(t, result.Corpus.Quotes, 3, "duplicate and blank records drop out")
	assert.Equal(t, 1, result.Corpus.Duplicates)
	assert.Equal(t, 1, result.Corpus.Skipped)

	count, err := collection.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count, "every surviving quote is stored")

	assert.Contains(t, result.Keywords, "love")
	assert.Contains(t, result.Keywords, "life")

	assert.Equal(t, 3, result.Stats.TotalQuotes)
	assert.Equal(t, 2, result.Stats.TotalCategories)
	assert.Equal(t, "all-minilm", result.Stats.EmbeddingModel)
	assert.Equal(t, 384, result.Stats.EmbeddingDimensions)
}

func TestIndexer_StoresMetadata(t *testing.T) {
	collection := newTestCollection(t)
	embedder := mock.NewMockEmbedder()

	ix, err := NewIndexer(embedder, collection, testScorer(),
		WithIndexerConfig(testConfig()),
		WithIndexerProgressWriter(io.Discard))
	require.NoError(t, err)

	records := []corpus.Record{
		{Quote: "Know thyself", Author: "Socrates", Category: "Wisdom", Tags: []string{"Philosophy", "self"}, Popularity: 9000},
	}
	result, err := ix.Run(context.Background(), records)
	require.NoError(t, err)

	vector, err := embedder.EmbedText(context.Background(), "Know thyself")
	require.NoError(t, err)

	matches, err := collection.Query(context.Background(), vector, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	assert.Equal(t, "0", matches[0].ID)
	assert.Equal(t, "Know thyself", matches[0].Document)
	assert.Equal(t, map[string]string{
		"author":     "Socrates",
		"category":   "wisdom",
		"tags":       "philosophy,self",
		"popularity": "9000",
	}, matches[0].Metadata)

	assert.Equal(t, CategoryStats{QuoteCount: 1, KeywordCount: len(result.Keywords["wisdom"])},
		result.Stats.Categories["wisdom"])
}

func TestIndexer_EmbedFailureAbortsRun(t *testing.T) {
	collection := newTestCollection(t)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}

	ix, err := NewIndexer(embedder, collection, testScorer(),
		WithIndexerConfig(testConfig()),
		WithIndexerProgressWriter(io.Discard))
	require.NoError(t, err)

	_, err = ix.Run(context.Background(), testRecords())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding service down")
}

func TestIndexer_StalledEmbedderCallIsBounded(t *testing.T) {
	collection := newTestCollection(t)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		// Never returns on its own; only the per-call deadline frees it.
		<-ctx.Done()
		return nil, ctx.Err()
	}

	config := testConfig()
	config.CallTimeout = 20 * time.Millisecond

	ix, err := NewIndexer(embedder, collection, testScorer(),
		WithIndexerConfig(config),
		WithIndexerProgressWriter(io.Discard))
	require.NoError(t, err)

	start := time.Now()
	_, err = ix.Run(context.Background(), testRecords())

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second, "a stuck embedding call must not stall the run")
}

func TestIndexer_EmptyCorpus(t *testing.T) {
	collection := newTestCollection(t)

	ix, err := NewIndexer(mock.NewMockEmbedder(), collection, testScorer(),
		WithIndexerConfig(testConfig()),
		WithIndexerProgressWriter(io.Discard))
	require.NoError(t, err)

	result, err := ix.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Empty(t, result.Corpus.Quotes)
	assert.Empty(t, result.Keywords)
	assert.Equal(t, 0, result.Stats.TotalQuotes)
	assert.Equal(t, 0, result.Stats.EmbeddingDimensions)
}
