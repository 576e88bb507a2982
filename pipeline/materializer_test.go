package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/quotecloud/ai/mock"
	"github.com/poiesic/quotecloud/core"
	"github.com/poiesic/quotecloud/vectorstore"
)

// planarEmbedder returns fixed two-dimensional vectors so nearest-neighbor
// order in tests is chosen by hand.
func planarEmbedder(vectors map[string][]float32) *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		vector, ok := vectors[text]
		if !ok {
			return nil, fmt.Errorf("no vector for %q", text)
		}
		return vector, nil
	}
	return embedder
}

func seedCollection(t *testing.T, collection vectorstore.Collection, entries []vectorstore.Entry) {
	t.Helper()
	require.NoError(t, collection.UpsertBatch(context.Background(), entries))
}

func materializeFixture(t *testing.T) (vectorstore.Collection, []*core.Quote) {
	t.Helper()

	collection := newTestCollection(t)
	seedCollection(t, collection, []vectorstore.Entry{
		{
			ID: "0", Vector: []float32{0.95, 0.05}, Document: "The heart has its reasons",
			Metadata: map[string]string{"author": "Pascal", "category": "love", "tags": "heart,reason", "popularity": "10"},
		},
		{
			ID: "1", Vector: []float32{0.8, 0.2}, Document: "Wherever you go, go with all your heart",
			Metadata: map[string]string{"author": "Confucius", "category": "love", "tags": "", "popularity": "25"},
		},
		{
			ID: "2", Vector: []float32{0.1, 0.9}, Document: "Knowing yourself is the beginning of all wisdom",
			Metadata: map[string]string{"author": "Aristotle", "category": "wisdom", "tags": "wisdom", "popularity": "50"},
		},
	})

	quotes := []*core.Quote{
		{Id: 0, Text: "The heart has its reasons", Author: "Pascal", Category: "love", Tags: []string{"heart", "reason"}},
		{Id: 1, Text: "Wherever you go, go with all your heart", Author: "Confucius", Category: "love", Tags: []string{}},
		{Id: 2, Text: "Knowing yourself is the beginning of all wisdom", Author: "Aristotle", Category: "wisdom", Tags: []string{"wisdom"}},
	}
	return collection, quotes
}

func newTestMaterializer(t *testing.T, embedder *mock.MockEmbedder, collection vectorstore.Collection, layout *Layout, topK int) *Materializer {
	t.Helper()

	config := testConfig()
	config.TopK = topK

	m, err := NewMaterializer(embedder, collection, layout,
		WithMaterializerConfig(config),
		WithMaterializerProgressWriter(io.Discard))
	require.NoError(t, err)
	return m
}

func readKeywordArtifact(t *testing.T, path string) []QuoteResult {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var results []QuoteResult
	require.NoError(t, json.Unmarshal(data, &results))
	return results
}

func TestNewMaterializer_Validation(t *testing.T) {
	collection := newTestCollection(t)
	embedder := mock.NewMockEmbedder()
	layout := NewLayout(t.TempDir())

	_, err := NewMaterializer(nil, collection, layout)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewMaterializer(embedder, nil, layout)
	assert.ErrorIs(t, err, ErrCollectionRequired)

	_, err = NewMaterializer(embedder, collection, nil)
	assert.ErrorIs(t, err, ErrLayoutRequired)
}

func TestMaterializer_OneArtifactPerUniqueKeyword(t *testing.T) {
	collection, quotes := materializeFixture(t)
	embedder := planarEmbedder(map[string][]float32{
		"heart":  {1, 0},
		"wisdom": {0, 1},
	})
	layout := NewLayout(filepath.Join(t.TempDir(), "api"))

	// "heart" is scored by two categories but must yield one artifact.
	table := KeywordTable{
		"love":   {{Word: "heart", Count: 2, Impact: 0.6}},
		"wisdom": {{Word: "wisdom", Count: 1, Impact: 0.5}, {Word: "heart", Count: 1, Impact: 0.2}},
	}

	m := newTestMaterializer(t, embedder, collection, layout, 50)
	require.NoError(t, m.Run(context.Background(), table, quotes))

	files, err := os.ReadDir(layout.QuotesDir())
	require.NoError(t, err)
	assert.Len(t, files, 2, "one artifact per unique vocabulary word")
	assert.FileExists(t, layout.KeywordFile("heart"))
	assert.FileExists(t, layout.KeywordFile("wisdom"))
}

func TestMaterializer_RankedResults(t *testing.T) {
	collection, quotes := materializeFixture(t)
	embedder := planarEmbedder(map[string][]float32{"heart": {1, 0}})
	layout := NewLayout(filepath.Join(t.TempDir(), "api"))

	table := KeywordTable{"love": {{Word: "heart", Count: 2, Impact: 0.6}}}

	m := newTestMaterializer(t, embedder, collection, layout, 2)
	require.NoError(t, m.Run(context.Background(), table, quotes))

	results := readKeywordArtifact(t, layout.KeywordFile("heart"))
	require.Len(t, results, 2, "artifact is capped at top-k")

	assert.Equal(t, "0", results[0].ID, "closest quote first")
	assert.Equal(t, "1", results[1].ID)

	assert.Equal(t, QuoteResult{
		ID:         "0",
		Quote:      "The heart has its reasons",
		Author:     "Pascal",
		Category:   "love",
		Tags:       []string{"heart", "reason"},
		Popularity: 10,
	}, results[0])
	assert.Equal(t, []string{}, results[1].Tags, "empty stored tags decode to an empty list")
}

func TestMaterializer_FullIndex(t *testing.T) {
	collection, quotes := materializeFixture(t)
	embedder := planarEmbedder(map[string][]float32{"heart": {1, 0}})
	layout := NewLayout(filepath.Join(t.TempDir(), "api"))

	table := KeywordTable{"love": {{Word: "heart", Count: 2, Impact: 0.6}}}

	m := newTestMaterializer(t, embedder, collection, layout, 1)
	require.NoError(t, m.Run(context.Background(), table, quotes))

	data, err := os.ReadFile(layout.FullIndexFile())
	require.NoError(t, err)

	var entries []IndexEntry
	require.NoError(t, json.Unmarshal(data, &entries))

	require.Len(t, entries, len(quotes), "full index is never capped at top-k")
	for i, entry := range entries {
		assert.Equal(t, i, entry.I, "entries stay in id order")
	}
	assert.Equal(t, IndexEntry{
		I: 2,
		Q: "Knowing yourself is the beginning of all wisdom",
		A: "Aristotle",
		C: "wisdom",
		T: []string{"wisdom"},
	}, entries[2])
}

func TestMaterializer_ResetsPreviousTree(t *testing.T) {
	collection, quotes := materializeFixture(t)
	embedder := planarEmbedder(map[string][]float32{"heart": {1, 0}})
	layout := NewLayout(filepath.Join(t.TempDir(), "api"))

	require.NoError(t, layout.Reset())
	stale := layout.KeywordFile("stale")
	require.NoError(t, os.WriteFile(stale, []byte("[]"), 0o644))

	table := KeywordTable{"love": {{Word: "heart", Count: 2, Impact: 0.6}}}
	m := newTestMaterializer(t, embedder, collection, layout, 1)
	require.NoError(t, m.Run(context.Background(), table, quotes))

	assert.NoFileExists(t, stale, "previous artifacts do not survive a run")
	assert.FileExists(t, layout.KeywordFile("heart"))
}

func TestMaterializer_KeywordFailureSurfaces(t *testing.T) {
	collection, quotes := materializeFixture(t)
	embedder := planarEmbedder(map[string][]float32{"heart": {1, 0}})
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if text == "wisdom" {
			return nil, errors.New("embedding service down")
		}
		return []float32{1, 0}, nil
	}
	layout := NewLayout(filepath.Join(t.TempDir(), "api"))

	table := KeywordTable{
		"love":   {{Word: "heart", Count: 2, Impact: 0.6}},
		"wisdom": {{Word: "wisdom", Count: 1, Impact: 0.5}},
	}

	m := newTestMaterializer(t, embedder, collection, layout, 1)
	err := m.Run(context.Background(), table, quotes)

	require.Error(t, err, "a missing advertised keyword is a hard error")
	assert.Contains(t, err.Error(), `keyword "wisdom"`)
	assert.FileExists(t, layout.KeywordFile("heart"), "unaffected keywords still materialize")
}

func TestMaterializer_StalledEmbedderCallIsBounded(t *testing.T) {
	collection, quotes := materializeFixture(t)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		// Never returns on its own; only the per-call deadline frees it.
		<-ctx.Done()
		return nil, ctx.Err()
	}
	layout := NewLayout(filepath.Join(t.TempDir(), "api"))

	config := testConfig()
	config.TopK = 1
	config.CallTimeout = 20 * time.Millisecond

	m, err := NewMaterializer(embedder, collection, layout,
		WithMaterializerConfig(config),
		WithMaterializerProgressWriter(io.Discard))
	require.NoError(t, err)

	table := KeywordTable{"love": {{Word: "heart", Count: 2, Impact: 0.6}}}

	start := time.Now()
	err = m.Run(context.Background(), table, quotes)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second, "a stuck embedding call must not stall the run")
}

func TestMaterializer_EmptyVocabulary(t *testing.T) {
	collection, quotes := materializeFixture(t)
	layout := NewLayout(filepath.Join(t.TempDir(), "api"))

	m := newTestMaterializer(t, mock.NewMockEmbedder(), collection, layout, 1)
	require.NoError(t, m.Run(context.Background(), KeywordTable{}, quotes))

	files, err := os.ReadDir(layout.QuotesDir())
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.FileExists(t, layout.FullIndexFile(), "full index is keyword-independent")
}
