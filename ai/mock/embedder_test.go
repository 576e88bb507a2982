package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	v1, err := embedder.EmbedText(ctx, "some quote")
	require.NoError(t, err)
	v2, err := embedder.EmbedText(ctx, "some quote")
	require.NoError(t, err)

	assert.Equal(t, v1, v2, "same text should embed to same vector")
	assert.Len(t, v1, 384)
}

func TestMockEmbedder_DifferentTexts(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	v1, err := embedder.EmbedText(ctx, "first")
	require.NoError(t, err)
	v2, err := embedder.EmbedText(ctx, "second")
	require.NoError(t, err)

	assert.NotEqual(t, v1, v2, "different texts should embed differently")
}

func TestMockEmbedder_Batch(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	vectors, err := embedder.EmbedTexts(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	single, err := embedder.EmbedText(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, single, vectors[1], "batch and single embeddings should agree")
}

func TestMockEmbedder_Injection(t *testing.T) {
	embedder := NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	_, err := embedder.EmbedText(context.Background(), "anything")
	assert.Error(t, err)
	assert.Equal(t, 1, embedder.CallCount())

	embedder.Reset()
	assert.Equal(t, 0, embedder.CallCount())

	_, err = embedder.EmbedText(context.Background(), "anything")
	assert.NoError(t, err, "reset should restore default behavior")
}
