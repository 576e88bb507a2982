package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_EndToEnd(t *testing.T) {
	records := []Record{
		{Quote: "Be yourself.", Author: "A", Tags: []string{"self"}},
		{Quote: "Be yourself.", Author: "A", Tags: []string{"self"}},
		{Quote: "", Author: "B"},
		{Quote: "Act now.", Author: "C", Category: "Motivation", Tags: []string{"action", "action"}},
	}

	result := Normalize(records)

	require.Len(t, result.Quotes, 2)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 1, result.Skipped)

	first := result.Quotes[0]
	assert.Equal(t, 0, first.Id)
	assert.Equal(t, "Be yourself.", first.Text)
	assert.Equal(t, "A", first.Author)
	assert.Equal(t, "other", first.Category)

	second := result.Quotes[1]
	assert.Equal(t, 1, second.Id)
	assert.Equal(t, "Act now.", second.Text)
	assert.Equal(t, "motivation", second.Category)
	// Tag dedup is not performed; duplicates carry frequency signal
	assert.Equal(t, []string{"action", "action"}, second.Tags)
}

func TestNormalize_FirstOccurrenceWins(t *testing.T) {
	records := []Record{
		{Quote: "Act now.", Author: "C", Category: "Motivation"},
		{Quote: "  Act now.  ", Author: " C ", Category: "Wisdom"},
	}

	result := Normalize(records)

	require.Len(t, result.Quotes, 1)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, "motivation", result.Quotes[0].Category, "first occurrence should be retained")
}

func TestNormalize_CategoryDefault(t *testing.T) {
	result := Normalize([]Record{
		{Quote: "No category here.", Author: "A"},
		{Quote: "Blank category.", Author: "B", Category: "   "},
	})

	require.Len(t, result.Quotes, 2)
	assert.Equal(t, "other", result.Quotes[0].Category)
	assert.Equal(t, "other", result.Quotes[1].Category)
	assert.Len(t, result.Buckets["other"], 2)
}

func TestNormalize_TagNormalization(t *testing.T) {
	result := Normalize([]Record{
		{Quote: "Tagged.", Author: "A", Tags: []string{" Life ", "", "WISDOM", "  "}},
		{Quote: "Untagged.", Author: "B"},
	})

	require.Len(t, result.Quotes, 2)
	assert.Equal(t, []string{"life", "wisdom"}, result.Quotes[0].Tags)
	assert.Empty(t, result.Quotes[1].Tags)
	assert.NotNil(t, result.Quotes[1].Tags, "absent tag field should yield empty sequence, not nil")
}

func TestNormalize_Idempotent(t *testing.T) {
	records := []Record{
		{Quote: "One.", Author: "A", Category: "Life", Tags: []string{"x"}},
		{Quote: "Two.", Author: "B"},
		{Quote: "One.", Author: "A"},
		{Quote: "Three.", Author: "C", Category: "life"},
	}

	first := Normalize(records)
	second := Normalize(records)

	require.Equal(t, len(first.Quotes), len(second.Quotes))
	for i := range first.Quotes {
		assert.Equal(t, *first.Quotes[i], *second.Quotes[i])
	}
	assert.Equal(t, first.Duplicates, second.Duplicates)
	assert.Equal(t, first.Skipped, second.Skipped)
}

func TestNormalize_BucketsShareQuotes(t *testing.T) {
	result := Normalize([]Record{
		{Quote: "One.", Author: "A", Category: "Life"},
		{Quote: "Two.", Author: "B", Category: "life"},
	})

	require.Len(t, result.Buckets, 1)
	bucket := result.Buckets["life"]
	require.Len(t, bucket, 2)
	assert.Same(t, result.Quotes[0], bucket[0], "buckets are views over the same quotes")
	assert.Same(t, result.Quotes[1], bucket[1])
}

func TestLoad(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "quotes.json")
		payload := `[{"Quote":"Be yourself.","Author":"A","Tags":["self"],"Popularity":5}]`
		require.NoError(t, os.WriteFile(path, []byte(payload), 0644))

		records, err := Load(path)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Be yourself.", records[0].Quote)
		assert.Equal(t, 5, records[0].Popularity)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}
