package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryRoundTrip(t *testing.T) {
	entry := &Entry{
		ID:       "42",
		Vector:   []float32{0.25, -0.5, 0.125},
		Document: "Sé tú mismo. — no escaping of non-ASCII",
		Metadata: map[string]string{
			"author":     "A",
			"category":   "motivation",
			"tags":       "self,identity",
			"popularity": "7",
		},
	}

	decoded, err := UnmarshalEntry(MarshalEntry(entry))
	require.NoError(t, err)
	assert.Equal(t, entry, decoded)
}

func TestEntryRoundTrip_EmptyFields(t *testing.T) {
	entry := &Entry{
		ID:       "0",
		Vector:   []float32{1},
		Document: "",
		Metadata: map[string]string{},
	}

	decoded, err := UnmarshalEntry(MarshalEntry(entry))
	require.NoError(t, err)
	assert.Equal(t, entry, decoded)
}

func TestMetaRoundTrip(t *testing.T) {
	meta := &Meta{Name: "quotes", Dimension: 384}

	decoded, err := UnmarshalMeta(MarshalMeta(meta))
	require.NoError(t, err)
	assert.Equal(t, meta, decoded)
}

func TestUnmarshalEntry_Truncated(t *testing.T) {
	data := MarshalEntry(&Entry{ID: "1", Vector: []float32{1, 2}, Document: "doc"})

	_, err := UnmarshalEntry(data[:3])
	assert.Error(t, err)
}
