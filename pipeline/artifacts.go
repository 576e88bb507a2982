package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/poiesic/quotecloud/core"
)

// KeywordTable maps a category name to its scored keywords. It is the shape
// of the keywords.json artifact produced by the Indexer and consumed by the
// Materializer.
type KeywordTable map[string][]core.Keyword

// Vocabulary returns the globally unique keyword strings across all
// categories, sorted ascending. A word scored in several categories
// appears once.
func (t KeywordTable) Vocabulary() []string {
	seen := make(map[string]struct{})
	for _, kws := range t {
		for _, kw := range kws {
			seen[kw.Word] = struct{}{}
		}
	}

	words := make([]string, 0, len(seen))
	for word := range seen {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}

// LoadKeywordTable reads a keywords.json artifact from disk.
func LoadKeywordTable(path string) (KeywordTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword table: %w", err)
	}

	var table KeywordTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse keyword table %s: %w", path, err)
	}
	return table, nil
}

// QuoteResult is a single entry in a per-keyword artifact.
type QuoteResult struct {
	ID         string   `json:"id"`
	Quote      string   `json:"quote"`
	Author     string   `json:"author"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
	Popularity int      `json:"popularity"`
}

// IndexEntry is a single entry in the full_index.json artifact. Field names
// are shortened to keep the client-side download small.
type IndexEntry struct {
	I int      `json:"i"`
	Q string   `json:"q"`
	A string   `json:"a"`
	C string   `json:"c"`
	T []string `json:"t"`
}

// WriteJSON marshals v and writes it to path. HTML escaping is disabled so
// quote text survives the round trip unmangled.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteJSONIndent is WriteJSON with two-space indentation, used for the
// artifacts people read by hand.
func WriteJSONIndent(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
