package corpus

import (
	"strings"

	"github.com/poiesic/quotecloud/core"
)

// DefaultCategory is assigned to records with a missing or empty category.
const DefaultCategory = "other"

// Result holds the output of one normalization pass.
// Quotes are ordered by id; Buckets maps each normalized category to the
// quotes assigned to it, in corpus order. Both views share the same
// underlying Quote values.
type Result struct {
	Quotes  []*core.Quote
	Buckets map[string][]*core.Quote

	// Duplicates is the number of records dropped because an earlier record
	// had the same (trimmed text, trimmed author) pair.
	Duplicates int

	// Skipped is the number of records dropped for empty or whitespace-only
	// quote text. Skipped records are not counted as duplicates.
	Skipped int
}

// Normalize deduplicates and normalizes raw records into the corpus for one
// pipeline run. It is a pure fold over the input: ids are assigned as the
// 0-based position in the deduplicated output sequence, the first occurrence
// of a (text, author) pair wins, and input order is preserved throughout.
// Running it twice on the same input yields identical output.
func Normalize(records []Record) *Result {
	result := &Result{
		Buckets: make(map[string][]*core.Quote),
	}

	seen := make(map[core.DedupKey]struct{}, len(records))

	for _, record := range records {
		text := strings.TrimSpace(record.Quote)
		if text == "" {
			result.Skipped++
			continue
		}

		author := strings.TrimSpace(record.Author)

		key := core.DedupKeyFor(text, author)
		if _, ok := seen[key]; ok {
			result.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		quote := &core.Quote{
			Id:         len(result.Quotes),
			Text:       text,
			Author:     author,
			Category:   normalizeCategory(record.Category),
			Tags:       normalizeTags(record.Tags),
			Popularity: record.Popularity,
		}

		result.Quotes = append(result.Quotes, quote)
		result.Buckets[quote.Category] = append(result.Buckets[quote.Category], quote)
	}

	return result
}

// normalizeCategory trims and lower-cases a category name.
// Missing or empty categories map to DefaultCategory.
func normalizeCategory(category string) string {
	normalized := strings.ToLower(strings.TrimSpace(category))
	if normalized == "" {
		return DefaultCategory
	}
	return normalized
}

// normalizeTags trims and lower-cases each tag and drops empties.
// Duplicate tags are kept: tag frequency is a scoring signal downstream.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return []string{}
	}

	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		cleaned := strings.ToLower(strings.TrimSpace(tag))
		if cleaned != "" {
			normalized = append(normalized, cleaned)
		}
	}
	return normalized
}
