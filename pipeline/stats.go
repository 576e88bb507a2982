package pipeline

import (
	"sort"

	"github.com/poiesic/quotecloud/corpus"
)

// TopAuthorCount is the number of authors reported in the stats artifact.
const TopAuthorCount = 20

// CategoryStats summarizes one category in the stats artifact.
type CategoryStats struct {
	QuoteCount   int `json:"quote_count"`
	KeywordCount int `json:"keyword_count"`
}

// Stats is the shape of the stats.json artifact.
type Stats struct {
	TotalQuotes         int                      `json:"total_quotes"`
	TotalCategories     int                      `json:"total_categories"`
	Categories          map[string]CategoryStats `json:"categories"`
	TopAuthors          map[string]int           `json:"top_authors"`
	EmbeddingModel      string                   `json:"embedding_model"`
	EmbeddingDimensions int                      `json:"embedding_dimensions"`
}

// BuildStats derives corpus statistics from a normalized corpus and its
// keyword table. Quotes without an author are counted under "Unknown".
func BuildStats(result *corpus.Result, table KeywordTable, model string, dimensions int) *Stats {
	stats := &Stats{
		TotalQuotes:         len(result.Quotes),
		TotalCategories:     len(result.Buckets),
		Categories:          make(map[string]CategoryStats, len(result.Buckets)),
		TopAuthors:          make(map[string]int, TopAuthorCount),
		EmbeddingModel:      model,
		EmbeddingDimensions: dimensions,
	}

	for category, quotes := range result.Buckets {
		stats.Categories[category] = CategoryStats{
			QuoteCount:   len(quotes),
			KeywordCount: len(table[category]),
		}
	}

	authorCounts := make(map[string]int)
	for _, quote := range result.Quotes {
		author := quote.Author
		if author == "" {
			author = "Unknown"
		}
		authorCounts[author]++
	}

	type authorCount struct {
		author string
		count  int
	}
	counts := make([]authorCount, 0, len(authorCounts))
	for author, count := range authorCounts {
		counts = append(counts, authorCount{author, count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].author < counts[j].author
	})

	limit := TopAuthorCount
	if len(counts) < limit {
		limit = len(counts)
	}
	for _, ac := range counts[:limit] {
		stats.TopAuthors[ac.author] = ac.count
	}

	return stats
}
