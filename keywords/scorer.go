package keywords

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/poiesic/quotecloud/core"
)

const (
	// DefaultTopPerCategory is the ranked keyword list cap per category.
	DefaultTopPerCategory = 30

	// DefaultMinTagFrequency is the minimum number of occurrences for a tag
	// to qualify as a keyword candidate.
	DefaultMinTagFrequency = 3

	// tagCountCap is where tag frequency saturates in the impact formula.
	tagCountCap = 100
)

// Impact score weights: TF-IDF salience, tag frequency, quote coverage.
const (
	tfidfWeight = 0.4
	tagWeight   = 0.3
	quoteWeight = 0.3
)

// Scorer ranks keywords within a category by impact score.
// Candidates come from two signals: TF-IDF terms over the category's quote
// texts and frequent normalized tags. Both are re-matched against the quotes
// to compute coverage before scoring.
type Scorer struct {
	terms           TermScorer
	topPerCategory  int
	minTagFrequency int
	logger          *slog.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithTopPerCategory caps the ranked keyword list per category.
// Default is DefaultTopPerCategory.
func WithTopPerCategory(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.topPerCategory = n
		}
	}
}

// WithMinTagFrequency sets the tag occurrence threshold for tag candidates.
// Default is DefaultMinTagFrequency.
func WithMinTagFrequency(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.minTagFrequency = n
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScorer creates a keyword scorer. terms may be nil, in which case only
// tag-derived candidates are scored.
func NewScorer(terms TermScorer, opts ...Option) *Scorer {
	s := &Scorer{
		terms:           terms,
		topPerCategory:  DefaultTopPerCategory,
		minTagFrequency: DefaultMinTagFrequency,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// candidate accumulates the raw signals for one keyword candidate.
type candidate struct {
	word       string
	tfidfScore float64
	tagCount   int
	quoteCount int
	impact     float64
}

// Score ranks up to the configured number of keywords for one category's
// quote bucket, highest impact first. A category with zero quotes yields no
// keywords. A failed TF-IDF pass degrades to tag candidates only.
func (s *Scorer) Score(category string, quotes []*core.Quote) []core.Keyword {
	if len(quotes) == 0 {
		return nil
	}

	texts := make([]string, len(quotes))
	for i, quote := range quotes {
		texts[i] = quote.Text
	}

	var tfidfScores map[string]float64
	if s.terms != nil {
		scores, err := s.terms.ScoreTerms(texts)
		if err != nil {
			s.logger.Warn("term scoring failed, using tag candidates only",
				"category", category, "err", err)
		} else {
			tfidfScores = scores
		}
	}

	// Merge TF-IDF terms and frequent tags into one candidate set
	candidates := make(map[string]*candidate, len(tfidfScores))
	for word, score := range tfidfScores {
		candidates[word] = &candidate{word: word, tfidfScore: score}
	}

	tagCounts := make(map[string]int)
	for _, quote := range quotes {
		for _, tag := range quote.Tags {
			tagCounts[tag]++
		}
	}
	for tag, count := range tagCounts {
		if count < s.minTagFrequency {
			continue
		}
		if existing, ok := candidates[tag]; ok {
			existing.tagCount = count
		} else {
			candidates[tag] = &candidate{word: tag, tagCount: count}
		}
	}

	// Re-match every candidate against the quotes: case-insensitive
	// substring on text, exact match on the normalized tag set. Candidates
	// that match nothing are dropped, including TF-IDF bigrams that do not
	// literally substring-match.
	scored := make([]*candidate, 0, len(candidates))
	for _, cand := range candidates {
		cand.quoteCount = countMatches(cand.word, quotes)
		if cand.quoteCount == 0 {
			continue
		}
		cand.impact = impact(cand, len(quotes))
		scored = append(scored, cand)
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].impact != scored[j].impact {
			return scored[i].impact > scored[j].impact
		}
		if scored[i].quoteCount != scored[j].quoteCount {
			return scored[i].quoteCount > scored[j].quoteCount
		}
		return scored[i].word < scored[j].word
	})

	if len(scored) > s.topPerCategory {
		scored = scored[:s.topPerCategory]
	}

	keywords := make([]core.Keyword, len(scored))
	for i, cand := range scored {
		keywords[i] = core.Keyword{
			Word:     cand.word,
			Count:    cand.quoteCount,
			Impact:   cand.impact,
			Category: category,
		}
	}
	return keywords
}

// countMatches counts quotes whose text contains word as a case-insensitive
// substring or whose tag set contains word exactly.
func countMatches(word string, quotes []*core.Quote) int {
	count := 0
	for _, quote := range quotes {
		if strings.Contains(strings.ToLower(quote.Text), word) || containsTag(quote.Tags, word) {
			count++
		}
	}
	return count
}

func containsTag(tags []string, word string) bool {
	for _, tag := range tags {
		if tag == word {
			return true
		}
	}
	return false
}

// impact combines the three normalized signals into one weighted score,
// rounded to 3 decimals.
func impact(cand *candidate, categorySize int) float64 {
	tagNorm := math.Min(float64(cand.tagCount)/tagCountCap, 1.0)
	quoteNorm := math.Min(float64(cand.quoteCount)/float64(categorySize), 1.0)

	raw := tfidfWeight*cand.tfidfScore + tagWeight*tagNorm + quoteWeight*quoteNorm
	return math.Round(raw*1000) / 1000
}
