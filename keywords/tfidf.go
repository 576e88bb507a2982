package keywords

import (
	"math"
	"sort"
)

const (
	// DefaultMaxFeatures caps the number of terms kept per category.
	DefaultMaxFeatures = 100

	// DefaultMinDocFreq is the minimum number of quotes a term must appear
	// in to qualify as a candidate.
	DefaultMinDocFreq = 2
)

// TermScorer produces a term -> salience score mapping over one category's
// quote texts. Scorer treats it as a pluggable capability: a failed scoring
// pass degrades to tag-derived candidates only, it never aborts a category.
type TermScorer interface {
	ScoreTerms(texts []string) (map[string]float64, error)
}

// TFIDF scores unigram and bigram terms by mean TF-IDF over a document set.
//
// Per-document term-frequency vectors are weighted with smoothed inverse
// document frequency and L2-normalized, then averaged across documents, so
// scores land roughly in [0,1]. Terms appearing in fewer than MinDocFreq
// documents are excluded, and only the top MaxFeatures terms by mean score
// are returned.
type TFIDF struct {
	MaxFeatures int
	MinDocFreq  int
}

var _ TermScorer = (*TFIDF)(nil)

// NewTFIDF creates a TFIDF scorer with default limits.
func NewTFIDF() *TFIDF {
	return &TFIDF{
		MaxFeatures: DefaultMaxFeatures,
		MinDocFreq:  DefaultMinDocFreq,
	}
}

// ScoreTerms computes mean TF-IDF scores for the given documents.
// Returns ErrNoQualifyingTerms when the document set is too small or too
// sparse to produce any qualifying terms.
func (t *TFIDF) ScoreTerms(texts []string) (map[string]float64, error) {
	if len(texts) == 0 {
		return nil, ErrNoQualifyingTerms
	}

	maxFeatures := t.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	minDocFreq := t.MinDocFreq
	if minDocFreq <= 0 {
		minDocFreq = DefaultMinDocFreq
	}

	// Raw term counts per document and document frequencies
	docTerms := make([]map[string]int, len(texts))
	df := make(map[string]int)
	for i, text := range texts {
		counts := make(map[string]int)
		for _, term := range terms(text) {
			counts[term]++
		}
		docTerms[i] = counts
		for term := range counts {
			df[term]++
		}
	}

	// Vocabulary restricted by document frequency
	vocab := make(map[string]float64) // term -> idf
	n := float64(len(texts))
	for term, freq := range df {
		if freq < minDocFreq {
			continue
		}
		// Smoothed IDF
		vocab[term] = math.Log((1+n)/(1+float64(freq))) + 1.0
	}
	if len(vocab) == 0 {
		return nil, ErrNoQualifyingTerms
	}

	// Mean of L2-normalized per-document TF-IDF vectors
	scores := make(map[string]float64, len(vocab))
	for _, counts := range docTerms {
		var norm float64
		weights := make(map[string]float64)
		for term, count := range counts {
			idf, ok := vocab[term]
			if !ok {
				continue
			}
			w := float64(count) * idf
			weights[term] = w
			norm += w * w
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for term, w := range weights {
			scores[term] += w / norm / n
		}
	}

	return capFeatures(scores, maxFeatures), nil
}

// capFeatures keeps the top limit terms by score. Ties break on the term
// string so output is deterministic.
func capFeatures(scores map[string]float64, limit int) map[string]float64 {
	if len(scores) <= limit {
		return scores
	}

	type scored struct {
		term  string
		score float64
	}
	ranked := make([]scored, 0, len(scores))
	for term, score := range scores {
		ranked = append(ranked, scored{term, score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].term < ranked[j].term
	})

	capped := make(map[string]float64, limit)
	for _, s := range ranked[:limit] {
		capped[s.term] = s.score
	}
	return capped
}
