// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package keywords extracts impactful keywords per category.
//
// Candidates combine two signals: TF-IDF salience over the category's quote
// texts (unigrams and bigrams, stop words excluded) and the frequency of
// normalized tags. Every candidate is then re-matched against the category's
// quotes by literal case-insensitive substring or exact tag match, and the
// three signals are folded into a single impact score:
//
//	impact = 0.4*tfidf + 0.3*min(tagCount/100, 1) + 0.3*min(quoteCount/categorySize, 1)
//
// Candidates whose re-match count is zero are dropped. This can discard
// high-scoring bigrams that never appear as a literal substring; the filter
// doubles as a quality gate and is part of the scoring contract.
package keywords
