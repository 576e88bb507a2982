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


package core

import (
	"fmt"
	"strings"
)

// ValidateQuote validates a Quote according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Id must not be negative
//   - Category must not be empty (normalization defaults it to "other")
//
// NOT validated:
//   - Author and Tags (may legitimately be empty)
//   - Popularity (any integer is acceptable)
func ValidateQuote(quote *Quote) error {
	if quote == nil {
		return fmt.Errorf("%w: quote is nil", ErrInvalidQuote)
	}

	if strings.TrimSpace(quote.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidQuote, ErrEmptyText)
	}

	if quote.Id < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidQuote, ErrNegativeId)
	}

	if quote.Category == "" {
		return fmt.Errorf("%w: %w", ErrInvalidQuote, ErrEmptyCategory)
	}

	return nil
}

// ValidateKeyword validates a Keyword according to domain rules.
//
// Validation rules:
//   - Word must not be empty
//   - Count must be greater than zero (a keyword that matches no quote in
//     its category is never emitted)
func ValidateKeyword(keyword *Keyword) error {
	if keyword == nil {
		return fmt.Errorf("%w: keyword is nil", ErrInvalidKeyword)
	}

	if keyword.Word == "" {
		return fmt.Errorf("%w: %w", ErrInvalidKeyword, ErrEmptyWord)
	}

	if keyword.Count <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidKeyword, ErrZeroCount)
	}

	return nil
}
