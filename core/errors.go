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

import "errors"

// Domain validation errors
var (
	// ErrInvalidQuote indicates a Quote failed validation.
	ErrInvalidQuote = errors.New("invalid quote")

	// ErrInvalidKeyword indicates a Keyword failed validation.
	ErrInvalidKeyword = errors.New("invalid keyword")

	// ErrEmptyText indicates the quote Text field is empty.
	ErrEmptyText = errors.New("quote text cannot be empty")

	// ErrNegativeId indicates a negative quote id.
	ErrNegativeId = errors.New("quote id cannot be negative")

	// ErrEmptyCategory indicates the Category field is empty.
	ErrEmptyCategory = errors.New("category cannot be empty")

	// ErrEmptyWord indicates the keyword Word field is empty.
	ErrEmptyWord = errors.New("keyword word cannot be empty")

	// ErrZeroCount indicates a keyword with no matching quotes.
	ErrZeroCount = errors.New("keyword count must be greater than zero")
)
