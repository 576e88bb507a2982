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


// Package corpus loads raw quote records and normalizes them into the
// deduplicated corpus that drives one pipeline run.
//
// Load performs the only I/O in the package. Normalize is a pure function:
// given the same input sequence it always produces the same quotes, the same
// id assignments, and the same category buckets, which makes the downstream
// phases safe to parallelize over its immutable output.
package corpus
