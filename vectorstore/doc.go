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


// Package vectorstore defines the nearest-neighbor store abstraction used by
// the pipeline, together with the MUS-format serialization of stored records.
//
// The pipeline only ever talks to the Collection interface: the indexing
// phase fills it with (id, vector, document, metadata) batches and the
// materialization phase asks it top-K questions. The badger subpackage
// provides the persistent implementation shared by both phases.
package vectorstore
