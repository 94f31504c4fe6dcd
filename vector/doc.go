// Copyright 2026 Veritas Legal Systems
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

// Package vector defines the embedding index abstraction used by the
// ingestion pipeline and the hybrid retriever.
//
// The index is organized into named collections, one per corpus:
// uploaded case files and precedent judgments are kept apart so a
// query can rank each corpus independently before merging. Vectors
// carry a small metadata record that ties a hit back to its document
// and chunk without a second lookup.
//
// The memory subpackage provides the in-process implementation.
package vector
