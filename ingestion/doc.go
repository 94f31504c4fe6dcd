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

// Package ingestion turns raw documents into registered, enriched,
// chunked, and indexed records.
//
// The pipeline runs these stages in order: format detection,
// content-hash deduplication, text extraction, a safety-bound
// truncation, document-level enrichment, deterministic overlapping
// chunking, then per-chunk enrichment, embedding, and vector indexing
// on a bounded worker pool. A chunk whose embedding still fails after
// its retry is skipped rather than aborting the document; the
// document's final status records whether every chunk made it in.
//
// Chunking is position-deterministic: chunk i covers the character
// span starting at i*(window-overlap), so re-ingesting identical text
// always yields identical spans.
package ingestion
