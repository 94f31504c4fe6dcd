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

// Package enrich extracts structured legal signal from document text.
//
// Extraction is regex-based: a registry of (pattern, entity type) rules
// covering citations, statute sections, acts, party styles, and judge
// names, plus date patterns normalized to canonical calendar days. The
// rule set is plain data and can be tested or replaced independently of
// the ingestion pipeline.
//
// Document-level enrichment scans the full text once and covers every
// field. Chunk-level enrichment runs only the cheap localized rules
// (citations and sections). Because the document scan sees text that
// spans chunk boundaries, the document record is always a superset of
// the deduplicated union of its chunks' local records.
package enrich
