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

// Package search implements hybrid retrieval over the two corpora.
//
// A query is embedded once and run against the uploaded-files and
// precedent collections independently. Raw distances become scores via
// 1/(1+d), which bounds them to (0, 1] and lets hits from the two
// collections merge into a single ranking. Metadata filters are
// applied after similarity ranking: they never change which candidates
// the index considers, only which are kept.
package search
