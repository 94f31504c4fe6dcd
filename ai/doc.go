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

// Package ai defines the embedding abstraction used to turn chunk text
// into vectors, plus configuration for OpenAI-compatible services.
//
// The openai subpackage provides the production implementation; the
// mock subpackage provides deterministic test doubles. An optional
// rate-limiting wrapper keeps bulk ingestion within a configured
// request budget.
package ai
