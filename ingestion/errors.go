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

package ingestion

import "errors"

var (
	// ErrRepositoryRequired is returned when a nil document repository
	// is passed to NewPipeline.
	ErrRepositoryRequired = errors.New("document repository is required")

	// ErrIndexRequired is returned when a nil vector index is passed
	// to NewPipeline.
	ErrIndexRequired = errors.New("vector index is required")

	// ErrEmbedderRequired is returned when a nil embedder is passed
	// to NewPipeline.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrInvalidChunkWindow is returned for a non-positive chunk window.
	ErrInvalidChunkWindow = errors.New("chunk window must be positive")

	// ErrInvalidChunkOverlap is returned when the overlap is negative
	// or not smaller than the window.
	ErrInvalidChunkOverlap = errors.New("chunk overlap must be non-negative and smaller than the window")

	// ErrInvalidMaxAttempts is returned when RetryWithBackoff is called
	// with a non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
