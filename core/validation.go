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

package core

import (
	"fmt"
	"unicode/utf8"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - ContentHash must not be empty
//   - Source must not be empty
//   - Corpus must be valid
//
// NOT validated (populated by the pipeline):
//   - Enrichment (can be empty until enrichment runs)
//   - ID (0 is valid before the registry assigns one)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.ContentHash == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContentHash)
	}

	if doc.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptySource)
	}

	if err := ValidateCorpus(doc.Corpus); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - [CharStart, CharEnd) must be a non-empty span starting at or after 0
//   - span width must equal the text length in runes
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkText)
	}

	if chunk.CharStart < 0 || chunk.CharEnd <= chunk.CharStart {
		return fmt.Errorf("%w: %w: [%d, %d)", ErrInvalidChunk, ErrInvalidChunkSpan, chunk.CharStart, chunk.CharEnd)
	}

	if textLen := utf8.RuneCountInString(chunk.Text); chunk.CharEnd-chunk.CharStart != textLen {
		return fmt.Errorf("%w: %w: span width %d, text length %d",
			ErrInvalidChunk, ErrInvalidChunkSpan, chunk.CharEnd-chunk.CharStart, textLen)
	}

	return nil
}

// ValidateCorpus validates that a Corpus has a valid value.
func ValidateCorpus(corpus Corpus) error {
	if corpus != CorpusUploaded && corpus != CorpusPrecedent {
		return fmt.Errorf("%w: value %d", ErrInvalidCorpus, corpus)
	}
	return nil
}
