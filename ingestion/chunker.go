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

// Chunking defaults. Window and overlap are measured in runes so a
// span maps onto character positions in the extracted text.
const (
	DefaultChunkWindow  = 3000
	DefaultChunkOverlap = 250
)

// Span is one chunk of text with its half-open character span
// [Start, End) in the source document.
type Span struct {
	Sequence int
	Start    int
	End      int
	Text     string
}

// Chunker splits text into fixed-width overlapping chunks. Chunk i
// starts at i*(window-overlap), so the same text always produces the
// same spans.
type Chunker struct {
	window  int
	overlap int
}

// NewChunker creates a chunker. The overlap must be smaller than the
// window or the stride would not advance.
func NewChunker(window, overlap int) (*Chunker, error) {
	if window <= 0 {
		return nil, ErrInvalidChunkWindow
	}
	if overlap < 0 || overlap >= window {
		return nil, ErrInvalidChunkOverlap
	}
	return &Chunker{window: window, overlap: overlap}, nil
}

// Split produces the chunk spans for text. Empty text yields no
// chunks. The final chunk ends exactly at the text length; no chunk is
// emitted past it.
func (c *Chunker) Split(text string) []Span {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)
	stride := c.window - c.overlap

	var spans []Span
	for start := 0; start < n; start += stride {
		end := start + c.window
		if end > n {
			end = n
		}
		spans = append(spans, Span{
			Sequence: len(spans),
			Start:    start,
			End:      end,
			Text:     string(runes[start:end]),
		})
		if end == n {
			break
		}
	}
	return spans
}
