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

package timeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/veritaslegal/casetrace/core"
	"github.com/veritaslegal/casetrace/storage"
)

// SnippetLength is the number of runes of surrounding chunk text
// attached to each event.
const SnippetLength = 180

// ErrRepositoryRequired is returned when a nil document repository is
// passed to NewBuilder.
var ErrRepositoryRequired = errors.New("document repository is required")

// Scope restricts a timeline to one document. The zero value means
// the whole registry. DocumentID wins when both fields are set.
type Scope struct {
	DocumentID core.ID
	Filename   string
}

// Builder assembles chronological timelines from the date mentions
// recorded during document-level enrichment.
type Builder struct {
	documents storage.DocumentRepository
	logger    *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBuilder creates a timeline builder.
func NewBuilder(documents storage.DocumentRepository, opts ...Option) (*Builder, error) {
	if documents == nil {
		return nil, ErrRepositoryRequired
	}
	b := &Builder{documents: documents, logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Build returns the timeline for the given scope. Events are sorted
// ascending by date; identical dates keep document insertion order,
// then position within the document text. Mentions that failed
// normalization were already dropped at enrichment time and never
// appear here.
func (b *Builder) Build(ctx context.Context, scope Scope) ([]core.TimelineEvent, error) {
	docs, err := b.scopedDocuments(ctx, scope)
	if err != nil {
		return nil, err
	}

	// keyed carries the sort keys that are not part of the public
	// event: registry insertion order and position within the text.
	type keyed struct {
		event    core.TimelineEvent
		order    int
		position int
	}

	var entries []keyed
	for i, doc := range docs {
		if len(doc.Enrichment.Dates) == 0 {
			continue
		}
		chunks, err := b.documents.GetChunks(ctx, doc.Id)
		if err != nil {
			return nil, err
		}
		for _, date := range doc.Enrichment.Dates {
			entries = append(entries, keyed{
				event: core.TimelineEvent{
					Date:       date.Time,
					Raw:        date.Raw,
					DocumentId: doc.Id,
					Source:     doc.Source,
					Snippet:    snippetAt(chunks, date.Position),
					Confidence: date.Confidence,
				},
				order:    i,
				position: date.Position,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.event.Date.Equal(b.event.Date) {
			return a.event.Date.Before(b.event.Date)
		}
		if a.order != b.order {
			return a.order < b.order
		}
		return a.position < b.position
	})

	events := make([]core.TimelineEvent, len(entries))
	for i, e := range entries {
		events[i] = e.event
	}

	b.logger.Debug("timeline built", "documents", len(docs), "events", len(events))
	return events, nil
}

func (b *Builder) scopedDocuments(ctx context.Context, scope Scope) ([]*core.Document, error) {
	if scope.DocumentID != 0 {
		doc, err := b.documents.GetDocument(ctx, scope.DocumentID)
		if err != nil {
			return nil, err
		}
		return []*core.Document{doc}, nil
	}

	docs, err := b.documents.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	if scope.Filename == "" {
		return docs, nil
	}

	scoped := docs[:0]
	for _, doc := range docs {
		if doc.Source == scope.Filename {
			scoped = append(scoped, doc)
		}
	}
	return scoped, nil
}

// snippetAt returns up to SnippetLength runes of the chunk containing
// the given character position, with line breaks flattened. A position
// outside every stored chunk yields an empty snippet.
func snippetAt(chunks []*core.Chunk, position int) string {
	for _, chunk := range chunks {
		if position < chunk.CharStart || position >= chunk.CharEnd {
			continue
		}
		runes := []rune(chunk.Text)
		if len(runes) > SnippetLength {
			runes = runes[:SnippetLength]
		}
		return strings.Join(strings.Fields(string(runes)), " ")
	}
	return ""
}
