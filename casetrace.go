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

package casetrace

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/veritaslegal/casetrace/ai"
	"github.com/veritaslegal/casetrace/ai/openai"
	"github.com/veritaslegal/casetrace/core"
	"github.com/veritaslegal/casetrace/graph"
	"github.com/veritaslegal/casetrace/ingestion"
	"github.com/veritaslegal/casetrace/search"
	"github.com/veritaslegal/casetrace/storage"
	"github.com/veritaslegal/casetrace/storage/badger"
	"github.com/veritaslegal/casetrace/timeline"
	"github.com/veritaslegal/casetrace/vector"
	"github.com/veritaslegal/casetrace/vector/memory"
)

// Library is the assembled system: the document registry, the vector
// index, the embedding service, and the pipelines built on them.
type Library struct {
	backend      *badger.Backend
	documentRepo storage.DocumentRepository
	index        vector.Index
	embedder     ai.Embedder
	logger       *slog.Logger
}

// LibraryOption configures a Library.
type LibraryOption func(*libraryOptions)

type libraryOptions struct {
	aiConfig *ai.Config
	embedder ai.Embedder
	inMemory bool
}

// WithAIConfig overrides the embedding service configuration.
func WithAIConfig(config *ai.Config) LibraryOption {
	return func(o *libraryOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithEmbedder injects an embedder directly, bypassing the OpenAI
// client construction. Used by tests and embedded deployments.
func WithEmbedder(embedder ai.Embedder) LibraryOption {
	return func(o *libraryOptions) {
		o.embedder = embedder
	}
}

// WithInMemoryStorage keeps the registry off disk. The filePath
// argument to Open is ignored.
func WithInMemoryStorage() LibraryOption {
	return func(o *libraryOptions) {
		o.inMemory = true
	}
}

// Open assembles a Library over the registry at filePath.
func Open(filePath string, opts ...LibraryOption) (*Library, error) {
	options := &libraryOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	documentRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			documentRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Library{
		backend:      backend,
		documentRepo: documentRepo,
		index:        memory.NewIndex(),
		embedder:     embedder,
		logger:       slog.Default(),
	}, nil
}

func (l *Library) Close() error {
	if err := l.documentRepo.Close(); err != nil {
		l.logger.Error("error closing document repository", "err", err)
		return err
	}
	if err := l.backend.Close(); err != nil {
		l.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// RebuildIndex repopulates the in-memory vector index from the
// embeddings persisted with each chunk. No embedding API calls are
// made; chunks ingested before an embedding succeeded have no stored
// vector and are skipped. Call this after Open before searching a
// previously populated registry.
func (l *Library) RebuildIndex(ctx context.Context) error {
	docs, err := l.documentRepo.ListDocuments(ctx)
	if err != nil {
		return err
	}

	indexed := 0
	for _, doc := range docs {
		collection, err := vector.CollectionForCorpus(doc.Corpus)
		if err != nil {
			return err
		}
		chunks, err := l.documentRepo.GetChunks(ctx, doc.Id)
		if err != nil {
			return err
		}
		for _, chunk := range chunks {
			if len(chunk.Vector) == 0 {
				continue
			}
			meta := core.VectorMetadata{
				DocumentId: doc.Id,
				ChunkIndex: chunk.Sequence,
				Corpus:     doc.Corpus,
				Local:      chunk.Local,
			}
			id := fmt.Sprintf("%d:%d", doc.Id, chunk.Sequence)
			if err := l.index.Upsert(ctx, collection, id, chunk.Vector, meta); err != nil {
				return err
			}
			indexed++
		}
	}

	l.logger.Debug("vector index rebuilt", "documents", len(docs), "vectors", indexed)
	return nil
}

func (l *Library) DocumentRepository() storage.DocumentRepository {
	return l.documentRepo
}

func (l *Library) VectorIndex() vector.Index {
	return l.index
}

func (l *Library) Embedder() ai.Embedder {
	return l.embedder
}

func (l *Library) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(l.documentRepo, l.index, l.embedder, opts...)
}

func (l *Library) NewRetriever(opts ...search.Option) (*search.Retriever, error) {
	return search.NewRetriever(l.documentRepo, l.index, l.embedder, opts...)
}

func (l *Library) NewGraphBuilder(opts ...graph.Option) (*graph.Builder, error) {
	return graph.NewBuilder(l.documentRepo, opts...)
}

func (l *Library) NewTimelineBuilder(opts ...timeline.Option) (*timeline.Builder, error) {
	return timeline.NewBuilder(l.documentRepo, opts...)
}
