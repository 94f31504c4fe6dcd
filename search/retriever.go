package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/veritaslegal/casetrace/ai"
	"github.com/veritaslegal/casetrace/core"
	"github.com/veritaslegal/casetrace/storage"
	"github.com/veritaslegal/casetrace/vector"
)

// Retriever runs hybrid semantic search across the uploaded and
// precedent corpora. Each corpus is queried independently and the two
// ranked lists are merged on a shared score scale.
type Retriever struct {
	documents   storage.DocumentRepository
	index       vector.Index
	embedder    ai.Embedder
	callTimeout time.Duration
	logger      *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithCallTimeout bounds each embedding and vector index call, so a
// hung collaborator fails the search instead of blocking it.
// Default is 30 seconds.
func WithCallTimeout(d time.Duration) Option {
	return func(r *Retriever) error {
		if d <= 0 {
			return fmt.Errorf("call timeout must be positive, got %v", d)
		}
		r.callTimeout = d
		return nil
	}
}

// NewRetriever creates a hybrid retriever.
func NewRetriever(
	documents storage.DocumentRepository,
	index vector.Index,
	embedder ai.Embedder,
	opts ...Option,
) (*Retriever, error) {
	if documents == nil {
		return nil, ErrRepositoryRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		documents:   documents,
		index:       index,
		embedder:    embedder,
		callTimeout: 30 * time.Second,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Search embeds the query once, fetches up to kPerCorpus nearest
// chunks from each corpus, converts distances to scores, applies the
// optional filter, and merges the two lists by descending score. Ties
// go to the uploaded corpus first, then to earlier-ingested documents.
//
// An empty or missing corpus contributes nothing; if both corpora are
// empty the result is an empty slice, not an error.
func (r *Retriever) Search(ctx context.Context, query string, kPerCorpus int, filter *Filter) ([]*core.RankedResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if kPerCorpus <= 0 {
		return []*core.RankedResult{}, nil
	}

	embedCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	embedding, err := r.embedder.EmbedText(embedCtx, query)
	cancel()
	if err != nil {
		r.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}

	// The two collections have independent geometries; querying them
	// separately and rescoring is what makes the merge meaningful.
	corpora := []struct {
		corpus     core.Corpus
		collection string
	}{
		{core.CorpusUploaded, vector.CollectionUploaded},
		{core.CorpusPrecedent, vector.CollectionPrecedent},
	}

	matchSets := make([][]vector.Match, len(corpora))
	errs := make([]error, len(corpora))
	var wg sync.WaitGroup
	for i, c := range corpora {
		wg.Add(1)
		go func(i int, collection string) {
			defer wg.Done()
			queryCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
			defer cancel()
			matchSets[i], errs[i] = r.index.Query(queryCtx, collection, embedding, kPerCorpus)
		}(i, c.collection)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			r.logger.Error("error querying vector index", "err", err)
			return nil, err
		}
	}

	results := make([]*core.RankedResult, 0, 2*kPerCorpus)
	for i, c := range corpora {
		ranked, err := r.rank(ctx, c.corpus, matchSets[i], filter)
		if err != nil {
			return nil, err
		}
		results = append(results, ranked...)
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Corpus != b.Corpus {
			return a.Corpus == core.CorpusUploaded
		}
		return a.Metadata.DocumentId < b.Metadata.DocumentId
	})

	r.logger.Debug("hybrid search complete", "kPerCorpus", kPerCorpus, "results", len(results))
	return results, nil
}

// rank converts one corpus's matches to scored results and applies the
// filter. Chunks skipped during ingestion never reached the index, so
// every match resolves to a stored chunk.
func (r *Retriever) rank(ctx context.Context, corpus core.Corpus, matches []vector.Match, filter *Filter) ([]*core.RankedResult, error) {
	results := make([]*core.RankedResult, 0, len(matches))
	for _, match := range matches {
		doc, err := r.documents.GetDocument(ctx, match.Metadata.DocumentId)
		if err != nil {
			return nil, err
		}
		if !filter.matches(match.Metadata.Local, doc) {
			continue
		}

		text, err := r.chunkText(ctx, match.Metadata)
		if err != nil {
			return nil, err
		}

		results = append(results, &core.RankedResult{
			Text:     text,
			Score:    Score(match.Distance),
			Corpus:   corpus,
			Metadata: match.Metadata,
		})
	}
	return results, nil
}

func (r *Retriever) chunkText(ctx context.Context, meta core.VectorMetadata) (string, error) {
	chunks, err := r.documents.GetChunks(ctx, meta.DocumentId)
	if err != nil {
		return "", err
	}
	for _, chunk := range chunks {
		if chunk.Sequence == meta.ChunkIndex {
			return chunk.Text, nil
		}
	}
	// Index entry without a chunk row means the registry and the
	// index diverged; surface it as a missing record.
	return "", storage.ErrNotFound
}

// Score converts a raw distance to a bounded relevance score,
// 1 / (1 + d). It is monotonically decreasing in distance and lies in
// (0, 1] for non-negative distances, so scores from collections with
// independent geometries compare on one scale.
func Score(distance float64) float32 {
	return float32(1 / (1 + distance))
}
