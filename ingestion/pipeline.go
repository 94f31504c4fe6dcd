package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/veritaslegal/casetrace/ai"
	"github.com/veritaslegal/casetrace/core"
	"github.com/veritaslegal/casetrace/enrich"
	"github.com/veritaslegal/casetrace/extract"
	"github.com/veritaslegal/casetrace/storage"
	"github.com/veritaslegal/casetrace/vector"
)

// DefaultMaxTextLength is the safety bound on extracted text, in runes.
// Longer documents are cut here and flagged as truncated.
const DefaultMaxTextLength = 50_000

const (
	embedAttempts  = 2
	embedBaseDelay = 200 * time.Millisecond
)

// Pipeline turns raw uploads and crawled judgments into registered,
// enriched, chunked, and indexed documents. Per-chunk embedding and
// indexing runs on a bounded worker pool; a chunk that still fails
// after its retry is skipped and the document lands in
// partially_ingested instead of failing outright.
type Pipeline struct {
	documents   storage.DocumentRepository
	index       vector.Index
	embedder    ai.Embedder
	formats     *extract.Registry
	enricher    *enrich.Enricher
	chunker     *Chunker
	pool        *ants.Pool
	maxTextLen  int
	callTimeout time.Duration
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for per-chunk processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithChunking sets the chunk window and overlap, in runes.
func WithChunking(window, overlap int) Option {
	return func(p *Pipeline) error {
		chunker, err := NewChunker(window, overlap)
		if err != nil {
			return err
		}
		p.chunker = chunker
		return nil
	}
}

// WithMaxTextLength sets the safety bound on extracted text, in runes.
func WithMaxTextLength(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			return fmt.Errorf("max text length must be positive, got %d", n)
		}
		p.maxTextLen = n
		return nil
	}
}

// WithCallTimeout bounds each embedding and vector index call.
// Default is 30 seconds.
func WithCallTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d <= 0 {
			return fmt.Errorf("call timeout must be positive, got %v", d)
		}
		p.callTimeout = d
		return nil
	}
}

// WithFormats sets the extractor registry.
// Default is extract.NewRegistry().
func WithFormats(registry *extract.Registry) Option {
	return func(p *Pipeline) error {
		if registry != nil {
			p.formats = registry
		}
		return nil
	}
}

// WithEnricher sets the enricher.
// Default is enrich.NewEnricher().
func WithEnricher(enricher *enrich.Enricher) Option {
	return func(p *Pipeline) error {
		if enricher != nil {
			p.enricher = enricher
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	documents storage.DocumentRepository,
	index vector.Index,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if documents == nil {
		return nil, ErrRepositoryRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	chunker, err := NewChunker(DefaultChunkWindow, DefaultChunkOverlap)
	if err != nil {
		pool.Release()
		return nil, err
	}

	p := &Pipeline{
		documents:   documents,
		index:       index,
		embedder:    embedder,
		formats:     extract.NewRegistry(),
		enricher:    enrich.NewEnricher(),
		chunker:     chunker,
		pool:        pool,
		maxTextLen:  DefaultMaxTextLength,
		callTimeout: 30 * time.Second,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Release shuts down the worker pool. The pipeline must not be used
// after Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Ingest registers an uploaded file under the given corpus and runs
// the full pipeline on it: format detection, content-hash dedup,
// extraction, enrichment, chunking, embedding, and indexing.
//
// Domain outcomes (unsupported format, duplicate content, extraction
// failure) are reported in the result, not as errors; the error return
// is reserved for storage and infrastructure failures.
func (p *Pipeline) Ingest(ctx context.Context, filename string, raw []byte, corpus core.Corpus) (*core.IngestResult, error) {
	if err := core.ValidateCorpus(corpus); err != nil {
		return nil, err
	}

	// Detection runs before any document is registered so an
	// unsupported upload leaves no pending record behind.
	format, ok := p.formats.Detect(filename)
	if !ok {
		p.logger.Info("ignoring unsupported upload", "filename", filename)
		return &core.IngestResult{
			Status: core.IngestStatusIgnored,
			Reason: fmt.Sprintf("unsupported file format: %q", filename),
		}, nil
	}

	doc, result, err := p.register(ctx, &core.Document{
		ContentHash:   core.HashContent(raw),
		Source:        filename,
		Corpus:        corpus,
		RawByteLength: len(raw),
	})
	if result != nil || err != nil {
		return result, err
	}

	text, err := p.formats.Extract(raw, format)
	if err != nil {
		p.logger.Warn("extraction failed", "filename", filename, "docID", doc.Id, "err", err)
		if stErr := p.documents.UpdateDocumentStatus(ctx, doc.Id, core.StatusFailed); stErr != nil {
			return nil, stErr
		}
		return &core.IngestResult{
			DocumentId: doc.Id,
			Status:     core.IngestStatusFailed,
			Reason:     fmt.Sprintf("extraction failed: %v", err),
		}, nil
	}

	return p.process(ctx, doc, text)
}

// IngestCrawled registers a crawled judgment that is already plain
// text. The document gets a synthetic source name derived from caseID
// and always lands in the precedent corpus.
func (p *Pipeline) IngestCrawled(ctx context.Context, caseID, text, sourceURL string) (*core.IngestResult, error) {
	raw := []byte(text)
	doc, result, err := p.register(ctx, &core.Document{
		ContentHash:   core.HashContent(raw),
		Source:        fmt.Sprintf("case_%s.txt", caseID),
		SourceURL:     sourceURL,
		Corpus:        core.CorpusPrecedent,
		RawByteLength: len(raw),
	})
	if result != nil || err != nil {
		return result, err
	}
	return p.process(ctx, doc, text)
}

// register creates the pending document record. A duplicate yields a
// terminal result referring to the existing document.
func (p *Pipeline) register(ctx context.Context, doc *core.Document) (*core.Document, *core.IngestResult, error) {
	created, err := p.documents.CreateDocument(ctx, doc)
	if errors.Is(err, storage.ErrDuplicateKey) {
		chunks, chunksErr := p.documents.GetChunks(ctx, created.Id)
		if chunksErr != nil {
			return nil, nil, chunksErr
		}
		p.logger.Info("duplicate content, skipping",
			"source", doc.Source, "existingDocID", created.Id)
		return nil, &core.IngestResult{
			DocumentId: created.Id,
			ChunkCount: len(chunks),
			Status:     core.IngestStatusDuplicate,
		}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return created, nil, nil
}

// process runs enrichment, chunking, and indexing for a registered
// pending document and settles its final status.
func (p *Pipeline) process(ctx context.Context, doc *core.Document, text string) (*core.IngestResult, error) {
	if runes := []rune(text); len(runes) > p.maxTextLen {
		text = string(runes[:p.maxTextLen])
		doc.Truncated = true
		p.logger.Info("truncating extracted text",
			"docID", doc.Id, "limit", p.maxTextLen, "length", len(runes))
	}

	doc.Enrichment = p.enricher.EnrichDocument(text)

	collection, err := vector.CollectionForCorpus(doc.Corpus)
	if err != nil {
		return nil, err
	}

	spans := p.chunker.Split(text)
	chunks := make([]*core.Chunk, len(spans))
	failures := make([]bool, len(spans))

	var wg sync.WaitGroup
	for i, span := range spans {
		wg.Add(1)
		i, span := i, span
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			chunk, err := p.processChunk(ctx, doc, collection, span)
			if err != nil {
				p.logger.Warn("chunk processing failed, skipping",
					"docID", doc.Id, "sequence", span.Sequence, "err", err)
				failures[i] = true
				return
			}
			chunks[i] = chunk
		})
		if submitErr != nil {
			wg.Done()
			failures[i] = true
			p.logger.Warn("chunk submission failed, skipping",
				"docID", doc.Id, "sequence", span.Sequence, "err", submitErr)
		}
	}
	wg.Wait()

	persisted := make([]*core.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk != nil {
			persisted = append(persisted, chunk)
		}
	}
	if len(persisted) > 0 {
		if _, err := p.documents.AddChunks(ctx, persisted...); err != nil {
			return nil, err
		}
	}

	failed := 0
	for _, f := range failures {
		if f {
			failed++
		}
	}

	doc.Status = core.StatusIngested
	status := core.IngestStatusIngested
	if failed > 0 {
		doc.Status = core.StatusPartiallyIngested
		status = core.IngestStatusPartiallyIngested
	}
	if err := p.documents.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}

	p.logger.Info("document ingested",
		"docID", doc.Id, "corpus", doc.Corpus.String(),
		"chunks", len(persisted), "failed", failed, "truncated", doc.Truncated)

	return &core.IngestResult{
		DocumentId: doc.Id,
		ChunkCount: len(persisted),
		Status:     status,
	}, nil
}

// processChunk enriches, embeds, and indexes a single chunk. Both
// collaborator calls are bounded by the configured timeout; the
// embedding call is additionally retried once.
func (p *Pipeline) processChunk(ctx context.Context, doc *core.Document, collection string, span Span) (*core.Chunk, error) {
	local := p.enricher.EnrichChunk(span.Text)

	var vec []float32
	err := RetryWithBackoff(ctx, func() error {
		embedCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
		defer cancel()
		var embedErr error
		vec, embedErr = p.embedder.EmbedText(embedCtx, span.Text)
		return embedErr
	}, embedAttempts, embedBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("embedding chunk %d: %w", span.Sequence, err)
	}

	vectorID := fmt.Sprintf("%d:%d", doc.Id, span.Sequence)
	meta := core.VectorMetadata{
		DocumentId: doc.Id,
		ChunkIndex: span.Sequence,
		Corpus:     doc.Corpus,
		Local:      local,
	}
	upsertCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	if err := p.index.Upsert(upsertCtx, collection, vectorID, vec, meta); err != nil {
		return nil, fmt.Errorf("indexing chunk %d: %w", span.Sequence, err)
	}

	return &core.Chunk{
		DocumentId: doc.Id,
		Sequence:   span.Sequence,
		CharStart:  span.Start,
		CharEnd:    span.End,
		Text:       span.Text,
		Local:      local,
		Vector:     vec,
		VectorRef:  collection + "/" + vectorID,
	}, nil
}
