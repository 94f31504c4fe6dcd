package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veritaslegal/casetrace/ai/mock"
	"github.com/veritaslegal/casetrace/core"
	"github.com/veritaslegal/casetrace/storage"
	badgerstore "github.com/veritaslegal/casetrace/storage/badger"
	"github.com/veritaslegal/casetrace/vector"
	"github.com/veritaslegal/casetrace/vector/memory"
)

type retrieverFixture struct {
	retriever *Retriever
	docs      storage.DocumentRepository
	index     *memory.Index
}

func setupRetriever(t *testing.T) *retrieverFixture {
	t.Helper()

	docs, backend, err := badgerstore.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		docs.Close()
		backend.Close()
	})

	index := memory.NewIndex()
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}

	retriever, err := NewRetriever(docs, index, embedder)
	require.NoError(t, err)
	return &retrieverFixture{retriever: retriever, docs: docs, index: index}
}

// seed registers a single-chunk document and indexes the given vector
// for it. Returns the stored document.
func (f *retrieverFixture) seed(t *testing.T, source string, corpus core.Corpus, text string, vec []float32, enrichment core.EnrichmentRecord, local core.EnrichmentRecord) *core.Document {
	t.Helper()
	ctx := context.Background()

	doc, err := f.docs.CreateDocument(ctx, &core.Document{
		ContentHash:   core.HashContent([]byte(source + text)),
		Source:        source,
		Corpus:        corpus,
		RawByteLength: len(text),
	})
	require.NoError(t, err)

	doc.Enrichment = enrichment
	doc.Status = core.StatusIngested
	require.NoError(t, f.docs.UpdateDocument(ctx, doc))

	textLen := len([]rune(text))
	_, err = f.docs.AddChunks(ctx, &core.Chunk{
		DocumentId: doc.Id,
		Sequence:   0,
		CharStart:  0,
		CharEnd:    textLen,
		Text:       text,
		Local:      local,
	})
	require.NoError(t, err)

	collection, err := vector.CollectionForCorpus(corpus)
	require.NoError(t, err)
	meta := core.VectorMetadata{
		DocumentId: doc.Id,
		ChunkIndex: 0,
		Corpus:     corpus,
		Local:      local,
	}
	require.NoError(t, f.index.Upsert(ctx, collection, source, vec, meta))
	return doc
}

func TestScore(t *testing.T) {
	assert.InDelta(t, 0.8, Score(0.25), 1e-6)
	assert.InDelta(t, 1.0, Score(0), 1e-6)
	assert.InDelta(t, 0.5, Score(1), 1e-6)
	assert.Greater(t, Score(0.1), Score(0.2))
}

func TestSearch_MergesAndOrdersByScore(t *testing.T) {
	f := setupRetriever(t)
	ctx := context.Background()

	f.seed(t, "far.txt", core.CorpusUploaded, "distant uploaded chunk",
		[]float32{0, 1}, core.EnrichmentRecord{}, core.EnrichmentRecord{})
	f.seed(t, "near.txt", core.CorpusPrecedent, "close precedent chunk",
		[]float32{1, 0}, core.EnrichmentRecord{}, core.EnrichmentRecord{})

	results, err := f.retriever.Search(ctx, "land acquisition", 5, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "close precedent chunk", results[0].Text)
	assert.Equal(t, core.CorpusPrecedent, results[0].Corpus)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-6)

	assert.Equal(t, "distant uploaded chunk", results[1].Text)
	assert.InDelta(t, 0.5, float64(results[1].Score), 1e-6)
}

func TestSearch_TieBreaks(t *testing.T) {
	f := setupRetriever(t)
	ctx := context.Background()

	// Identical vectors, so all three tie on score.
	precedent := f.seed(t, "precedent.txt", core.CorpusPrecedent, "precedent text",
		[]float32{1, 0}, core.EnrichmentRecord{}, core.EnrichmentRecord{})
	first := f.seed(t, "first.txt", core.CorpusUploaded, "first uploaded",
		[]float32{1, 0}, core.EnrichmentRecord{}, core.EnrichmentRecord{})
	second := f.seed(t, "second.txt", core.CorpusUploaded, "second uploaded",
		[]float32{1, 0}, core.EnrichmentRecord{}, core.EnrichmentRecord{})
	require.Less(t, first.Id, second.Id)

	results, err := f.retriever.Search(ctx, "q", 5, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, first.Id, results[0].Metadata.DocumentId)
	assert.Equal(t, second.Id, results[1].Metadata.DocumentId)
	assert.Equal(t, precedent.Id, results[2].Metadata.DocumentId)
}

func TestSearch_EmptyCorpora(t *testing.T) {
	f := setupRetriever(t)
	results, err := f.retriever.Search(context.Background(), "anything", 5, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_EmptyQuery(t *testing.T) {
	f := setupRetriever(t)
	_, err := f.retriever.Search(context.Background(), "   ", 5, nil)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearch_KPerCorpus(t *testing.T) {
	f := setupRetriever(t)
	ctx := context.Background()

	for _, source := range []string{"a.txt", "b.txt", "c.txt"} {
		f.seed(t, source, core.CorpusUploaded, "text of "+source,
			[]float32{1, 0}, core.EnrichmentRecord{}, core.EnrichmentRecord{})
	}

	results, err := f.retriever.Search(ctx, "q", 2, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearch_CitationFilter(t *testing.T) {
	f := setupRetriever(t)
	ctx := context.Background()

	match := f.seed(t, "cited.txt", core.CorpusUploaded, "cites kesavananda",
		[]float32{1, 0},
		core.EnrichmentRecord{Citations: []string{"AIR 1973 SC 1461"}},
		core.EnrichmentRecord{Citations: []string{"AIR 1973 SC 1461"}})
	f.seed(t, "other.txt", core.CorpusUploaded, "cites nothing",
		[]float32{1, 0}, core.EnrichmentRecord{}, core.EnrichmentRecord{})

	results, err := f.retriever.Search(ctx, "q", 5, &Filter{Citation: "air 1973 sc 1461"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, match.Id, results[0].Metadata.DocumentId)
}

func TestSearch_SectionFilterMatchesChunkLocal(t *testing.T) {
	f := setupRetriever(t)
	ctx := context.Background()

	f.seed(t, "s302.txt", core.CorpusUploaded, "murder charge",
		[]float32{1, 0},
		core.EnrichmentRecord{},
		core.EnrichmentRecord{Sections: []string{"Section 302"}})

	results, err := f.retriever.Search(ctx, "q", 5, &Filter{Section: "Section  302"})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = f.retriever.Search(ctx, "q", 5, &Filter{Section: "Section 420"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_PartyAndJudgeFilters(t *testing.T) {
	f := setupRetriever(t)
	ctx := context.Background()

	f.seed(t, "case.txt", core.CorpusUploaded, "case text",
		[]float32{1, 0},
		core.EnrichmentRecord{
			Parties: []string{"State of Punjab v. Mohinder Singh"},
			Judges:  []string{"Justice Khanna"},
		},
		core.EnrichmentRecord{})

	results, err := f.retriever.Search(ctx, "q", 5, &Filter{Party: "state of punjab v. mohinder singh"})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = f.retriever.Search(ctx, "q", 5, &Filter{Judge: "Justice Bhagwati"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_DateRangeFilter(t *testing.T) {
	f := setupRetriever(t)
	ctx := context.Background()

	f.seed(t, "dated.txt", core.CorpusUploaded, "dated text",
		[]float32{1, 0},
		core.EnrichmentRecord{Dates: []core.NormalizedDate{{
			Raw:        "12/03/1973",
			Time:       time.Date(1973, time.March, 12, 0, 0, 0, 0, time.UTC),
			Confidence: core.DateConfidenceHigh,
		}}},
		core.EnrichmentRecord{})

	inRange := &Filter{
		DateFrom: time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC),
		DateTo:   time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	results, err := f.retriever.Search(ctx, "q", 5, inRange)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	outOfRange := &Filter{
		DateFrom: time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	results, err = f.retriever.Search(ctx, "q", 5, outOfRange)
	require.NoError(t, err)
	assert.Empty(t, results)
}

// hangingIndex blocks every query until the call context expires.
type hangingIndex struct{}

func (hangingIndex) Upsert(ctx context.Context, collection, id string, vec []float32, meta core.VectorMetadata) error {
	<-ctx.Done()
	return ctx.Err()
}

func (hangingIndex) Query(ctx context.Context, collection string, vec []float32, k int) ([]vector.Match, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (hangingIndex) Count(ctx context.Context, collection string) (int, error) {
	return 0, nil
}

func TestSearch_HungEmbedderFailsWithinTimeout(t *testing.T) {
	docs, backend, err := badgerstore.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		docs.Close()
		backend.Close()
	})

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	retriever, err := NewRetriever(docs, memory.NewIndex(), embedder,
		WithCallTimeout(50*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	_, err = retriever.Search(context.Background(), "land acquisition", 5, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSearch_HungIndexFailsWithinTimeout(t *testing.T) {
	docs, backend, err := badgerstore.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		docs.Close()
		backend.Close()
	})

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}

	retriever, err := NewRetriever(docs, hangingIndex{}, embedder,
		WithCallTimeout(50*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	_, err = retriever.Search(context.Background(), "land acquisition", 5, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWithCallTimeout_RejectsNonPositive(t *testing.T) {
	f := setupRetriever(t)
	_, err := NewRetriever(f.docs, f.index, mock.NewMockEmbedder(), WithCallTimeout(0))
	assert.Error(t, err)
}
