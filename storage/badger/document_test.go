package badger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veritaslegal/casetrace/core"
	"github.com/veritaslegal/casetrace/storage"
)

func setupRepository(t *testing.T) storage.DocumentRepository {
	t.Helper()
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func newDocument(source string, corpus core.Corpus, raw []byte) *core.Document {
	return &core.Document{
		ContentHash:   core.HashContent(raw),
		Source:        source,
		Corpus:        corpus,
		RawByteLength: len(raw),
	}
}

func TestCreateDocument(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	doc, err := repo.CreateDocument(ctx, newDocument("a.txt", core.CorpusUploaded, []byte("alpha")))
	require.NoError(t, err)
	assert.NotZero(t, doc.Id)
	assert.Equal(t, core.StatusPending, doc.Status)
	assert.False(t, doc.CreatedAt.IsZero())

	got, err := repo.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, doc.ContentHash, got.ContentHash)
	assert.Equal(t, doc.Source, got.Source)
}

func TestCreateDocument_DuplicateHashSameCorpus(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	first, err := repo.CreateDocument(ctx, newDocument("a.txt", core.CorpusUploaded, []byte("alpha")))
	require.NoError(t, err)

	second, err := repo.CreateDocument(ctx, newDocument("copy-of-a.txt", core.CorpusUploaded, []byte("alpha")))
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
	require.NotNil(t, second)
	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, "a.txt", second.Source)

	docs, err := repo.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestCreateDocument_SameHashDifferentCorpus(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	uploaded, err := repo.CreateDocument(ctx, newDocument("a.txt", core.CorpusUploaded, []byte("alpha")))
	require.NoError(t, err)

	precedent, err := repo.CreateDocument(ctx, newDocument("a.txt", core.CorpusPrecedent, []byte("alpha")))
	require.NoError(t, err)
	assert.NotEqual(t, uploaded.Id, precedent.Id)
}

func TestCreateDocument_ConcurrentIdenticalUploads(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	raw := []byte("identical bytes uploaded twice at once")

	const callers = 8
	var wg sync.WaitGroup
	ids := make([]core.ID, callers)
	duplicates := make([]bool, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := repo.CreateDocument(ctx, newDocument("race.txt", core.CorpusUploaded, raw))
			if errors.Is(err, storage.ErrDuplicateKey) {
				duplicates[i] = true
			} else if err != nil {
				t.Errorf("CreateDocument() = %v", err)
				return
			}
			ids[i] = doc.Id
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < callers; i++ {
		if !duplicates[i] {
			winners++
		}
		assert.Equal(t, ids[0], ids[i], "all callers must observe the same document")
	}
	assert.Equal(t, 1, winners, "exactly one caller creates the document")

	docs, err := repo.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestGetDocumentByHash(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	raw := []byte("alpha")

	created, err := repo.CreateDocument(ctx, newDocument("a.txt", core.CorpusUploaded, raw))
	require.NoError(t, err)

	got, err := repo.GetDocumentByHash(ctx, core.CorpusUploaded, core.HashContent(raw))
	require.NoError(t, err)
	assert.Equal(t, created.Id, got.Id)

	_, err = repo.GetDocumentByHash(ctx, core.CorpusPrecedent, core.HashContent(raw))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateDocumentStatus(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	doc, err := repo.CreateDocument(ctx, newDocument("a.txt", core.CorpusUploaded, []byte("alpha")))
	require.NoError(t, err)

	require.NoError(t, repo.UpdateDocumentStatus(ctx, doc.Id, core.StatusIngested))

	got, err := repo.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusIngested, got.Status)
}

func TestUpdateDocument(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	doc, err := repo.CreateDocument(ctx, newDocument("a.txt", core.CorpusUploaded, []byte("alpha")))
	require.NoError(t, err)

	doc.Truncated = true
	doc.SourceURL = "https://indiankanoon.org/doc/1/"
	doc.Enrichment = core.EnrichmentRecord{Citations: []string{"AIR 1973 SC 1461"}}
	doc.Corpus = core.CorpusPrecedent // identity fields must not move
	require.NoError(t, repo.UpdateDocument(ctx, doc))

	got, err := repo.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.True(t, got.Truncated)
	assert.Equal(t, "https://indiankanoon.org/doc/1/", got.SourceURL)
	assert.Equal(t, []string{"AIR 1973 SC 1461"}, got.Enrichment.Citations)
	assert.Equal(t, core.CorpusUploaded, got.Corpus)
}

func TestUpdateDocumentStatus_NotFound(t *testing.T) {
	repo := setupRepository(t)
	err := repo.UpdateDocumentStatus(context.Background(), 9999, core.StatusFailed)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListDocuments_InsertionOrder(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	sources := []string{"first.txt", "second.txt", "third.txt"}
	for i, source := range sources {
		_, err := repo.CreateDocument(ctx, newDocument(source, core.CorpusUploaded, []byte{byte(i)}))
		require.NoError(t, err)
	}

	docs, err := repo.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, len(sources))
	for i, doc := range docs {
		assert.Equal(t, sources[i], doc.Source)
	}
	for i := 1; i < len(docs); i++ {
		assert.Greater(t, docs[i].Id, docs[i-1].Id)
	}
}

func TestAddChunksAndGetChunks(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	doc, err := repo.CreateDocument(ctx, newDocument("a.txt", core.CorpusUploaded, []byte("alpha")))
	require.NoError(t, err)

	chunks := []*core.Chunk{
		{DocumentId: doc.Id, Sequence: 0, CharStart: 0, CharEnd: 5, Text: "alpha", VectorRef: "u:1:0"},
		{DocumentId: doc.Id, Sequence: 1, CharStart: 3, CharEnd: 8, Text: "habet", VectorRef: "u:1:1"},
	}
	added, err := repo.AddChunks(ctx, chunks...)
	require.NoError(t, err)
	for _, chunk := range added {
		assert.NotZero(t, chunk.Id)
	}

	got, err := repo.GetChunks(ctx, doc.Id)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alpha", got[0].Text)
	assert.Equal(t, 0, got[0].Sequence)
	assert.Equal(t, "habet", got[1].Text)
	assert.Equal(t, 1, got[1].Sequence)
}

func TestAddChunks_MissingDocument(t *testing.T) {
	repo := setupRepository(t)
	_, err := repo.AddChunks(context.Background(), &core.Chunk{
		DocumentId: 12345, Sequence: 0, CharStart: 0, CharEnd: 4, Text: "text",
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAddChunks_Reinsert_Overwrites(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	doc, err := repo.CreateDocument(ctx, newDocument("a.txt", core.CorpusUploaded, []byte("alpha")))
	require.NoError(t, err)

	_, err = repo.AddChunks(ctx, &core.Chunk{DocumentId: doc.Id, Sequence: 0, CharStart: 0, CharEnd: 5, Text: "alpha"})
	require.NoError(t, err)
	_, err = repo.AddChunks(ctx, &core.Chunk{DocumentId: doc.Id, Sequence: 0, CharStart: 0, CharEnd: 5, Text: "alpha"})
	require.NoError(t, err)

	got, err := repo.GetChunks(ctx, doc.Id)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
