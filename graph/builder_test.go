package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veritaslegal/casetrace/core"
	"github.com/veritaslegal/casetrace/storage"
	badgerstore "github.com/veritaslegal/casetrace/storage/badger"
)

func setupBuilder(t *testing.T) (*Builder, storage.DocumentRepository) {
	t.Helper()
	docs, backend, err := badgerstore.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		docs.Close()
		backend.Close()
	})
	builder, err := NewBuilder(docs)
	require.NoError(t, err)
	return builder, docs
}

func addDocument(t *testing.T, docs storage.DocumentRepository, source string, enrichment core.EnrichmentRecord) {
	t.Helper()
	ctx := context.Background()
	doc, err := docs.CreateDocument(ctx, &core.Document{
		ContentHash:   core.HashContent([]byte(source)),
		Source:        source,
		Corpus:        core.CorpusUploaded,
		RawByteLength: 1,
	})
	require.NoError(t, err)
	doc.Enrichment = enrichment
	doc.Status = core.StatusIngested
	require.NoError(t, docs.UpdateDocument(ctx, doc))
}

func TestBuild_NodesCountDocumentsNotMentions(t *testing.T) {
	builder, docs := setupBuilder(t)

	addDocument(t, docs, "a.txt", core.EnrichmentRecord{
		Acts: []string{"Indian Penal Code, 1860"},
	})
	addDocument(t, docs, "b.txt", core.EnrichmentRecord{
		// Same act twice in one document still counts once.
		Acts: []string{"Indian Penal Code, 1860", "indian penal code, 1860"},
	})

	graph, err := builder.Build(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 1)
	assert.Equal(t, "Indian Penal Code, 1860", graph.Nodes[0].Value)
	assert.Equal(t, core.EntityAct, graph.Nodes[0].Type)
	assert.Equal(t, 2, graph.Nodes[0].Count)
}

func TestBuild_EdgeWeightIsCoOccurringDocumentCount(t *testing.T) {
	builder, docs := setupBuilder(t)

	shared := core.EnrichmentRecord{
		Sections: []string{"Section 302"},
		Judges:   []string{"Justice Khanna"},
	}
	addDocument(t, docs, "a.txt", shared)
	addDocument(t, docs, "b.txt", shared)
	addDocument(t, docs, "c.txt", core.EnrichmentRecord{
		Sections: []string{"Section 302"},
	})

	graph, err := builder.Build(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, graph.Edges, 1)
	assert.Equal(t, 2, graph.Edges[0].Weight)

	values := map[string]bool{graph.Edges[0].Source: true, graph.Edges[0].Target: true}
	assert.True(t, values["Section 302"])
	assert.True(t, values["Justice Khanna"])
}

func TestBuild_TruncatesNodesBeforeEdges(t *testing.T) {
	builder, docs := setupBuilder(t)

	// "Section 302" appears in two documents, the rest in one each.
	addDocument(t, docs, "a.txt", core.EnrichmentRecord{
		Sections: []string{"Section 302"},
		Judges:   []string{"Justice Khanna"},
	})
	addDocument(t, docs, "b.txt", core.EnrichmentRecord{
		Sections: []string{"Section 302"},
		Parties:  []string{"State of Punjab v. Mohinder Singh"},
	})

	graph, err := builder.Build(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 1)
	assert.Equal(t, "Section 302", graph.Nodes[0].Value)
	// The dropped nodes take their edges with them.
	assert.Empty(t, graph.Edges)
}

func TestBuild_TieBrokenByFirstSeenOrder(t *testing.T) {
	builder, docs := setupBuilder(t)

	addDocument(t, docs, "a.txt", core.EnrichmentRecord{
		Judges: []string{"Justice Khanna", "Justice Bhagwati"},
	})

	graph, err := builder.Build(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 2)
	assert.Equal(t, "Justice Khanna", graph.Nodes[0].Value)
	assert.Equal(t, "Justice Bhagwati", graph.Nodes[1].Value)
}

func TestBuild_SkipsOutOfBoundsValues(t *testing.T) {
	builder, docs := setupBuilder(t)

	long := make([]byte, 150)
	for i := range long {
		long[i] = 'x'
	}
	addDocument(t, docs, "a.txt", core.EnrichmentRecord{
		Acts:   []string{"ab", string(long)},
		Judges: []string{"Justice Khanna"},
	})

	graph, err := builder.Build(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 1)
	assert.Equal(t, "Justice Khanna", graph.Nodes[0].Value)
}

func TestBuild_EmptyRegistry(t *testing.T) {
	builder, _ := setupBuilder(t)
	graph, err := builder.Build(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, graph.Nodes)
	assert.Empty(t, graph.Edges)
}
