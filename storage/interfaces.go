package storage

import (
	"context"

	"github.com/veritaslegal/casetrace/core"
)

// Repository provides common storage operations shared by all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository is the metadata registry: the durable record of
// documents, their chunks, enrichment payloads, and vector-index linkage.
type DocumentRepository interface {
	Repository

	// CreateDocument registers a document in pending state. The hash
	// check and the insert happen inside a single transaction: when a
	// document with the same ContentHash already exists in the same
	// corpus, the existing document is returned together with
	// ErrDuplicateKey and nothing is written. Otherwise the document is
	// returned with its assigned ID and CreatedAt populated.
	CreateDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// UpdateDocument overwrites a stored document's mutable fields
	// (status, truncation flag, enrichment, source URL). The ID,
	// corpus, and content hash must match the stored record.
	// Returns ErrNotFound if the document doesn't exist.
	UpdateDocument(ctx context.Context, doc *core.Document) error

	// UpdateDocumentStatus transitions a document's status.
	// Returns ErrNotFound if the document doesn't exist.
	UpdateDocumentStatus(ctx context.Context, id core.ID, status core.DocumentStatus) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocumentByHash retrieves a document by corpus and content hash.
	// Returns ErrNotFound if no such document exists.
	GetDocumentByHash(ctx context.Context, corpus core.Corpus, hash string) (*core.Document, error)

	// ListDocuments returns all documents in insertion order.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// AddChunks persists chunk rows. Chunks must reference an existing
	// document; their IDs are derived from the document ID and sequence
	// index, so re-adding an identical chunk overwrites it in place.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunks returns a document's persisted chunks ordered by
	// sequence index. Chunks skipped during ingestion are absent.
	GetChunks(ctx context.Context, documentID core.ID) ([]*core.Chunk, error)
}
