package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/veritaslegal/casetrace/core"
	"github.com/veritaslegal/casetrace/storage"
)

// createRetries bounds the optimistic-concurrency retry loop in
// CreateDocument. A conflict means another transaction registered the
// same hash concurrently; the retry then observes it as a duplicate.
const createRetries = 3

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	idSeq, err := backend.GetSequence(documentIDSeq)
	if err != nil {
		return nil, err
	}

	return &DocumentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DocumentRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *DocumentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// CreateDocument registers a document in pending state. The corpus
// hash check and the insert run inside one transaction; under
// concurrent identical uploads BadgerDB's conflict detection aborts
// the loser, whose retry observes the duplicate.
func (r *DocumentRepository) CreateDocument(ctx context.Context, doc *core.Document) (*core.Document, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	var existing *core.Document

	for attempt := 0; attempt < createRetries; attempt++ {
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			hashKey := makeDocumentHashKey(doc.Corpus, doc.ContentHash)

			item, err := tx.Get(hashKey)
			switch {
			case err == nil:
				var id core.ID
				if err := item.Value(func(val []byte) error {
					var verr error
					id, verr = storage.UnmarshalID(val)
					return verr
				}); err != nil {
					return err
				}
				existing, err = r.readDocument(tx, makeDocumentKey(id))
				if err != nil {
					return err
				}
				if existing == nil {
					return fmt.Errorf("%w: hash index points at missing document %d", storage.ErrNotFound, id)
				}
				return storage.ErrDuplicateKey
			case errors.Is(err, badger.ErrKeyNotFound):
				// No document with this hash yet; insert below.
			default:
				return err
			}

			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			doc.Id = core.ID(nextID)
			doc.CreatedAt = time.Now().UTC()
			if doc.Status == 0 {
				doc.Status = core.StatusPending
			}

			if err := tx.Set(makeDocumentKey(doc.Id), storage.MarshalDocument(doc)); err != nil {
				return err
			}
			if err := tx.Set(hashKey, storage.MarshalID(doc.Id)); err != nil {
				return err
			}
			return tx.Commit()
		}, true)

		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if errors.Is(err, storage.ErrDuplicateKey) {
			return existing, err
		}
		if err != nil {
			return nil, err
		}
		return doc, nil
	}

	return nil, fmt.Errorf("%w: create document kept conflicting", storage.ErrTransactionFailed)
}

// UpdateDocument overwrites a stored document's mutable fields. The
// immutable identity fields are taken from the stored record so a
// caller cannot move a document between corpora or rewrite its hash.
func (r *DocumentRepository) UpdateDocument(ctx context.Context, doc *core.Document) error {
	if err := core.ValidateDocument(doc); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(doc.Id)
		stored, err := r.readDocument(tx, key)
		if err != nil {
			return err
		}
		if stored == nil {
			return storage.ErrNotFound
		}

		updated := *doc
		updated.ContentHash = stored.ContentHash
		updated.Corpus = stored.Corpus
		updated.CreatedAt = stored.CreatedAt
		if err := tx.Set(key, storage.MarshalDocument(&updated)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// UpdateDocumentStatus transitions a document's status in place.
func (r *DocumentRepository) UpdateDocumentStatus(ctx context.Context, id core.ID, status core.DocumentStatus) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		doc, err := r.readDocument(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		doc.Status = status
		if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetDocumentByHash retrieves a document by corpus and content hash.
func (r *DocumentRepository) GetDocumentByHash(ctx context.Context, corpus core.Corpus, hash string) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocumentHashKey(corpus, hash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}

		var id core.ID
		if err := item.Value(func(val []byte) error {
			var verr error
			id, verr = storage.UnmarshalID(val)
			return verr
		}); err != nil {
			return err
		}

		result, err = r.readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListDocuments returns all documents in insertion order. Document
// keys carry BigEndian IDs, so key order is ID order is insertion order.
func (r *DocumentRepository) ListDocuments(ctx context.Context) ([]*core.Document, error) {
	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = documentKeyPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var doc *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var verr error
				doc, verr = storage.UnmarshalDocument(val)
				return verr
			})
			if err != nil {
				return err
			}
			results = append(results, doc)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// AddChunks persists chunk rows for an existing document.
func (r *DocumentRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if _, err := tx.Get(makeDocumentKey(chunk.DocumentId)); errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: document %d", storage.ErrNotFound, chunk.DocumentId)
			} else if err != nil {
				return err
			}

			if chunk.Id == 0 {
				chunk.Id = chunkID(chunk.DocumentId, chunk.Sequence)
			}

			key := makeChunkKey(chunk.DocumentId, chunk.Sequence)
			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return chunks, err
}

// GetChunks returns a document's chunks ordered by sequence index.
func (r *DocumentRepository) GetChunks(ctx context.Context, documentID core.ID) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkPrefix(documentID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var verr error
				chunk, verr = storage.UnmarshalChunk(val)
				return verr
			})
			if err != nil {
				return err
			}
			results = append(results, chunk)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// chunkID derives a deterministic chunk ID from the owning document
// and sequence index, keeping re-ingestion idempotent.
func chunkID(documentID core.ID, sequence int) core.ID {
	return core.IDFromContent(fmt.Sprintf("chunk:%d:%d", documentID, sequence))
}

func (r *DocumentRepository) readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var verr error
		doc, verr = storage.UnmarshalDocument(val)
		return verr
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}
