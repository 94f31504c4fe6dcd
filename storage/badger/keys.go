package badger

import (
	"encoding/binary"

	"github.com/veritaslegal/casetrace/core"
)

// Key prefixes for different data types
const (
	documentRecordPrefix = "docrec"
	documentHashPrefix   = "dochash"
	documentIDSeq        = "docrecseq"
	chunkRecordPrefix    = "chkrec"
)

// makeDocumentKey generates a key for a document by ID.
// The ID is written in BigEndian order so iterating the prefix walks
// documents in insertion order.
func makeDocumentKey(id core.ID) []byte {
	prefix := documentRecordPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// documentKeyPrefix returns the prefix covering all document records.
func documentKeyPrefix() []byte {
	return []byte(documentRecordPrefix + ":")
}

// makeDocumentHashKey generates the corpus-scoped content-hash index key.
// Format: prefix:corpus:hash
func makeDocumentHashKey(corpus core.Corpus, hash string) []byte {
	prefix := documentHashPrefix + ":"
	buf := make([]byte, len(prefix)+1+1+len(hash))
	offset := copy(buf, prefix)
	buf[offset] = byte(corpus)
	offset++
	buf[offset] = ':'
	offset++
	copy(buf[offset:], hash)
	return buf
}

// makeChunkKey generates a composite key for a chunk record.
// Format: prefix:documentID:sequence, both BigEndian so a prefix scan
// yields a document's chunks in sequence order.
func makeChunkKey(documentID core.ID, sequence int) []byte {
	prefix := chunkRecordPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(sequence))
	return buf
}

// makeChunkPrefix generates the partial key covering one document's chunks.
func makeChunkPrefix(documentID core.ID) []byte {
	prefix := chunkRecordPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}
