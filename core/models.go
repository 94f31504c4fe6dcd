package core

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Document IDs come from database sequences; chunk IDs are derived
// from their document ID and sequence index.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// HashContent computes the content hash used for document deduplication.
// Identical raw bytes always produce identical hashes.
func HashContent(data []byte) string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 32 hex chars
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Corpus identifies one of the two independently managed document collections.
type Corpus int

const (
	// CorpusUploaded holds user-uploaded case files.
	CorpusUploaded Corpus = iota + 1
	// CorpusPrecedent holds crawled precedent case law.
	CorpusPrecedent
)

// String returns the corpus name used in logs and CLI flags.
func (c Corpus) String() string {
	switch c {
	case CorpusUploaded:
		return "uploaded"
	case CorpusPrecedent:
		return "precedent"
	default:
		return "unknown"
	}
}

// DocumentStatus tracks a document through the ingestion state machine.
type DocumentStatus int

const (
	// StatusPending is the initial state after the dedup check-and-insert.
	StatusPending DocumentStatus = iota + 1
	// StatusIngested means every chunk was embedded and indexed.
	StatusIngested
	// StatusPartiallyIngested means some chunk embeddings failed and were skipped.
	StatusPartiallyIngested
	// StatusFailed means text extraction failed after the document row was created.
	StatusFailed
)

// String returns the status name.
func (s DocumentStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusIngested:
		return "ingested"
	case StatusPartiallyIngested:
		return "partially_ingested"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EntityType categorizes an extracted legal signal.
type EntityType string

const (
	EntityCitation EntityType = "citation"
	EntitySection  EntityType = "section"
	EntityAct      EntityType = "act"
	EntityDate     EntityType = "date"
	EntityParty    EntityType = "party"
	EntityJudge    EntityType = "judge"
)

// DateConfidence is a fixed enumeration reflecting which pattern
// family matched a date mention. It is not a learned score.
type DateConfidence int

const (
	// DateConfidenceHigh marks dates from the strict numeric pattern (dd/mm/yyyy).
	DateConfidenceHigh DateConfidence = iota + 1
	// DateConfidenceLow marks dates from the looser month-name heuristic.
	DateConfidenceLow
)

// String returns the confidence name.
func (c DateConfidence) String() string {
	switch c {
	case DateConfidenceHigh:
		return "high"
	case DateConfidenceLow:
		return "low"
	default:
		return "unknown"
	}
}

// NormalizedDate is a date mention resolved to a canonical calendar day.
// Mentions that fail normalization are dropped, never defaulted.
type NormalizedDate struct {
	Raw        string         // the text as matched
	Time       time.Time      // canonical UTC midnight of the mentioned day
	Confidence DateConfidence // which pattern family produced the match
	Position   int            // rune offset of the mention in the scanned text
}

// EnrichmentRecord holds the regex-derived legal signal for a document
// or a single chunk. Chunk-level records carry citations and sections
// only; the document-level record covers all fields and is computed by
// scanning the full text once, so it contains the deduplicated union of
// its chunks' local records.
type EnrichmentRecord struct {
	Citations []string
	Sections  []string
	Acts      []string
	Dates     []NormalizedDate
	Parties   []string
	Judges    []string
}

// Document is the registry's record of one ingested file or crawled case.
// Immutable after creation except for Status transitions.
type Document struct {
	Id            ID
	ContentHash   string
	Source        string // original filename or synthetic crawl name
	SourceURL     string // origin URL for crawled precedent, empty for uploads
	Corpus        Corpus
	RawByteLength int
	Truncated     bool // extracted text was cut at the configured safety bound
	Status        DocumentStatus
	CreatedAt     time.Time
	Enrichment    EnrichmentRecord
}

// Chunk is one contiguous overlapping window of a document's text,
// the atomic unit of embedding and retrieval. VectorRef is a weak
// reference: the chunk does not own the embedding, only its key in
// the vector index.
type Chunk struct {
	Id         ID
	DocumentId ID
	Sequence   int
	CharStart  int
	CharEnd    int
	Text       string
	Local      EnrichmentRecord
	Vector     []float32 // persisted embedding, empty if the chunk was never embedded
	VectorRef  string
}

// VectorMetadata is stored alongside each vector in the index and
// returned with query matches.
type VectorMetadata struct {
	DocumentId ID
	ChunkIndex int
	Corpus     Corpus
	Local      EnrichmentRecord
}

// IngestStatus is the definite outcome of a single ingestion call.
type IngestStatus int

const (
	IngestStatusIngested IngestStatus = iota + 1
	IngestStatusPartiallyIngested
	IngestStatusDuplicate
	IngestStatusIgnored
	IngestStatusFailed
)

// String returns the status name reported to callers.
func (s IngestStatus) String() string {
	switch s {
	case IngestStatusIngested:
		return "ingested"
	case IngestStatusPartiallyIngested:
		return "partially_ingested"
	case IngestStatusDuplicate:
		return "duplicate"
	case IngestStatusIgnored:
		return "ignored"
	case IngestStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IngestResult reports the outcome of one ingestion call.
type IngestResult struct {
	DocumentId ID
	ChunkCount int
	Status     IngestStatus
	Reason     string // populated for ignored and failed outcomes
}

// RankedResult is one hybrid-search hit. Text is the chunk text, not
// the whole document, so consumers can show a grounded snippet.
type RankedResult struct {
	Text     string
	Score    float32
	Corpus   Corpus
	Metadata VectorMetadata
}

// GraphNode is one entity in the co-occurrence graph.
type GraphNode struct {
	Value string
	Type  EntityType
	Count int // number of documents mentioning the entity
}

// GraphEdge links two entities that co-occur within at least one document.
// Weight counts co-occurring documents, not mentions.
type GraphEdge struct {
	Source string
	Target string
	Weight int
}

// Graph is the entity co-occurrence graph, recomputed on demand from
// the registry. It reflects the registry at build time only.
type Graph struct {
	Nodes []GraphNode
	Edges []GraphEdge
}

// TimelineEvent is one normalized date mention placed on the timeline.
type TimelineEvent struct {
	Date       time.Time
	Raw        string
	DocumentId ID
	Source     string
	Snippet    string
	Confidence DateConfidence
}
