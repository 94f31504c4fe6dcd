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

package storage

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/veritaslegal/casetrace/core"
)

// Registry records are serialized with hand-written MUS serializers.
// Field order is the wire format; append new fields at the end only.

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, sizeDocument(doc))
	marshalDocument(doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, _, err := unmarshalDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return doc, nil
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, sizeChunk(chunk))
	marshalChunk(chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := unmarshalChunk(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return chunk, nil
}

func marshalDocument(doc *core.Document, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(doc.Id), bs)
	n += ord.String.Marshal(doc.ContentHash, bs[n:])
	n += ord.String.Marshal(doc.Source, bs[n:])
	n += ord.String.Marshal(doc.SourceURL, bs[n:])
	n += varint.Int.Marshal(int(doc.Corpus), bs[n:])
	n += varint.Int.Marshal(doc.RawByteLength, bs[n:])
	n += ord.Bool.Marshal(doc.Truncated, bs[n:])
	n += varint.Int.Marshal(int(doc.Status), bs[n:])
	n += varint.Int64.Marshal(doc.CreatedAt.UnixMicro(), bs[n:])
	n += marshalEnrichment(&doc.Enrichment, bs[n:])
	return n
}

func unmarshalDocument(bs []byte) (doc *core.Document, n int, err error) {
	doc = &core.Document{}
	var n1 int

	id, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	doc.Id = core.ID(id)

	if doc.ContentHash, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	if doc.Source, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	if doc.SourceURL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1

	var v int
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	doc.Corpus = core.Corpus(v)

	if doc.RawByteLength, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1

	if doc.Truncated, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1

	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	doc.Status = core.DocumentStatus(v)

	var micros int64
	if micros, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	doc.CreatedAt = time.UnixMicro(micros).UTC()

	if doc.Enrichment, n1, err = unmarshalEnrichment(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1

	return doc, n, nil
}

func sizeDocument(doc *core.Document) (size int) {
	size = varint.Uint64.Size(uint64(doc.Id))
	size += ord.String.Size(doc.ContentHash)
	size += ord.String.Size(doc.Source)
	size += ord.String.Size(doc.SourceURL)
	size += varint.Int.Size(int(doc.Corpus))
	size += varint.Int.Size(doc.RawByteLength)
	size += ord.Bool.Size(doc.Truncated)
	size += varint.Int.Size(int(doc.Status))
	size += varint.Int64.Size(doc.CreatedAt.UnixMicro())
	size += sizeEnrichment(&doc.Enrichment)
	return size
}

func marshalChunk(chunk *core.Chunk, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(chunk.Id), bs)
	n += varint.Uint64.Marshal(uint64(chunk.DocumentId), bs[n:])
	n += varint.Int.Marshal(chunk.Sequence, bs[n:])
	n += varint.Int.Marshal(chunk.CharStart, bs[n:])
	n += varint.Int.Marshal(chunk.CharEnd, bs[n:])
	n += ord.String.Marshal(chunk.Text, bs[n:])
	n += marshalEnrichment(&chunk.Local, bs[n:])
	n += marshalVector(chunk.Vector, bs[n:])
	n += ord.String.Marshal(chunk.VectorRef, bs[n:])
	return n
}

func unmarshalChunk(bs []byte) (chunk *core.Chunk, n int, err error) {
	chunk = &core.Chunk{}
	var n1 int

	id, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	chunk.Id = core.ID(id)

	if id, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	chunk.DocumentId = core.ID(id)

	if chunk.Sequence, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	if chunk.CharStart, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	if chunk.CharEnd, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	if chunk.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	if chunk.Local, n1, err = unmarshalEnrichment(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	if chunk.Vector, n1, err = unmarshalVector(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	if chunk.VectorRef, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1

	return chunk, n, nil
}

func sizeChunk(chunk *core.Chunk) (size int) {
	size = varint.Uint64.Size(uint64(chunk.Id))
	size += varint.Uint64.Size(uint64(chunk.DocumentId))
	size += varint.Int.Size(chunk.Sequence)
	size += varint.Int.Size(chunk.CharStart)
	size += varint.Int.Size(chunk.CharEnd)
	size += ord.String.Size(chunk.Text)
	size += sizeEnrichment(&chunk.Local)
	size += sizeVector(chunk.Vector)
	size += ord.String.Size(chunk.VectorRef)
	return size
}

// Vector components are stored as raw float32 bit patterns; varint
// encoding saves nothing on random mantissa bits.
func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		binary.LittleEndian.PutUint32(bs[n:], math.Float32bits(f))
		n += 4
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if count < 0 || len(bs[n:]) < count*4 {
		return nil, n, ErrSerializationFailed
	}
	if count == 0 {
		return nil, n, nil
	}

	v = make([]float32, count)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(bs[n:]))
		n += 4
	}
	return v, n, nil
}

func sizeVector(v []float32) int {
	return varint.Int.Size(len(v)) + 4*len(v)
}

func marshalEnrichment(rec *core.EnrichmentRecord, bs []byte) (n int) {
	n = marshalStrings(rec.Citations, bs)
	n += marshalStrings(rec.Sections, bs[n:])
	n += marshalStrings(rec.Acts, bs[n:])
	n += marshalStrings(rec.Parties, bs[n:])
	n += marshalStrings(rec.Judges, bs[n:])
	n += varint.Int.Marshal(len(rec.Dates), bs[n:])
	for i := range rec.Dates {
		n += marshalDate(&rec.Dates[i], bs[n:])
	}
	return n
}

func unmarshalEnrichment(bs []byte) (rec core.EnrichmentRecord, n int, err error) {
	var n1 int

	if rec.Citations, n, err = unmarshalStrings(bs); err != nil {
		return rec, n, err
	}
	if rec.Sections, n1, err = unmarshalStrings(bs[n:]); err != nil {
		return rec, n + n1, err
	}
	n += n1
	if rec.Acts, n1, err = unmarshalStrings(bs[n:]); err != nil {
		return rec, n + n1, err
	}
	n += n1
	if rec.Parties, n1, err = unmarshalStrings(bs[n:]); err != nil {
		return rec, n + n1, err
	}
	n += n1
	if rec.Judges, n1, err = unmarshalStrings(bs[n:]); err != nil {
		return rec, n + n1, err
	}
	n += n1

	var count int
	if count, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return rec, n + n1, err
	}
	n += n1
	if count < 0 {
		return rec, n, ErrSerializationFailed
	}
	if count > 0 {
		rec.Dates = make([]core.NormalizedDate, count)
		for i := range rec.Dates {
			if rec.Dates[i], n1, err = unmarshalDate(bs[n:]); err != nil {
				return rec, n + n1, err
			}
			n += n1
		}
	}

	return rec, n, nil
}

func sizeEnrichment(rec *core.EnrichmentRecord) (size int) {
	size = sizeStrings(rec.Citations)
	size += sizeStrings(rec.Sections)
	size += sizeStrings(rec.Acts)
	size += sizeStrings(rec.Parties)
	size += sizeStrings(rec.Judges)
	size += varint.Int.Size(len(rec.Dates))
	for i := range rec.Dates {
		size += sizeDate(&rec.Dates[i])
	}
	return size
}

func marshalDate(d *core.NormalizedDate, bs []byte) (n int) {
	n = ord.String.Marshal(d.Raw, bs)
	n += varint.Int64.Marshal(d.Time.UnixMicro(), bs[n:])
	n += varint.Int.Marshal(int(d.Confidence), bs[n:])
	n += varint.Int.Marshal(d.Position, bs[n:])
	return n
}

func unmarshalDate(bs []byte) (d core.NormalizedDate, n int, err error) {
	var n1 int

	if d.Raw, n, err = ord.String.Unmarshal(bs); err != nil {
		return d, n, err
	}

	var micros int64
	if micros, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	d.Time = time.UnixMicro(micros).UTC()

	var v int
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	d.Confidence = core.DateConfidence(v)

	if d.Position, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1

	return d, n, nil
}

func sizeDate(d *core.NormalizedDate) (size int) {
	size = ord.String.Size(d.Raw)
	size += varint.Int64.Size(d.Time.UnixMicro())
	size += varint.Int.Size(int(d.Confidence))
	size += varint.Int.Size(d.Position)
	return size
}

func marshalStrings(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStrings(bs []byte) (v []string, n int, err error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if count < 0 {
		return nil, n, ErrSerializationFailed
	}
	if count == 0 {
		return nil, n, nil
	}

	v = make([]string, count)
	for i := range v {
		var n1 int
		if v[i], n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return nil, n + n1, err
		}
		n += n1
	}
	return v, n, nil
}

func sizeStrings(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return size
}
