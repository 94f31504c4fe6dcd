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

package vector

import (
	"context"
	"fmt"

	"github.com/veritaslegal/casetrace/core"
)

// Collection names, one per corpus. Every chunk embedding lives in
// exactly one of them.
const (
	CollectionUploaded  = "case_files"
	CollectionPrecedent = "legal_cases"
)

// CollectionForCorpus maps a corpus to its collection name.
func CollectionForCorpus(corpus core.Corpus) (string, error) {
	switch corpus {
	case core.CorpusUploaded:
		return CollectionUploaded, nil
	case core.CorpusPrecedent:
		return CollectionPrecedent, nil
	default:
		return "", fmt.Errorf("%w: %d", core.ErrInvalidCorpus, corpus)
	}
}

// Match is a single nearest-neighbor hit. Distance is a cosine
// distance in [0, 2]; smaller is closer.
type Match struct {
	ID       string
	Distance float64
	Metadata core.VectorMetadata
}

// Index stores chunk embeddings and answers nearest-neighbor queries.
// Implementations must be safe for concurrent use.
type Index interface {
	// Upsert inserts or replaces the vector stored under id in the
	// named collection.
	Upsert(ctx context.Context, collection, id string, vec []float32, meta core.VectorMetadata) error

	// Query returns up to k matches closest to vec, ordered by
	// ascending distance. An unknown or empty collection yields an
	// empty slice, not an error.
	Query(ctx context.Context, collection string, vec []float32, k int) ([]Match, error)

	// Count reports the number of vectors in the named collection.
	Count(ctx context.Context, collection string) (int, error)
}
