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

// Package memory implements vector.Index as an in-process brute-force
// store with exact cosine distance.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/veritaslegal/casetrace/core"
	"github.com/veritaslegal/casetrace/vector"
)

type entry struct {
	id   string
	vec  []float32
	norm float64
	meta core.VectorMetadata
}

type collection struct {
	entries []entry
	byID    map[string]int
	dim     int
}

// Index is a brute-force in-memory vector store. Queries scan the
// whole collection, which is fine at case-file scale. Safe for
// concurrent use.
type Index struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

var _ vector.Index = (*Index)(nil)

// NewIndex returns an empty in-memory index.
func NewIndex() *Index {
	return &Index{collections: make(map[string]*collection)}
}

func (x *Index) Upsert(ctx context.Context, name, id string, vec []float32, meta core.VectorMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return vector.ErrEmptyID
	}
	if len(vec) == 0 {
		return vector.ErrEmptyVector
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	coll, ok := x.collections[name]
	if !ok {
		coll = &collection{byID: make(map[string]int), dim: len(vec)}
		x.collections[name] = coll
	}
	if len(vec) != coll.dim {
		return fmt.Errorf("%w: got %d, collection %q holds %d",
			vector.ErrDimensionMismatch, len(vec), name, coll.dim)
	}

	stored := make([]float32, len(vec))
	copy(stored, vec)
	e := entry{id: id, vec: stored, norm: norm(stored), meta: meta}

	if i, exists := coll.byID[id]; exists {
		coll.entries[i] = e
		return nil
	}
	coll.byID[id] = len(coll.entries)
	coll.entries = append(coll.entries, e)
	return nil
}

func (x *Index) Query(ctx context.Context, name string, vec []float32, k int) ([]vector.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, vector.ErrEmptyVector
	}
	if k <= 0 {
		return []vector.Match{}, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	coll, ok := x.collections[name]
	if !ok || len(coll.entries) == 0 {
		return []vector.Match{}, nil
	}
	if len(vec) != coll.dim {
		return nil, fmt.Errorf("%w: got %d, collection %q holds %d",
			vector.ErrDimensionMismatch, len(vec), name, coll.dim)
	}

	qnorm := norm(vec)
	matches := make([]vector.Match, 0, len(coll.entries))
	for _, e := range coll.entries {
		matches = append(matches, vector.Match{
			ID:       e.id,
			Distance: cosineDistance(vec, qnorm, e.vec, e.norm),
			Metadata: e.meta,
		})
	}
	// Insertion order breaks distance ties so results are stable.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

func (x *Index) Count(ctx context.Context, name string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	coll, ok := x.collections[name]
	if !ok {
		return 0, nil
	}
	return len(coll.entries), nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

// cosineDistance is 1 minus cosine similarity. A zero-norm operand
// yields the maximum distance of 1.
func cosineDistance(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 1
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return 1 - dot/(aNorm*bNorm)
}
