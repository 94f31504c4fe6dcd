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

package graph

import (
	"context"
	"log/slog"
	"sort"

	"github.com/veritaslegal/casetrace/core"
	"github.com/veritaslegal/casetrace/enrich"
	"github.com/veritaslegal/casetrace/storage"
)

// Entity value length bounds. Values outside (minValueLen, maxValueLen)
// are regex noise, not entities.
const (
	minValueLen = 2
	maxValueLen = 120
)

// DefaultNodeLimit bounds the graph when the caller passes no limit.
const DefaultNodeLimit = 25

// Builder assembles the entity co-occurrence graph from document-level
// enrichment records. Chunk-level records are ignored; counting them
// would double-count entities repeated across overlapping chunks.
type Builder struct {
	documents storage.DocumentRepository
	logger    *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBuilder creates an entity graph builder.
func NewBuilder(documents storage.DocumentRepository, opts ...Option) (*Builder, error) {
	if documents == nil {
		return nil, ErrRepositoryRequired
	}
	b := &Builder{documents: documents, logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// node accumulates one entity across documents. docs records which
// documents mention it so the count is per document, not per mention.
type node struct {
	value     string
	entity    core.EntityType
	docs      map[core.ID]bool
	firstSeen int
}

// Build scans every document's enrichment record and returns the
// co-occurrence graph, truncated to the top limit nodes by document
// count. Ties keep first-seen order. Edges are computed among the
// retained nodes only, after truncation; an edge's weight is the
// number of documents in which both entities appear.
func (b *Builder) Build(ctx context.Context, limit int) (*core.Graph, error) {
	if limit <= 0 {
		limit = DefaultNodeLimit
	}

	docs, err := b.documents.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*node)
	var order []string
	// Per-document entity sets, for the edge pass.
	docEntities := make([]map[string]bool, len(docs))

	for i, doc := range docs {
		entities := make(map[string]bool)
		for _, field := range []struct {
			entity core.EntityType
			values []string
		}{
			{core.EntityParty, doc.Enrichment.Parties},
			{core.EntityJudge, doc.Enrichment.Judges},
			{core.EntityAct, doc.Enrichment.Acts},
			{core.EntitySection, doc.Enrichment.Sections},
		} {
			for _, value := range field.values {
				key := enrich.NormalizeValue(value)
				if len(key) <= minValueLen || len(key) >= maxValueLen {
					continue
				}
				n, ok := nodes[key]
				if !ok {
					n = &node{
						value:     value,
						entity:    field.entity,
						docs:      make(map[core.ID]bool),
						firstSeen: len(order),
					}
					nodes[key] = n
					order = append(order, key)
				}
				n.docs[doc.Id] = true
				entities[key] = true
			}
		}
		docEntities[i] = entities
	}

	// Rank and truncate before edges: the lossy step is on nodes, and
	// edges only ever connect retained nodes.
	ranked := make([]string, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return len(nodes[ranked[i]].docs) > len(nodes[ranked[j]].docs)
	})
	if limit < len(ranked) {
		ranked = ranked[:limit]
	}

	retained := make(map[string]bool, len(ranked))
	graphNodes := make([]core.GraphNode, len(ranked))
	for i, key := range ranked {
		retained[key] = true
		n := nodes[key]
		graphNodes[i] = core.GraphNode{
			Value: n.value,
			Type:  n.entity,
			Count: len(n.docs),
		}
	}

	type edgeKey struct{ a, b string }
	weights := make(map[edgeKey]int)
	var edgeOrder []edgeKey
	for _, entities := range docEntities {
		var present []string
		for key := range entities {
			if retained[key] {
				present = append(present, key)
			}
		}
		sort.Strings(present)
		for i := 0; i < len(present); i++ {
			for j := i + 1; j < len(present); j++ {
				k := edgeKey{present[i], present[j]}
				if _, ok := weights[k]; !ok {
					edgeOrder = append(edgeOrder, k)
				}
				weights[k]++
			}
		}
	}

	edges := make([]core.GraphEdge, len(edgeOrder))
	for i, k := range edgeOrder {
		edges[i] = core.GraphEdge{
			Source: nodes[k.a].value,
			Target: nodes[k.b].value,
			Weight: weights[k],
		}
	}
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].Weight > edges[j].Weight
	})

	b.logger.Debug("entity graph built",
		"documents", len(docs), "nodes", len(graphNodes), "edges", len(edges))

	return &core.Graph{Nodes: graphNodes, Edges: edges}, nil
}
