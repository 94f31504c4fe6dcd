// Package graph builds the entity co-occurrence graph over ingested
// documents.
//
// Parties, judges, acts, and sections from document-level enrichment
// become nodes keyed by their normalized value; a node's count is the
// number of documents mentioning it. The graph is truncated to the top
// nodes by count before edges are computed, so edges only ever connect
// retained nodes. That truncation is lossy on purpose: it bounds the
// graph for display, and an entity dropped by the node limit takes its
// edges with it.
package graph
