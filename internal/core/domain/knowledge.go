package domain

import (
	"math"
	"strings"
)

// Knowledge search defaults.
const (
	// DefaultTopK is the number of matches returned when none is requested.
	DefaultTopK = 3

	// DefaultMatchThreshold is the minimum cosine-derived similarity, in
	// [0,1] where 1 means identical, for a chunk to be returned.
	DefaultMatchThreshold = 0.5
)

// ValidMatchThreshold reports whether t is a usable similarity threshold:
// a number in [0, 1]. Zero is valid and returns every match.
func ValidMatchThreshold(t float64) bool {
	return !math.IsNaN(t) && t >= 0 && t <= 1
}

// KnowledgeChunk is one indexed unit of the knowledge base.
type KnowledgeChunk struct {
	// ID is an opaque identifier.
	ID string

	// Content is the chunk text.
	Content string

	// Embedding is the vector representation. Its length is fixed by the
	// embedding model and must match the query embedding.
	Embedding []float32

	// Metadata contains optional chunk-specific key-value pairs.
	Metadata map[string]any
}

// ChunkMatch is a knowledge chunk returned by a similarity search.
type ChunkMatch struct {
	// ID is the matched chunk.
	ID string

	// Content is the chunk text.
	Content string

	// Similarity is the cosine-derived similarity score (0-1).
	Similarity float64

	// Metadata is the chunk metadata, nil when absent.
	Metadata map[string]any
}

// KnowledgeQuery is a single semantic search request.
type KnowledgeQuery struct {
	// Query is the natural-language question or search term.
	Query string

	// TopK caps the number of matches. Zero means DefaultTopK.
	TopK int
}

// Normalise trims the query and applies the default TopK.
func (q KnowledgeQuery) Normalise(defaultTopK int) KnowledgeQuery {
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}
	out := KnowledgeQuery{Query: strings.TrimSpace(q.Query), TopK: q.TopK}
	if out.TopK == 0 {
		out.TopK = defaultTopK
	}
	return out
}
