package driving

import (
	"context"

	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
)

// KnowledgeSearchService turns a natural-language query into ranked
// knowledge base chunks.
type KnowledgeSearchService interface {
	// Search returns at most TopK matches above the similarity threshold,
	// ordered by similarity descending. An empty slice means no match.
	// Failures are *domain.ToolError values.
	Search(ctx context.Context, query domain.KnowledgeQuery) ([]domain.ChunkMatch, error)

	// Readiness reports whether the store and embedding model were acquired.
	Readiness() domain.Readiness

	// Close releases the backend handles.
	Close() error
}
