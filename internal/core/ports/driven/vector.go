package driven

import (
	"context"

	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
)

// ChunkMatcher runs a similarity search against the knowledge chunk store.
// The Postgres adapter calls a server-side function expected to exist in
// the database (match_kb_chunks by default).
type ChunkMatcher interface {
	// Match returns at most count chunks whose similarity to query exceeds
	// threshold. Implementations should order by similarity descending,
	// but callers must not rely on it.
	Match(ctx context.Context, query []float32, threshold float64, count int) ([]domain.ChunkMatch, error)

	// Close releases resources.
	Close() error
}
