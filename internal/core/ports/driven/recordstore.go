package driven

import (
	"context"

	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
)

// DocumentRecordStore reads ingested document records.
// Backed by the Supabase "documents" table, or SQLite for local runs.
type DocumentRecordStore interface {
	// GetRecord returns the record matching both key fields.
	// Returns domain.ErrNotFound when no record matches. A record whose
	// content is NULL is returned with HasContent=false, not as an error.
	GetRecord(ctx context.Context, key domain.DocumentKey) (*domain.DocumentRecord, error)

	// Close releases resources.
	Close() error
}
