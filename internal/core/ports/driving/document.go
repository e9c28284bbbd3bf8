package driving

import (
	"context"

	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
)

// DocumentContentService resolves a (document name, case id) pair to the
// previously extracted text of that document.
type DocumentContentService interface {
	// Lookup returns the stored content unmodified.
	// Failures are *domain.ToolError values; match them with errors.Is
	// against domain.ErrNotFound, domain.ErrEmptyContent, and so on.
	Lookup(ctx context.Context, key domain.DocumentKey) (string, error)

	// Readiness reports whether the record store handle was acquired.
	Readiness() domain.Readiness

	// Close releases the record store handle.
	Close() error
}
