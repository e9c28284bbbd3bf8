package driving

import (
	"context"

	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
)

// CaseService assembles the orchestrator payload for one case.
type CaseService interface {
	// Prepare loads the case checklist and client documents.
	// A checklist that cannot be loaded aborts preparation; client
	// documents that cannot be loaded are replaced by placeholders.
	// When documents is empty the configured defaults are used.
	Prepare(ctx context.Context, caseID string, documents []domain.CaseDocument) (*domain.CaseInput, error)
}
