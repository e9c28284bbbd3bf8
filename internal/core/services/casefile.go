package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
	"github.com/custodia-labs/cadastro-crew/internal/core/ports/driving"
	"github.com/custodia-labs/cadastro-crew/internal/logger"
)

// Ensure CaseService implements the interface.
var _ driving.CaseService = (*CaseService)(nil)

const opCasePrepare = "case preparation"

// CaseService builds the per-case orchestrator input from the document store.
type CaseService struct {
	lookup   driving.DocumentContentService
	settings domain.CaseSettings
	now      func() time.Time
}

// NewCaseService creates a case service reading documents through lookup.
func NewCaseService(lookup driving.DocumentContentService, settings domain.CaseSettings) *CaseService {
	if settings.ChecklistName == "" {
		settings.ChecklistName = domain.DefaultChecklistName
	}
	return &CaseService{
		lookup:   lookup,
		settings: settings,
		now:      time.Now,
	}
}

// Prepare loads the checklist and every client document for caseID.
func (s *CaseService) Prepare(
	ctx context.Context, caseID string, documents []domain.CaseDocument,
) (*domain.CaseInput, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return nil, domain.NewValidationError(opCasePrepare, "case_id")
	}
	if len(documents) == 0 {
		documents = s.settings.Documents
	}
	if documents == nil {
		documents = []domain.CaseDocument{}
	}

	logger.Section("Case Preparation")
	logger.Info("Loading checklist %q for case %q", s.settings.ChecklistName, caseID)

	checklist, err := s.lookup.Lookup(ctx, domain.DocumentKey{Name: s.settings.ChecklistName, CaseID: caseID})
	if err != nil {
		logger.Error("Failed to load checklist %q: %v", s.settings.ChecklistName, err)
		return nil, fmt.Errorf("load checklist %q: %w", s.settings.ChecklistName, err)
	}

	contents := make(map[string]string, len(documents))
	for _, doc := range documents {
		content, err := s.lookup.Lookup(ctx, domain.DocumentKey{Name: doc.Name, CaseID: caseID})
		if err != nil {
			logger.Warn("Could not load %s document %q: %v", doc.Type, doc.Name, err)
			content = placeholderFor(err)
		}
		contents[doc.Name] = content
	}

	return &domain.CaseInput{
		CaseID:      caseID,
		Documents:   documents,
		Checklist:   checklist,
		CurrentDate: s.now().Format(time.DateOnly),
		Contents:    contents,
	}, nil
}

// placeholderFor picks the placeholder text for a failed document lookup.
func placeholderFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrInvalidInput):
		return domain.PlaceholderMissing
	default:
		return domain.PlaceholderLoadError
	}
}
