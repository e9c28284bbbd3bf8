package mcp

import (
	"context"
	"sync"

	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
)

// mockDocumentService is a mock implementation of driving.DocumentContentService.
type mockDocumentService struct {
	mu       sync.Mutex
	contents map[domain.DocumentKey]string
	err      error
	keys     []domain.DocumentKey
}

func (m *mockDocumentService) Lookup(_ context.Context, key domain.DocumentKey) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	if m.err != nil {
		return "", m.err
	}
	content, ok := m.contents[key]
	if !ok {
		return "", domain.NewToolError(domain.KindNotFound, "document lookup", domain.ErrNotFound)
	}
	return content, nil
}

func (m *mockDocumentService) Readiness() domain.Readiness { return domain.Ready() }
func (m *mockDocumentService) Close() error                { return nil }

// mockKnowledgeService is a mock implementation of driving.KnowledgeSearchService.
type mockKnowledgeService struct {
	mu      sync.Mutex
	matches []domain.ChunkMatch
	err     error
	queries []domain.KnowledgeQuery
}

func (m *mockKnowledgeService) Search(_ context.Context, q domain.KnowledgeQuery) ([]domain.ChunkMatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	return m.matches, m.err
}

func (m *mockKnowledgeService) Readiness() domain.Readiness { return domain.Ready() }
func (m *mockKnowledgeService) Close() error                { return nil }

// mockCaseService is a mock implementation of driving.CaseService.
type mockCaseService struct {
	input *domain.CaseInput
	err   error
}

func (m *mockCaseService) Prepare(
	_ context.Context, caseID string, documents []domain.CaseDocument,
) (*domain.CaseInput, error) {
	if m.err != nil {
		return nil, m.err
	}
	input := *m.input
	input.CaseID = caseID
	if documents != nil {
		input.Documents = documents
	}
	return &input, nil
}
