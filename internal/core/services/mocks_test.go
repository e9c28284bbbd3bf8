package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
	"github.com/custodia-labs/cadastro-crew/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockRecordStore implements driven.DocumentRecordStore for testing.
type mockRecordStore struct {
	records map[domain.DocumentKey]domain.DocumentRecord
	err     error
	calls   int
	closed  bool
}

func (m *mockRecordStore) GetRecord(_ context.Context, key domain.DocumentKey) (*domain.DocumentRecord, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	rec, ok := m.records[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (m *mockRecordStore) Close() error {
	m.closed = true
	return nil
}

// mockChunkMatcher implements driven.ChunkMatcher for testing.
type mockChunkMatcher struct {
	matches       []domain.ChunkMatch
	err           error
	calls         int
	lastThreshold float64
	lastCount     int
	closed        bool
}

func (m *mockChunkMatcher) Match(_ context.Context, _ []float32, threshold float64, count int) ([]domain.ChunkMatch, error) {
	m.calls++
	m.lastThreshold = threshold
	m.lastCount = count
	if m.err != nil {
		return nil, m.err
	}
	return m.matches, nil
}

func (m *mockChunkMatcher) Close() error {
	m.closed = true
	return nil
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	vector    []float32
	dims      int
	err       error
	calls     int
	lastQuery string
	closed    bool
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	m.lastQuery = text
	if m.err != nil {
		return nil, m.err
	}
	return m.vector, nil
}

func (m *mockEmbeddingService) Dimensions() int   { return m.dims }
func (m *mockEmbeddingService) ModelName() string { return "mock-model" }
func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return m.err
}

func (m *mockEmbeddingService) Close() error {
	m.closed = true
	return nil
}

// mockFactory implements driven.BackendFactory for testing.
type mockFactory struct {
	store    *mockRecordStore
	matcher  *mockChunkMatcher
	embedder *mockEmbeddingService

	storeErr    error
	matcherErr  error
	embedderErr error

	opens int
}

func newMockFactory() *mockFactory {
	return &mockFactory{
		store:    &mockRecordStore{records: map[domain.DocumentKey]domain.DocumentRecord{}},
		matcher:  &mockChunkMatcher{},
		embedder: &mockEmbeddingService{vector: []float32{0.1, 0.2, 0.3}, dims: 3},
	}
}

func (f *mockFactory) OpenRecordStore(_ context.Context, _ domain.StoreSettings) (driven.DocumentRecordStore, error) {
	f.opens++
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	return f.store, nil
}

func (f *mockFactory) OpenChunkMatcher(
	_ context.Context, _ domain.StoreSettings, _ domain.KnowledgeSettings,
) (driven.ChunkMatcher, error) {
	f.opens++
	if f.matcherErr != nil {
		return nil, f.matcherErr
	}
	return f.matcher, nil
}

func (f *mockFactory) OpenEmbeddingService(_ context.Context, _ domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	f.opens++
	if f.embedderErr != nil {
		return nil, f.embedderErr
	}
	return f.embedder, nil
}

// pgError mimics a backend error carrying a server-reported message.
type pgError struct {
	msg string
}

func (e *pgError) Error() string          { return "ERROR: " + e.msg + " (SQLSTATE 42883)" }
func (e *pgError) BackendMessage() string { return e.msg }

var errConnRefused = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

// testAppSettings returns fully configured settings for a remote store.
func testAppSettings() domain.AppSettings {
	settings := domain.DefaultAppSettings()
	settings.Store.URL = "postgres://postgres@db.example.supabase.co:5432/postgres"
	settings.Store.ServiceKey = "service-role-key"
	return settings
}
