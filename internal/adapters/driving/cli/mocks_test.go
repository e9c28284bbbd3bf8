package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
	"github.com/custodia-labs/cadastro-crew/internal/core/ports/driving"
)

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings domain.AppSettings
	getErr   error
	setErr   error
	set      map[string]string
	keys     []domain.SettingKey
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultAppSettings(),
		set:      make(map[string]string),
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ConfigPath() string { return "/tmp/cadastro/config.toml" }
func (m *mockSettingsService) Keys() []domain.SettingKey { return m.keys }

// mockDocumentService serves documents from a map keyed by case and name.
type mockDocumentService struct {
	mu       sync.Mutex
	contents map[domain.DocumentKey]string
	err      error
	closed   bool
}

func (m *mockDocumentService) Lookup(_ context.Context, key domain.DocumentKey) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	content, ok := m.contents[key.Normalise()]
	if !ok {
		return "", domain.NewToolError(domain.KindNotFound, "document lookup", domain.ErrNotFound)
	}
	return content, nil
}

func (m *mockDocumentService) Readiness() domain.Readiness { return domain.Ready() }

func (m *mockDocumentService) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// mockKnowledgeService returns canned matches per query.
type mockKnowledgeService struct {
	matches   map[string][]domain.ChunkMatch
	errs      map[string]error
	readiness domain.Readiness
	queries   []domain.KnowledgeQuery
	closed    bool
}

func (m *mockKnowledgeService) Search(_ context.Context, q domain.KnowledgeQuery) ([]domain.ChunkMatch, error) {
	m.queries = append(m.queries, q)
	if err := m.errs[q.Query]; err != nil {
		return nil, err
	}
	return m.matches[q.Query], nil
}

func (m *mockKnowledgeService) Readiness() domain.Readiness { return m.readiness }

func (m *mockKnowledgeService) Close() error {
	m.closed = true
	return nil
}

// mockCaseService records the settings and documents it was given.
type mockCaseService struct {
	settings  domain.CaseSettings
	documents driving.DocumentContentService
	caseID    string
	docs      []domain.CaseDocument
	input     *domain.CaseInput
	err       error
}

func (m *mockCaseService) Prepare(
	_ context.Context, caseID string, docs []domain.CaseDocument,
) (*domain.CaseInput, error) {
	m.caseID = caseID
	m.docs = docs
	if m.err != nil {
		return nil, m.err
	}
	return m.input, nil
}

// mockToolOpener hands out the mock tools.
type mockToolOpener struct {
	documents   *mockDocumentService
	documentErr error
	knowledge   *mockKnowledgeService
	cases       *mockCaseService
	opened      []domain.AppSettings
}

func newMockToolOpener() *mockToolOpener {
	return &mockToolOpener{
		documents: &mockDocumentService{contents: make(map[domain.DocumentKey]string)},
		knowledge: &mockKnowledgeService{
			matches:   make(map[string][]domain.ChunkMatch),
			errs:      make(map[string]error),
			readiness: domain.Ready(),
		},
		cases: &mockCaseService{},
	}
}

func (m *mockToolOpener) OpenDocuments(_ context.Context, settings domain.AppSettings) (driving.DocumentContentService, error) {
	m.opened = append(m.opened, settings)
	if m.documentErr != nil {
		return nil, m.documentErr
	}
	return m.documents, nil
}

func (m *mockToolOpener) OpenKnowledge(_ context.Context, settings domain.AppSettings) driving.KnowledgeSearchService {
	m.opened = append(m.opened, settings)
	return m.knowledge
}

func (m *mockToolOpener) NewCaseService(
	documents driving.DocumentContentService, settings domain.CaseSettings,
) driving.CaseService {
	m.cases.documents = documents
	m.cases.settings = settings
	return m.cases
}

// setupServices injects mocks and restores the previous services after the test.
func setupServices(t *testing.T) (*mockSettingsService, *mockToolOpener) {
	t.Helper()
	settings := newMockSettingsService()
	tools := newMockToolOpener()

	prevSettings, prevTools := settingsService, toolOpener
	SetServices(settings, tools)
	t.Cleanup(func() { SetServices(prevSettings, prevTools) })
	return settings, tools
}

// runCommand executes the root command with args and returns stdout and stderr.
func runCommand(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()

	docCaseID = ""
	kbTopK = 0
	caseChecklist = ""
	caseDocuments = nil
	if err := mcpServeCmd.Flags().Set("port", "0"); err != nil {
		t.Fatalf("reset port flag: %v", err)
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := Execute(ctx)
	return stdout.String(), stderr.String(), err
}
