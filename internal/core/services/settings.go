package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
	"github.com/custodia-labs/cadastro-crew/internal/core/ports/driven"
	"github.com/custodia-labs/cadastro-crew/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyStoreDriver         = "store.driver"
	keyStoreURL            = "store.url"
	keyStoreServiceKey     = "store.service_key"
	keyStoreDocumentsTable = "store.documents_table"
	keyStoreDataDir        = "store.data_dir"
	keyKBTable             = "knowledge.table"
	keyKBMatchFunction     = "knowledge.match_function"
	keyKBMatchThreshold    = "knowledge.match_threshold"
	keyKBTopK              = "knowledge.top_k"
	keyEmbedProvider       = "embedding.provider"
	keyEmbedModel          = "embedding.model"
	keyEmbedBaseURL        = "embedding.base_url"
	keyEmbedAPIKey         = "embedding.api_key"
	keyEmbedDimensions     = "embedding.dimensions"
	keyEmbedRPS            = "embedding.requests_per_second"
	keyCaseChecklist       = "case.checklist"
	keyCaseDocuments       = "case.documents"
)

// envOverrides maps config keys to the environment variables that take
// precedence over the config file.
//
//nolint:gosec // G101: These are variable names, not credentials.
var envOverrides = map[string]string{
	keyStoreDriver:         "CADASTRO_STORE_DRIVER",
	keyStoreURL:            "SUPABASE_DB_URL",
	keyStoreServiceKey:     "SUPABASE_SERVICE_KEY",
	keyStoreDocumentsTable: "DOCUMENTS_TABLE",
	keyStoreDataDir:        "CADASTRO_DATA_DIR",
	keyKBTable:             "KB_TABLE_NAME",
	keyKBMatchFunction:     "KB_MATCH_FUNCTION",
	keyKBMatchThreshold:    "KB_MATCH_THRESHOLD",
	keyKBTopK:              "KB_TOP_K",
	keyEmbedProvider:       "EMBEDDING_PROVIDER",
	keyEmbedModel:          "EMBEDDING_MODEL_NAME",
	keyEmbedBaseURL:        "EMBEDDING_BASE_URL",
	keyEmbedAPIKey:         "OPENAI_API_KEY",
	keyEmbedDimensions:     "EMBEDDING_DIMENSIONS",
	keyEmbedRPS:            "EMBEDDING_RPS",
	keyCaseChecklist:       "CHECKLIST_DOCUMENT_NAME",
}

// SettingsService reads application settings from the config store,
// with environment variables overriding file values.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	threshold, err := s.getFloat(keyKBMatchThreshold, defaults.Knowledge.MatchThreshold)
	if err != nil {
		return nil, err
	}
	if !domain.ValidMatchThreshold(threshold) {
		return nil, fmt.Errorf("%w: %s=%v must be between 0 and 1", domain.ErrInvalidInput, keyKBMatchThreshold, threshold)
	}
	topK, err := s.getInt(keyKBTopK, defaults.Knowledge.TopK)
	if err != nil {
		return nil, err
	}
	dims, err := s.getInt(keyEmbedDimensions, 0)
	if err != nil {
		return nil, err
	}
	rps, err := s.getFloat(keyEmbedRPS, 0)
	if err != nil {
		return nil, err
	}
	documents, err := s.getCaseDocuments()
	if err != nil {
		return nil, err
	}

	provider := s.getProvider(defaults.Embedding.Provider)
	model := s.getString(keyEmbedModel, "")
	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	settings := &domain.AppSettings{
		Store: domain.StoreSettings{
			Driver:         s.getDriver(defaults.Store.Driver),
			URL:            s.getString(keyStoreURL, ""),
			ServiceKey:     s.getString(keyStoreServiceKey, ""),
			DocumentsTable: s.getString(keyStoreDocumentsTable, defaults.Store.DocumentsTable),
			DataDir:        s.getString(keyStoreDataDir, ""),
		},
		Knowledge: domain.KnowledgeSettings{
			Table:          s.getString(keyKBTable, defaults.Knowledge.Table),
			MatchFunction:  s.getString(keyKBMatchFunction, defaults.Knowledge.MatchFunction),
			MatchThreshold: threshold,
			TopK:           topK,
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          provider,
			Model:             model,
			BaseURL:           s.getString(keyEmbedBaseURL, ""),
			APIKey:            s.getString(keyEmbedAPIKey, ""),
			Dimensions:        dims,
			RequestsPerSecond: rps,
		},
		Case: domain.CaseSettings{
			ChecklistName: s.getString(keyCaseChecklist, defaults.Case.ChecklistName),
			Documents:     documents,
		},
	}

	return settings, nil
}

// Save persists application settings to the config file.
// Secrets are only written when set, so an environment-provided key is
// never copied to disk by accident of a round trip.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyStoreDriver, settings.Store.Driver.String()},
		{keyStoreURL, settings.Store.URL},
		{keyStoreDocumentsTable, settings.Store.DocumentsTable},
		{keyStoreDataDir, settings.Store.DataDir},
		{keyKBTable, settings.Knowledge.Table},
		{keyKBMatchFunction, settings.Knowledge.MatchFunction},
		{keyKBMatchThreshold, settings.Knowledge.MatchThreshold},
		{keyKBTopK, settings.Knowledge.TopK},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyCaseChecklist, settings.Case.ChecklistName},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if len(settings.Case.Documents) > 0 {
		docs := make([]string, 0, len(settings.Case.Documents))
		for _, d := range settings.Case.Documents {
			docs = append(docs, d.String())
		}
		if err := s.configStore.Set(keyCaseDocuments, docs); err != nil {
			return fmt.Errorf("save %s: %w", keyCaseDocuments, err)
		}
	}
	if settings.Store.ServiceKey != "" {
		if err := s.configStore.Set(keyStoreServiceKey, settings.Store.ServiceKey); err != nil {
			return fmt.Errorf("save %s: %w", keyStoreServiceKey, err)
		}
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
		}
	}

	return s.configStore.Save()
}

// Set validates and stores a single key in the config file.
func (s *SettingsService) Set(key, value string) error {
	value = strings.TrimSpace(value)

	var stored any = value
	switch key {
	case keyStoreDriver:
		if !domain.StoreDriver(value).IsValid() {
			return fmt.Errorf("%w: invalid store driver %q", domain.ErrInvalidInput, value)
		}
	case keyEmbedProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid embedding provider %q", domain.ErrInvalidInput, value)
		}
	case keyKBTopK, keyEmbedDimensions:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || (key == keyKBTopK && n == 0) {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case keyKBMatchThreshold:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || !domain.ValidMatchThreshold(f) {
			return fmt.Errorf("%w: %s must be between 0 and 1", domain.ErrInvalidInput, key)
		}
		stored = f
	case keyEmbedRPS:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be zero or positive", domain.ErrInvalidInput, key)
		}
		stored = f
	case keyCaseDocuments:
		var docs []string
		for _, part := range strings.Split(value, ",") {
			doc, err := domain.ParseCaseDocument(part)
			if err != nil {
				return err
			}
			docs = append(docs, doc.String())
		}
		stored = docs
	default:
		if _, known := envOverrides[key]; !known {
			return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
		}
	}

	return s.configStore.Set(key, stored)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ConfigPath returns the config file location.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// Keys returns every recognised setting key, sorted by key.
func (s *SettingsService) Keys() []domain.SettingKey {
	keys := make([]domain.SettingKey, 0, len(envOverrides)+1)
	for k, env := range envOverrides {
		keys = append(keys, domain.SettingKey{Key: k, Env: env})
	}
	keys = append(keys, domain.SettingKey{Key: keyCaseDocuments})
	sort.Slice(keys, func(i, j int) bool { return keys[i].Key < keys[j].Key })
	return keys
}

// Helper methods for reading config with defaults. The environment wins
// over the file; empty variables are ignored.

func (s *SettingsService) env(key string) (string, bool) {
	name, ok := envOverrides[key]
	if !ok {
		return "", false
	}
	val, ok := s.lookupEnv(name)
	val = strings.TrimSpace(val)
	if !ok || val == "" {
		return "", false
	}
	return val, true
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val, ok := s.env(key); ok {
		return val
	}
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) (int, error) {
	if val, ok := s.env(key); ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q is not an integer", domain.ErrInvalidInput, envOverrides[key], val)
		}
		return n, nil
	}
	if _, exists := s.configStore.Get(key); exists {
		return s.configStore.GetInt(key), nil
	}
	return defaultVal, nil
}

func (s *SettingsService) getFloat(key string, defaultVal float64) (float64, error) {
	if val, ok := s.env(key); ok {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q is not a number", domain.ErrInvalidInput, envOverrides[key], val)
		}
		return f, nil
	}
	if _, exists := s.configStore.Get(key); exists {
		return s.configStore.GetFloat(key), nil
	}
	return defaultVal, nil
}

func (s *SettingsService) getDriver(defaultVal domain.StoreDriver) domain.StoreDriver {
	val := s.getString(keyStoreDriver, "")
	if val == "" {
		return defaultVal
	}
	return domain.StoreDriver(val)
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	val := s.getString(keyEmbedProvider, "")
	if val == "" {
		return defaultVal
	}
	return domain.AIProvider(val)
}

func (s *SettingsService) getCaseDocuments() ([]domain.CaseDocument, error) {
	raw := s.configStore.GetStringSlice(keyCaseDocuments)
	if len(raw) == 0 {
		return nil, nil
	}
	docs := make([]domain.CaseDocument, 0, len(raw))
	for _, r := range raw {
		doc, err := domain.ParseCaseDocument(r)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
