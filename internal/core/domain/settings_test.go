package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStoreDriver_IsValid tests all valid and invalid store drivers
func TestStoreDriver_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		driver   StoreDriver
		expected bool
	}{
		{name: "postgres is valid", driver: StoreDriverPostgres, expected: true},
		{name: "sqlite is valid", driver: StoreDriverSQLite, expected: true},
		{name: "empty string is invalid", driver: StoreDriver(""), expected: false},
		{name: "mysql is invalid", driver: StoreDriver("mysql"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.driver.IsValid())
		})
	}
}

func TestStoreDriver_Description(t *testing.T) {
	for _, d := range AllStoreDrivers() {
		assert.NotEqual(t, unknownDescription, d.Description(), d.String())
	}
	assert.Equal(t, unknownDescription, StoreDriver("x").Description())
}

// TestAIProvider_IsValid tests all valid and invalid providers
func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{name: "tei is valid", provider: AIProviderTEI, expected: true},
		{name: "ollama is valid", provider: AIProviderOllama, expected: true},
		{name: "openai is valid", provider: AIProviderOpenAI, expected: true},
		{name: "anthropic has no embeddings", provider: AIProvider("anthropic"), expected: false},
		{name: "empty string is invalid", provider: AIProvider(""), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.False(t, AIProviderTEI.RequiresAPIKey())
	assert.True(t, AIProviderTEI.IsLocal())
	assert.False(t, AIProviderOpenAI.IsLocal())
}

func TestStoreSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings StoreSettings
		expected bool
	}{
		{
			name: "postgres with url and key",
			settings: StoreSettings{
				Driver: StoreDriverPostgres, URL: "postgres://db", ServiceKey: "key", DocumentsTable: "documents",
			},
			expected: true,
		},
		{
			name:     "postgres without key",
			settings: StoreSettings{Driver: StoreDriverPostgres, URL: "postgres://db", DocumentsTable: "documents"},
			expected: false,
		},
		{
			name:     "postgres without url",
			settings: StoreSettings{Driver: StoreDriverPostgres, ServiceKey: "key", DocumentsTable: "documents"},
			expected: false,
		},
		{
			name:     "sqlite needs no credentials",
			settings: StoreSettings{Driver: StoreDriverSQLite, DocumentsTable: "documents"},
			expected: true,
		},
		{
			name:     "missing table",
			settings: StoreSettings{Driver: StoreDriverSQLite},
			expected: false,
		},
		{
			name:     "invalid driver",
			settings: StoreSettings{Driver: "mongo", URL: "x", ServiceKey: "y", DocumentsTable: "documents"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	assert.True(t, EmbeddingSettings{Provider: AIProviderTEI, Model: "m"}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderTEI}.IsConfigured(), "model required")
	assert.False(t, EmbeddingSettings{Provider: AIProviderOpenAI, Model: "m"}.IsConfigured(), "api key required")
	assert.True(t, EmbeddingSettings{Provider: AIProviderOpenAI, Model: "m", APIKey: "sk"}.IsConfigured())
	assert.False(t, EmbeddingSettings{Model: "m"}.IsConfigured(), "provider required")
}

func TestEmbeddingSettings_ResolvedDimensions(t *testing.T) {
	assert.Equal(t, 384, EmbeddingSettings{Model: "sentence-transformers/all-MiniLM-L6-v2"}.ResolvedDimensions())
	assert.Equal(t, 512, EmbeddingSettings{Model: "text-embedding-3-small", Dimensions: 512}.ResolvedDimensions())
	assert.Equal(t, 0, EmbeddingSettings{Model: "unknown-model"}.ResolvedDimensions())
}

func TestKnowledgeSettings_IsConfigured(t *testing.T) {
	assert.True(t, KnowledgeSettings{Table: "t", MatchFunction: "f"}.IsConfigured())
	assert.False(t, KnowledgeSettings{Table: "t"}.IsConfigured())
	assert.False(t, KnowledgeSettings{MatchFunction: "f"}.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, StoreDriverPostgres, s.Store.Driver)
	assert.Equal(t, "documents", s.Store.DocumentsTable)
	assert.False(t, s.Store.IsConfigured(), "credentials are never defaulted")

	assert.Equal(t, "knowledge_base_chunks", s.Knowledge.Table)
	assert.Equal(t, "match_kb_chunks", s.Knowledge.MatchFunction)
	assert.InDelta(t, 0.5, s.Knowledge.MatchThreshold, 1e-9)
	assert.Equal(t, 3, s.Knowledge.TopK)

	require.True(t, s.Embedding.IsConfigured())
	assert.Equal(t, "sentence-transformers/all-MiniLM-L6-v2", s.Embedding.Model)
	assert.Equal(t, 384, s.Embedding.ResolvedDimensions())
}

func TestDefaultEmbeddingModels_CoverProviders(t *testing.T) {
	models := DefaultEmbeddingModels()
	for _, p := range AllEmbeddingProviders() {
		model, ok := models[p]
		require.True(t, ok, "provider %s has no default model", p)
		assert.NotZero(t, EmbeddingDimensions()[model], "model %s has no known dimensions", model)
	}
}
