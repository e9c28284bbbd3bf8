package domain

const unknownDescription = "Unknown"

// StoreDriver identifies the backend holding document records and
// knowledge chunks.
type StoreDriver string

// Available store drivers.
const (
	// StoreDriverPostgres is a Supabase (or plain Postgres + pgvector) database.
	StoreDriverPostgres StoreDriver = "postgres"

	// StoreDriverSQLite is a local SQLite file used for development.
	StoreDriverSQLite StoreDriver = "sqlite"
)

// IsValid returns true if the driver is recognised.
func (d StoreDriver) IsValid() bool {
	switch d {
	case StoreDriverPostgres, StoreDriverSQLite:
		return true
	default:
		return false
	}
}

// IsRemote returns true if this driver needs a URL and credential.
func (d StoreDriver) IsRemote() bool {
	return d == StoreDriverPostgres
}

// String returns the string representation.
func (d StoreDriver) String() string {
	return string(d)
}

// Description returns a human-readable description of the driver.
func (d StoreDriver) Description() string {
	switch d {
	case StoreDriverPostgres:
		return "Postgres / Supabase (remote)"
	case StoreDriverSQLite:
		return "SQLite (local development)"
	default:
		return unknownDescription
	}
}

// AIProvider identifies an embedding model provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderTEI is a Hugging Face text-embeddings-inference server
	// serving a sentence-transformers model.
	AIProviderTEI AIProvider = "tei"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderTEI, AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderTEI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderTEI:
		return "Text Embeddings Inference (local)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// StoreSettings holds the record store / vector index connection.
type StoreSettings struct {
	// Driver selects the backend.
	Driver StoreDriver

	// URL is the database connection URL (postgres).
	URL string

	// ServiceKey is the service-role credential (postgres).
	ServiceKey string

	// DocumentsTable holds the ingested document records.
	DocumentsTable string

	// DataDir is the directory of the local database (sqlite).
	DataDir string
}

// IsConfigured returns true if the store can be opened.
func (s StoreSettings) IsConfigured() bool {
	if !s.Driver.IsValid() {
		return false
	}
	if s.Driver.IsRemote() && (s.URL == "" || s.ServiceKey == "") {
		return false
	}
	return s.DocumentsTable != ""
}

// KnowledgeSettings holds knowledge base search configuration.
type KnowledgeSettings struct {
	// Table is the chunk table name.
	Table string

	// MatchFunction is the server-side similarity search function.
	MatchFunction string

	// MatchThreshold is the minimum similarity for a match.
	MatchThreshold float64

	// TopK is the default number of matches.
	TopK int
}

// IsConfigured returns true if a search can be issued.
func (k KnowledgeSettings) IsConfigured() bool {
	return k.Table != "" && k.MatchFunction != ""
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint. Empty selects the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's vector size. Zero uses the
	// known-model table.
	Dimensions int

	// RequestsPerSecond throttles embedding calls. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Model == "" {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// ResolvedDimensions returns the configured or known vector size,
// or 0 when unknown.
func (e EmbeddingSettings) ResolvedDimensions() int {
	if e.Dimensions > 0 {
		return e.Dimensions
	}
	return EmbeddingDimensions()[e.Model]
}

// CaseSettings holds defaults used when preparing a case.
type CaseSettings struct {
	// ChecklistName is the document holding the validation checklist.
	ChecklistName string

	// Documents are the client documents loaded when none are given.
	Documents []CaseDocument
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Store holds the record store / vector index connection.
	Store StoreSettings

	// Knowledge holds knowledge base search settings.
	Knowledge KnowledgeSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Case holds case preparation defaults.
	Case CaseSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Store credentials are left empty: they must come from the environment
// or the config file.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Store: StoreSettings{
			Driver:         StoreDriverPostgres,
			DocumentsTable: "documents",
		},
		Knowledge: KnowledgeSettings{
			Table:          "knowledge_base_chunks",
			MatchFunction:  "match_kb_chunks",
			MatchThreshold: DefaultMatchThreshold,
			TopK:           DefaultTopK,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderTEI,
			Model:    DefaultEmbeddingModels()[AIProviderTEI],
		},
		Case: CaseSettings{
			ChecklistName: DefaultChecklistName,
		},
	}
}

// AllStoreDrivers returns all available store drivers.
func AllStoreDrivers() []StoreDriver {
	return []StoreDriver{
		StoreDriverPostgres,
		StoreDriverSQLite,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderTEI,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderTEI:    "sentence-transformers/all-MiniLM-L6-v2",
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// sentence-transformers models
		"sentence-transformers/all-MiniLM-L6-v2":                      384,
		"sentence-transformers/paraphrase-multilingual-MiniLM-L12-v2": 384,
		"sentence-transformers/paraphrase-multilingual-mpnet-base-v2": 768,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// SettingKey pairs a dot-notation config key with the environment
// variable that overrides it. Env is empty for file-only keys.
type SettingKey struct {
	Key string
	Env string
}
