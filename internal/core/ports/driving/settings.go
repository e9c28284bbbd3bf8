package driving

import "github.com/custodia-labs/cadastro-crew/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with environment
	// overrides applied on top of the config file.
	Get() (*domain.AppSettings, error)

	// Save persists application settings to the config file.
	// Secrets are only written when non-empty.
	Save(settings *domain.AppSettings) error

	// Set updates a single dot-notation key (e.g. "knowledge.top_k").
	Set(key, value string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ConfigPath returns the config file location.
	ConfigPath() string

	// Keys lists every recognised key with its environment override.
	Keys() []domain.SettingKey
}
