package cli

import (
	"fmt"
	"io"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
	"github.com/custodia-labs/cadastro-crew/internal/logger"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the document store, knowledge base search, embedding
provider and case defaults.

Settings are read from config.toml; environment variables override file
values. Run 'cadastro settings keys' for the full list.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single setting",
	Long: `Validate and store a single setting in the config file.

Examples:
  cadastro settings set store.driver sqlite
  cadastro settings set knowledge.top_k 5
  cadastro settings set case.documents "CNPJ=1- CNPJ.pdf,ContratoSocial=4- CONTRATO SOCIAL.pdf"`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys and their environment variables",
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Current Settings")
	fmt.Fprintln(out, "================")
	fmt.Fprintf(out, "Config file: %s\n\n", settingsService.ConfigPath())

	store := settings.Store
	fmt.Fprintln(out, "[Store]")
	fmt.Fprintf(out, "  Driver: %s\n", store.Driver.Description())
	if store.Driver.IsRemote() {
		fmt.Fprintf(out, "  URL: %s\n", orNotSet(redactURL(store.URL)))
		fmt.Fprintf(out, "  Service Key: %s\n", orNotSet(logger.Redact(store.ServiceKey)))
	} else {
		fmt.Fprintf(out, "  Data Dir: %s\n", orNotSet(store.DataDir))
	}
	fmt.Fprintf(out, "  Documents Table: %s\n", store.DocumentsTable)
	fmt.Fprintf(out, "  Status: %s\n\n", status(store.IsConfigured()))

	kb := settings.Knowledge
	fmt.Fprintln(out, "[Knowledge]")
	fmt.Fprintf(out, "  Table: %s\n", kb.Table)
	fmt.Fprintf(out, "  Match Function: %s\n", kb.MatchFunction)
	fmt.Fprintf(out, "  Match Threshold: %.2f\n", kb.MatchThreshold)
	fmt.Fprintf(out, "  Top K: %d\n", kb.TopK)
	fmt.Fprintf(out, "  Status: %s\n\n", status(kb.IsConfigured()))

	emb := settings.Embedding
	fmt.Fprintln(out, "[Embedding]")
	fmt.Fprintf(out, "  Provider: %s\n", emb.Provider.Description())
	fmt.Fprintf(out, "  Model: %s\n", emb.Model)
	if emb.Provider.IsLocal() || emb.BaseURL != "" {
		fmt.Fprintf(out, "  Base URL: %s\n", orDefault(emb.BaseURL))
	}
	if emb.Provider.RequiresAPIKey() {
		fmt.Fprintf(out, "  API Key: %s\n", orNotSet(logger.Redact(emb.APIKey)))
	}
	if dims := emb.ResolvedDimensions(); dims > 0 {
		fmt.Fprintf(out, "  Dimensions: %d\n", dims)
	} else {
		fmt.Fprintln(out, "  Dimensions: (unknown)")
	}
	if emb.RequestsPerSecond > 0 {
		fmt.Fprintf(out, "  Rate Limit: %g req/s\n", emb.RequestsPerSecond)
	}
	fmt.Fprintf(out, "  Status: %s\n\n", status(emb.IsConfigured()))

	fmt.Fprintln(out, "[Case]")
	fmt.Fprintf(out, "  Checklist: %s\n", settings.Case.ChecklistName)
	if len(settings.Case.Documents) == 0 {
		fmt.Fprintln(out, "  Documents: (none)")
	} else {
		fmt.Fprintln(out, "  Documents:")
		for _, d := range settings.Case.Documents {
			fmt.Fprintf(out, "    - %s: %s\n", d.Type, d.Name)
		}
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	printKeys(cmd.OutOrStdout(), settingsService.Keys())
	return nil
}

func printKeys(w io.Writer, keys []domain.SettingKey) {
	width := 0
	for _, k := range keys {
		width = max(width, len(k.Key))
	}
	for _, k := range keys {
		env := k.Env
		if env == "" {
			env = "-"
		}
		fmt.Fprintf(w, "%-*s  %s\n", width, k.Key, env)
	}
}

// Helper functions.

func status(configured bool) string {
	if configured {
		return "configured"
	}
	return "not configured"
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func orDefault(s string) string {
	if s == "" {
		return "(provider default)"
	}
	return s
}

// redactURL masks the password of a connection URL.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "(invalid URL)"
	}
	return u.Redacted()
}
