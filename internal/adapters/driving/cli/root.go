// Package cli provides the cobra command tree for the cadastro binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
	"github.com/custodia-labs/cadastro-crew/internal/core/ports/driving"
	"github.com/custodia-labs/cadastro-crew/internal/logger"
)

// errToolFailed signals that a tool returned an error result. The
// rendered message has already been printed, so Execute stays quiet.
var errToolFailed = errors.New("tool returned an error")

var errNoSettings = errors.New("settings service not configured")

var (
	version = "dev"
	verbose bool

	settingsService driving.SettingsService
	toolOpener      ToolOpener
)

// ToolOpener constructs the retrieval tools from settings. Each command
// opens the tools it needs and closes them before returning.
type ToolOpener interface {
	// OpenDocuments constructs the document lookup. It fails when the
	// store is not configured.
	OpenDocuments(ctx context.Context, settings domain.AppSettings) (driving.DocumentContentService, error)

	// OpenKnowledge constructs the knowledge search. It never fails; an
	// unusable search reports the reason on every call.
	OpenKnowledge(ctx context.Context, settings domain.AppSettings) driving.KnowledgeSearchService

	// NewCaseService builds case preparation over a document lookup.
	NewCaseService(documents driving.DocumentContentService, settings domain.CaseSettings) driving.CaseService
}

var rootCmd = &cobra.Command{
	Use:   "cadastro",
	Short: "Retrieval tools for the cadastro compliance crew",
	Long: `cadastro exposes the document lookup and knowledge base search used by
the corporate-registration review crew.

Documents are read from the case documents table; the knowledge base is
searched by embedding the query and ranking chunks by cosine similarity.
Run 'cadastro mcp serve' to expose both tools to the agent orchestrator.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetServices injects the services the commands run against.
func SetServices(settings driving.SettingsService, tools ToolOpener) {
	settingsService = settings
	toolOpener = tools
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command with ctx. Errors other than tool failures
// are printed to stderr; every error is returned so the caller can exit non-zero.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errToolFailed) {
		rootCmd.PrintErrln("Error:", err)
	}
	return err
}

// loadSettings returns the effective settings.
func loadSettings() (*domain.AppSettings, error) {
	if settingsService == nil {
		return nil, errNoSettings
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// requireTools returns the tool opener and the effective settings.
func requireTools() (ToolOpener, *domain.AppSettings, error) {
	if toolOpener == nil {
		return nil, nil, errors.New("retrieval tools not configured")
	}
	settings, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}
	return toolOpener, settings, nil
}

// printText writes a tool result to w, ending it with exactly one newline.
func printText(w io.Writer, text string) {
	fmt.Fprintln(w, strings.TrimRight(text, "\n"))
}
