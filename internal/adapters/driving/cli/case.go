package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
)

var caseCmd = &cobra.Command{
	Use:   "case",
	Short: "Prepare case input for the review crew",
}

var casePrepareCmd = &cobra.Command{
	Use:   "prepare [case-id]",
	Short: "Load the checklist and client documents of a case",
	Long: `Loads the case checklist and every client document from the document
store and prints the orchestrator input as JSON.

The checklist is required. A client document that cannot be loaded is
replaced by a placeholder so the crew can report it as missing.

Documents default to case.documents in the config file.

Examples:
  cadastro case prepare CASO-001
  cadastro case prepare CASO-001 -d "CNPJ=1- CNPJ.pdf" -d "ContratoSocial=4- CONTRATO SOCIAL.pdf"`,
	Args: cobra.ExactArgs(1),
	RunE: runCasePrepare,
}

var (
	caseDocuments []string
	caseChecklist string
)

func init() {
	casePrepareCmd.Flags().StringArrayVarP(&caseDocuments, "doc", "d", nil, "client document as Type=Name (repeatable)")
	casePrepareCmd.Flags().StringVar(&caseChecklist, "checklist", "", "checklist document name (default from case.checklist)")
	caseCmd.AddCommand(casePrepareCmd)
	rootCmd.AddCommand(caseCmd)
}

func runCasePrepare(cmd *cobra.Command, args []string) error {
	documents, err := parseCaseDocuments(caseDocuments)
	if err != nil {
		return err
	}

	tools, settings, err := requireTools()
	if err != nil {
		return err
	}

	caseSettings := settings.Case
	if name := strings.TrimSpace(caseChecklist); name != "" {
		caseSettings.ChecklistName = name
	}

	lookup, err := tools.OpenDocuments(cmd.Context(), *settings)
	if err != nil {
		return fmt.Errorf("document store: %w", err)
	}
	defer lookup.Close()

	input, err := tools.NewCaseService(lookup, caseSettings).Prepare(cmd.Context(), args[0], documents)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(input)
}

func parseCaseDocuments(values []string) ([]domain.CaseDocument, error) {
	if len(values) == 0 {
		return nil, nil
	}
	docs := make([]domain.CaseDocument, 0, len(values))
	for _, v := range values {
		doc, err := domain.ParseCaseDocument(v)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
