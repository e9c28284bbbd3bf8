package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cadastro-crew/internal/adapters/driving/render"
	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Look up ingested case documents",
	Long:  `Read the pre-parsed text of documents ingested for a case.`,
}

var docGetCmd = &cobra.Command{
	Use:   "get [document-name]",
	Short: "Print the stored content of a document",
	Long: `Print the stored text of a document, looked up by its exact name and
case id. The content is printed unmodified.

Examples:
  cadastro doc get checklist.pdf --case CASO-001
  cadastro doc get "1- CNPJ.pdf" -c CASO-001`,
	Args: cobra.ExactArgs(1),
	RunE: runDocGet,
}

// docCaseID is the --case flag of doc get.
var docCaseID string

func init() {
	docGetCmd.Flags().StringVarP(&docCaseID, "case", "c", "", "case id the document belongs to")
	docCmd.AddCommand(docGetCmd)
	rootCmd.AddCommand(docCmd)
}

func runDocGet(cmd *cobra.Command, args []string) error {
	tools, settings, err := requireTools()
	if err != nil {
		return err
	}

	documents, err := tools.OpenDocuments(cmd.Context(), *settings)
	if err != nil {
		return fmt.Errorf("document store: %w", err)
	}
	defer documents.Close()

	key := domain.DocumentKey{Name: args[0], CaseID: docCaseID}
	content, err := documents.Lookup(cmd.Context(), key)
	if err != nil {
		printText(cmd.OutOrStdout(), render.DocumentError(key.Normalise(), err))
		return errToolFailed
	}

	fmt.Fprint(cmd.OutOrStdout(), content)
	return nil
}
