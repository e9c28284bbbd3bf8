package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cadastro-crew/internal/adapters/driving/render"
	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Query the knowledge base",
}

var kbQueryCmd = &cobra.Command{
	Use:   "query [query...]",
	Short: "Search the knowledge base",
	Long: `Embeds each query and returns the most similar knowledge base chunks,
ranked by similarity. Chunks below the configured threshold are dropped.

Examples:
  cadastro kb query "política de contrato social"
  cadastro kb query --top-k 5 "alvará de funcionamento" "procuração"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runKBQuery,
}

// kbTopK is the --top-k flag; zero uses the configured default.
var kbTopK int

func init() {
	kbQueryCmd.Flags().IntVarP(&kbTopK, "top-k", "k", 0, "number of results (default from knowledge.top_k)")
	kbCmd.AddCommand(kbQueryCmd)
	rootCmd.AddCommand(kbCmd)
}

func runKBQuery(cmd *cobra.Command, args []string) error {
	tools, settings, err := requireTools()
	if err != nil {
		return err
	}

	search := tools.OpenKnowledge(cmd.Context(), *settings)
	defer search.Close()

	out := cmd.OutOrStdout()
	failed := false
	for i, query := range args {
		if len(args) > 1 {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "Query: %s\n", query)
		}

		matches, err := search.Search(cmd.Context(), domain.KnowledgeQuery{Query: query, TopK: kbTopK})
		if err != nil {
			printText(out, render.KnowledgeError(err))
			failed = true
			continue
		}
		printText(out, render.KnowledgeResults(matches))
	}

	if failed {
		return errToolFailed
	}
	return nil
}
