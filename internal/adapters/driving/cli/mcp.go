package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cadastro-crew/internal/adapters/driving/mcp"
	"github.com/custodia-labs/cadastro-crew/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server exposing the document_content and
knowledge_base_query tools to the agent orchestrator.

By default, the server communicates over stdio using JSON-RPC. Logs go to
stderr so they never interleave with the protocol stream.

Use --port to start a streamable HTTP server instead.

Examples:
  # Stdio mode (default)
  cadastro mcp serve

  # HTTP mode
  cadastro mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) (err error) {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	tools, settings, err := requireTools()
	if err != nil {
		return err
	}

	documents, err := tools.OpenDocuments(cmd.Context(), *settings)
	if err != nil {
		return fmt.Errorf("document store: %w", err)
	}
	knowledge := tools.OpenKnowledge(cmd.Context(), *settings)
	defer func() {
		err = errors.Join(err, documents.Close(), knowledge.Close())
	}()

	if r := knowledge.Readiness(); !r.IsReady() {
		logger.Warn("Knowledge base unavailable: %v", r.Reason)
	}

	ports := &mcp.Ports{
		Documents: documents,
		Knowledge: knowledge,
		Cases:     tools.NewCaseService(documents, settings.Case),
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
