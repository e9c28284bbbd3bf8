package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/cadastro-crew/internal/adapters/driving/render"
	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
	"github.com/custodia-labs/cadastro-crew/internal/logger"
)

// Tool names as seen by the orchestrator.
const (
	ToolDocumentContent = "document_content"
	ToolKnowledgeQuery  = "knowledge_base_query"
)

// DocumentContentInput is the input schema for the document_content tool.
type DocumentContentInput struct {
	DocumentName string `json:"document_name" jsonschema:"the exact name of the document, e.g. checklist.pdf or 1- CNPJ.pdf"`
	CaseID       string `json:"case_id" jsonschema:"the case identifier the document belongs to"`
}

// KnowledgeQueryInput is the input schema for the knowledge_base_query tool.
type KnowledgeQueryInput struct {
	Query string `json:"query" jsonschema:"the natural-language question or search term"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of most relevant results to return (default 3)"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: ToolDocumentContent,
		Description: "Retrieves the pre-parsed text content of a specific document of a case, " +
			"stored in the documents table, by its exact name and case id.",
	}, s.handleDocumentContent)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: ToolKnowledgeQuery,
		Description: "Queries the internal knowledge base for relevant information, past cases, " +
			"policies or specific rules. Use it for additional context or answers that require " +
			"stored specialist knowledge.",
	}, s.handleKnowledgeQuery)
}

// handleDocumentContent handles the document_content tool invocation.
// Failures are returned as tool output, never as protocol errors.
func (s *Server) handleDocumentContent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentContentInput,
) (*mcp.CallToolResult, any, error) {
	callID := uuid.NewString()
	key := domain.DocumentKey{Name: input.DocumentName, CaseID: input.CaseID}
	logger.Debug("[%s] %s name=%q case=%q", callID, ToolDocumentContent, key.Name, key.CaseID)

	content, err := s.ports.Documents.Lookup(ctx, key)
	if err != nil {
		logger.Debug("[%s] %s failed: %v", callID, ToolDocumentContent, err)
		return textResult(render.DocumentError(key.Normalise(), err), true), nil, nil
	}

	logger.Debug("[%s] %s returned %d bytes", callID, ToolDocumentContent, len(content))
	return textResult(content, false), nil, nil
}

// handleKnowledgeQuery handles the knowledge_base_query tool invocation.
func (s *Server) handleKnowledgeQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input KnowledgeQueryInput,
) (*mcp.CallToolResult, any, error) {
	callID := uuid.NewString()
	logger.Debug("[%s] %s query=%q top_k=%d", callID, ToolKnowledgeQuery, input.Query, input.TopK)

	matches, err := s.ports.Knowledge.Search(ctx, domain.KnowledgeQuery{Query: input.Query, TopK: input.TopK})
	if err != nil {
		logger.Debug("[%s] %s failed: %v", callID, ToolKnowledgeQuery, err)
		return textResult(render.KnowledgeError(err), true), nil, nil
	}

	logger.Debug("[%s] %s returned %d results", callID, ToolKnowledgeQuery, len(matches))
	return textResult(render.KnowledgeResults(matches), false), nil, nil
}

func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}
