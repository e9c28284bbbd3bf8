// Package mcp exposes the retrieval tools over the Model Context Protocol,
// the boundary where the agent orchestrator calls them.
package mcp

import "errors"

// ErrMissingDocumentService is returned when the document lookup is not provided.
var ErrMissingDocumentService = errors.New("mcp: document content service is required")

// ErrMissingKnowledgeService is returned when the knowledge search is not provided.
var ErrMissingKnowledgeService = errors.New("mcp: knowledge search service is required")
