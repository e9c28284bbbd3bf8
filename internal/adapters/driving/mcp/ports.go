package mcp

import (
	"github.com/custodia-labs/cadastro-crew/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Documents looks up ingested document text.
	Documents driving.DocumentContentService

	// Knowledge searches the knowledge base.
	Knowledge driving.KnowledgeSearchService

	// Cases prepares case input. Optional; without it the case
	// resource is not registered.
	Cases driving.CaseService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Documents == nil {
		return ErrMissingDocumentService
	}
	if p.Knowledge == nil {
		return ErrMissingKnowledgeService
	}
	return nil
}
