package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/cadastro-crew/internal/adapters/driving/render"
	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for cadastro resources.
	uriScheme = "cadastro://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Template for document content.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "cases/{caseId}/documents/{name}",
		Name:        "case-document",
		Description: "Text content of a document of a case",
		MIMEType:    "text/plain",
	}, s.handleDocumentResource)

	if s.ports.Cases == nil {
		return
	}

	// Template for the prepared case input.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "cases/{caseId}/input",
		Name:        "case-input",
		Description: "Checklist, configured documents and their contents for a case",
		MIMEType:    "application/json",
	}, s.handleCaseInputResource)
}

// handleDocumentResource returns the content of a case document.
func (s *Server) handleDocumentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	key, ok := extractDocumentKey(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	content, err := s.ports.Documents.Lookup(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, errors.New(render.DocumentError(key, err))
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     content,
		}},
	}, nil
}

// handleCaseInputResource prepares the case with the configured documents.
func (s *Server) handleCaseInputResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	caseID := extractCaseID(req.Params.URI)
	if caseID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	input, err := s.ports.Cases.Prepare(ctx, caseID, nil)
	if err != nil {
		return nil, fmt.Errorf("preparing case %s: %w", caseID, err)
	}

	data, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling case input: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDocumentKey extracts the key from a URI like
// cadastro://cases/{caseId}/documents/{name}. Segments may be percent-encoded.
func extractDocumentKey(uri string) (domain.DocumentKey, bool) {
	const prefix = uriScheme + "cases/"
	const sep = "/documents/"

	if !strings.HasPrefix(uri, prefix) {
		return domain.DocumentKey{}, false
	}

	caseID, name, ok := strings.Cut(strings.TrimPrefix(uri, prefix), sep)
	if !ok {
		return domain.DocumentKey{}, false
	}

	caseID, err := url.PathUnescape(caseID)
	if err != nil || caseID == "" || strings.Contains(caseID, "/") {
		return domain.DocumentKey{}, false
	}
	name, err = url.PathUnescape(name)
	if err != nil || name == "" {
		return domain.DocumentKey{}, false
	}

	return domain.DocumentKey{Name: name, CaseID: caseID}, true
}

// extractCaseID extracts the case ID from a URI like cadastro://cases/{caseId}/input.
func extractCaseID(uri string) string {
	const prefix = uriScheme + "cases/"
	const suffix = "/input"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	caseID, err := url.PathUnescape(strings.TrimSuffix(uri, suffix))
	if err != nil || strings.Contains(caseID, "/") {
		return ""
	}
	return caseID
}
