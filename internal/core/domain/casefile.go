package domain

import (
	"fmt"
	"strings"
)

// Placeholders substituted for client documents that could not be loaded
// while preparing a case. The checklist never gets a placeholder.
const (
	// PlaceholderMissing replaces a document that was not found or is empty.
	PlaceholderMissing = "CONTENT NOT FOUND OR ERROR"

	// PlaceholderLoadError replaces a document whose lookup failed.
	PlaceholderLoadError = "ERROR LOADING DOCUMENT"
)

// DefaultChecklistName is the document holding a case's validation checklist.
const DefaultChecklistName = "checklist.pdf"

// CaseDocument is a client document submitted for a case.
type CaseDocument struct {
	// Type is the document category, e.g. "ContratoSocial" or "CNPJ".
	Type string `json:"type"`

	// Name is the document file name in the record store.
	Name string `json:"name"`
}

// ParseCaseDocument parses a "Type=Name" pair.
func ParseCaseDocument(s string) (CaseDocument, error) {
	typ, name, ok := strings.Cut(s, "=")
	typ = strings.TrimSpace(typ)
	name = strings.TrimSpace(name)
	if !ok || typ == "" || name == "" {
		return CaseDocument{}, fmt.Errorf("%w: case document %q, expected Type=Name", ErrInvalidInput, s)
	}
	return CaseDocument{Type: typ, Name: name}, nil
}

// String returns the "Type=Name" form.
func (d CaseDocument) String() string {
	return d.Type + "=" + d.Name
}

// CaseInput is the payload handed to the agent orchestrator for one case.
type CaseInput struct {
	CaseID      string         `json:"case_id"`
	Documents   []CaseDocument `json:"documents"`
	Checklist   string         `json:"checklist"`
	CurrentDate string         `json:"current_date"`

	// Contents maps each client document name to its loaded text or placeholder.
	Contents map[string]string `json:"contents,omitempty"`
}
