package domain

import "strings"

// DocumentKey addresses one ingested document. A record is unique by the
// pair (Name, CaseID); the same file name may exist under several cases.
type DocumentKey struct {
	// Name is the exact document file name, e.g. "checklist.pdf".
	Name string

	// CaseID identifies the compliance case the document belongs to.
	CaseID string
}

// Normalise returns a copy with surrounding whitespace removed.
func (k DocumentKey) Normalise() DocumentKey {
	return DocumentKey{
		Name:   strings.TrimSpace(k.Name),
		CaseID: strings.TrimSpace(k.CaseID),
	}
}

// MissingField returns the name of the first empty required field,
// or "" when the key is complete.
func (k DocumentKey) MissingField() string {
	switch {
	case strings.TrimSpace(k.Name) == "":
		return "document_name"
	case strings.TrimSpace(k.CaseID) == "":
		return "case_id"
	default:
		return ""
	}
}

// DocumentRecord is the extracted text of one ingested document.
// Records are written by the upstream ingestion process and are
// read-only here.
type DocumentRecord struct {
	// Key identifies the record.
	Key DocumentKey

	// Content is the raw extracted text, exactly as stored.
	Content string

	// HasContent is false when the stored content column is NULL.
	HasContent bool
}

// IsEmpty returns true if the record carries no usable content.
func (r DocumentRecord) IsEmpty() bool {
	return !r.HasContent || r.Content == ""
}
