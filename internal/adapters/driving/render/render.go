// Package render turns tool results and tool errors into the plain text
// the agent orchestrator consumes. The orchestrator has no structured
// error channel, so every outcome becomes a string here and nowhere else.
package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
)

// NoKnowledgeResults is returned when a search matches nothing above the threshold.
const NoKnowledgeResults = "INFO: No relevant results found in the Knowledge Base for this query."

// DocumentError renders a document lookup failure for key.
func DocumentError(key domain.DocumentKey, err error) string {
	var te *domain.ToolError
	if !errors.As(err, &te) {
		return fmt.Sprintf("Error querying document store for document '%s' (case '%s'): %T: %s",
			key.Name, key.CaseID, err, err.Error())
	}

	switch te.Kind {
	case domain.KindNotFound:
		return fmt.Sprintf("Error: No document found with name '%s' for case '%s'.", key.Name, key.CaseID)
	case domain.KindEmptyContent:
		return fmt.Sprintf("Error: Document '%s' for case '%s' found but has no content.", key.Name, key.CaseID)
	case domain.KindNotInitialized:
		return fmt.Sprintf("Error: Document store client not initialized (%s).", reason(te))
	case domain.KindConfiguration:
		return fmt.Sprintf("Error: Document store not configured (%s).", reason(te))
	case domain.KindValidation:
		return fmt.Sprintf("Error: %s must not be empty.", te.Field)
	default:
		return fmt.Sprintf("Error querying document store for document '%s' (case '%s'): %s",
			key.Name, key.CaseID, te.Cause())
	}
}

// KnowledgeResults renders ranked matches as numbered result blocks.
func KnowledgeResults(matches []domain.ChunkMatch) string {
	if len(matches) == 0 {
		return NoKnowledgeResults
	}

	blocks := make([]string, len(matches))
	for i, m := range matches {
		var b strings.Builder
		fmt.Fprintf(&b, "Result %d (Similarity: %.4f):\n", i+1, m.Similarity)
		fmt.Fprintf(&b, "Content: %s\n", m.Content)
		if len(m.Metadata) > 0 {
			fmt.Fprintf(&b, "Metadata: %s\n", Metadata(m.Metadata))
		}
		b.WriteString("---\n")
		blocks[i] = b.String()
	}
	return strings.Join(blocks, "\n")
}

// KnowledgeError renders a knowledge search failure.
func KnowledgeError(err error) string {
	var te *domain.ToolError
	if !errors.As(err, &te) {
		return fmt.Sprintf("ERROR querying Knowledge Base: %T: %s", err, err.Error())
	}

	switch te.Kind {
	case domain.KindNotInitialized, domain.KindConfiguration:
		return fmt.Sprintf("ERROR: Knowledge Base tool not initialized correctly (%s).", reason(te))
	case domain.KindValidation:
		if te.Field == "query" {
			return "ERROR: The Knowledge Base query must not be empty."
		}
		return fmt.Sprintf("ERROR: Invalid Knowledge Base %s.", te.Field)
	default:
		return "ERROR querying Knowledge Base: " + te.Cause()
	}
}

// Metadata renders metadata as compact JSON with sorted keys.
// HTML characters are left unescaped.
func Metadata(metadata map[string]any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(metadata); err != nil {
		return fmt.Sprintf("%v", metadata)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// reason describes why a tool never became ready.
func reason(te *domain.ToolError) string {
	if te.Err == nil {
		return "unknown reason"
	}
	if msg, ok := domain.BackendMessage(te.Err); ok {
		return msg
	}
	return te.Err.Error()
}
