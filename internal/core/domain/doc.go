// Package domain defines the core business entities for the cadastro tools.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentRecord: Extracted text of one ingested case document
//   - KnowledgeChunk: One indexed unit of the compliance knowledge base
//   - ChunkMatch: A knowledge chunk returned by a similarity search
//   - ToolError: The tagged failure returned by both retrieval tools
//   - CaseInput: The per-case payload prepared for the orchestrator
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
