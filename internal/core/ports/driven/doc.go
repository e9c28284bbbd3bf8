// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - DocumentRecordStore: Point lookup of ingested document text
//   - ChunkMatcher: Server-side similarity search over knowledge chunks
//   - EmbeddingService: Encodes a query into a vector
//   - BackendFactory: Opens the above from settings, once per tool
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
