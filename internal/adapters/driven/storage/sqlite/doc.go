// Package sqlite provides a local development backend for the retrieval tools.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. One database file serves both driven ports:
//
//   - DocumentRecordStore: point lookup of document text by (name, case_id)
//   - ChunkMatcher: cosine similarity over knowledge base chunks, computed
//     in process since SQLite has no vector type
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory, applied once each and recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.cadastro/data/cadastro.db
package sqlite
