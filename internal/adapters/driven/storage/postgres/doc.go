// Package postgres connects the retrieval tools to a Supabase (or any
// Postgres + pgvector) database.
//
// Document records are read with a parameterised point query on the
// documents table. Knowledge base search calls a server-side SQL function
// (match_kb_chunks by default) that ranks chunks by cosine similarity:
//
//	CREATE FUNCTION match_kb_chunks(
//	    query_embedding vector(384), match_threshold float, match_count int)
//	RETURNS TABLE (id uuid, content text, similarity float, metadata jsonb)
//
// Connections use the pgx driver through database/sql. When the connection
// URL carries no password, the Supabase service role key is used.
package postgres
