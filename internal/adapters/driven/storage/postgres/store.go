package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
	"github.com/custodia-labs/cadastro-crew/internal/core/ports/driven"
	"github.com/custodia-labs/cadastro-crew/internal/logger"
)

// Store is a pooled connection to the Postgres database.
type Store struct {
	db *sql.DB
}

// Open parses the connection URL and opens a connection pool. It does not
// contact the server; call Ping to verify the connection.
func Open(settings domain.StoreSettings) (*Store, error) {
	cfg, err := connConfig(settings.URL, settings.ServiceKey)
	if err != nil {
		return nil, err
	}
	return newStoreWithDB(stdlib.OpenDB(*cfg)), nil
}

// newStoreWithDB wraps an existing database handle.
func newStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// connConfig parses url, filling in the service key as the password
// when the URL has none.
func connConfig(url, serviceKey string) (*pgx.ConnConfig, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: postgres connection url is empty", domain.ErrNotConfigured)
	}
	cfg, err := pgx.ParseConfig(url)
	if err != nil {
		// The parse error echoes the URL, which may contain a password.
		return nil, fmt.Errorf("%w: postgres connection url could not be parsed", domain.ErrNotConfigured)
	}
	if cfg.Password == "" {
		cfg.Password = serviceKey
	}
	return cfg, nil
}

// Ping verifies the database is reachable with the configured credentials.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return wrapError("connect", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordStore returns a DocumentRecordStore reading from table, which may
// be schema qualified ("public.documents"). Closing it does not close the Store.
func (s *Store) RecordStore(table string) (driven.DocumentRecordStore, error) {
	ident, err := sanitizeIdent(table)
	if err != nil {
		return nil, err
	}
	return &recordStore{
		db:    s.db,
		query: fmt.Sprintf(`SELECT content FROM %s WHERE name = $1 AND case_id = $2 LIMIT 1`, ident),
	}, nil
}

// ChunkMatcher returns a ChunkMatcher calling the SQL function fn.
// Closing it does not close the Store.
func (s *Store) ChunkMatcher(fn string) (driven.ChunkMatcher, error) {
	ident, err := sanitizeIdent(fn)
	if err != nil {
		return nil, err
	}
	return &chunkMatcher{
		db:    s.db,
		query: fmt.Sprintf(`SELECT id::text, content, similarity, metadata FROM %s($1, $2, $3)`, ident),
	}, nil
}

// sanitizeIdent quotes a possibly schema-qualified identifier.
func sanitizeIdent(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty identifier", domain.ErrInvalidInput)
	}
	parts := strings.Split(name, ".")
	for _, p := range parts {
		if p == "" {
			return "", fmt.Errorf("%w: invalid identifier %q", domain.ErrInvalidInput, name)
		}
	}
	return pgx.Identifier(parts).Sanitize(), nil
}

// ==================== Record Store ====================

// recordStore implements driven.DocumentRecordStore.
type recordStore struct {
	db    *sql.DB
	query string
}

var _ driven.DocumentRecordStore = (*recordStore)(nil)

// GetRecord retrieves the record for key.
func (r *recordStore) GetRecord(ctx context.Context, key domain.DocumentKey) (*domain.DocumentRecord, error) {
	var content sql.NullString
	if err := r.db.QueryRowContext(ctx, r.query, key.Name, key.CaseID).Scan(&content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, wrapError("query document", err)
	}

	return &domain.DocumentRecord{
		Key:        key,
		Content:    content.String,
		HasContent: content.Valid,
	}, nil
}

// Close is a no-op; the owning Store holds the pool.
func (r *recordStore) Close() error {
	return nil
}

// ==================== Chunk Matcher ====================

// chunkMatcher implements driven.ChunkMatcher.
type chunkMatcher struct {
	db    *sql.DB
	query string
}

var _ driven.ChunkMatcher = (*chunkMatcher)(nil)

// Match calls the match function with the query vector. Rows are returned
// in the order the function produces them.
func (m *chunkMatcher) Match(
	ctx context.Context, query []float32, threshold float64, count int,
) ([]domain.ChunkMatch, error) {
	rows, err := m.db.QueryContext(ctx, m.query, pgvector.NewVector(query), threshold, count)
	if err != nil {
		return nil, wrapError("match chunks", err)
	}
	defer rows.Close()

	var matches []domain.ChunkMatch //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			match    domain.ChunkMatch
			id       sql.NullString
			content  sql.NullString
			metadata []byte
		)
		if err := rows.Scan(&id, &content, &match.Similarity, &metadata); err != nil {
			return nil, wrapError("scan chunk", err)
		}
		match.ID = id.String
		match.Content = content.String

		match.Metadata = decodeMetadata(match.ID, metadata)
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("iterate chunks", err)
	}

	return matches, nil
}

// decodeMetadata decodes a jsonb metadata object. Metadata is optional, so
// a value that is not an object is dropped with a warning.
func decodeMetadata(id string, raw []byte) map[string]any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var metadata map[string]any
	if err := json.Unmarshal(raw, &metadata); err != nil {
		logger.Warn("Ignoring metadata of chunk %s: %v", id, err)
		return nil
	}
	return metadata
}

// Close is a no-op; the owning Store holds the pool.
func (m *chunkMatcher) Close() error {
	return nil
}

// ==================== Errors ====================

// serverError exposes a Postgres error payload as the backend message.
type serverError struct {
	pg *pgconn.PgError
}

func (e *serverError) Error() string { return e.pg.Error() }
func (e *serverError) Unwrap() error { return e.pg }

// BackendMessage returns the server message, with the hint when present.
func (e *serverError) BackendMessage() string {
	if e.pg.Hint != "" {
		return e.pg.Message + " (" + e.pg.Hint + ")"
	}
	return e.pg.Message
}

// wrapError annotates err with op, marking server-reported errors so the
// core can surface their message.
func wrapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, &serverError{pg: pgErr})
	}
	return fmt.Errorf("%s: %w", op, err)
}
