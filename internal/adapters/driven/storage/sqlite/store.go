package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/cadastro-crew/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
	"github.com/custodia-labs/cadastro-crew/internal/core/ports/driven"
	"github.com/custodia-labs/cadastro-crew/internal/logger"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// dbFileName is the database file inside the data directory.
const dbFileName = "cadastro.db"

// identPattern restricts table names interpolated into queries.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Schemas of the configurable tables. The default names are also created
// by the migrations; any other configured name is created on first use.
const (
	documentsSchema = `CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		case_id TEXT NOT NULL,
		content TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (name, case_id)
	)`

	chunksSchema = `CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		embedding BLOB NOT NULL,
		metadata TEXT
	)`
)

// Store is a SQLite database holding document records and knowledge
// chunks. Port implementations are obtained through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.cadastro/data/cadastro.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".cadastro", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RecordStore returns a DocumentRecordStore reading from table.
// Closing it does not close the Store.
func (s *Store) RecordStore(table string) (driven.DocumentRecordStore, error) {
	if err := s.ensureTable(context.Background(), documentsSchema, "documents", table); err != nil {
		return nil, err
	}
	return &recordStore{store: s, table: table}, nil
}

// ChunkMatcher returns a ChunkMatcher scanning table.
// Closing it does not close the Store.
func (s *Store) ChunkMatcher(table string) (driven.ChunkMatcher, error) {
	if err := s.ensureTable(context.Background(), chunksSchema, "knowledge", table); err != nil {
		return nil, err
	}
	return &chunkMatcher{store: s, table: table}, nil
}

// ensureTable validates table and creates it with schema if missing.
func (s *Store) ensureTable(ctx context.Context, schema, kind, table string) error {
	if !identPattern.MatchString(table) {
		return fmt.Errorf("%w: invalid %s table name %q", domain.ErrInvalidInput, kind, table)
	}
	//nolint:gosec // G201: table name is validated against identPattern.
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(schema, table)); err != nil {
		return fmt.Errorf("creating %s table %s: %w", kind, table, err)
	}
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_documents.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// PutDocument stores or replaces a document record in table, the same
// table RecordStore reads. A record without content is stored with NULL content.
func (s *Store) PutDocument(ctx context.Context, table string, record domain.DocumentRecord) error {
	if err := s.ensureTable(ctx, documentsSchema, "documents", table); err != nil {
		return err
	}

	var content sql.NullString
	if record.HasContent {
		content = sql.NullString{String: record.Content, Valid: true}
	}

	//nolint:gosec // G201: table name is validated against identPattern.
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (name, case_id, content)
		VALUES (?, ?, ?)
		ON CONFLICT(name, case_id) DO UPDATE SET
			content = excluded.content
	`, table), record.Key.Name, record.Key.CaseID, content)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// PutChunks stores or replaces knowledge chunks in table, the same
// table ChunkMatcher scans.
func (s *Store) PutChunks(ctx context.Context, table string, chunks []domain.KnowledgeChunk) error {
	if err := s.ensureTable(ctx, chunksSchema, "knowledge", table); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	//nolint:gosec // G201: table name is validated against identPattern.
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, content, embedding, metadata)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			embedding = excluded.embedding,
			metadata = excluded.metadata
	`, table))
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, chunk.ID)
		}

		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.Content,
			float32SliceToBytes(chunk.Embedding), string(metadataJSON)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ==================== Record Store ====================

// recordStore implements driven.DocumentRecordStore.
type recordStore struct {
	store *Store
	table string
}

var _ driven.DocumentRecordStore = (*recordStore)(nil)

// GetRecord retrieves the record for key.
func (r *recordStore) GetRecord(ctx context.Context, key domain.DocumentKey) (*domain.DocumentRecord, error) {
	//nolint:gosec // G201: table name is validated against identPattern.
	query := fmt.Sprintf(`SELECT content FROM %s WHERE name = ? AND case_id = ? LIMIT 1`, r.table)

	var content sql.NullString
	if err := r.store.db.QueryRowContext(ctx, query, key.Name, key.CaseID).Scan(&content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("querying document: %w", err)
	}

	return &domain.DocumentRecord{
		Key:        key,
		Content:    content.String,
		HasContent: content.Valid,
	}, nil
}

// Close is a no-op; the owning Store holds the connection.
func (r *recordStore) Close() error {
	return nil
}

// ==================== Chunk Matcher ====================

// chunkMatcher implements driven.ChunkMatcher with an in-process scan.
type chunkMatcher struct {
	store *Store
	table string
}

var _ driven.ChunkMatcher = (*chunkMatcher)(nil)

// Match mirrors the Postgres match function: it returns at most count
// chunks with cosine similarity above threshold, most similar first.
func (m *chunkMatcher) Match(
	ctx context.Context, query []float32, threshold float64, count int,
) ([]domain.ChunkMatch, error) {
	if count <= 0 {
		return nil, nil
	}

	//nolint:gosec // G201: table name is validated against identPattern.
	rows, err := m.store.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, content, embedding, metadata FROM %s`, m.table))
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var matches []domain.ChunkMatch //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			match        domain.ChunkMatch
			embedding    []byte
			metadataJSON sql.NullString
		)
		if err := rows.Scan(&match.ID, &match.Content, &embedding, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		vec := bytesToFloat32Slice(embedding)
		if len(vec) != len(query) {
			return nil, fmt.Errorf("%w: chunk %s has %d dimensions, query has %d",
				domain.ErrDimensionMismatch, match.ID, len(vec), len(query))
		}

		match.Similarity = cosine(query, vec)
		if match.Similarity <= threshold {
			continue
		}

		if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != jsonNull {
			if err := json.Unmarshal([]byte(metadataJSON.String), &match.Metadata); err != nil {
				logger.Warn("Ignoring metadata of chunk %s: %v", match.ID, err)
				match.Metadata = nil
			}
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > count {
		matches = matches[:count]
	}
	return matches, nil
}

// Close is a no-op; the owning Store holds the connection.
func (m *chunkMatcher) Close() error {
	return nil
}

// ==================== Helper Functions ====================

// cosine returns the cosine similarity of a and b, 0 for a zero vector.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
