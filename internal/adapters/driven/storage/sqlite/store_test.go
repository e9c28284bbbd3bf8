package sqlite

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
	"github.com/custodia-labs/cadastro-crew/internal/logger"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func putDoc(t *testing.T, store *Store, name, caseID, content string) {
	t.Helper()
	err := store.PutDocument(context.Background(), "documents", domain.DocumentRecord{
		Key:        domain.DocumentKey{Name: name, CaseID: caseID},
		Content:    content,
		HasContent: true,
	})
	require.NoError(t, err)
}

// ==================== Store Creation ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "cadastro.db"), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestNewStore_MigrationsRecorded(t *testing.T) {
	store := setupTestStore(t)

	var count int
	err := store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNewStore_ReopenIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.PutDocument(context.Background(), "documents", domain.DocumentRecord{
		Key: domain.DocumentKey{Name: "checklist.pdf", CaseID: "CASO-001"}, Content: "x", HasContent: true,
	}))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	records, err := second.RecordStore("documents")
	require.NoError(t, err)
	rec, err := records.GetRecord(context.Background(), domain.DocumentKey{Name: "checklist.pdf", CaseID: "CASO-001"})
	require.NoError(t, err)
	assert.Equal(t, "x", rec.Content)
}

func TestNewStore_MkdirError(t *testing.T) {
	store, err := NewStore("/dev/null/cannot/create")

	assert.Error(t, err)
	assert.Nil(t, store)
}

// ==================== Record Store ====================

func TestRecordStore_GetRecord(t *testing.T) {
	store := setupTestStore(t)
	content := "CLÁUSULA PRIMEIRA\r\n  Capital: R$ 10.000,00\n\tfim  "
	putDoc(t, store, "4- CONTRATO SOCIAL.pdf", "CASO-001", content)

	records, err := store.RecordStore("documents")
	require.NoError(t, err)

	rec, err := records.GetRecord(context.Background(), domain.DocumentKey{Name: "4- CONTRATO SOCIAL.pdf", CaseID: "CASO-001"})

	require.NoError(t, err)
	assert.Equal(t, content, rec.Content, "content must round trip byte for byte")
	assert.True(t, rec.HasContent)
	assert.False(t, rec.IsEmpty())
}

func TestRecordStore_GetRecord_ScopedByCase(t *testing.T) {
	store := setupTestStore(t)
	putDoc(t, store, "1- CNPJ.pdf", "CASO-001", "first")
	putDoc(t, store, "1- CNPJ.pdf", "CASO-002", "second")

	records, err := store.RecordStore("documents")
	require.NoError(t, err)

	rec, err := records.GetRecord(context.Background(), domain.DocumentKey{Name: "1- CNPJ.pdf", CaseID: "CASO-002"})
	require.NoError(t, err)
	assert.Equal(t, "second", rec.Content)

	_, err = records.GetRecord(context.Background(), domain.DocumentKey{Name: "1- CNPJ.pdf", CaseID: "CASO-003"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordStore_GetRecord_NotFound(t *testing.T) {
	store := setupTestStore(t)
	records, err := store.RecordStore("documents")
	require.NoError(t, err)

	rec, err := records.GetRecord(context.Background(), domain.DocumentKey{Name: "checklist.pdf", CaseID: "CASO-001"})

	assert.Nil(t, rec)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordStore_GetRecord_NullAndEmptyContent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.PutDocument(ctx, "documents", domain.DocumentRecord{
		Key: domain.DocumentKey{Name: "null.pdf", CaseID: "CASO-001"},
	}))
	putDoc(t, store, "empty.pdf", "CASO-001", "")

	records, err := store.RecordStore("documents")
	require.NoError(t, err)

	nullRec, err := records.GetRecord(ctx, domain.DocumentKey{Name: "null.pdf", CaseID: "CASO-001"})
	require.NoError(t, err)
	assert.False(t, nullRec.HasContent)
	assert.True(t, nullRec.IsEmpty())

	emptyRec, err := records.GetRecord(ctx, domain.DocumentKey{Name: "empty.pdf", CaseID: "CASO-001"})
	require.NoError(t, err)
	assert.True(t, emptyRec.HasContent)
	assert.True(t, emptyRec.IsEmpty())
}

func TestRecordStore_PutDocumentReplaces(t *testing.T) {
	store := setupTestStore(t)
	putDoc(t, store, "checklist.pdf", "CASO-001", "v1")
	putDoc(t, store, "checklist.pdf", "CASO-001", "v2")

	records, err := store.RecordStore("documents")
	require.NoError(t, err)
	rec, err := records.GetRecord(context.Background(), domain.DocumentKey{Name: "checklist.pdf", CaseID: "CASO-001"})
	require.NoError(t, err)
	assert.Equal(t, "v2", rec.Content)
}

func TestRecordStore_InvalidTable(t *testing.T) {
	store := setupTestStore(t)

	for _, table := range []string{"", "documents; DROP TABLE documents", "1docs", "public.documents"} {
		_, err := store.RecordStore(table)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "table %q", table)
	}
}

func TestRecordStore_ConfiguredTable(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	key := domain.DocumentKey{Name: "checklist.pdf", CaseID: "CASO-001"}

	records, err := store.RecordStore("case_documents")
	require.NoError(t, err)
	_, err = records.GetRecord(ctx, key)
	assert.ErrorIs(t, err, domain.ErrNotFound, "a configured table is created empty")

	require.NoError(t, store.PutDocument(ctx, "case_documents", domain.DocumentRecord{
		Key: key, Content: "lista", HasContent: true,
	}))

	rec, err := records.GetRecord(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "lista", rec.Content)

	defaults, err := store.RecordStore("documents")
	require.NoError(t, err)
	_, err = defaults.GetRecord(ctx, key)
	assert.ErrorIs(t, err, domain.ErrNotFound, "writes go to the configured table only")
}

func TestPutDocument_InvalidTable(t *testing.T) {
	store := setupTestStore(t)

	err := store.PutDocument(context.Background(), "documents; DROP TABLE documents", domain.DocumentRecord{
		Key: domain.DocumentKey{Name: "a", CaseID: "b"},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ==================== Chunk Matcher ====================

func seedChunks(t *testing.T, store *Store) {
	t.Helper()
	chunks := []domain.KnowledgeChunk{
		{ID: "same", Content: "Contrato social atualizado.", Embedding: []float32{1, 0, 0},
			Metadata: map[string]any{"source": "politicas.pdf", "page": float64(3)}},
		{ID: "close", Content: "Alteração contratual.", Embedding: []float32{0.8, 0.6, 0}},
		{ID: "orthogonal", Content: "Procuração.", Embedding: []float32{0, 1, 0}},
		{ID: "opposite", Content: "Irrelevante.", Embedding: []float32{-1, 0, 0}},
	}
	require.NoError(t, store.PutChunks(context.Background(), "knowledge_base_chunks", chunks))
}

func TestChunkMatcher_Match(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store)
	matcher, err := store.ChunkMatcher("knowledge_base_chunks")
	require.NoError(t, err)

	matches, err := matcher.Match(context.Background(), []float32{1, 0, 0}, 0.5, 3)

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "same", matches[0].ID)
	assert.InDelta(t, 1.0, matches[0].Similarity, 1e-6)
	assert.Equal(t, map[string]any{"source": "politicas.pdf", "page": float64(3)}, matches[0].Metadata)
	assert.Equal(t, "close", matches[1].ID)
	assert.InDelta(t, 0.8, matches[1].Similarity, 1e-6)
	assert.Nil(t, matches[1].Metadata)
}

func TestChunkMatcher_Match_Count(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store)
	matcher, err := store.ChunkMatcher("knowledge_base_chunks")
	require.NoError(t, err)

	matches, err := matcher.Match(context.Background(), []float32{1, 0, 0}, 0.0, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "same", matches[0].ID)

	matches, err = matcher.Match(context.Background(), []float32{1, 0, 0}, 0.0, 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestChunkMatcher_Match_DimensionMismatch(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store)
	matcher, err := store.ChunkMatcher("knowledge_base_chunks")
	require.NoError(t, err)

	_, err = matcher.Match(context.Background(), []float32{1, 0}, 0.5, 3)

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestChunkMatcher_Match_EmptyTable(t *testing.T) {
	store := setupTestStore(t)
	matcher, err := store.ChunkMatcher("knowledge_base_chunks")
	require.NoError(t, err)

	matches, err := matcher.Match(context.Background(), []float32{1, 0, 0}, 0.5, 3)

	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestChunkMatcher_Match_BadMetadata(t *testing.T) {
	var logs bytes.Buffer
	logger.SetOutput(&logs)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	store := setupTestStore(t)
	seedChunks(t, store)
	_, err := store.db.Exec(`UPDATE knowledge_base_chunks SET metadata = '[1,2]' WHERE id = 'same'`)
	require.NoError(t, err)
	matcher, err := store.ChunkMatcher("knowledge_base_chunks")
	require.NoError(t, err)

	matches, err := matcher.Match(context.Background(), []float32{1, 0, 0}, 0.5, 3)

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "same", matches[0].ID)
	assert.Nil(t, matches[0].Metadata)
	assert.Contains(t, logs.String(), "Ignoring metadata of chunk same")
}

func TestChunkMatcher_ConfiguredTable(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.PutChunks(ctx, "kb_v2", []domain.KnowledgeChunk{
		{ID: "v2", Content: "Nova política.", Embedding: []float32{1, 0}},
	}))

	matcher, err := store.ChunkMatcher("kb_v2")
	require.NoError(t, err)
	matches, err := matcher.Match(ctx, []float32{1, 0}, 0.5, 3)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "v2", matches[0].ID)

	defaults, err := store.ChunkMatcher("knowledge_base_chunks")
	require.NoError(t, err)
	matches, err = defaults.Match(ctx, []float32{1, 0}, 0.5, 3)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestPutChunks_RequiresEmbedding(t *testing.T) {
	store := setupTestStore(t)

	err := store.PutChunks(context.Background(), "knowledge_base_chunks", []domain.KnowledgeChunk{{ID: "x", Content: "no vector"}})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ==================== Helpers ====================

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	assert.InDelta(t, 0.0, cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, cosine([]float32{0, 0}, []float32{1, 1}))
}

func TestFloat32BytesRoundTrip(t *testing.T) {
	in := []float32{0, -1.5, 3.25, 1e-7}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
