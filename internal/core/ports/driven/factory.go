package driven

import (
	"context"

	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
)

// BackendFactory opens backend handles from settings.
// Each tool calls it once during its own construction and owns the
// returned handles; nothing is shared through package-level state.
type BackendFactory interface {
	// OpenRecordStore connects to the document record store.
	OpenRecordStore(ctx context.Context, settings domain.StoreSettings) (DocumentRecordStore, error)

	// OpenChunkMatcher connects to the knowledge chunk store.
	OpenChunkMatcher(
		ctx context.Context, store domain.StoreSettings, knowledge domain.KnowledgeSettings,
	) (ChunkMatcher, error)

	// OpenEmbeddingService creates and validates the embedding model client.
	OpenEmbeddingService(ctx context.Context, settings domain.EmbeddingSettings) (EmbeddingService, error)
}
