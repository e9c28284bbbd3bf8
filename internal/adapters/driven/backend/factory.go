// Package backend opens the stores and embedding services the retrieval
// tools depend on, selected by settings.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/cadastro-crew/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/cadastro-crew/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/cadastro-crew/internal/adapters/driven/embedding/ratelimit"
	teiembed "github.com/custodia-labs/cadastro-crew/internal/adapters/driven/embedding/tei"
	"github.com/custodia-labs/cadastro-crew/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/cadastro-crew/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
	"github.com/custodia-labs/cadastro-crew/internal/core/ports/driven"
	"github.com/custodia-labs/cadastro-crew/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Ensure Factory implements the interface.
var _ driven.BackendFactory = (*Factory)(nil)

// Factory opens a fresh backend connection on every call. Each returned
// handle owns its connection and releases it on Close.
type Factory struct{}

// NewFactory creates a backend factory.
func NewFactory() *Factory {
	return &Factory{}
}

// store is the part of a storage adapter the factory needs.
type store interface {
	Ping(ctx context.Context) error
	Close() error
	RecordStore(table string) (driven.DocumentRecordStore, error)
}

// OpenRecordStore connects to the configured store and verifies it is reachable.
func (f *Factory) OpenRecordStore(
	ctx context.Context, settings domain.StoreSettings,
) (driven.DocumentRecordStore, error) {
	st, err := f.openStore(ctx, settings)
	if err != nil {
		return nil, err
	}

	records, err := st.RecordStore(settings.DocumentsTable)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &ownedRecordStore{DocumentRecordStore: records, owner: st}, nil
}

// OpenChunkMatcher connects to the configured store and returns a matcher.
// Postgres calls knowledge.MatchFunction; SQLite scans knowledge.Table.
func (f *Factory) OpenChunkMatcher(
	ctx context.Context, settings domain.StoreSettings, knowledge domain.KnowledgeSettings,
) (driven.ChunkMatcher, error) {
	var (
		matcher driven.ChunkMatcher
		owner   store
		err     error
	)

	switch settings.Driver {
	case domain.StoreDriverPostgres:
		var pg *postgres.Store
		if pg, err = f.openPostgres(ctx, settings); err != nil {
			return nil, err
		}
		owner = pg
		matcher, err = pg.ChunkMatcher(knowledge.MatchFunction)

	case domain.StoreDriverSQLite:
		var lite *sqlite.Store
		if lite, err = f.openSQLite(ctx, settings); err != nil {
			return nil, err
		}
		owner = lite
		matcher, err = lite.ChunkMatcher(knowledge.Table)

	default:
		return nil, unsupportedDriver(settings.Driver)
	}

	if err != nil {
		owner.Close()
		return nil, err
	}
	return &ownedChunkMatcher{ChunkMatcher: matcher, owner: owner}, nil
}

// OpenEmbeddingService creates the configured embedding service and
// validates connectivity, so a missing model is reported immediately.
func (f *Factory) OpenEmbeddingService(
	ctx context.Context, settings domain.EmbeddingSettings,
) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("embedding model %s unavailable: %w", settings.Model, err)
	}

	logger.Debug("Embedding service ready: %s/%s (%d dimensions)",
		settings.Provider, svc.ModelName(), svc.Dimensions())

	return ratelimit.Wrap(svc, ratelimit.Config{RequestsPerSecond: settings.RequestsPerSecond}), nil
}

// CreateEmbeddingService creates the embedding service for the configured
// provider without contacting it.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := settings.ResolvedDimensions()

	switch settings.Provider {
	case domain.AIProviderTEI:
		return teiembed.NewEmbeddingService(teiembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		}), nil

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q", domain.ErrNotConfigured, settings.Provider)
	}
}

func (f *Factory) openStore(ctx context.Context, settings domain.StoreSettings) (store, error) {
	switch settings.Driver {
	case domain.StoreDriverPostgres:
		return f.openPostgres(ctx, settings)
	case domain.StoreDriverSQLite:
		return f.openSQLite(ctx, settings)
	default:
		return nil, unsupportedDriver(settings.Driver)
	}
}

func (f *Factory) openPostgres(ctx context.Context, settings domain.StoreSettings) (*postgres.Store, error) {
	st, err := postgres.Open(settings)
	if err != nil {
		return nil, err
	}
	if err := ping(ctx, st); err != nil {
		st.Close()
		return nil, err
	}
	logger.Debug("Connected to postgres store")
	return st, nil
}

func (f *Factory) openSQLite(ctx context.Context, settings domain.StoreSettings) (*sqlite.Store, error) {
	st, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return nil, err
	}
	if err := ping(ctx, st); err != nil {
		st.Close()
		return nil, err
	}
	logger.Debug("Opened sqlite store at %s", st.Path())
	return st, nil
}

func ping(ctx context.Context, st interface{ Ping(context.Context) error }) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return st.Ping(ctx)
}

func unsupportedDriver(driver domain.StoreDriver) error {
	return fmt.Errorf("%w: unsupported store driver %q", domain.ErrNotConfigured, driver)
}

// ownedRecordStore closes the store connection along with the record store.
type ownedRecordStore struct {
	driven.DocumentRecordStore
	owner store
}

func (o *ownedRecordStore) Close() error {
	return errors.Join(o.DocumentRecordStore.Close(), o.owner.Close())
}

// ownedChunkMatcher closes the store connection along with the matcher.
type ownedChunkMatcher struct {
	driven.ChunkMatcher
	owner store
}

func (o *ownedChunkMatcher) Close() error {
	return errors.Join(o.ChunkMatcher.Close(), o.owner.Close())
}
