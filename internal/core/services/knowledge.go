package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
	"github.com/custodia-labs/cadastro-crew/internal/core/ports/driven"
	"github.com/custodia-labs/cadastro-crew/internal/core/ports/driving"
	"github.com/custodia-labs/cadastro-crew/internal/logger"
)

// Ensure SemanticKnowledgeSearch implements the interface.
var _ driving.KnowledgeSearchService = (*SemanticKnowledgeSearch)(nil)

const opKnowledgeSearch = "knowledge search"

// SemanticKnowledgeSearch embeds a natural-language query and returns the
// most similar knowledge base chunks, ranked by descending similarity.
type SemanticKnowledgeSearch struct {
	embedder  driven.EmbeddingService
	matcher   driven.ChunkMatcher
	threshold float64
	topK      int
	readiness domain.Readiness
}

// NewSemanticKnowledgeSearch opens the chunk matcher and embedding model.
// It never fails: any configuration or connection problem is logged once
// and leaves the search in the failed state.
func NewSemanticKnowledgeSearch(
	ctx context.Context, settings domain.AppSettings, factory driven.BackendFactory,
) *SemanticKnowledgeSearch {
	s := &SemanticKnowledgeSearch{
		threshold: settings.Knowledge.MatchThreshold,
		topK:      settings.Knowledge.TopK,
	}
	if s.topK <= 0 {
		s.topK = domain.DefaultTopK
	}

	if err := knowledgeConfigError(settings); err != nil {
		logger.Warn("Knowledge base not configured: %v", err)
		s.readiness = domain.Failed(err)
		return s
	}

	matcher, err := factory.OpenChunkMatcher(ctx, settings.Store, settings.Knowledge)
	if err != nil {
		logger.Error("Failed to open knowledge base store: %v", err)
		s.readiness = domain.Failed(err)
		return s
	}

	embedder, err := factory.OpenEmbeddingService(ctx, settings.Embedding)
	if err != nil {
		logger.Error("Failed to load embedding model %q: %v", settings.Embedding.Model, err)
		_ = matcher.Close()
		s.readiness = domain.Failed(err)
		return s
	}

	logger.Info("Knowledge base ready (function %s, model %s, threshold %.2f)",
		settings.Knowledge.MatchFunction, embedder.ModelName(), s.threshold)

	s.matcher = matcher
	s.embedder = embedder
	s.readiness = domain.Ready()
	return s
}

// Search returns up to TopK chunks whose similarity is at least the
// configured threshold, in non-increasing similarity order.
func (s *SemanticKnowledgeSearch) Search(ctx context.Context, query domain.KnowledgeQuery) ([]domain.ChunkMatch, error) {
	if !s.readiness.IsReady() {
		return nil, domain.NewToolError(domain.KindNotInitialized, opKnowledgeSearch, s.readiness.Reason)
	}

	query = query.Normalise(s.topK)
	if query.Query == "" {
		return nil, domain.NewValidationError(opKnowledgeSearch, "query")
	}
	if query.TopK < 0 {
		return nil, &domain.ToolError{
			Kind:  domain.KindValidation,
			Op:    opKnowledgeSearch,
			Field: "top_k",
			Err:   fmt.Errorf("%w: top_k must be at least 1", domain.ErrInvalidInput),
		}
	}

	logger.Section("Knowledge Search")
	logger.Debug("Query: %q, top_k=%d", query.Query, query.TopK)

	vector, err := s.embedder.Embed(ctx, query.Query)
	if err != nil {
		logger.Error("Embedding query failed: %v", err)
		return nil, domain.NewToolError(domain.KindBackend, opKnowledgeSearch, fmt.Errorf("embed query: %w", err))
	}
	if want := s.embedder.Dimensions(); want > 0 && len(vector) != want {
		err := fmt.Errorf("%w: model returned %d values, expected %d", domain.ErrDimensionMismatch, len(vector), want)
		logger.Error("Embedding query failed: %v", err)
		return nil, domain.NewToolError(domain.KindBackend, opKnowledgeSearch, err)
	}

	matches, err := s.matcher.Match(ctx, vector, s.threshold, query.TopK)
	if err != nil {
		logger.Error("Knowledge base match failed: %v", err)
		return nil, domain.NewToolError(domain.KindBackend, opKnowledgeSearch, err)
	}

	ranked := rankMatches(matches, s.threshold, query.TopK)
	logger.Info("%d relevant results found in the knowledge base (%d returned by backend)", len(ranked), len(matches))
	return ranked, nil
}

// Readiness reports whether the matcher and embedding model were opened.
func (s *SemanticKnowledgeSearch) Readiness() domain.Readiness {
	return s.readiness
}

// Close releases the matcher and embedding model.
func (s *SemanticKnowledgeSearch) Close() error {
	var firstErr error
	if s.matcher != nil {
		firstErr = s.matcher.Close()
	}
	if s.embedder != nil {
		if err := s.embedder.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// rankMatches drops matches below threshold, orders the rest by
// descending similarity keeping backend order for ties, and caps the
// result at topK. The input slice is not modified.
func rankMatches(matches []domain.ChunkMatch, threshold float64, topK int) []domain.ChunkMatch {
	ranked := make([]domain.ChunkMatch, 0, len(matches))
	for _, m := range matches {
		if m.Similarity >= threshold {
			ranked = append(ranked, m)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

// knowledgeConfigError reports the first missing piece of configuration
// the search needs, or nil.
func knowledgeConfigError(settings domain.AppSettings) error {
	if err := storeConfigError(settings.Store); err != nil {
		return err
	}
	if t := settings.Knowledge.MatchThreshold; !domain.ValidMatchThreshold(t) {
		return fmt.Errorf("%w: %s=%v must be between 0 and 1", domain.ErrInvalidInput, keyKBMatchThreshold, t)
	}
	if !settings.Knowledge.IsConfigured() {
		return fmt.Errorf("%w: %s and %s must be set", domain.ErrNotConfigured, keyKBTable, keyKBMatchFunction)
	}
	if !settings.Embedding.IsConfigured() {
		if settings.Embedding.Provider.RequiresAPIKey() && settings.Embedding.APIKey == "" {
			return fmt.Errorf("%w: %s not set for %s", domain.ErrNotConfigured, keyEmbedAPIKey, settings.Embedding.Provider)
		}
		return fmt.Errorf("%w: embedding provider %q / model %q",
			domain.ErrNotConfigured, settings.Embedding.Provider, settings.Embedding.Model)
	}
	return nil
}
