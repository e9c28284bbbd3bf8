package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
	"github.com/custodia-labs/cadastro-crew/internal/core/ports/driven"
	"github.com/custodia-labs/cadastro-crew/internal/core/ports/driving"
	"github.com/custodia-labs/cadastro-crew/internal/logger"
)

// Ensure DocumentContentLookup implements the interface.
var _ driving.DocumentContentService = (*DocumentContentLookup)(nil)

const opDocumentLookup = "document lookup"

// DocumentContentLookup resolves a (name, case id) pair to the extracted
// text of an ingested document with a single point read.
type DocumentContentLookup struct {
	store     driven.DocumentRecordStore
	readiness domain.Readiness
}

// NewDocumentContentLookup opens the record store described by settings.
//
// Missing store settings are a hard failure: the constructor returns a
// KindConfiguration error. A store that is configured but cannot be opened
// yields a lookup in the failed state, which reports the reason on every call.
func NewDocumentContentLookup(
	ctx context.Context, settings domain.StoreSettings, factory driven.BackendFactory,
) (*DocumentContentLookup, error) {
	if err := storeConfigError(settings); err != nil {
		logger.Error("Document store not configured: %v", err)
		return nil, domain.NewToolError(domain.KindConfiguration, opDocumentLookup, err)
	}

	store, err := factory.OpenRecordStore(ctx, settings)
	if err != nil {
		logger.Error("Failed to open document store (%s): %v", settings.Driver, err)
		return &DocumentContentLookup{readiness: domain.Failed(err)}, nil
	}

	logger.Info("Document store ready (%s, table %q)", settings.Driver, settings.DocumentsTable)
	return &DocumentContentLookup{store: store, readiness: domain.Ready()}, nil
}

// Lookup returns the stored content for key, byte for byte.
func (l *DocumentContentLookup) Lookup(ctx context.Context, key domain.DocumentKey) (string, error) {
	if !l.readiness.IsReady() {
		return "", domain.NewToolError(domain.KindNotInitialized, opDocumentLookup, l.readiness.Reason)
	}
	if field := key.MissingField(); field != "" {
		return "", domain.NewValidationError(opDocumentLookup, field)
	}
	key = key.Normalise()

	logger.Debug("Looking up document %q for case %q", key.Name, key.CaseID)

	record, err := l.store.GetRecord(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("No document %q found for case %q", key.Name, key.CaseID)
			return "", domain.NewToolError(domain.KindNotFound, opDocumentLookup, err)
		}
		logger.Error("Document store query failed for %q (case %q): %v", key.Name, key.CaseID, err)
		return "", domain.NewToolError(domain.KindBackend, opDocumentLookup, err)
	}

	if record.IsEmpty() {
		logger.Warn("Document %q for case %q has no content", key.Name, key.CaseID)
		return "", domain.NewToolError(domain.KindEmptyContent, opDocumentLookup, nil)
	}

	logger.Debug("Document %q found, %d bytes", key.Name, len(record.Content))
	return record.Content, nil
}

// Readiness reports whether the record store was opened.
func (l *DocumentContentLookup) Readiness() domain.Readiness {
	return l.readiness
}

// Close releases the record store.
func (l *DocumentContentLookup) Close() error {
	if l.store == nil {
		return nil
	}
	return l.store.Close()
}

// storeConfigError names the store settings that are missing, or returns nil.
func storeConfigError(s domain.StoreSettings) error {
	if s.IsConfigured() {
		return nil
	}
	if !s.Driver.IsValid() {
		return fmt.Errorf("%w: unknown store driver %q", domain.ErrNotConfigured, s.Driver)
	}

	var missing []string
	if s.Driver.IsRemote() {
		if s.URL == "" {
			missing = append(missing, keyStoreURL)
		}
		if s.ServiceKey == "" {
			missing = append(missing, keyStoreServiceKey)
		}
	}
	if s.DocumentsTable == "" {
		missing = append(missing, keyStoreDocumentsTable)
	}
	return fmt.Errorf("%w: %s not set", domain.ErrNotConfigured, strings.Join(missing, ", "))
}
