// Command cadastro serves the document lookup and knowledge base search
// tools used by the corporate-registration review crew.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/cadastro-crew/internal/adapters/driven/backend"
	"github.com/custodia-labs/cadastro-crew/internal/adapters/driven/config/file"
	"github.com/custodia-labs/cadastro-crew/internal/adapters/driving/cli"
	"github.com/custodia-labs/cadastro-crew/internal/core/domain"
	"github.com/custodia-labs/cadastro-crew/internal/core/ports/driven"
	"github.com/custodia-labs/cadastro-crew/internal/core/ports/driving"
	"github.com/custodia-labs/cadastro-crew/internal/core/services"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configStore, err := file.NewConfigStore(os.Getenv("CADASTRO_CONFIG_DIR"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening config: %v\n", err)
		return err
	}

	cli.SetVersion(version)
	cli.SetServices(services.NewSettingsService(configStore), &tools{factory: backend.NewFactory()})
	return cli.Execute(ctx)
}

// tools builds the retrieval services over the backend factory.
type tools struct {
	factory driven.BackendFactory
}

func (t *tools) OpenDocuments(ctx context.Context, settings domain.AppSettings) (driving.DocumentContentService, error) {
	lookup, err := services.NewDocumentContentLookup(ctx, settings.Store, t.factory)
	if err != nil {
		return nil, err
	}
	return lookup, nil
}

func (t *tools) OpenKnowledge(ctx context.Context, settings domain.AppSettings) driving.KnowledgeSearchService {
	return services.NewSemanticKnowledgeSearch(ctx, settings, t.factory)
}

func (t *tools) NewCaseService(
	documents driving.DocumentContentService, settings domain.CaseSettings,
) driving.CaseService {
	return services.NewCaseService(documents, settings)
}
