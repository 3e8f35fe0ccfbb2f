package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sani-e-zehra/book-rag/internal/core/ports"
)

// LoaderUseCase seeds an empty vector collection from document sources tried
// in a fixed priority order, stopping at the first source that contributes
// at least one chunk.
type LoaderUseCase struct {
	index    ports.VectorIndex
	ingestor ports.DocumentIngestor
	sources  []ports.DocumentSource
	logger   *slog.Logger
}

func NewLoaderUseCase(
	index ports.VectorIndex,
	ingestor ports.DocumentIngestor,
	sources []ports.DocumentSource,
	logger *slog.Logger,
) *LoaderUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoaderUseCase{
		index:    index,
		ingestor: ingestor,
		sources:  sources,
		logger:   logger,
	}
}

// EnsureDataLoaded reports whether the collection holds data, loading it
// first when empty. Loading failures are not fatal: the service runs with an
// empty collection and the answer path falls back to general knowledge.
func (uc *LoaderUseCase) EnsureDataLoaded(ctx context.Context) bool {
	if count := uc.index.Count(ctx); count > 0 {
		uc.logger.Info("vector collection already populated", "points", count)
		return true
	}

	return uc.Reload(ctx)
}

// Reload ingests from the priority chain regardless of the current point
// count. Used for explicit reindex requests.
func (uc *LoaderUseCase) Reload(ctx context.Context) bool {
	if err := uc.index.EnsureCollection(ctx); err != nil {
		uc.logger.Warn("cannot prepare vector collection, skipping data load", "error", err)
		return false
	}

	for _, source := range uc.sources {
		loaded := uc.loadFrom(ctx, source)
		if loaded > 0 {
			uc.logger.Info("loaded book content",
				"source", source.Name(), "chunks", loaded, "points", uc.index.Count(ctx))
			return true
		}
	}

	uc.logger.Warn("no book content found in any source, collection remains empty")
	return false
}

func (uc *LoaderUseCase) loadFrom(ctx context.Context, source ports.DocumentSource) int {
	docs, err := source.Fetch(ctx)
	if err != nil {
		uc.logger.Warn("document source failed, trying next",
			"source", source.Name(), "error", err)
		return 0
	}

	total := 0
	for _, doc := range docs {
		if strings.TrimSpace(doc.Content) == "" {
			continue
		}
		count, err := uc.ingestor.ProcessDocument(ctx, doc.Content, doc.Source, doc.DocID)
		if err != nil {
			uc.logger.Error("failed to ingest document",
				"source", doc.Source, "error", err)
			continue
		}
		total += count
	}
	return total
}
