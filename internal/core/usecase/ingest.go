package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"

	"github.com/sani-e-zehra/book-rag/internal/core/domain"
	"github.com/sani-e-zehra/book-rag/internal/core/ports"
)

// IngestUseCase runs the ingestion pipeline for one document: chunk the
// text, embed all chunks in a single batched call, and upload chunks with
// vectors and per-chunk metadata in one write.
type IngestUseCase struct {
	chunker   ports.Chunker
	embedder  ports.Embedder
	index     ports.VectorIndex
	extractor ports.TextExtractor
	limiter   *rate.Limiter
	logger    *slog.Logger
}

func NewIngestUseCase(
	chunker ports.Chunker,
	embedder ports.Embedder,
	index ports.VectorIndex,
	extractor ports.TextExtractor,
	limiter *rate.Limiter,
	logger *slog.Logger,
) *IngestUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestUseCase{
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		extractor: extractor,
		limiter:   limiter,
		logger:    logger,
	}
}

// ProcessDocument ingests one document and returns the number of chunks
// written. Empty content yields zero without touching the index. Chunks
// whose embedding came back empty are skipped; chunk_id keeps the original
// emission position so ordering survives the skip.
func (uc *IngestUseCase) ProcessDocument(ctx context.Context, content, source, docID string) (int, error) {
	chunks := uc.chunker.Chunk(content)
	if len(chunks) == 0 {
		return 0, nil
	}
	if docID == "" {
		docID = domain.FallbackDocID
	}

	if uc.limiter != nil {
		if err := uc.limiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("embedding rate limit: %w", err)
		}
	}
	vectors := uc.embedder.EmbedBatch(ctx, chunks)

	keptChunks := make([]string, 0, len(chunks))
	keptVectors := make([][]float32, 0, len(chunks))
	metadata := make([]domain.ChunkMeta, 0, len(chunks))
	for i, chunk := range chunks {
		if len(vectors[i]) == 0 {
			continue
		}
		keptChunks = append(keptChunks, chunk)
		keptVectors = append(keptVectors, vectors[i])
		metadata = append(metadata, domain.ChunkMeta{
			Source:         source,
			ChunkID:        i,
			DocID:          docID,
			OriginalLength: len(chunk),
		})
	}

	if len(keptChunks) == 0 {
		return 0, domain.WrapError(domain.ErrTemporary, "process document",
			fmt.Errorf("embedding failed for all %d chunks of %s", len(chunks), source))
	}
	if skipped := len(chunks) - len(keptChunks); skipped > 0 {
		uc.logger.Warn("skipping chunks with failed embeddings",
			"source", source, "skipped", skipped, "total", len(chunks))
	}

	count, err := uc.index.Upload(ctx, keptChunks, keptVectors, metadata)
	if err != nil {
		return 0, fmt.Errorf("upload chunks: %w", err)
	}
	return count, nil
}

// ProcessDocumentFile ingests a document from disk. The source label
// defaults to the file name and the document id to the name without
// extension.
func (uc *IngestUseCase) ProcessDocumentFile(ctx context.Context, path, source string) (int, error) {
	if source == "" {
		source = filepath.Base(path)
	}

	content, err := uc.extractor.ExtractFile(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("extract %s: %w", path, err)
	}

	base := filepath.Base(path)
	docID := strings.TrimSuffix(base, filepath.Ext(base))
	return uc.ProcessDocument(ctx, content, source, docID)
}

// ProcessMany ingests each file independently: a failing document is
// recorded as zero chunks and the remaining documents still run.
func (uc *IngestUseCase) ProcessMany(ctx context.Context, paths []string) map[string]int {
	results := make(map[string]int, len(paths))
	for _, path := range paths {
		count, err := uc.ProcessDocumentFile(ctx, path, "")
		if err != nil {
			uc.logger.Error("document ingestion failed", "path", path, "error", err)
			results[path] = 0
			continue
		}
		results[path] = count
	}
	return results
}
