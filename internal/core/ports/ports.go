package ports

import (
	"context"

	"github.com/sani-e-zehra/book-rag/internal/core/domain"
)

// Chunker splits document text into overlapping bounded-length segments.
type Chunker interface {
	Chunk(text string) []string
}

// Embedder maps text to fixed-dimension vectors via a remote embedding model.
//
// EmbedBatch never fails past its boundary: on a remote error it returns a
// length-matched slice of empty vectors so callers can skip failed positions.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) [][]float32
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex persists embedded chunks and serves similarity search.
type VectorIndex interface {
	EnsureCollection(ctx context.Context) error
	Upload(ctx context.Context, chunks []string, vectors [][]float32, metadata []domain.ChunkMeta) (int, error)
	Search(ctx context.Context, queryVector []float32, topK int, scoreThreshold float64) ([]domain.RetrievedMatch, error)
	Count(ctx context.Context) int
}

// AnswerGenerator produces a single-turn completion for a prompt.
type AnswerGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// TextExtractor extracts plain text from a document file on disk.
type TextExtractor interface {
	ExtractFile(ctx context.Context, path string) (string, error)
}

// DocumentSource yields ingestable documents from one origin (GitHub raw
// files, relational rows, local markdown, built-in sample).
type DocumentSource interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Document, error)
}

// MessageQueue publishes/consumes reindex requests.
type MessageQueue interface {
	PublishReindexRequested(ctx context.Context, reason string) error
	SubscribeReindexRequested(ctx context.Context, handler func(context.Context, string) error) error
}

// DocumentIngestor is the inbound contract for the ingestion pipeline.
type DocumentIngestor interface {
	ProcessDocument(ctx context.Context, content, source, docID string) (int, error)
	ProcessDocumentFile(ctx context.Context, path, source string) (int, error)
	ProcessMany(ctx context.Context, paths []string) map[string]int
}

// QuestionAnswerer is the inbound contract for the retrieval-augmented
// answer path. Answer is total: it never returns an error.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question, explicitContext string) domain.QAResult
}

// DataLoader seeds the vector index from the first document source that
// yields content. Reload skips the already-populated check and ingests
// again.
type DataLoader interface {
	EnsureDataLoaded(ctx context.Context) bool
	Reload(ctx context.Context) bool
}
