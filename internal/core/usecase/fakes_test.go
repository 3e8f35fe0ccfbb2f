package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sani-e-zehra/book-rag/internal/core/domain"
	"github.com/sani-e-zehra/book-rag/internal/core/ports"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sourceChain(ss ...ports.DocumentSource) []ports.DocumentSource {
	return ss
}

type fakeChunker struct {
	chunks []string
}

func (f *fakeChunker) Chunk(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return f.chunks
}

type fakeEmbedder struct {
	batchCalls [][]string
	batchFail  map[int]bool // positions that come back as empty vectors
	queryCalls int
	queryVec   []float32
	queryErr   error
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) [][]float32 {
	f.batchCalls = append(f.batchCalls, texts)
	vectors := make([][]float32, len(texts))
	for i := range texts {
		if f.batchFail[i] {
			continue
		}
		vectors[i] = []float32{float32(i) + 0.5}
	}
	return vectors
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	f.queryCalls++
	return f.queryVec, f.queryErr
}

type uploadCall struct {
	chunks   []string
	vectors  [][]float32
	metadata []domain.ChunkMeta
}

type fakeIndex struct {
	ensureErr   error
	ensureCalls int

	uploads   []uploadCall
	uploadErr error

	searchCalls   int
	searchMatches []domain.RetrievedMatch
	searchErr     error
	lastTopK      int
	lastThreshold float64

	counts []int // consumed per Count call, last value repeats
}

func (f *fakeIndex) EnsureCollection(context.Context) error {
	f.ensureCalls++
	return f.ensureErr
}

func (f *fakeIndex) Upload(_ context.Context, chunks []string, vectors [][]float32, metadata []domain.ChunkMeta) (int, error) {
	f.uploads = append(f.uploads, uploadCall{chunks: chunks, vectors: vectors, metadata: metadata})
	if f.uploadErr != nil {
		return 0, f.uploadErr
	}
	return len(chunks), nil
}

func (f *fakeIndex) Search(_ context.Context, _ []float32, topK int, threshold float64) ([]domain.RetrievedMatch, error) {
	f.searchCalls++
	f.lastTopK = topK
	f.lastThreshold = threshold
	return f.searchMatches, f.searchErr
}

func (f *fakeIndex) Count(context.Context) int {
	if len(f.counts) == 0 {
		return 0
	}
	count := f.counts[0]
	if len(f.counts) > 1 {
		f.counts = f.counts[1:]
	}
	return count
}

type fakeGenerator struct {
	prompts []string
	answer  string
	err     error
}

func (f *fakeGenerator) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakeExtractor struct {
	texts map[string]string
}

func (f *fakeExtractor) ExtractFile(_ context.Context, path string) (string, error) {
	text, ok := f.texts[path]
	if !ok {
		return "", fmt.Errorf("extract %s: %w", path, errors.New("no such file"))
	}
	return text, nil
}

type fakeSource struct {
	name    string
	docs    []domain.Document
	err     error
	fetched int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(context.Context) ([]domain.Document, error) {
	f.fetched++
	return f.docs, f.err
}

type fakeIngestor struct {
	calls    []string // source labels in call order
	perDoc   int
	errAfter int // fail calls at index >= errAfter when >= 0
	err      error
}

func (f *fakeIngestor) ProcessDocument(_ context.Context, _, source, _ string) (int, error) {
	idx := len(f.calls)
	f.calls = append(f.calls, source)
	if f.err != nil && idx >= f.errAfter {
		return 0, f.err
	}
	return f.perDoc, nil
}

func (f *fakeIngestor) ProcessDocumentFile(context.Context, string, string) (int, error) {
	return 0, errors.New("not used")
}

func (f *fakeIngestor) ProcessMany(context.Context, []string) map[string]int {
	return nil
}
