package bootstrap

import (
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/sani-e-zehra/book-rag/internal/config"
	"github.com/sani-e-zehra/book-rag/internal/core/ports"
	"github.com/sani-e-zehra/book-rag/internal/core/usecase"
	"github.com/sani-e-zehra/book-rag/internal/infrastructure/chunking"
	"github.com/sani-e-zehra/book-rag/internal/infrastructure/extractor"
	"github.com/sani-e-zehra/book-rag/internal/infrastructure/llm/openai"
	natsqueue "github.com/sani-e-zehra/book-rag/internal/infrastructure/queue/nats"
	"github.com/sani-e-zehra/book-rag/internal/infrastructure/resilience"
	"github.com/sani-e-zehra/book-rag/internal/infrastructure/source"
	"github.com/sani-e-zehra/book-rag/internal/infrastructure/vector/qdrant"
)

// App wires every component. Construction never aborts on unreachable
// backends: a missing OpenAI key, an offline Qdrant, Postgres, or NATS all
// leave the app degraded but serving.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Index    ports.VectorIndex
	Queue    ports.MessageQueue
	IngestUC ports.DocumentIngestor
	AnswerUC ports.QuestionAnswerer
	Loader   ports.DataLoader

	closeFn func()
}

func New(cfg config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig(), logger)

	llm := openai.New(openai.Config{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		GenModel:    cfg.OpenAIModel,
		EmbedModel:  cfg.OpenAIEmbedModel,
		MaxTokens:   cfg.GenMaxTokens,
		Temperature: cfg.GenTemperature,
		Executor:    executor,
		Logger:      logger,
	})
	embedder := openai.NewEmbedder(llm)
	generator := openai.NewGenerator(llm)

	index := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection, qdrant.Options{
		APIKey:     cfg.QdrantAPIKey,
		VectorSize: cfg.VectorSize,
		Logger:     logger,
	})

	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	extract := extractor.New()
	limiter := rate.NewLimiter(rate.Limit(cfg.EmbedRatePerSec), cfg.EmbedRateBurst)

	ingestUC := usecase.NewIngestUseCase(chunker, embedder, index, extract, limiter, logger)
	answerUC := usecase.NewAnswerUseCase(embedder, index, generator, usecase.AnswerConfig{
		TopK:                  cfg.RAGTopK,
		ScoreThreshold:        cfg.RAGScoreThreshold,
		UserContextConfidence: cfg.ConfidenceUserContext,
		GeneralConfidence:     cfg.ConfidenceGeneral,
		ConfidenceFloor:       cfg.ConfidenceFloor,
		ConfidenceCeiling:     cfg.ConfidenceCeiling,
	}, logger)

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Index:    index,
		IngestUC: ingestUC,
		AnswerUC: answerUC,
	}

	var closers []func()

	queue, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		logger.Warn("nats unavailable, reindex requests disabled", "error", err)
	} else {
		app.Queue = queue
		closers = append(closers, queue.Close)
	}

	sources := []ports.DocumentSource{
		source.NewGithubSource(cfg.GithubRawBase, splitList(cfg.GithubDocFiles), logger),
	}
	if cfg.PostgresDSN != "" {
		db, err := source.OpenDB(cfg.PostgresDSN)
		if err != nil {
			logger.Warn("postgres unavailable, skipping database content source", "error", err)
		} else {
			sources = append(sources, source.NewPostgresSource(db))
			closers = append(closers, func() { _ = db.Close() })
		}
	}
	sources = append(sources,
		source.NewLocalFSSource(splitList(cfg.DocsDirs), ".", logger),
		source.NewSampleSource(),
	)

	app.Loader = usecase.NewLoaderUseCase(index, ingestUC, sources, logger)
	app.closeFn = func() {
		for _, close := range closers {
			close()
		}
	}
	return app
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
