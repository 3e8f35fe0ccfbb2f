package usecase

import (
	"context"
	"log/slog"

	"github.com/sani-e-zehra/book-rag/internal/core/domain"
	"github.com/sani-e-zehra/book-rag/internal/core/ports"
)

const failedAnswer = "Sorry, I couldn't process your question at the moment. Please try again."

// AnswerConfig holds the retrieval and confidence knobs. The constants are
// heuristics, not calibrated values; only their ordering
// (user context > retrieval >= general knowledge) is load-bearing.
type AnswerConfig struct {
	TopK           int
	ScoreThreshold float64

	UserContextConfidence float64
	GeneralConfidence     float64
	ConfidenceFloor       float64
	ConfidenceCeiling     float64
}

func DefaultAnswerConfig() AnswerConfig {
	return AnswerConfig{
		TopK:                  5,
		ScoreThreshold:        0.5,
		UserContextConfidence: 0.9,
		GeneralConfidence:     0.6,
		ConfidenceFloor:       0.5,
		ConfidenceCeiling:     0.95,
	}
}

// AnswerUseCase answers a question from retrieved book content. Answer is
// total: every failure path converts into a well-formed QAResult, so the
// caller never sees an error.
type AnswerUseCase struct {
	embedder  ports.Embedder
	index     ports.VectorIndex
	generator ports.AnswerGenerator
	cfg       AnswerConfig
	logger    *slog.Logger
}

func NewAnswerUseCase(
	embedder ports.Embedder,
	index ports.VectorIndex,
	generator ports.AnswerGenerator,
	cfg AnswerConfig,
	logger *slog.Logger,
) *AnswerUseCase {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnswerUseCase{
		embedder:  embedder,
		index:     index,
		generator: generator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Answer resolves context (explicit, retrieved, or none), generates one
// completion, and packages the result with sources and a confidence score.
func (uc *AnswerUseCase) Answer(ctx context.Context, question, explicitContext string) domain.QAResult {
	if explicitContext != "" {
		return uc.generate(ctx, buildExplicitContextPrompt(question, explicitContext),
			[]string{domain.SourceUserProvided}, uc.cfg.UserContextConfidence)
	}

	matches := uc.retrieve(ctx, question)
	if len(matches) == 0 {
		return uc.generate(ctx, buildGeneralKnowledgePrompt(question),
			[]string{domain.SourceGeneralKnowledge}, uc.cfg.GeneralConfidence)
	}

	contextBlock := assembleContext(matches)
	sources := distinctSources(matches)
	confidence := uc.meanConfidence(matches)
	return uc.generate(ctx, buildRetrievalPrompt(question, contextBlock), sources, confidence)
}

// retrieve embeds the question and searches the index. Both failure modes
// (embedding error, search error) degrade to an empty match list so the
// caller falls through to the general-knowledge branch.
func (uc *AnswerUseCase) retrieve(ctx context.Context, question string) []domain.RetrievedMatch {
	queryVector, err := uc.embedder.EmbedQuery(ctx, question)
	if err != nil || len(queryVector) == 0 {
		uc.logger.Warn("question embedding unavailable, using general knowledge", "error", err)
		return nil
	}

	matches, err := uc.index.Search(ctx, queryVector, uc.cfg.TopK, uc.cfg.ScoreThreshold)
	if err != nil {
		uc.logger.Warn("vector search failed, using general knowledge", "error", err)
		return nil
	}
	if len(matches) == 0 {
		uc.logger.Info("no chunks above score threshold, using general knowledge")
	}
	return matches
}

func (uc *AnswerUseCase) generate(ctx context.Context, prompt string, sources []string, confidence float64) domain.QAResult {
	answer, err := uc.generator.Complete(ctx, prompt)
	if err != nil {
		uc.logger.Error("answer generation failed", "error", err)
		return failedResult()
	}
	return domain.QAResult{
		Answer:     answer,
		Sources:    sources,
		Confidence: confidence,
	}
}

// meanConfidence averages match scores and clamps into the configured band.
func (uc *AnswerUseCase) meanConfidence(matches []domain.RetrievedMatch) float64 {
	var sum float64
	for _, m := range matches {
		sum += m.Score
	}
	confidence := sum / float64(len(matches))

	if confidence < uc.cfg.ConfidenceFloor {
		confidence = uc.cfg.ConfidenceFloor
	}
	if confidence > uc.cfg.ConfidenceCeiling {
		confidence = uc.cfg.ConfidenceCeiling
	}
	return confidence
}

func distinctSources(matches []domain.RetrievedMatch) []string {
	seen := make(map[string]struct{}, len(matches))
	sources := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Source == "" {
			continue
		}
		if _, ok := seen[m.Source]; ok {
			continue
		}
		seen[m.Source] = struct{}{}
		sources = append(sources, m.Source)
	}
	if len(sources) == 0 {
		return []string{domain.SourceGeneralKnowledge}
	}
	return sources
}

func failedResult() domain.QAResult {
	return domain.QAResult{
		Answer:     failedAnswer,
		Sources:    []string{},
		Confidence: 0,
	}
}
