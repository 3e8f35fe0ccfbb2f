package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ChunkSize != 1000 {
		t.Fatalf("expected default chunk size 1000, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap != 200 {
		t.Fatalf("expected default overlap 200, got %d", cfg.ChunkOverlap)
	}
	if cfg.VectorSize != 1536 {
		t.Fatalf("expected default vector size 1536, got %d", cfg.VectorSize)
	}
	if cfg.RAGTopK != 5 {
		t.Fatalf("expected default top_k 5, got %d", cfg.RAGTopK)
	}
	if cfg.RAGScoreThreshold != 0.5 {
		t.Fatalf("expected default score threshold 0.5, got %f", cfg.RAGScoreThreshold)
	}
	if cfg.QdrantCollection != "book_vectors" {
		t.Fatalf("unexpected default collection %q", cfg.QdrantCollection)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "40")
	t.Setenv("CHUNK_OVERLAP", "10")
	t.Setenv("RAG_SCORE_THRESHOLD", "0.7")

	cfg := Load()
	if cfg.ChunkSize != 40 || cfg.ChunkOverlap != 10 {
		t.Fatalf("env override not applied: size=%d overlap=%d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.RAGScoreThreshold != 0.7 {
		t.Fatalf("env override not applied: threshold=%f", cfg.RAGScoreThreshold)
	}
}

func TestLoadInvalidNumberFallsBack(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "not-a-number")
	cfg := Load()
	if cfg.ChunkSize != 1000 {
		t.Fatalf("expected fallback 1000 on invalid env, got %d", cfg.ChunkSize)
	}
}
