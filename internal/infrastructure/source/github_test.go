package source

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGithubFetchSkipsMissingFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/docs/intro.md":
			_, _ = w.Write([]byte("# Intro\n\nWelcome."))
		case "/docs/conclusion.md":
			_, _ = w.Write([]byte("# Conclusion\n\nThe end."))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	src := NewGithubSource(server.URL+"/docs", []string{"intro.md", "missing.md", "conclusion.md"}, discardLogger())
	docs, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("docs = %d, want 2", len(docs))
	}
	if docs[0].Source != "github/intro.md" || docs[0].DocID != "intro.md" {
		t.Fatalf("doc = %+v", docs[0])
	}
	if docs[1].Content != "# Conclusion\n\nThe end." {
		t.Fatalf("content = %q", docs[1].Content)
	}
}

func TestGithubFetchServerErrorSkipsFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/docs/good.md" {
			_, _ = w.Write([]byte("content"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	src := NewGithubSource(server.URL+"/docs", []string{"bad.md", "good.md"}, discardLogger())
	docs, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(docs) != 1 || docs[0].Source != "github/good.md" {
		t.Fatalf("docs = %+v", docs)
	}
}

func TestGithubFetchNoBaseURL(t *testing.T) {
	src := NewGithubSource("", []string{"intro.md"}, discardLogger())
	docs, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if docs != nil {
		t.Fatalf("docs = %v, want nil", docs)
	}
}

func TestGithubFetchCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("content"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewGithubSource(server.URL, []string{"a.md", "b.md"}, discardLogger())
	if _, err := src.Fetch(ctx); err == nil {
		t.Fatal("expected context error")
	}
}
