package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sani-e-zehra/book-rag/internal/core/domain"
)

// GithubSource fetches known chapter files straight from
// raw.githubusercontent.com. No GitHub API involved, so missing files show
// up as plain 404s and are skipped.
type GithubSource struct {
	baseURL    string
	files      []string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewGithubSource(baseURL string, files []string, logger *slog.Logger) *GithubSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &GithubSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		files:      files,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

func (s *GithubSource) Name() string { return "github" }

func (s *GithubSource) Fetch(ctx context.Context) ([]domain.Document, error) {
	if s.baseURL == "" || len(s.files) == 0 {
		return nil, nil
	}

	docs := make([]domain.Document, 0, len(s.files))
	for _, file := range s.files {
		content, err := s.fetchFile(ctx, file)
		if err != nil {
			if ctx.Err() != nil {
				return docs, ctx.Err()
			}
			s.logger.Debug("skipping github file", "file", file, "error", err)
			continue
		}
		if content == "" {
			continue
		}
		docs = append(docs, domain.Document{
			Content: content,
			Source:  "github/" + file,
			DocID:   file,
		})
	}
	return docs, nil
}

// fetchFile returns "" without error on 404 so absent chapters are not
// treated as failures.
func (s *GithubSource) fetchFile(ctx context.Context, file string) (string, error) {
	url := s.baseURL + "/" + file
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return string(body), nil
}
