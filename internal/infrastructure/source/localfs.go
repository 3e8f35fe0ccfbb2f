package source

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sani-e-zehra/book-rag/internal/core/domain"
)

// rootExcludes are project files that live next to the book content but are
// not part of it.
var rootExcludes = map[string]struct{}{
	"README.md":    {},
	"DESIGN.md":    {},
	"SPEC_FULL.md": {},
	"CHANGELOG.md": {},
}

// LocalFSSource scans candidate content directories for markdown files, plus
// loose markdown in the project root.
type LocalFSSource struct {
	dirs   []string
	root   string
	logger *slog.Logger
}

func NewLocalFSSource(dirs []string, root string, logger *slog.Logger) *LocalFSSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalFSSource{dirs: dirs, root: root, logger: logger}
}

func (s *LocalFSSource) Name() string { return "local" }

func (s *LocalFSSource) Fetch(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document

	for _, dir := range s.dirs {
		if ctx.Err() != nil {
			return docs, ctx.Err()
		}
		matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
		if err != nil {
			continue
		}
		for _, path := range matches {
			if doc, ok := s.readDoc(path, "book/"); ok {
				docs = append(docs, doc)
			}
		}
	}

	if s.root != "" {
		matches, err := filepath.Glob(filepath.Join(s.root, "*.md"))
		if err == nil {
			for _, path := range matches {
				if _, excluded := rootExcludes[filepath.Base(path)]; excluded {
					continue
				}
				if doc, ok := s.readDoc(path, "root/"); ok {
					docs = append(docs, doc)
				}
			}
		}
	}

	return docs, nil
}

func (s *LocalFSSource) readDoc(path, prefix string) (domain.Document, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("cannot read markdown file", "path", path, "error", err)
		return domain.Document{}, false
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return domain.Document{}, false
	}

	name := filepath.Base(path)
	return domain.Document{
		Content: content,
		Source:  prefix + name,
		DocID:   strings.TrimSuffix(name, filepath.Ext(name)),
	}, true
}
