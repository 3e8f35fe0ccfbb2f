package httpadapter

import (
	"net/http"

	"github.com/sani-e-zehra/book-rag/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// answerMode labels an answer for metrics by how its context was obtained.
func answerMode(explicitContext string, sources []string) string {
	if explicitContext != "" {
		return "user-context"
	}
	if len(sources) == 1 && sources[0] == domain.SourceGeneralKnowledge {
		return "general"
	}
	return "retrieval"
}
