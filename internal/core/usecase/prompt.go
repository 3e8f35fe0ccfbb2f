package usecase

import (
	"fmt"
	"strings"

	"github.com/sani-e-zehra/book-rag/internal/core/domain"
)

// assembleContext joins retrieved chunks into one prompt-ready block, each
// segment tagged with its source so the model can attribute statements.
func assembleContext(matches []domain.RetrievedMatch) string {
	segments := make([]string, 0, len(matches))
	for _, m := range matches {
		source := m.Source
		if source == "" {
			source = domain.FallbackDocID
		}
		segments = append(segments, fmt.Sprintf("[Source: %s]\n%s", source, m.Text))
	}
	return strings.Join(segments, "\n\n")
}

func buildExplicitContextPrompt(question, context string) string {
	return fmt.Sprintf("Based on the following context:\n\n%s\n\nAnswer the question: %s", context, question)
}

func buildRetrievalPrompt(question, contextBlock string) string {
	return fmt.Sprintf(`Based on the following context from the book content:

%s

Answer the question: %s

If the context doesn't contain enough information to answer the question, say so.`, contextBlock, question)
}

func buildGeneralKnowledgePrompt(question string) string {
	return "Answer the question based on your knowledge of AI-native systems and humanoid robotics: " + question
}
