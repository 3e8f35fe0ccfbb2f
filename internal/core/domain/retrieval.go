package domain

// RetrievedMatch is the read-time projection of an indexed point plus its
// similarity score. Not persisted.
type RetrievedMatch struct {
	Text     string         `json:"text"`
	Source   string         `json:"source"`
	ChunkID  int            `json:"chunk_id"`
	DocID    string         `json:"doc_id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// QAResult is the terminal output of the answer path. The answer entry point
// is total: it always produces a well-formed QAResult, never an error.
type QAResult struct {
	Answer     string   `json:"answer"`
	Sources    []string `json:"sources"`
	Confidence float64  `json:"confidence"`
}

// Source sentinels for the non-retrieval answer branches.
const (
	SourceUserProvided     = "user-provided"
	SourceGeneralKnowledge = "general-knowledge"
)
