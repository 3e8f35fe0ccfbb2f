package domain

// FallbackDocID is recorded in chunk payloads when a document arrives
// without a stable external identifier.
const FallbackDocID = "unknown"

// Document is a raw ingestable text blob with its provenance. DocID may be
// empty; the pipeline substitutes FallbackDocID before upload.
type Document struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	DocID   string `json:"doc_id,omitempty"`
}

// ChunkMeta is the per-chunk metadata carried from the chunker through the
// embedding batch into the vector index payload. ChunkID is the zero-based
// position of the chunk within its document.
type ChunkMeta struct {
	Source         string `json:"source"`
	ChunkID        int    `json:"chunk_id"`
	DocID          string `json:"doc_id"`
	OriginalLength int    `json:"original_length"`
}
