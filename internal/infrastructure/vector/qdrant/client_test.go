package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sani-e-zehra/book-rag/internal/core/domain"
)

func describeBody(points int, vectorsConfig any) map[string]any {
	return map[string]any{
		"result": map[string]any{
			"points_count": points,
			"config": map[string]any{
				"params": map[string]any{"vectors": vectorsConfig},
			},
		},
	}
}

func unnamedVectors() map[string]any {
	return map[string]any{"size": 4, "distance": "Cosine"}
}

func TestUploadWritesPointsWithFreshIDs(t *testing.T) {
	var upserted struct {
		Points []struct {
			ID      string         `json:"id"`
			Vector  []float32      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/collections/book_vectors":
			_ = json.NewEncoder(w).Encode(describeBody(0, unnamedVectors()))
		case r.Method == http.MethodPut && r.URL.Path == "/collections/book_vectors/points":
			_ = json.NewDecoder(r.Body).Decode(&upserted)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "book_vectors", Options{VectorSize: 4})
	chunks := []string{"first chunk", "second chunk"}
	vectors := [][]float32{{0.1, 0.2, 0.3, 0.4}, {0.5, 0.6, 0.7, 0.8}}
	metadata := []domain.ChunkMeta{
		{Source: "book/ch1.md", ChunkID: 0, DocID: "ch1", OriginalLength: 11},
		{Source: "book/ch1.md", ChunkID: 1, DocID: "ch1", OriginalLength: 12},
	}

	count, err := client.Upload(context.Background(), chunks, vectors, metadata)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 points written, got %d", count)
	}
	if len(upserted.Points) != 2 {
		t.Fatalf("expected 2 points in request, got %d", len(upserted.Points))
	}
	if upserted.Points[0].ID == "" || upserted.Points[0].ID == upserted.Points[1].ID {
		t.Fatalf("expected distinct generated point ids")
	}
	payload := upserted.Points[1].Payload
	if payload["text"] != "second chunk" || payload["source"] != "book/ch1.md" {
		t.Fatalf("unexpected payload %v", payload)
	}
	if payload["chunk_id"].(float64) != 1 || payload["doc_id"] != "ch1" {
		t.Fatalf("unexpected chunk metadata in payload %v", payload)
	}
}

func TestUploadLengthMismatch(t *testing.T) {
	client := New("http://localhost:1", "book_vectors", Options{})
	_, err := client.Upload(context.Background(), []string{"a"}, nil, nil)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDegradedClientStaysDegraded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // unreachable from the start

	client := New(server.URL, "book_vectors", Options{})

	if got := client.Count(context.Background()); got != 0 {
		t.Fatalf("expected count 0 when degraded, got %d", got)
	}

	matches, err := client.Search(context.Background(), []float32{0.1}, 5, 0.5)
	if err != nil || len(matches) != 0 {
		t.Fatalf("expected empty matches without error, got %v, %v", matches, err)
	}

	_, err = client.Upload(context.Background(), []string{"a"}, [][]float32{{0.1}}, []domain.ChunkMeta{{}})
	if !domain.IsKind(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestProbeCreatesMissingCollection(t *testing.T) {
	var created int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/collections/book_vectors":
			if atomic.LoadInt32(&created) == 0 {
				http.NotFound(w, r)
				return
			}
			_ = json.NewEncoder(w).Encode(describeBody(0, unnamedVectors()))
		case r.Method == http.MethodPut && r.URL.Path == "/collections/book_vectors":
			var req struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Vectors.Size != 1536 || req.Vectors.Distance != "Cosine" {
				t.Errorf("unexpected create config: %+v", req.Vectors)
			}
			atomic.StoreInt32(&created, 1)
			w.WriteHeader(http.StatusCreated)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "book_vectors", Options{VectorSize: 1536})
	if err := client.EnsureCollection(context.Background()); err != nil {
		t.Fatalf("EnsureCollection() error = %v", err)
	}
	if atomic.LoadInt32(&created) != 1 {
		t.Fatalf("expected collection to be created")
	}
}

func TestSearchParsesMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/collections/book_vectors":
			_ = json.NewEncoder(w).Encode(describeBody(2, unnamedVectors()))
		case r.Method == http.MethodPost && r.URL.Path == "/collections/book_vectors/points/search":
			var req struct {
				Limit          int     `json:"limit"`
				ScoreThreshold float64 `json:"score_threshold"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Limit != 5 || req.ScoreThreshold != 0.5 {
				t.Errorf("unexpected search params: %+v", req)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"result": []map[string]any{
					{"score": 0.91, "payload": map[string]any{
						"text": "Robots need sensors", "source": "book/ch1.md",
						"chunk_id": 0, "doc_id": "ch1", "original_length": 19,
					}},
					{"score": 0.74, "payload": map[string]any{
						"text": "Control loops", "source": "book/ch2.md",
						"chunk_id": 3, "doc_id": "ch2", "original_length": 13,
					}},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "book_vectors", Options{})
	matches, err := client.Search(context.Background(), []float32{0.1, 0.2}, 5, 0.5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Score < matches[1].Score {
		t.Fatalf("expected descending score order")
	}
	if matches[0].Text != "Robots need sensors" || matches[0].Source != "book/ch1.md" {
		t.Fatalf("unexpected first match %+v", matches[0])
	}
	if matches[1].ChunkID != 3 || matches[1].DocID != "ch2" {
		t.Fatalf("unexpected second match %+v", matches[1])
	}
	if matches[0].Metadata["original_length"].(float64) != 19 {
		t.Fatalf("expected extra payload keys preserved as metadata, got %v", matches[0].Metadata)
	}
}

func TestSearchFallsBackToNamedVectorConvention(t *testing.T) {
	var searches int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/collections/book_vectors":
			_ = json.NewEncoder(w).Encode(describeBody(1, unnamedVectors()))
		case r.Method == http.MethodPost && r.URL.Path == "/collections/book_vectors/points/search":
			atomic.AddInt32(&searches, 1)
			var req struct {
				Vector json.RawMessage `json:"vector"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)

			var namedReq struct {
				Name string `json:"name"`
			}
			if json.Unmarshal(req.Vector, &namedReq) != nil || namedReq.Name != "content" {
				// Collection actually stores named vectors: reject plain ones.
				http.Error(w, `{"status":{"error":"wrong vector name"}}`, http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"result": []map[string]any{
					{"score": 0.8, "payload": map[string]any{"text": "t", "source": "s"}},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "book_vectors", Options{})

	matches, err := client.Search(context.Background(), []float32{0.1}, 5, 0.5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match after convention fallback, got %d", len(matches))
	}
	if got := atomic.LoadInt32(&searches); got != 2 {
		t.Fatalf("expected exactly one fallback retry (2 calls), got %d", got)
	}

	// The flipped convention is cached: the next search succeeds first try.
	if _, err := client.Search(context.Background(), []float32{0.1}, 5, 0.5); err != nil {
		t.Fatalf("second Search() error = %v", err)
	}
	if got := atomic.LoadInt32(&searches); got != 3 {
		t.Fatalf("expected cached convention on second search, got %d total calls", got)
	}
}

func TestCountReadsPointsCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/collections/book_vectors" {
			_ = json.NewEncoder(w).Encode(describeBody(42, unnamedVectors()))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := New(server.URL, "book_vectors", Options{})
	if got := client.Count(context.Background()); got != 42 {
		t.Fatalf("expected count 42, got %d", got)
	}
}

func TestNamedVectorConventionDetectedAtProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/collections/book_vectors":
			_ = json.NewEncoder(w).Encode(describeBody(0, map[string]any{
				"content": map[string]any{"size": 1536, "distance": "Cosine"},
			}))
		case r.Method == http.MethodPost && r.URL.Path == "/collections/book_vectors/points/search":
			var req struct {
				Vector struct {
					Name string `json:"name"`
				} `json:"vector"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Vector.Name != "content" {
				t.Errorf("expected named vector search, got %+v", req)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"result": []map[string]any{}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "book_vectors", Options{})
	if _, err := client.Search(context.Background(), []float32{0.1}, 5, 0.5); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
}
