package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sani-e-zehra/book-rag/internal/core/domain"
)

// namedVectorSlot is the sub-vector name used by collections created with a
// named vector configuration. Collections created by this service use the
// unnamed convention; the named slot exists for collections provisioned by
// earlier tooling.
const namedVectorSlot = "content"

type connState int

const (
	stateUninitialized connState = iota
	stateConnected
	stateDegraded
)

// Client talks to a Qdrant collection over its REST API.
//
// The connection is probed lazily on first use. A failed probe degrades the
// client for the process lifetime: Search returns no matches, Count returns
// zero and Upload fails with ErrUnavailable, so the host service keeps
// running without a reachable vector store.
type Client struct {
	baseURL    string
	apiKey     string
	collection string
	vectorSize int
	httpClient *http.Client
	logger     *slog.Logger

	mu          sync.Mutex
	state       connState
	namedVector string // empty means the unnamed single-vector convention
}

type Options struct {
	APIKey     string
	VectorSize int
	Timeout    time.Duration
	Logger     *slog.Logger
}

func New(baseURL, collection string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	vectorSize := opts.VectorSize
	if vectorSize <= 0 {
		vectorSize = 1536
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     opts.APIKey,
		collection: collection,
		vectorSize: vectorSize,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// EnsureCollection creates the collection with the configured vector size and
// cosine distance when absent. Idempotent; an existing collection is left
// untouched even if its dimension differs (a mismatch surfaces as a remote
// error at write or search time).
func (c *Client) EnsureCollection(ctx context.Context) error {
	if !c.connect(ctx) {
		return domain.WrapError(domain.ErrUnavailable, "ensure collection", errDegraded)
	}
	return nil
}

// Upload writes one point per chunk with a freshly generated id. Ids are
// never derived from content, so re-uploading identical text creates
// duplicate points.
func (c *Client) Upload(ctx context.Context, chunks []string, vectors [][]float32, metadata []domain.ChunkMeta) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	if len(chunks) != len(vectors) || len(chunks) != len(metadata) {
		return 0, domain.WrapError(domain.ErrInvalidInput, "upload chunks",
			fmt.Errorf("chunks/vectors/metadata length mismatch: %d/%d/%d", len(chunks), len(vectors), len(metadata)))
	}
	if !c.connect(ctx) {
		return 0, domain.WrapError(domain.ErrUnavailable, "upload chunks", errDegraded)
	}

	points := make([]map[string]any, 0, len(chunks))
	for i := range chunks {
		points = append(points, map[string]any{
			"id":     uuid.NewString(),
			"vector": c.pointVector(vectors[i]),
			"payload": map[string]any{
				"text":            chunks[i],
				"source":          metadata[i].Source,
				"chunk_id":        metadata[i].ChunkID,
				"doc_id":          metadata[i].DocID,
				"original_length": metadata[i].OriginalLength,
			},
		})
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.collection)
	resp, err := c.doJSON(ctx, http.MethodPut, url, map[string]any{"points": points})
	if err != nil {
		return 0, fmt.Errorf("qdrant upsert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return 0, statusError("upsert", resp)
	}
	return len(points), nil
}

// Search returns at most topK matches with similarity >= scoreThreshold,
// ordered by descending score. The vector naming convention is resolved at
// connect time; a structural rejection flips it once and the flipped
// convention is cached for subsequent calls.
func (c *Client) Search(ctx context.Context, queryVector []float32, topK int, scoreThreshold float64) ([]domain.RetrievedMatch, error) {
	if !c.connect(ctx) {
		return nil, nil
	}

	named := c.currentNamedVector()
	matches, err := c.searchWith(ctx, queryVector, topK, scoreThreshold, named)
	if err == nil {
		return matches, nil
	}

	var stErr *requestError
	if !errors.As(err, &stErr) || stErr.StatusCode != http.StatusBadRequest {
		return nil, err
	}

	flipped := namedVectorSlot
	if named != "" {
		flipped = ""
	}
	matches, retryErr := c.searchWith(ctx, queryVector, topK, scoreThreshold, flipped)
	if retryErr != nil {
		return nil, err
	}

	c.setNamedVector(flipped)
	return matches, nil
}

// Count returns the number of points in the collection, zero when the store
// is unreachable.
func (c *Client) Count(ctx context.Context) int {
	if !c.connect(ctx) {
		return 0
	}

	info, err := c.describeCollection(ctx)
	if err != nil {
		c.logger.Error("qdrant collection describe failed", "collection", c.collection, "error", err)
		return 0
	}
	return info.Result.PointsCount
}

func (c *Client) searchWith(ctx context.Context, queryVector []float32, topK int, scoreThreshold float64, named string) ([]domain.RetrievedMatch, error) {
	body := map[string]any{
		"limit":           topK,
		"score_threshold": scoreThreshold,
		"with_payload":    true,
	}
	if named != "" {
		body["vector"] = map[string]any{"name": named, "vector": queryVector}
	} else {
		body["vector"] = queryVector
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)
	resp, err := c.doJSON(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, statusError("search", resp)
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]domain.RetrievedMatch, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, matchFromPayload(r.Payload, r.Score))
	}
	return out, nil
}

// connect resolves the connection state on first use. The outcome is sticky:
// a degraded client stays degraded until process restart.
func (c *Client) connect(ctx context.Context) bool {
	c.mu.Lock()
	if c.state != stateUninitialized {
		connected := c.state == stateConnected
		c.mu.Unlock()
		return connected
	}
	c.mu.Unlock()

	named, err := c.probe(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Warn("vector store unreachable, continuing degraded",
			"collection", c.collection, "error", err)
		c.state = stateDegraded
		return false
	}
	c.state = stateConnected
	c.namedVector = named
	return true
}

// probe describes the collection, creating it when absent, and reports the
// vector naming convention the collection was provisioned with.
func (c *Client) probe(ctx context.Context) (string, error) {
	info, err := c.describeCollection(ctx)
	if err == nil {
		return info.namedVectorSlot(), nil
	}

	var stErr *requestError
	if !errors.As(err, &stErr) || stErr.StatusCode != http.StatusNotFound {
		return "", err
	}

	if err := c.createCollection(ctx); err != nil {
		return "", err
	}
	c.logger.Info("created qdrant collection",
		"collection", c.collection, "vector_size", c.vectorSize)
	return "", nil
}

type collectionInfo struct {
	Result struct {
		PointsCount int `json:"points_count"`
		Config      struct {
			Params struct {
				Vectors json.RawMessage `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

// namedVectorSlot inspects the collection config: a flat params object with
// a "size" field is the unnamed convention, otherwise the config maps slot
// names to vector params.
func (i *collectionInfo) namedVectorSlot() string {
	raw := i.Result.Config.Params.Vectors
	if len(raw) == 0 {
		return ""
	}

	var flat struct {
		Size int `json:"size"`
	}
	if err := json.Unmarshal(raw, &flat); err == nil && flat.Size > 0 {
		return ""
	}

	var named map[string]json.RawMessage
	if err := json.Unmarshal(raw, &named); err != nil || len(named) == 0 {
		return ""
	}
	if _, ok := named[namedVectorSlot]; ok {
		return namedVectorSlot
	}
	for name := range named {
		return name
	}
	return ""
}

func (c *Client) describeCollection(ctx context.Context) (*collectionInfo, error) {
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create describe request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qdrant describe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, statusError("describe", resp)
	}

	var info collectionInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode describe response: %w", err)
	}
	return &info, nil
}

func (c *Client) createCollection(ctx context.Context) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     c.vectorSize,
			"distance": "Cosine",
		},
	}

	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	resp, err := c.doJSON(ctx, http.MethodPut, url, body)
	if err != nil {
		return fmt.Errorf("qdrant create collection: %w", err)
	}
	defer resp.Body.Close()

	// 409: another instance created it first.
	if resp.StatusCode == http.StatusConflict {
		return nil
	}
	if resp.StatusCode >= 300 {
		return statusError("create collection", resp)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	return c.httpClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}
}

func (c *Client) pointVector(vector []float32) any {
	if named := c.currentNamedVector(); named != "" {
		return map[string][]float32{named: vector}
	}
	return vector
}

func (c *Client) currentNamedVector() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.namedVector
}

func (c *Client) setNamedVector(named string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.namedVector = named
}

func matchFromPayload(payload map[string]any, score float64) domain.RetrievedMatch {
	match := domain.RetrievedMatch{
		Text:    payloadString(payload, "text"),
		Source:  payloadString(payload, "source"),
		ChunkID: payloadInt(payload, "chunk_id"),
		DocID:   payloadString(payload, "doc_id"),
		Score:   score,
	}

	for k, v := range payload {
		switch k {
		case "text", "source", "chunk_id", "doc_id":
		default:
			if match.Metadata == nil {
				match.Metadata = make(map[string]any)
			}
			match.Metadata[k] = v
		}
	}
	return match
}

func payloadString(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func payloadInt(payload map[string]any, key string) int {
	switch v := payload[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

var errDegraded = errors.New("qdrant connection is degraded")

type requestError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *requestError) Error() string {
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("qdrant %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("qdrant %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

func statusError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &requestError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
	}
}
