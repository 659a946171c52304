// Package qdrant is a minimal HTTP client for the vector store: point
// upsert, paginated id scroll, and nearest-neighbour search.
package qdrant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"steward/internal/id"
	"steward/internal/model"
)

const scrollPageSize = 1000

// Client talks to one collection of the vector store.
type Client struct {
	baseURL    string
	collection string
	client     *http.Client
}

// NewClient creates a client for the given store and collection.
func NewClient(baseURL, collection string) *Client {
	return &Client{
		baseURL:    baseURL,
		collection: collection,
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

// --- collection bootstrap ---

// EnsureCollection creates the collection with a named dense vector of the
// given dimension. An already-existing collection is not an error.
func (c *Client) EnsureCollection(dimension int) error {
	body := map[string]any{
		"vectors": map[string]any{
			"dense": map[string]any{
				"size":     dimension,
				"distance": "Cosine",
			},
		},
	}

	status, respBody, err := c.do(http.MethodPut, c.collectionURL(""), body)
	if err != nil {
		return err
	}
	if status >= 200 && status <= 299 {
		return nil
	}
	if status == http.StatusConflict || bytes.Contains(respBody, []byte("already exists")) {
		return nil
	}
	return fmt.Errorf("create collection returned %d: %s", status, truncate(respBody, 200))
}

// --- upsert ---

type pointPayload struct {
	ChunkID     string `json:"chunk_id"`
	SessionID   string `json:"session_id"`
	ProjectPath string `json:"project_path"`
	Timestamp   string `json:"timestamp"`
	Content     string `json:"content"`
	Context     string `json:"context,omitempty"`
}

type point struct {
	ID      uint32               `json:"id"`
	Vector  map[string][]float32 `json:"vector"`
	Payload pointPayload         `json:"payload"`
}

// Upsert writes embedded chunks as points. Empty input succeeds without a
// network call.
func (c *Client) Upsert(chunks []model.EmbeddedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]point, len(chunks))
	for i, ch := range chunks {
		points[i] = point{
			ID:     PointID(string(ch.ID)),
			Vector: map[string][]float32{"dense": ch.Vector},
			Payload: pointPayload{
				ChunkID:     string(ch.ID),
				SessionID:   string(ch.SessionID),
				ProjectPath: ch.ProjectPath,
				Timestamp:   ch.Timestamp.UTC().Format(time.RFC3339),
				Content:     ch.Content,
				Context:     ch.Context,
			},
		}
	}

	status, respBody, err := c.do(http.MethodPut,
		c.collectionURL("/points?wait=true"),
		map[string]any{"points": points})
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("upsert returned %d: %s", status, truncate(respBody, 200))
	}

	var resp struct {
		Status json.RawMessage `json:"status"`
		Result struct {
			Status string `json:"status"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("unmarshal upsert response: %w", err)
	}
	if string(resp.Status) == `"ok"` || resp.Result.Status == "completed" {
		return nil
	}
	return fmt.Errorf("upsert not acknowledged: %s", truncate(respBody, 200))
}

// --- scroll ---

// ScrollChunkIDs pages through the whole collection and returns every
// stored chunk id, vectors excluded.
func (c *Client) ScrollChunkIDs() ([]id.Chunk, error) {
	var (
		out    []id.Chunk
		offset json.RawMessage
	)

	for {
		body := map[string]any{
			"limit":        scrollPageSize,
			"with_payload": map[string]any{"include": []string{"chunk_id"}},
			"with_vector":  false,
		}
		if offset != nil {
			body["offset"] = offset
		}

		status, respBody, err := c.do(http.MethodPost, c.collectionURL("/points/scroll"), body)
		if err != nil {
			return nil, err
		}
		if status < 200 || status > 299 {
			return nil, fmt.Errorf("scroll returned %d: %s", status, truncate(respBody, 200))
		}

		var resp struct {
			Result struct {
				Points []struct {
					Payload struct {
						ChunkID string `json:"chunk_id"`
					} `json:"payload"`
				} `json:"points"`
				NextPageOffset json.RawMessage `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return nil, fmt.Errorf("unmarshal scroll response: %w", err)
		}

		for _, p := range resp.Result.Points {
			if p.Payload.ChunkID != "" {
				out = append(out, id.Chunk(p.Payload.ChunkID))
			}
		}

		offset = resp.Result.NextPageOffset
		if offset == nil || string(offset) == "null" {
			return out, nil
		}
	}
}

// --- search ---

// SearchParams shapes one nearest-neighbour query. A nil Threshold means no
// threshold; zero is a real filter.
type SearchParams struct {
	Vector      []float32
	Limit       int
	ProjectPath string // exact-match filter; empty means unfiltered
	Threshold   *float64
}

// Search returns the store's nearest neighbours in store order.
func (c *Client) Search(p SearchParams) ([]model.SearchResult, error) {
	body := map[string]any{
		"vector":       map[string]any{"name": "dense", "vector": p.Vector},
		"limit":        p.Limit,
		"with_payload": true,
	}
	if p.ProjectPath != "" {
		body["filter"] = map[string]any{
			"must": []map[string]any{
				{"key": "project_path", "match": map[string]any{"value": p.ProjectPath}},
			},
		}
	}
	if p.Threshold != nil {
		body["score_threshold"] = *p.Threshold
	}

	status, respBody, err := c.do(http.MethodPost, c.collectionURL("/points/search"), body)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("search returned %d: %s", status, truncate(respBody, 200))
	}

	var resp struct {
		Result []struct {
			Score   float64      `json:"score"`
			Payload pointPayload `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal search response: %w", err)
	}

	out := make([]model.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		ts, _ := time.Parse(time.RFC3339, r.Payload.Timestamp)
		out = append(out, model.SearchResult{
			ChunkID:     id.Chunk(r.Payload.ChunkID),
			SessionID:   id.Session(r.Payload.SessionID),
			ProjectPath: r.Payload.ProjectPath,
			Timestamp:   ts,
			Content:     r.Payload.Content,
			Context:     r.Payload.Context,
			Score:       r.Score,
		})
	}
	return out, nil
}

// --- helpers ---

func (c *Client) collectionURL(suffix string) string {
	return c.baseURL + "/collections/" + c.collection + suffix
}

// do sends one JSON request and returns the status and body. Transport
// errors are returned as-is; status handling stays with the caller.
func (c *Client) do(method, url string, body any) (int, []byte, error) {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(reqBody))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request to vector store: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func truncate(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
