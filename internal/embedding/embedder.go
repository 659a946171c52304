// Package embedding generates dense vectors for chunks and queries.
package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Model names an embedding model and its vector dimension.
type Model struct {
	Name      string
	Dimension int
}

var (
	// NomicEmbedText is the default model.
	NomicEmbedText = Model{Name: "nomic-embed-text", Dimension: 768}

	// MxbaiEmbedLarge is the larger configuration.
	MxbaiEmbedLarge = Model{Name: "mxbai-embed-large", Dimension: 1024}
)

// ModelByName resolves a model preset. Unknown names are passed through
// with an unknown dimension; the first response settles it.
func ModelByName(name string) Model {
	switch name {
	case "", NomicEmbedText.Name:
		return NomicEmbedText
	case MxbaiEmbedLarge.Name:
		return MxbaiEmbedLarge
	}
	return Model{Name: name}
}

// Client calls the embedding backend's embed endpoint.
type Client struct {
	baseURL string
	model   Model
	client  *http.Client
}

// NewClient creates an embedding client for the given backend and model.
func NewClient(baseURL string, model Model) *Client {
	return &Client{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Model returns the model this client embeds with.
func (c *Client) Model() Model { return c.model }

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed sends one input to the backend and returns its vector. Any failure
// (transport, non-2xx, malformed body, empty result) comes back as an
// error; the non-2xx, malformed and empty cases carry a truncated body
// preview for diagnosis.
func (c *Client) Embed(input string) ([]float32, error) {
	reqBody, err := json.Marshal(embedRequest{Model: c.model.Name, Input: input})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.client.Post(c.baseURL+"/api/embed", "application/json", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("embed backend returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var result embedResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %s: %w", truncate(string(body), 200), err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("embed backend returned no embedding: %s", truncate(string(body), 200))
	}

	return result.Embeddings[0], nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
