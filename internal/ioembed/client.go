// Package ioembed implements embed.Model as a client of an HTTP
// inference service. The service accepts a model name and a list of
// texts and returns one vector per text.
package ioembed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lexgraph/lexdb/pkg/config"
	"github.com/lexgraph/lexdb/pkg/embed"
)

// Client talks to the embedding inference service.
type Client struct {
	url    string
	model  string
	client *http.Client
}

// New creates a client from configuration.
func New(cfg *config.EmbeddingConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		url:    cfg.URL,
		model:  cfg.Model,
		client: &http.Client{Timeout: timeout},
	}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

// Embed sends one batch to the inference service. Memory exhaustion on
// the service side, signalled by HTTP 507 or an "out of memory" error
// body, surfaces as embed.ErrOOM so the engine can halve the batch.
func (c *Client) Embed(
	ctx context.Context,
	texts []string,
) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("cannot encode embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("cannot create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding service unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cannot read embed response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if isOOMResponse(resp.StatusCode, data) {
			return nil, fmt.Errorf(
				"embedding service: %s: %w",
				http.StatusText(resp.StatusCode), embed.ErrOOM)
		}
		return nil, fmt.Errorf(
			"embedding service returned %s: %s",
			resp.Status, strings.TrimSpace(string(data)))
	}

	var parsed embedResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("cannot decode embed response: %w", err)
	}
	if parsed.Error != "" {
		if strings.Contains(strings.ToLower(parsed.Error), "out of memory") {
			return nil, fmt.Errorf(
				"embedding service: %s: %w", parsed.Error, embed.ErrOOM)
		}
		return nil, fmt.Errorf("embedding service: %s", parsed.Error)
	}

	return parsed.Embeddings, nil
}

func isOOMResponse(status int, body []byte) bool {
	if status == http.StatusInsufficientStorage {
		return true
	}
	return strings.Contains(strings.ToLower(string(body)), "out of memory")
}
