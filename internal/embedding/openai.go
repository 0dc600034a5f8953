package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the OpenAI API endpoint; any compatible proxy
	// (LiteLLM, vLLM) works through the same path.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is the default embedding model.
	DefaultModel = "text-embedding-3-small"

	// DefaultDimensions is the output dimension of the default model.
	DefaultDimensions = 1536

	defaultHTTPTimeout = 30 * time.Second
)

// Config holds settings for the OpenAI-compatible embedding client.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// Client is an OpenAI-compatible embedding API client.
type Client struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
}

// Compile-time check that Client implements Embedder.
var _ Embedder = (*Client)(nil)

type embedRequest struct {
	Input          []string `json:"input"`
	Model          string   `json:"model"`
	EncodingFormat string   `json:"encoding_format"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
}

// NewClient creates an embedding client. APIKey is required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}

	return &Client{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// ModelName returns the configured model identifier.
func (c *Client) ModelName() string { return c.model }

// EmbedBatch embeds all non-blank texts in one API round-trip and maps the
// results back to their original positions. Blank texts get a nil vector.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	// Filter blanks, remembering original positions.
	inputs := make([]string, 0, len(texts))
	positions := make([]int, 0, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		inputs = append(inputs, t)
		positions = append(positions, i)
	}

	results := make([][]float32, len(texts))
	if len(inputs) == 0 {
		return results, nil
	}

	vectors, err := c.embedRequest(ctx, inputs)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(inputs) {
		return nil, fmt.Errorf("embedding API returned %d results for %d inputs (model=%s)",
			len(vectors), len(inputs), c.model)
	}

	for i, v := range vectors {
		results[positions[i]] = v
	}
	return results, nil
}

func (c *Client) embedRequest(ctx context.Context, inputs []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{
		Input:          inputs,
		Model:          c.model,
		EncodingFormat: "float",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send embedding request to %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embedding API error (model=%s, status=%d): %s",
			c.model, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decode embedding response from %s: %w", c.baseURL, err)
	}

	// Sort by index to preserve input order.
	sort.Slice(embedResp.Data, func(i, j int) bool {
		return embedResp.Data[i].Index < embedResp.Data[j].Index
	})

	vectors := make([][]float32, len(embedResp.Data))
	for i, d := range embedResp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
