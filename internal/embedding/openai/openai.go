package openai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Client is an OpenAI-compatible embeddings client. Failures propagate to
// the caller unchanged; there is no internal retry.
type Client struct {
	baseURL   string
	apiKey    string
	model     string
	dimension int
	client    *http.Client
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  key,
		model:   cfg.Model,
		client:  &http.Client{Timeout: t},
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai" }

// Prepare is not required for remote embedding; the dimension is learned on
// the first embed call.
func (c *Client) Prepare(corpus []string) error { return nil }

// Dimension returns the dimensionality of the produced embedding vectors.
func (c *Client) Dimension() int { return c.dimension }

// Embed returns an embedding vector for the given text.
func (c *Client) Embed(text string) ([]float64, error) {
	body, _ := json.Marshal(struct {
		Input string `json:"input"`
		Model string `json:"model"`
	}{Input: text, Model: c.model})

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embeddings request failed: %s", resp.Status)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// OpenAI-compatible response shape.
	var openaiOut struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &openaiOut); err == nil && len(openaiOut.Data) > 0 && len(openaiOut.Data[0].Embedding) > 0 {
		return c.remember(openaiOut.Data[0].Embedding), nil
	}

	// Ollama-native shape: {"embedding": [...]}.
	var ollamaOut struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &ollamaOut); err == nil && len(ollamaOut.Embedding) > 0 {
		return c.remember(ollamaOut.Embedding), nil
	}

	return nil, fmt.Errorf("unrecognized embeddings response from %s", c.baseURL)
}

func (c *Client) remember(v []float64) []float64 {
	if c.dimension == 0 {
		c.dimension = len(v)
	}
	return v
}

type snapshot struct {
	Model     string `json:"model"`
	Dimension int    `json:"dimension"`
}

// State records the model identity and the learned dimension.
func (c *Client) State() ([]byte, error) {
	return json.Marshal(snapshot{Model: c.model, Dimension: c.dimension})
}

// Restore checks the persisted model matches the configured one; embeddings
// from different models are not comparable.
func (c *Client) Restore(state []byte) error {
	var snap snapshot
	if err := json.Unmarshal(state, &snap); err != nil {
		return err
	}
	if snap.Model != c.model {
		return fmt.Errorf("index was built with model %q, configured model is %q", snap.Model, c.model)
	}
	c.dimension = snap.Dimension
	return nil
}
