package embedding

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const (
	// OpenAIDefaultBaseURL is the default API endpoint prefix.
	OpenAIDefaultBaseURL = "https://api.openai.com/v1"
	// OpenAIDefaultModel is the default embedding model.
	OpenAIDefaultModel = "text-embedding-3-small"
	// OpenAIDefaultDimensions is the vector size of the default model.
	OpenAIDefaultDimensions = 1536

	openAIHTTPTimeout = 30 * time.Second
)

// OpenAIOptions configures an OpenAI-compatible embedding client.
// Zero fields fall back to the OpenAIDefault* constants; APIKey is required.
type OpenAIOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
}

// OpenAIClient calls an OpenAI-compatible /embeddings endpoint. Any service
// speaking the same REST dialect (LiteLLM, vLLM, Azure) works via BaseURL.
type OpenAIClient struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
}

var _ Provider = (*OpenAIClient)(nil)

type openAIEmbedRequest struct {
	Input          []string `json:"input"`
	Model          string   `json:"model"`
	EncodingFormat string   `json:"encoding_format"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
}

// NewOpenAIClient creates an embedding client from the given options.
func NewOpenAIClient(opts OpenAIOptions) (*OpenAIClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("embedding: API key is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = OpenAIDefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = OpenAIDefaultModel
	}
	if opts.Dimensions <= 0 {
		opts.Dimensions = OpenAIDefaultDimensions
	}
	return &OpenAIClient{
		client:     &http.Client{Timeout: openAIHTTPTimeout},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		model:      opts.Model,
		dimensions: opts.Dimensions,
	}, nil
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string { return c.model }

// Dimensions returns the configured vector size.
func (c *OpenAIClient) Dimensions() int { return c.dimensions }

// EmbedBatch embeds all texts in one API call. A response with a different
// number of vectors than inputs is rejected; partial batches never escape.
func (c *OpenAIClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := openAIEmbedRequest{
		Input:          texts,
		Model:          c.model,
		EncodingFormat: "float",
	}
	body, err := json.Marshal(reqBody)
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

	var embedResp openAIEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decode embedding response from %s: %w", c.baseURL, err)
	}

	// Sort by index to preserve input order
	sort.Slice(embedResp.Data, func(i, j int) bool {
		return embedResp.Data[i].Index < embedResp.Data[j].Index
	})

	if len(embedResp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding API returned %d results for %d inputs (model=%s)",
			len(embedResp.Data), len(texts), c.model)
	}

	results := make([][]float32, len(embedResp.Data))
	for i, d := range embedResp.Data {
		results[i] = d.Embedding
	}
	return results, nil
}
