package labeling

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const (
	// OpenAIDefaultBaseURL is the default API endpoint prefix.
	OpenAIDefaultBaseURL = "https://api.openai.com/v1"
	// OpenAIDefaultModel is the default chat model for naming.
	OpenAIDefaultModel = "gpt-4o-mini"

	// maxNameLength caps returned names; anything longer is truncated.
	maxNameLength = 60

	openAIHTTPTimeout  = 30 * time.Second
	namingMaxTokens    = 32
	namingSystemPrompt = "You name groups of related creative projects. " +
		"Reply with a short descriptive name of at most four words. " +
		"No quotes, no punctuation, no explanation."
)

// OpenAIOptions configures an OpenAI-compatible labeling client.
type OpenAIOptions struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIClient names clusters via an OpenAI-compatible chat completions API.
type OpenAIClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

var _ Labeler = (*OpenAIClient)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAIClient creates a labeling client from the given options.
func NewOpenAIClient(opts OpenAIOptions) (*OpenAIClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("labeling: API key is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = OpenAIDefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = OpenAIDefaultModel
	}
	return &OpenAIClient{
		client:  &http.Client{Timeout: openAIHTTPTimeout},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		model:   opts.Model,
	}, nil
}

// NameCluster asks the chat model for a short name covering the sample texts.
func (c *OpenAIClient) NameCluster(ctx context.Context, sampleTexts []string) (string, error) {
	if len(sampleTexts) == 0 {
		return "", fmt.Errorf("labeling: no sample texts")
	}

	var sb strings.Builder
	sb.WriteString("Name the theme shared by these projects:\n")
	for _, text := range sampleTexts {
		sb.WriteString("- ")
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: namingSystemPrompt},
			{Role: "user", Content: sb.String()},
		},
		MaxTokens: namingMaxTokens,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal naming request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create naming request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send naming request to %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("naming API error (model=%s, status=%d): %s",
			c.model, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decode naming response from %s: %w", c.baseURL, err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("naming API error: %s: %s", chatResp.Error.Type, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("naming API returned no choices (model=%s)", c.model)
	}

	return cleanName(chatResp.Choices[0].Message.Content), nil
}

// cleanName strips quotes and newlines from a model reply and caps its length.
func cleanName(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.Trim(name, `"'`)
	if i := strings.IndexAny(name, "\r\n"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if len(name) > maxNameLength {
		name = strings.TrimSpace(name[:maxNameLength])
	}
	return name
}
