// Package openai is a minimal chat-completions client with tool calling.
// The agent treats it as a black box: messages and tool declarations in,
// an assistant message (possibly carrying tool calls) out.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	DefaultModel     = "gpt-4o-mini"
	DefaultEndpoint  = "https://api.openai.com/v1/chat/completions"
	DefaultTimeout   = 60 * time.Second
	DefaultMaxTokens = 4096
)

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	maxTokens  int
	httpClient *http.Client
}

// Config holds client configuration. Zero fields fall back to environment
// variables and then to defaults.
type Config struct {
	APIKey    string
	Model     string        // Default: gpt-4o-mini
	Endpoint  string        // Default: https://api.openai.com/v1/chat/completions
	Timeout   time.Duration // Default: 60s
	MaxTokens int           // Default: 4096
}

// NewClient creates a chat completions client.
func NewClient(config Config) *Client {
	if config.Model == "" {
		if envModel := os.Getenv("OPENAI_DEFAULT_MODEL"); envModel != "" {
			config.Model = envModel
		} else {
			config.Model = DefaultModel
		}
	}
	if config.Endpoint == "" {
		if envEndpoint := os.Getenv("OPENAI_API_ENDPOINT"); envEndpoint != "" {
			config.Endpoint = envEndpoint
		} else {
			config.Endpoint = DefaultEndpoint
		}
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}

	return &Client{
		apiKey:    config.APIKey,
		model:     config.Model,
		endpoint:  config.Endpoint,
		maxTokens: config.MaxTokens,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Model returns the model identifier.
func (c *Client) Model() string {
	return c.model
}

// Chat sends the conversation and tool declarations and returns the
// assistant's message for the next turn.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage, tools []Tool) (*ChatMessage, error) {
	req := &ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: c.maxTokens,
	}
	if len(tools) > 0 {
		req.Tools = tools
		req.ToolChoice = "auto"
	}

	resp, err := c.callAPI(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("API returned no choices")
	}

	msg := resp.Choices[0].Message
	return &msg, nil
}

func (c *Client) callAPI(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp ChatCompletionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("API error: %s", resp.Error.Message)
	}

	return &resp, nil
}
