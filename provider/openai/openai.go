package openai_provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mohammad-safakhou/oratriage/internal/httpclient"
	"github.com/mohammad-safakhou/oratriage/provider/models"
)

const DefaultBaseURL = "https://api.openai.com/v1"

var ErrNoChoices = errors.New("no choices in response")

// client implements provider.Provider against an OpenAI-compatible chat completions endpoint
type client struct {
	http      *httpclient.Client
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
}

type responseFormat struct {
	Type string `json:"type"`
}

// request represents a request to the chat completions API
type request struct {
	Model          string           `json:"model"`
	Messages       []models.Message `json:"messages"`
	Temperature    float64          `json:"temperature"`
	MaxTokens      int              `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat  `json:"response_format,omitempty"`
}

// response represents a response from the chat completions API
type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(http *httpclient.Client, baseURL, apiKey, model string, maxTokens int) *client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &client{
		http:      http,
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
	}
}

// Complete sends messages and returns the first choice's content.
func (c *client) Complete(ctx context.Context, messages []models.Message, opts models.CompletionOptions) (string, error) {
	body := request{
		Model:       c.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   c.maxTokens,
	}
	if opts.MaxTokens > 0 {
		body.MaxTokens = opts.MaxTokens
	}
	if opts.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	var resp response
	if err := c.http.DoJSON(ctx, http.MethodPost, c.baseURL+"/chat/completions", headers, body, &resp); err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
