package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/mohammad-safakhou/oratriage/config"
	"github.com/mohammad-safakhou/oratriage/internal/httpclient"
	"github.com/mohammad-safakhou/oratriage/provider/models"
	openai_provider "github.com/mohammad-safakhou/oratriage/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI Client = "openai"
)

var ErrUnsupportedProvider = errors.New("unsupported LLM provider")

// Provider is the chat-completion transport used by the analysis and guidance services.
type Provider interface {
	Complete(ctx context.Context, messages []models.Message, opts models.CompletionOptions) (string, error)
}

// NewProvider creates a new LLM client based on the provided configuration
func NewProvider(cfg config.LLMConfig, client *httpclient.Client) (Provider, error) {
	switch Client(cfg.Type) {
	case OpenAI:
		if cfg.APIKey == "" {
			return nil, errors.New("llm.api_key not set")
		}
		return openai_provider.NewOpenAIClient(client, cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.MaxTokens), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Type)
	}
}
