package web_search

import (
	"context"
	"errors"
	"fmt"

	"github.com/mohammad-safakhou/oratriage/internal/httpclient"
	"github.com/mohammad-safakhou/oratriage/tools/web_search/brave"
	"github.com/mohammad-safakhou/oratriage/tools/web_search/duckduckgo"
	"github.com/mohammad-safakhou/oratriage/tools/web_search/models"
	"github.com/mohammad-safakhou/oratriage/tools/web_search/serper"
)

// Backend is one search provider. Implementations return raw hits; allow-listing
// and redirect unwrapping are applied by the AllowList wrapper.
type Backend interface {
	Name() string
	Search(ctx context.Context, q string, max int, region string) ([]models.Result, error)
}

type Provider string

const (
	SerperProvider Provider = "serper"
	BraveProvider  Provider = "brave"
	HTMLProvider   Provider = "html"
)

var (
	ErrMissingAPIKey       = models.ErrMissingAPIKey
	ErrUnsupportedProvider = errors.New("unsupported search provider")
)

// Settings carries backend credentials and endpoints.
type Settings struct {
	SerperAPIKey   string
	SerperEndpoint string
	BraveAPIKey    string
	BraveEndpoint  string
	HTMLEndpoint   string
}

// NewBackend builds a raw (unfiltered) backend for provider.
func NewBackend(provider Provider, s Settings, client *httpclient.Client) (Backend, error) {
	switch provider {
	case SerperProvider:
		return serper.Search{APIKey: s.SerperAPIKey, Endpoint: s.SerperEndpoint, Client: client}, nil
	case BraveProvider:
		return brave.Search{APIKey: s.BraveAPIKey, Endpoint: s.BraveEndpoint, Client: client}, nil
	case HTMLProvider:
		return duckduckgo.Search{Endpoint: s.HTMLEndpoint, Client: client}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
}
