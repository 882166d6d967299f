package web_search

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mohammad-safakhou/oratriage/internal/httpclient"
	"github.com/mohammad-safakhou/oratriage/internal/telemetry"
	"github.com/mohammad-safakhou/oratriage/tools/web_search/models"
)

// Chain runs backends in preference order behind the allow-list. It never fails:
// backend errors are logged, counted and fall through to the next candidate.
type Chain struct {
	logger   *zap.Logger
	pinned   Backend
	ordered  []Backend
	fallback Backend
}

// NewChain tries ordered backends in turn and ends with fallback, the structural
// HTML backend.
func NewChain(logger *zap.Logger, fallback Backend, ordered ...Backend) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Chain{logger: logger.Named("search"), fallback: AllowList{Backend: fallback}}
	for _, b := range ordered {
		c.ordered = append(c.ordered, AllowList{Backend: b})
	}
	return c
}

// Pin returns a copy of c that uses only b, with the fallback kept for when b errors.
func (c *Chain) Pin(b Backend) *Chain {
	cp := *c
	cp.pinned = AllowList{Backend: b}
	return &cp
}

// Build wires the configured backends. An empty override selects the default
// order serper, brave, then html.
func Build(override Provider, s Settings, client *httpclient.Client, logger *zap.Logger) (*Chain, error) {
	html, err := NewBackend(HTMLProvider, s, client)
	if err != nil {
		return nil, err
	}
	sp, _ := NewBackend(SerperProvider, s, client)
	br, _ := NewBackend(BraveProvider, s, client)
	chain := NewChain(logger, html, sp, br)
	if override == "" {
		return chain, nil
	}
	pinned, err := NewBackend(override, s, client)
	if err != nil {
		return nil, err
	}
	return chain.Pin(pinned), nil
}

// Search returns allow-listed hits for q, possibly none.
func (c *Chain) Search(ctx context.Context, q string, max int, region string) []models.Result {
	if c.pinned != nil {
		hits, err := c.try(ctx, c.pinned, q, max, region)
		if err == nil || c.pinned.Name() == c.fallback.Name() {
			return hits
		}
		hits, _ = c.try(ctx, c.fallback, q, max, region)
		return hits
	}
	for _, b := range c.ordered {
		hits, err := c.try(ctx, b, q, max, region)
		if err == nil && len(hits) > 0 {
			return hits
		}
	}
	hits, _ := c.try(ctx, c.fallback, q, max, region)
	return hits
}

func (c *Chain) try(ctx context.Context, b Backend, q string, max int, region string) ([]models.Result, error) {
	hits, err := b.Search(ctx, q, max, region)
	switch {
	case errors.Is(err, models.ErrMissingAPIKey):
		telemetry.RecordBackend(b.Name(), "missing_key")
		c.logger.Debug("backend skipped", zap.String("backend", b.Name()))
		return nil, err
	case err != nil:
		telemetry.RecordBackend(b.Name(), "error")
		c.logger.Warn("backend failed", zap.String("backend", b.Name()), zap.String("query", q), zap.Error(err))
		return nil, err
	case len(hits) == 0:
		telemetry.RecordBackend(b.Name(), "empty")
	default:
		telemetry.RecordBackend(b.Name(), "ok")
	}
	return hits, nil
}
