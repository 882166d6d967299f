package serper

import (
	"context"
	"net/http"
	"strings"

	"github.com/mohammad-safakhou/oratriage/internal/httpclient"
	"github.com/mohammad-safakhou/oratriage/tools/web_search/models"
)

const DefaultEndpoint = "https://google.serper.dev/search"

type Search struct {
	APIKey   string
	Endpoint string
	Client   *httpclient.Client
}

func (s Search) Name() string { return "serper" }

func (s Search) Search(ctx context.Context, q string, max int, _ string) ([]models.Result, error) {
	if strings.TrimSpace(s.APIKey) == "" {
		return nil, models.ErrMissingAPIKey
	}
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	// https://serper.dev/ docs
	payload := map[string]any{"q": q, "num": max}
	var raw struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := s.Client.DoJSON(ctx, http.MethodPost, endpoint, map[string]string{"X-API-KEY": s.APIKey}, payload, &raw); err != nil {
		return nil, err
	}
	out := make([]models.Result, 0, len(raw.Organic))
	for _, it := range raw.Organic {
		out = append(out, models.Result{
			Title:   strings.TrimSpace(it.Title),
			URL:     strings.TrimSpace(it.Link),
			Snippet: strings.TrimSpace(it.Snippet),
		})
	}
	return out, nil
}
