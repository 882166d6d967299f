package brave

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mohammad-safakhou/oratriage/internal/helpers"
	"github.com/mohammad-safakhou/oratriage/internal/httpclient"
	"github.com/mohammad-safakhou/oratriage/tools/web_search/models"
)

const DefaultEndpoint = "https://api.search.brave.com/res/v1/web/search"

type Search struct {
	APIKey   string
	Endpoint string
	Client   *httpclient.Client
}

func (s Search) Name() string { return "brave" }

func (s Search) Search(ctx context.Context, q string, max int, _ string) ([]models.Result, error) {
	if strings.TrimSpace(s.APIKey) == "" {
		return nil, models.ErrMissingAPIKey
	}
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	// https://api.search.brave.com/app/documentation/web-search
	params := url.Values{}
	params.Set("q", q)
	params.Set("count", strconv.Itoa(max))
	var raw struct {
		Web struct {
			Results []struct {
				Title   string `json:"title"`
				URL     string `json:"url"`
				Snippet string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	headers := map[string]string{"X-Subscription-Token": s.APIKey}
	if err := s.Client.DoJSON(ctx, http.MethodGet, endpoint+"?"+params.Encode(), headers, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]models.Result, 0, len(raw.Web.Results))
	for _, r := range raw.Web.Results {
		// titles and descriptions carry <strong> highlighting
		out = append(out, models.Result{
			Title:   helpers.PlainText(r.Title),
			URL:     strings.TrimSpace(r.URL),
			Snippet: helpers.PlainText(r.Snippet),
		})
	}
	return out, nil
}
