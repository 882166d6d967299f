package web_search

import (
	"context"
	"net/url"
	"strings"

	"github.com/mohammad-safakhou/oratriage/internal/helpers"
	"github.com/mohammad-safakhou/oratriage/tools/web_search/models"
)

// AllowedDomains are the sources whose pages may be cited. Subdomains are included.
var AllowedDomains = []string{
	"oracle.com",
	"docs.oracle.com",
	"asktom.oracle.com",
	"community.oracle.com",
	"oracle-base.com",
	"stackoverflow.com",
	"dba.stackexchange.com",
	"github.com",
	"medium.com",
	"blogspot.com",
}

// Allowed reports whether raw is an http(s) URL on an allow-listed host.
func Allowed(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range AllowedDomains {
		if helpers.HostMatches(host, d) {
			return true
		}
	}
	return false
}

// AllowList unwraps redirect URLs from the wrapped backend and drops hits outside
// AllowedDomains, truncating to max.
type AllowList struct {
	Backend Backend
}

func (a AllowList) Name() string { return a.Backend.Name() }

func (a AllowList) Search(ctx context.Context, q string, max int, region string) ([]models.Result, error) {
	raw, err := a.Backend.Search(ctx, q, max, region)
	if err != nil {
		return nil, err
	}
	return FilterAllowed(raw, max), nil
}

// FilterAllowed applies redirect unwrapping and the domain allow-list to hits.
func FilterAllowed(hits []models.Result, max int) []models.Result {
	out := make([]models.Result, 0, len(hits))
	for _, h := range hits {
		target := helpers.UnwrapRedirect(h.URL)
		if target == "" || !Allowed(target) {
			continue
		}
		h.URL = target
		if strings.TrimSpace(h.Title) == "" {
			h.Title = target
		}
		out = append(out, h)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}
