package core

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mohammad-safakhou/oratriage/internal/evidence"
	"github.com/mohammad-safakhou/oratriage/internal/helpers"
	"github.com/mohammad-safakhou/oratriage/internal/telemetry"
	web_search "github.com/mohammad-safakhou/oratriage/tools/web_search"
)

// Tier is one sweep of every query variant under a minimum body length.
type Tier struct {
	Name   string
	MinLen int
}

// DefaultTiers builds primary, secondary and optionally the last-resort tertiary tier.
func DefaultTiers(primary, fallback int, lastResort bool) []Tier {
	tiers := []Tier{
		{Name: "primary", MinLen: primary},
		{Name: "secondary", MinLen: fallback},
	}
	if lastResort {
		tiers = append(tiers, Tier{Name: "tertiary", MinLen: fallback})
	}
	return tiers
}

// CollectorOptions configures a Collector.
type CollectorOptions struct {
	MaxResults int
	Region     string
	Tiers      []Tier
}

// Collection is the outcome of one web sweep.
type Collection struct {
	Items   []evidence.Item
	Queries []string
	// Tier is empty when nothing was accepted.
	Tier string
}

// Collector runs the tiered web evidence sweep.
type Collector struct {
	search Searcher
	fetch  Fetcher
	opts   CollectorOptions
	logger *zap.Logger
}

func NewCollector(search Searcher, fetch Fetcher, opts CollectorOptions, logger *zap.Logger) *Collector {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 6
	}
	if opts.Region == "" {
		opts.Region = "wt-wt"
	}
	if len(opts.Tiers) == 0 {
		opts.Tiers = DefaultTiers(220, 60, true)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{search: search, fetch: fetch, opts: opts, logger: logger.Named("collector")}
}

// Collect returns the items of the first tier that accepts anything.
// With strict set and an error code in the query, every item contains that code.
func (c *Collector) Collect(ctx context.Context, query string, strict bool) Collection {
	queries := web_search.ExpandQueries(query)
	code := ""
	if strict {
		code = evidence.ExtractCode(query)
	}
	for _, tier := range c.opts.Tiers {
		items := c.sweep(ctx, tier, queries, code)
		if ctx.Err() != nil {
			c.logger.Debug("web sweep cancelled", zap.String("tier", tier.Name), zap.Error(ctx.Err()))
			return Collection{Queries: queries}
		}
		if len(items) > 0 {
			telemetry.RecordTierAccepted(tier.Name, len(items))
			c.logger.Info("web tier accepted",
				zap.String("tier", tier.Name),
				zap.Int("items", len(items)),
			)
			return Collection{Items: items, Queries: queries, Tier: tier.Name}
		}
		c.logger.Debug("web tier empty", zap.String("tier", tier.Name))
	}
	return Collection{Queries: queries}
}

func (c *Collector) sweep(ctx context.Context, tier Tier, queries []string, code string) []evidence.Item {
	var accepted []evidence.Item
	seen := make(map[string]struct{})
	for _, q := range queries {
		if ctx.Err() != nil {
			return nil
		}
		for _, hit := range c.search.Search(ctx, q, c.opts.MaxResults, c.opts.Region) {
			key, err := helpers.CanonicalURL(hit.URL)
			if err != nil {
				key = hit.URL
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			text, ok := c.fetch.Fetch(ctx, hit.URL)
			if !ok {
				text = ""
			}
			if code != "" && !evidence.ContainsCode(code, hit.Title, hit.URL, text, hit.Snippet) {
				continue
			}
			switch {
			case utf8.RuneCountInString(text) > tier.MinLen:
				accepted = append(accepted, evidence.WebItem(hit.Title, hit.URL, text))
			case strings.TrimSpace(hit.Snippet) != "":
				accepted = append(accepted, evidence.WebItem(hit.Title, hit.URL, hit.Snippet))
			}
		}
	}
	return accepted
}
