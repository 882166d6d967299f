package helpers

import (
	"strings"
	"unicode/utf8"
)

// Citation is one tagged reference as printed in a CLI report.
type Citation struct {
	Tag   string
	Title string
	URL   string
	Page  string
}

type citationConfig struct {
	maxTitle int
}

// CitationOption configures citation formatting.
type CitationOption func(*citationConfig)

// WithMaxTitleLength truncates titles to n runes (default 120).
func WithMaxTitleLength(n int) CitationOption {
	return func(cfg *citationConfig) {
		if n > 0 {
			cfg.maxTitle = n
		}
	}
}

// FormatCitation renders a single citation line:
// [R1] file.pdf (p.3)  or  [W2] Title (host) <URL>
func FormatCitation(c Citation, opts ...CitationOption) string {
	cfg := citationConfig{maxTitle: 120}
	for _, opt := range opts {
		opt(&cfg)
	}

	tag := strings.TrimSpace(c.Tag)
	if tag == "" {
		tag = "?"
	}
	parts := []string{"[" + tag + "]"}

	if title := truncateRunes(strings.Join(strings.Fields(c.Title), " "), cfg.maxTitle); title != "" {
		parts = append(parts, title)
	}
	if page := strings.TrimSpace(c.Page); page != "" {
		parts = append(parts, "(p."+page+")")
	}
	if link := strings.TrimSpace(c.URL); link != "" {
		if host := Hostname(link); host != "" {
			parts = append(parts, "("+host+")")
		}
		parts = append(parts, "<"+link+">")
	}
	return strings.Join(parts, " ")
}

// FormatCitations renders a collection of citations.
func FormatCitations(citations []Citation, opts ...CitationOption) []string {
	if len(citations) == 0 {
		return nil
	}
	out := make([]string, 0, len(citations))
	for _, c := range citations {
		out = append(out, FormatCitation(c, opts...))
	}
	return out
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit]) + "…"
}
