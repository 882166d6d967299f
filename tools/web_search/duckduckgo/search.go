// Package duckduckgo scrapes the JavaScript-free DuckDuckGo results page. It needs
// no credentials and is the last backend in every chain.
package duckduckgo

import (
	"context"
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/mohammad-safakhou/oratriage/internal/httpclient"
	"github.com/mohammad-safakhou/oratriage/tools/web_search/models"
)

const DefaultEndpoint = "https://html.duckduckgo.com/html/"

var (
	resultSel  = cascadia.MustCompile("div.result")
	linkSel    = cascadia.MustCompile("a.result__a")
	snippetSel = cascadia.MustCompile(".result__snippet")
)

type Search struct {
	Endpoint string
	Client   *httpclient.Client
}

func (s Search) Name() string { return "duckduckgo" }

// Search returns hits with their raw hrefs; redirect wrappers are left for the
// allow-list stage to unwrap.
func (s Search) Search(ctx context.Context, q string, max int, region string) ([]models.Result, error) {
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	params := url.Values{}
	params.Set("q", q)
	if region != "" {
		params.Set("kl", region)
	}
	body, err := s.Client.GetHTML(ctx, endpoint+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	return Parse(body)
}

// Parse extracts result links, titles and snippets from a results page.
func Parse(page string) ([]models.Result, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, err
	}
	var out []models.Result
	for _, node := range cascadia.QueryAll(doc, resultSel) {
		link := cascadia.Query(node, linkSel)
		if link == nil {
			continue
		}
		href := strings.TrimSpace(attr(link, "href"))
		if href == "" {
			continue
		}
		res := models.Result{URL: href, Title: text(link)}
		if sn := cascadia.Query(node, snippetSel); sn != nil {
			res.Snippet = text(sn)
		}
		out = append(out, res)
	}
	return out, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
