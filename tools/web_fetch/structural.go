package web_fetch

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// contentSelectors are tried in order; the longest matching text wins.
var contentSelectors = []cascadia.Selector{
	cascadia.MustCompile("article"),
	cascadia.MustCompile("[role=main]"),
	cascadia.MustCompile("main"),
	cascadia.MustCompile(".content"),
	cascadia.MustCompile("#content"),
}

// StructuralText extracts main-content text from a page without readability
// heuristics: script, style and noscript are dropped, the longest text among
// the content selectors is returned, and whole-page text when none match.
func StructuralText(page string) (string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", err
	}
	strip(doc)

	best := ""
	for _, sel := range contentSelectors {
		for _, node := range cascadia.QueryAll(doc, sel) {
			if txt := nodeText(node); len(txt) > len(best) {
				best = txt
			}
		}
	}
	if best == "" {
		best = nodeText(doc)
	}
	return strings.TrimSpace(best), nil
}

func strip(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && (c.DataAtom == atom.Script || c.DataAtom == atom.Style || c.DataAtom == atom.Noscript) {
			n.RemoveChild(c)
		} else {
			strip(c)
		}
		c = next
	}
}

// nodeText joins the trimmed, non-empty text nodes under n with newlines.
func nodeText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, "\n")
}
