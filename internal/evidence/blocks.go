package evidence

import (
	"fmt"
	"strings"
)

// Separator joins evidence blocks in a context text.
const Separator = "\n\n---\n\n"

// BuildLocal renders items as [R#] blocks with dense tags starting at start.
func BuildLocal(items []Item, start int) (string, []LocalReference) {
	blocks := make([]string, 0, len(items))
	refs := make([]LocalReference, 0, len(items))
	for i, it := range items {
		tag := fmt.Sprintf("%s%d", Local.Prefix(), start+i)
		name := singleLine(it.Label)
		if strings.TrimSpace(name) == "" {
			name = UnknownSource
		}
		header := "[" + tag + "] " + name
		if it.Page != "" {
			header += " (p." + it.Page + ")"
		}
		blocks = append(blocks, header+"\n"+neutralize(it.Body))
		refs = append(refs, LocalReference{Tag: tag, Filename: name, Page: it.Page})
	}
	return strings.Join(blocks, Separator), refs
}

// BuildWeb renders items as [W#] blocks. Items without a URL are skipped and do
// not consume a tag.
func BuildWeb(items []Item, start int) (string, []WebReference) {
	var blocks []string
	var refs []WebReference
	n := start
	for _, it := range items {
		url := strings.TrimSpace(it.Locator)
		if url == "" {
			continue
		}
		title := singleLine(it.Label)
		if title == "" {
			title = url
		}
		tag := fmt.Sprintf("%s%d", Web.Prefix(), n)
		block := "[" + tag + "] " + title + "\n" + url
		if it.Body != "" {
			block += "\n" + neutralize(it.Body)
		}
		blocks = append(blocks, block)
		refs = append(refs, WebReference{Tag: tag, Title: title, URL: url})
		n++
	}
	return strings.Join(blocks, Separator), refs
}

// neutralize indents bare "---" lines so a Markdown rule inside a body can never
// read as a block boundary.
func neutralize(body string) string {
	if !strings.Contains(body, "---") {
		return body
	}
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		if l == "---" {
			lines[i] = " ---"
		}
	}
	return strings.Join(lines, "\n")
}

func singleLine(s string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

// PlaceholderWebReference marks a web fallback that ran and accepted nothing.
func PlaceholderWebReference(title string) WebReference {
	return WebReference{Tag: "W0", Title: title, URL: "about:blank"}
}
