// Package evidence holds the tagged evidence model shared by local retrieval and
// web fallback: items, their citation references, and the text blocks handed to
// the analysis and guidance services.
package evidence

import (
	"fmt"
	"strconv"
	"strings"
)

// Origin distinguishes the two citation namespaces.
type Origin int

const (
	Local Origin = iota
	Web
)

func (o Origin) Prefix() string {
	if o == Web {
		return "W"
	}
	return "R"
}

func (o Origin) String() string {
	if o == Web {
		return "web"
	}
	return "local"
}

// Item is one unit of evidence. For local items Label is the filename and Page the
// page marker; for web items Label is the title and Locator the URL.
type Item struct {
	Origin  Origin
	Label   string
	Locator string
	Body    string
	Page    string
}

// LocalReference is the citation record for an R-tagged block.
type LocalReference struct {
	Tag      string `json:"rid"`
	Filename string `json:"filename"`
	Page     string `json:"page"`
}

// WebReference is the citation record for a W-tagged block.
type WebReference struct {
	Tag   string `json:"wid"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

const UnknownSource = "Unknown source"

var (
	filenameKeys = []string{"source", "filename", "file", "path"}
	pageKeys     = []string{"page", "pageno", "page_number"}
)

// LocalItem builds a local item from a retrieved chunk and its metadata. Missing
// filename metadata degrades to UnknownSource.
func LocalItem(content string, metadata map[string]any) Item {
	name := firstMeta(metadata, filenameKeys)
	if name == "" {
		name = UnknownSource
	}
	return Item{
		Origin: Local,
		Label:  name,
		Body:   content,
		Page:   firstMeta(metadata, pageKeys),
	}
}

// WebItem builds a web item; the title falls back to the URL.
func WebItem(title, url, body string) Item {
	title = strings.TrimSpace(title)
	url = strings.TrimSpace(url)
	if title == "" {
		title = url
	}
	return Item{Origin: Web, Label: title, Locator: url, Body: body}
}

func firstMeta(metadata map[string]any, keys []string) string {
	for _, k := range keys {
		v, ok := metadata[k]
		if !ok || v == nil {
			continue
		}
		if s := strings.TrimSpace(metaString(v)); s != "" {
			return s
		}
	}
	return ""
}

func metaString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprint(t)
	}
}
