package evidence

import (
	"regexp"
	"strings"
)

var codePattern = regexp.MustCompile(`\bORA-\d{5}\b`)

// ExtractCode returns the first ORA-NNNNN token in text, upper-cased, or "".
func ExtractCode(text string) string {
	return codePattern.FindString(strings.ToUpper(text))
}

// ContainsCode reports whether the concatenation of parts contains code verbatim,
// ignoring case. An empty code always matches.
func ContainsCode(code string, parts ...string) bool {
	if code == "" {
		return true
	}
	return strings.Contains(strings.ToUpper(strings.Join(parts, " ")), strings.ToUpper(code))
}

// Filter keeps the items whose label, locator and body mention code. An empty code
// returns items unchanged.
func Filter(items []Item, code string) []Item {
	if code == "" {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if ContainsCode(code, it.Label, it.Locator, it.Body) {
			out = append(out, it)
		}
	}
	return out
}
