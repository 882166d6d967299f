package evidence

import (
	"regexp"
	"strconv"
	"strings"
)

var localHeader = regexp.MustCompile(`^\[R(\d+)\] (.*?)(?: \(p\.([^()]*)\))?$`)

// ParseLocalHeaders recovers the references from text produced by BuildLocal, in order.
// Only the first line of a block counts as a header, and once a tag is found the
// following ones must continue the sequence.
func ParseLocalHeaders(text string) []LocalReference {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var refs []LocalReference
	next := -1
	for _, block := range strings.Split(text, Separator) {
		header, _, _ := strings.Cut(block, "\n")
		m := localHeader.FindStringSubmatch(header)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || (next >= 0 && n != next) {
			continue
		}
		next = n + 1
		refs = append(refs, LocalReference{Tag: Local.Prefix() + m[1], Filename: m[2], Page: m[3]})
	}
	return refs
}
