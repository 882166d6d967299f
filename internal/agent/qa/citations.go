// Package qa checks generated guidance against the references emitted for a run.
package qa

import (
	"regexp"
	"strings"

	"github.com/mohammad-safakhou/oratriage/internal/evidence"
)

var (
	tagPattern      = regexp.MustCompile(`\[([RW]\d+)\]`)
	trailingTag     = regexp.MustCompile(`\[[RW]\d+\][\s.)]*$`)
	bulletPrefix    = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+`)
	actionSections  = []string{"recommended actions", "verification", "권장 조치", "검증"}
	headingPrefixes = []string{"#", "**"}
)

// Report lists citation problems in one guide.
type Report struct {
	// UnknownTags are cited tags with no matching reference, in first-seen order.
	UnknownTags []string
	// UncitedLines are action or verification bullets that do not end with a tag.
	UncitedLines []string
}

// OK reports whether the guide has no citation problems.
func (r Report) OK() bool { return len(r.UnknownTags) == 0 && len(r.UncitedLines) == 0 }

// CheckCitations verifies that every action/verification bullet ends with a tag and
// that every cited tag was emitted. The W0 placeholder never counts as citable.
func CheckCitations(markdown string, local []evidence.LocalReference, web []evidence.WebReference) Report {
	known := make(map[string]struct{}, len(local)+len(web))
	for _, r := range local {
		known[r.Tag] = struct{}{}
	}
	for _, r := range web {
		if r.Tag != "W0" {
			known[r.Tag] = struct{}{}
		}
	}

	var rep Report
	reported := map[string]struct{}{}
	for _, m := range tagPattern.FindAllStringSubmatch(markdown, -1) {
		tag := m[1]
		if _, ok := known[tag]; ok {
			continue
		}
		if _, dup := reported[tag]; dup {
			continue
		}
		reported[tag] = struct{}{}
		rep.UnknownTags = append(rep.UnknownTags, tag)
	}

	inAction := false
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if isHeading(trimmed) {
			inAction = isActionHeading(trimmed)
			continue
		}
		if !inAction || !bulletPrefix.MatchString(line) {
			continue
		}
		if !trailingTag.MatchString(trimmed) {
			rep.UncitedLines = append(rep.UncitedLines, trimmed)
		}
	}
	return rep
}

func isHeading(line string) bool {
	for _, p := range headingPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

func isActionHeading(line string) bool {
	lower := strings.ToLower(line)
	for _, s := range actionSections {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
