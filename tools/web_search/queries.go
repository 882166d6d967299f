package web_search

import (
	"strings"

	"github.com/mohammad-safakhou/oratriage/internal/evidence"
)

// ExpandQueries returns the search variants for query, the original first,
// de-duplicated in first-seen order.
func ExpandQueries(query string) []string {
	qs := []string{query}
	if code := evidence.ExtractCode(query); code != "" {
		short := code
		if len(short) > 8 {
			short = short[:8]
		}
		quoted := `"` + code + `"`
		qs = append(qs,
			quoted,
			quoted+" Oracle",
			strings.ReplaceAll(code, "-", " ")+" site:docs.oracle.com",
			quoted+" site:docs.oracle.com",
			quoted+" site:oracle-base.com",
			short+" Oracle error",
			"ORA- error code list site:docs.oracle.com",
			"list of ORA- codes oracle-base",
			quoted+` "does not exist" Oracle`,
			quoted+" site:community.oracle.com",
			quoted+" site:asktom.oracle.com",
		)
	} else {
		qs = append(qs,
			query+" site:docs.oracle.com",
			query+" Oracle error",
		)
	}
	seen := make(map[string]struct{}, len(qs))
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
	}
	return out
}
