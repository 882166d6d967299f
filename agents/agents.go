// Package agents holds the two language-model collaborators of a troubleshooting run:
// the causal analyzer and the guidance writer.
package agents

import (
	"strings"

	"github.com/mohammad-safakhou/oratriage/internal/evidence"
)

// Kind classifies how a collaborator call ended.
type Kind int

const (
	KindOK Kind = iota
	// KindParseFailure means the model answered but the reply could not be decoded.
	KindParseFailure
	// KindServiceFailure means the model could not be reached.
	KindServiceFailure
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindParseFailure:
		return "parse_failure"
	case KindServiceFailure:
		return "service_failure"
	default:
		return "unknown"
	}
}

const (
	LocaleEN = "en"
	LocaleKO = "ko"
)

// NormalizeLocale maps any Korean locale tag to "ko" and everything else to "en".
func NormalizeLocale(locale string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(locale)), LocaleKO) {
		return LocaleKO
	}
	return LocaleEN
}

// Analysis is the causal-analysis payload.
type Analysis struct {
	Causes []string `json:"causes"`
	Notes  string   `json:"notes"`
	Kind   Kind     `json:"-"`
}

// ParserFailedNote is the note of the degraded analysis payload.
const ParserFailedNote = "Parser failed; please refine input or context."

func degraded(kind Kind) Analysis {
	return Analysis{Causes: []string{}, Notes: ParserFailedNote, Kind: kind}
}

// GenericHint fills empty causes with a code-keyed hint when the query carries an error code.
func GenericHint(a Analysis, query, locale string) Analysis {
	if len(a.Causes) > 0 {
		return a
	}
	code := evidence.ExtractCode(query)
	if code == "" {
		return a
	}
	out := a
	if NormalizeLocale(locale) == LocaleKO {
		out.Causes = []string{code + " 오류가 발생했습니다. 문서의 네트워크/인증 설정을 확인하세요."}
		if out.Notes == "" {
			out.Notes = "로컬 문맥에서 강한 근거를 찾지 못해 일반 힌트를 제시했습니다."
		}
		return out
	}
	out.Causes = []string{code + " occurred. Check sqlnet/auth settings and network per docs."}
	if out.Notes == "" {
		out.Notes = "No strong evidence in retrieved context; using generic hint."
	}
	return out
}

// PlaceholderWebReference is the reference recorded when a web sweep found nothing.
func PlaceholderWebReference(locale string) evidence.WebReference {
	if NormalizeLocale(locale) == LocaleKO {
		return evidence.PlaceholderWebReference("웹 검색 시도됨 (0건)")
	}
	return evidence.PlaceholderWebReference("Web search attempted (0 results)")
}

// NoWebResultNote explains an empty web sweep to the reader.
func NoWebResultNote(locale string) string {
	if NormalizeLocale(locale) == LocaleKO {
		return "웹 검색을 시도했지만 허용 도메인/길이 기준에 맞는 본문을 찾지 못했습니다."
	}
	return "Web search was attempted, but no page met the allowed-domain and length criteria."
}
