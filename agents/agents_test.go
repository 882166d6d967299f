package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammad-safakhou/oratriage/provider/models"
)

type fakeLLM struct {
	reply string
	err   error
	calls []fakeCall
}

type fakeCall struct {
	msgs []models.Message
	opts models.CompletionOptions
}

func (f *fakeLLM) Complete(_ context.Context, msgs []models.Message, opts models.CompletionOptions) (string, error) {
	f.calls = append(f.calls, fakeCall{msgs: msgs, opts: opts})
	return f.reply, f.err
}

func TestAnalyzeDecodesFencedJSON(t *testing.T) {
	llm := &fakeLLM{reply: "```json\n{\"causes\":[\"PDB name clash\"],\"notes\":\"from R1\"}\n```"}
	a := NewAnalyzer(llm, nil)

	out := a.Analyze(context.Background(), "ORA-65144", "[R1] admin.txt\nORA-65144 ...", "en")
	require.Equal(t, KindOK, out.Kind)
	assert.Equal(t, []string{"PDB name clash"}, out.Causes)
	assert.Equal(t, "from R1", out.Notes)

	require.Len(t, llm.calls, 1)
	assert.True(t, llm.calls[0].opts.JSON)
	assert.Contains(t, llm.calls[0].msgs[0].Content, "senior Oracle DBA")
}

func TestAnalyzeTruncatesContext(t *testing.T) {
	llm := &fakeLLM{reply: `{"causes":[]}`}
	NewAnalyzer(llm, nil).Analyze(context.Background(), "q", strings.Repeat("가", MaxAnalysisContext+500), "ko")

	user := llm.calls[0].msgs[1].Content
	assert.Equal(t, MaxAnalysisContext, strings.Count(user, "가"))
	assert.Contains(t, llm.calls[0].msgs[0].Content, "한국어")
}

func TestAnalyzeDegrades(t *testing.T) {
	cases := []struct {
		name string
		llm  *fakeLLM
		kind Kind
	}{
		{"garbage", &fakeLLM{reply: "I cannot help with that"}, KindParseFailure},
		{"schema", &fakeLLM{reply: `{"causes":"not a list"}`}, KindParseFailure},
		{"transport", &fakeLLM{err: errors.New("connection refused")}, KindServiceFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := NewAnalyzer(tc.llm, nil).Analyze(context.Background(), "q", "", "en")
			assert.Equal(t, tc.kind, out.Kind)
			assert.Empty(t, out.Causes)
			assert.Equal(t, ParserFailedNote, out.Notes)
		})
	}
}

func TestGenericHint(t *testing.T) {
	out := GenericHint(Analysis{}, "ORA-65144: invalid pluggable database", "en")
	require.Len(t, out.Causes, 1)
	assert.Contains(t, out.Causes[0], "ORA-65144")
	assert.Equal(t, "No strong evidence in retrieved context; using generic hint.", out.Notes)

	kept := GenericHint(Analysis{Notes: ParserFailedNote}, "ora-12514 listener", "ko-KR")
	require.Len(t, kept.Causes, 1)
	assert.True(t, strings.HasPrefix(kept.Causes[0], "ORA-12514 오류가"))
	assert.Equal(t, ParserFailedNote, kept.Notes)

	none := GenericHint(Analysis{}, "listener does not start", "en")
	assert.Empty(t, none.Causes)

	has := GenericHint(Analysis{Causes: []string{"x"}}, "ORA-00001", "en")
	assert.Equal(t, []string{"x"}, has.Causes)
}

func TestWriteSolutionModes(t *testing.T) {
	llm := &fakeLLM{reply: "  ## Summary\n- do it [R1]\n"}
	w := NewWriter(llm, nil)

	strict := w.WriteSolution(context.Background(), SolutionRequest{Query: "q", Strict: true, Locale: "en"})
	assert.Equal(t, KindOK, strict.Kind)
	assert.Equal(t, "## Summary\n- do it [R1]", strict.Markdown)
	assert.InDelta(t, 0.1, llm.calls[0].opts.Temperature, 1e-9)
	assert.Contains(t, llm.calls[0].msgs[0].Content, "Use ONLY local context tags")
	assert.Contains(t, llm.calls[0].msgs[1].Content, "Local context:\n(empty)")

	w.WriteSolution(context.Background(), SolutionRequest{Query: "q", Strict: true, WebContext: "[W1] t\nhttps://docs.oracle.com", Locale: "en"})
	assert.InDelta(t, 0.2, llm.calls[1].opts.Temperature, 1e-9)
	assert.Contains(t, llm.calls[1].msgs[0].Content, "you MAY use [W#]")
	assert.Contains(t, llm.calls[1].msgs[1].Content, "Web context:\n[W1] t")
}

func TestWriteSolutionServiceFailure(t *testing.T) {
	d := NewWriter(&fakeLLM{err: errors.New("boom")}, nil).WriteSolution(context.Background(), SolutionRequest{Query: "q"})
	assert.Equal(t, KindServiceFailure, d.Kind)
	assert.Empty(t, d.Markdown)
}

func TestLocalizedPlaceholders(t *testing.T) {
	assert.Equal(t, "Web search attempted (0 results)", PlaceholderWebReference("en").Title)
	ko := PlaceholderWebReference("ko")
	assert.Equal(t, "웹 검색 시도됨 (0건)", ko.Title)
	assert.Equal(t, "W0", ko.Tag)
	assert.Equal(t, "about:blank", ko.URL)
	assert.NotEqual(t, NoWebResultNote("en"), NoWebResultNote("ko"))
}
