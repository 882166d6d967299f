package helpers

import "testing"

func TestFormatCitationLocal(t *testing.T) {
	t.Parallel()
	got := FormatCitation(Citation{Tag: "R1", Title: "net_admin.pdf", Page: "12"})
	want := "[R1] net_admin.pdf (p.12)"
	if got != want {
		t.Fatalf("FormatCitation() = %q, want %q", got, want)
	}
}

func TestFormatCitationWeb(t *testing.T) {
	t.Parallel()
	c := Citation{
		Tag:   "W1",
		Title: "ORA-65144:   ALTER DATABASE\n OPEN RESETLOGS",
		URL:   "https://docs.oracle.com/error-help/db/ora-65144/",
	}
	got := FormatCitation(c)
	want := "[W1] ORA-65144: ALTER DATABASE OPEN RESETLOGS (docs.oracle.com) <https://docs.oracle.com/error-help/db/ora-65144/>"
	if got != want {
		t.Fatalf("FormatCitation() = %q, want %q", got, want)
	}
}

func TestFormatCitationTruncatesTitle(t *testing.T) {
	t.Parallel()
	got := FormatCitation(Citation{Tag: "W3", Title: "오라클 리스너 오류 해결 방법"}, WithMaxTitleLength(6))
	want := "[W3] 오라클 리스…"
	if got != want {
		t.Fatalf("FormatCitation() = %q, want %q", got, want)
	}
}

func TestFormatCitationsBatch(t *testing.T) {
	t.Parallel()
	list := []Citation{
		{Tag: "R1", Title: "a.pdf"},
		{Tag: "W0", Title: "Web search attempted (0 results)", URL: "about:blank"},
	}
	items := FormatCitations(list)
	if len(items) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(items))
	}
	if items[1] != "[W0] Web search attempted (0 results) <about:blank>" {
		t.Fatalf("unexpected placeholder rendering %q", items[1])
	}
	if FormatCitations(nil) != nil {
		t.Fatalf("expected nil for empty input")
	}
}
