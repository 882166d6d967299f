package web_fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammad-safakhou/oratriage/internal/httpclient"
	"github.com/mohammad-safakhou/oratriage/tools/web_fetch/chromedp"
)

const articlePage = `<!doctype html><html><head><title>ORA-65144</title>
<script>var tracking = "ORA-99999";</script></head><body>
<nav><a href="/">Home</a> <a href="/docs">Docs</a></nav>
<article>
<h1>ORA-65144: ALTER DATABASE OPEN RESETLOGS is not permitted</h1>
<p>Cause: An attempt was made to open a pluggable database with RESETLOGS. The operation is only
valid for the container database, so the request was rejected by the instance.</p>
<p>Action: Open the pluggable database without RESETLOGS, or run the command from the root container
after completing incomplete recovery of the whole CDB. Check the alert log for details.</p>
<p>Verification: query V$PDBS and confirm OPEN_MODE shows READ WRITE for the affected PDB.</p>
</article>
<footer>Copyright</footer>
</body></html>`

func newExtractor(t *testing.T, maxChars int) *Extractor {
	t.Helper()
	client, err := httpclient.New(httpclient.Options{Timeout: 5 * time.Second})
	require.NoError(t, err)
	e, err := New(HTTPRenderer, client, 5*time.Second, maxChars, nil)
	require.NoError(t, err)
	return e
}

func TestFetchReadableArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	text, ok := newExtractor(t, 0).Fetch(context.Background(), srv.URL+"/ora-65144")
	require.True(t, ok)
	assert.Contains(t, text, "RESETLOGS")
	assert.NotContains(t, text, "tracking")
}

func TestFetchTruncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	text, ok := newExtractor(t, 40).Fetch(context.Background(), srv.URL)
	require.True(t, ok)
	assert.LessOrEqual(t, len([]rune(text)), 40)
}

func TestFetchAbsentOnNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	_, ok := newExtractor(t, 0).Fetch(context.Background(), srv.URL)
	assert.False(t, ok)
}

func TestFetchAbsentOnEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><script>only()</script></body></html>`))
	}))
	defer srv.Close()

	_, ok := newExtractor(t, 0).Fetch(context.Background(), srv.URL)
	assert.False(t, ok)
}

func TestFetchAbsentOnBadURL(t *testing.T) {
	_, ok := newExtractor(t, 0).Fetch(context.Background(), "not a url")
	assert.False(t, ok)
	_, ok = newExtractor(t, 0).Fetch(context.Background(), "http://127.0.0.1:1/unreachable")
	assert.False(t, ok)
}

func TestStructuralTextPicksLongestSelector(t *testing.T) {
	page := `<html><body>
<main>short main</main>
<div class="content"><p>` + strings.Repeat("long content ", 10) + `</p><style>.x{}</style></div>
<noscript>enable js</noscript>
</body></html>`
	text, err := StructuralText(page)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "long content"))
	assert.NotContains(t, text, "short main")
	assert.NotContains(t, text, ".x{}")
}

func TestStructuralTextFallsBackToWholePage(t *testing.T) {
	text, err := StructuralText(`<html><body><div><p>first</p><p>second</p></div><script>x()</script><noscript>nojs</noscript></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", text)
}

func TestNewRejectsUnknownRenderer(t *testing.T) {
	client, err := httpclient.New(httpclient.Options{})
	require.NoError(t, err)
	_, err = New("wget", client, 0, 0, nil)
	assert.Error(t, err)
}

func TestChromedpRendererInheritsTransportSettings(t *testing.T) {
	client, err := httpclient.New(httpclient.Options{InsecureSkipVerify: true})
	require.NoError(t, err)
	e, err := New(ChromedpRenderer, client, 0, 0, nil)
	require.NoError(t, err)

	r, ok := e.renderer.(chromedp.Renderer)
	require.True(t, ok)
	assert.True(t, r.IgnoreCertErrors)
	assert.Equal(t, httpclient.DefaultAcceptLanguage, r.AcceptLanguage)
	assert.Equal(t, client.UserAgent(), r.UserAgent)
	assert.False(t, e.plain)
}
