package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mohammad-safakhou/oratriage/internal/agent/core"
	"github.com/mohammad-safakhou/oratriage/internal/checkpoint"
	"github.com/mohammad-safakhou/oratriage/internal/corpus"
	"github.com/mohammad-safakhou/oratriage/internal/evidence"
)

type fakeRunner struct {
	got core.Request
	res core.Result
	err error
}

func (f *fakeRunner) Run(_ context.Context, req core.Request) (core.Result, error) {
	f.got = req
	return f.res, f.err
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTroubleshootDefaultsAndResponse(t *testing.T) {
	runner := &fakeRunner{res: core.Result{
		RunID:      "r1",
		References: []evidence.LocalReference{{Tag: "R1", Filename: "net.pdf", Page: "3"}},
		WebRefs:    []evidence.WebReference{},
		WebSources: []evidence.WebReference{},
	}}
	srv := New(Deps{Runner: runner})

	rec := do(t, srv.Handler(), http.MethodPost, "/troubleshoot", `{"query":"ORA-12514","db_dir":"./db"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	assert.True(t, runner.got.Strict)
	assert.False(t, runner.got.AllowWeb)
	assert.Equal(t, "en", runner.got.Locale)
	assert.Equal(t, "./db", runner.got.CorpusDir)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	for _, key := range []string{"run_id", "causes", "solution_markdown", "retrieved_text", "references",
		"web_sources", "web_refs", "web_fallback_attempted", "web_result_count", "need_web"} {
		assert.Contains(t, body, key)
	}
	refs := body["references"].([]any)
	assert.Equal(t, "R1", refs[0].(map[string]any)["rid"])
}

func TestTroubleshootExplicitFlags(t *testing.T) {
	runner := &fakeRunner{}
	srv := New(Deps{Runner: runner})

	rec := do(t, srv.Handler(), http.MethodPost, "/troubleshoot", `{"query":"q","strict":false,"allow_web":true,"locale":"ko"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, runner.got.Strict)
	assert.True(t, runner.got.AllowWeb)
	assert.Equal(t, "ko", runner.got.Locale)
}

func TestTroubleshootErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		err  error
		code int
	}{
		{"missing query", `{"db_dir":"./db"}`, nil, http.StatusBadRequest},
		{"bad locale", `{"query":"q","locale":"fr"}`, nil, http.StatusBadRequest},
		{"malformed", `{"query":`, nil, http.StatusBadRequest},
		{"missing index", `{"query":"q"}`, fmt.Errorf("%w: %w", core.ErrMissingIndex, corpus.ErrIndexNotFound), http.StatusNotFound},
		{"invalid request", `{"query":"q"}`, fmt.Errorf("%w: corpus directory is required", core.ErrInvalidRequest), http.StatusBadRequest},
		{"internal", `{"query":"q"}`, fmt.Errorf("retrieve local evidence: boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := New(Deps{Runner: &fakeRunner{err: tc.err}})
			rec := do(t, srv.Handler(), http.MethodPost, "/troubleshoot", tc.body)
			assert.Equal(t, tc.code, rec.Code)
			var e HTTPError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
			assert.NotEmpty(t, e.Error)
		})
	}
}

func TestRunsEndpoint(t *testing.T) {
	store := checkpoint.NewMemory(0)
	require.NoError(t, store.Save(context.Background(), "abc", []byte(`{"stage":"done"}`)))
	srv := New(Deps{Runner: &fakeRunner{}, Checkpoints: store})

	rec := do(t, srv.Handler(), http.MethodGet, "/runs/abc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"stage":"done"}`, rec.Body.String())

	rec = do(t, srv.Handler(), http.MethodGet, "/runs/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOperationalEndpoints(t *testing.T) {
	srv := New(Deps{Runner: &fakeRunner{}})

	rec := do(t, srv.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = do(t, srv.Handler(), http.MethodGet, "/graph", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.RenderGraph(), rec.Body.String())

	rec = do(t, srv.Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerAuth(t *testing.T) {
	secret := []byte("s3cret")
	srv := New(Deps{Runner: &fakeRunner{}, JWTSecret: secret})
	body := `{"query":"q"}`

	rec := do(t, srv.Handler(), http.MethodPost, "/troubleshoot", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, srv.Handler(), http.MethodPost, "/troubleshoot", body, "Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := SignJWT("ops", []byte("other"), time.Hour)
	require.NoError(t, err)
	rec = do(t, srv.Handler(), http.MethodPost, "/troubleshoot", body, "Authorization", "Bearer "+other)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := SignJWT("ops", secret, time.Hour)
	require.NoError(t, err)
	rec = do(t, srv.Handler(), http.MethodPost, "/troubleshoot", body, "Authorization", "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code, "health stays public")
}

func TestFailedRequestLogsTokenSubject(t *testing.T) {
	secret := []byte("s3cret")
	obs, logs := observer.New(zap.InfoLevel)
	srv := New(Deps{
		Runner:    &fakeRunner{err: errors.New("llm down")},
		JWTSecret: secret,
		Logger:    zap.New(obs),
	})

	tok, err := SignJWT("oncall-dba", secret, time.Hour)
	require.NoError(t, err)
	rec := do(t, srv.Handler(), http.MethodPost, "/troubleshoot", `{"query":"ORA-12514"}`, "Authorization", "Bearer "+tok)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	failed := logs.FilterMessage("request failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "oncall-dba", failed[0].ContextMap()["subject"])
}
