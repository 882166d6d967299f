package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSONRetriesWithFreshBody(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var in map[string]string
		assert.NoError(t, json.Unmarshal(body, &in))
		assert.Equal(t, "ORA-12514", in["q"])
		assert.Equal(t, "k", r.Header.Get("X-API-KEY"))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}))
	defer srv.Close()

	c, err := New(Options{Retries: 2, Backoff: time.Millisecond})
	require.NoError(t, err)
	var out map[string]string
	err = c.DoJSON(context.Background(), http.MethodPost, srv.URL, map[string]string{"X-API-KEY": "k"}, map[string]string{"q": "ORA-12514"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "yes", out["ok"])
	assert.EqualValues(t, 2, calls.Load())
}

func TestDoJSONReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := New(Options{Backoff: time.Millisecond})
	require.NoError(t, err)
	err = c.DoJSON(context.Background(), http.MethodGet, srv.URL, nil, nil, nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
}

func TestDoJSONDoesNotRetryClientErrors(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusUnauthorized} {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "nope", code)
		}))

		c, err := New(Options{Retries: 3, Backoff: time.Millisecond})
		require.NoError(t, err)
		err = c.DoJSON(context.Background(), http.MethodGet, srv.URL, nil, nil, nil)
		srv.Close()

		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, code, se.Code)
		assert.EqualValues(t, 1, calls.Load(), "status %d", code)
	}
}

func TestDoJSONRetriesTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := New(Options{Retries: 2, Backoff: time.Millisecond})
	require.NoError(t, err)
	require.Error(t, c.DoJSON(context.Background(), http.MethodGet, srv.URL, nil, nil, nil))
	assert.EqualValues(t, 3, calls.Load())
}

func TestGetHTMLSendsBrowserHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultAcceptLanguage, r.Header.Get("Accept-Language"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "<html><body>ok</body></html>")
	}))
	defer srv.Close()

	c, err := New(Options{})
	require.NoError(t, err)
	body, err := c.GetHTML(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, body, "ok")

	_, err = c.GetHTML(context.Background(), srv.URL+"/missing")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestInsecureSkipVerifyReachesTLSServer(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "secure")
	}))
	defer srv.Close()

	strict, err := New(Options{})
	require.NoError(t, err)
	_, err = strict.GetHTML(context.Background(), srv.URL)
	require.Error(t, err)

	insecure, err := New(Options{InsecureSkipVerify: true})
	require.NoError(t, err)
	body, err := insecure.GetHTML(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "secure", body)
}

func TestNewRejectsMissingCABundle(t *testing.T) {
	_, err := New(Options{CABundle: "/nonexistent/ca.pem"})
	require.Error(t, err)
}
