package brave

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammad-safakhou/oratriage/internal/httpclient"
	"github.com/mohammad-safakhou/oratriage/tools/web_search/models"
)

func TestSearchSanitisesHighlighting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "ORA-00942 Oracle", r.URL.Query().Get("q"))
		assert.Equal(t, "4", r.URL.Query().Get("count"))
		_, _ = w.Write([]byte(`{"web":{"results":[
			{"title":"<strong>ORA-00942</strong>: table or view does not exist","url":"https://oracle-base.com/a","description":"Fix &amp; <strong>verify</strong>"}
		]}}`))
	}))
	defer srv.Close()

	client, err := httpclient.New(httpclient.Options{})
	require.NoError(t, err)
	got, err := Search{APIKey: "tok", Endpoint: srv.URL, Client: client}.Search(context.Background(), "ORA-00942 Oracle", 4, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ORA-00942: table or view does not exist", got[0].Title)
	assert.Equal(t, "Fix & verify", got[0].Snippet)
}

func TestSearchWithoutKey(t *testing.T) {
	_, err := Search{}.Search(context.Background(), "q", 6, "")
	assert.ErrorIs(t, err, models.ErrMissingAPIKey)
}
