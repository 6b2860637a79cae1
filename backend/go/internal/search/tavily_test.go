package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PerguntaQueRespondo/backend/go/pkg/httpclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Bearer tvly-test", r.Header.Get("Authorization"))

		var req tavilyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "educação DF", req.Query)
		assert.Equal(t, "advanced", req.SearchDepth)
		assert.Equal(t, 5, req.MaxResults)
		assert.Equal(t, "news", req.Topic)

		_, _ = w.Write([]byte(`{"query":"educação DF","results":[
			{"title":"Escolas do DF","url":"https://agenciabrasilia.df.gov.br/a","content":"...","score":0.9},
			{"title":"","url":"https://g1.globo.com/df/b","content":"...","score":0.5,"source":"g1"}
		]}`))
	}))
	defer srv.Close()

	tv, err := NewTavily(httpclient.New(time.Second, nil), srv.URL, "tvly-test")
	require.NoError(t, err)

	results, err := tv.Search(context.Background(), Request{Query: "educação DF", SearchDepth: "advanced", Topic: "news", MaxResults: 5})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://agenciabrasilia.df.gov.br/a", results[0].URL)
	assert.Equal(t, "Escolas do DF", results[0].Title)
	assert.Equal(t, "g1", results[1].Source)
}

func TestTavilySearchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tv, err := NewTavily(httpclient.New(time.Second, nil), srv.URL, "bad")
	require.NoError(t, err)

	_, err = tv.Search(context.Background(), Request{Query: "q"})
	var se *httpclient.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
}

func TestNewTavilyRequiresKey(t *testing.T) {
	_, err := NewTavily(httpclient.New(time.Second, nil), "", "")
	assert.Error(t, err)
}
