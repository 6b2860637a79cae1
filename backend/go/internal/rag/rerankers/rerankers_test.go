package rerankers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PerguntaQueRespondo/backend/go/internal/config"
	"PerguntaQueRespondo/backend/go/internal/rag/schema"
	"PerguntaQueRespondo/backend/go/pkg/httpclient"
	"PerguntaQueRespondo/backend/go/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docs(ids ...string) []*schema.Document {
	out := make([]*schema.Document, len(ids))
	for i, id := range ids {
		out[i] = &schema.Document{ID: id, Text: "texto " + id}
	}
	return out
}

func ids(docs []*schema.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestCrossEncoderRerank(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rerank", r.URL.Path)
		var req crossEncoderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "vagas em creches", req.Query)
		assert.Equal(t, []string{"texto a", "texto b", "texto c"}, req.Texts)
		_, _ = w.Write([]byte(`[{"index":2,"score":0.9},{"index":0,"score":0.5},{"index":1,"score":0.1}]`))
	}))
	defer srv.Close()

	r, err := NewCrossEncoderReranker(httpclient.New(time.Second, nil), srv.URL)
	require.NoError(t, err)

	got, err := r.Rerank(context.Background(), "vagas em creches", docs("a", "b", "c"), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, ids(got))
}

func TestCrossEncoderInvalidIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"index":7,"score":0.9}]`))
	}))
	defer srv.Close()

	r, err := NewCrossEncoderReranker(httpclient.New(time.Second, nil), srv.URL)
	require.NoError(t, err)
	_, err = r.Rerank(context.Background(), "q", docs("a"), 5)
	assert.Error(t, err)
}

func TestCohereRerank(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/rerank", r.URL.Path)
		assert.Equal(t, "Bearer co-key", r.Header.Get("Authorization"))
		var req cohereRerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 2, req.TopN)
		assert.Equal(t, "rerank-multilingual-v3.0", req.Model)
		_, _ = w.Write([]byte(`{"results":[{"index":1,"relevance_score":0.8},{"index":2,"relevance_score":0.3}]}`))
	}))
	defer srv.Close()

	r, err := NewCohereReranker(httpclient.New(time.Second, nil), srv.URL, "co-key", "rerank-multilingual-v3.0")
	require.NoError(t, err)

	got, err := r.Rerank(context.Background(), "q", docs("a", "b", "c"), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ids(got))
}

func TestRerankServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r, err := NewCrossEncoderReranker(httpclient.New(time.Second, nil), srv.URL)
	require.NoError(t, err)
	_, err = r.Rerank(context.Background(), "q", docs("a"), 5)
	assert.Error(t, err)
}

func TestPassthrough(t *testing.T) {
	got, err := Passthrough{}.Rerank(context.Background(), "q", docs("a", "b", "c"), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(got))

	got, err = Passthrough{}.Rerank(context.Background(), "q", docs("a"), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(got))
}

func TestNewFactory(t *testing.T) {
	log := logger.Discard()
	cb := config.CircuitBreakerConfig{Enabled: true, FailureThreshold: 3, Timeout: "10s"}

	r, err := New(config.RerankConfig{Provider: "none"}, cb, log)
	require.NoError(t, err)
	assert.IsType(t, Passthrough{}, r)

	r, err = New(config.RerankConfig{Provider: "crossEncoder", CrossEncoder: config.CrossEncoderConfig{BaseURL: "http://localhost:8080"}}, cb, log)
	require.NoError(t, err)
	assert.IsType(t, &CrossEncoderReranker{}, r)

	_, err = New(config.RerankConfig{Provider: "cohere"}, cb, log)
	assert.Error(t, err, "missing API key")

	_, err = New(config.RerankConfig{Provider: "bm25"}, cb, log)
	assert.Error(t, err)
}
