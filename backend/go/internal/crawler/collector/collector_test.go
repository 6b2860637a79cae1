package collector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"PerguntaQueRespondo/backend/go/internal/crawler/articlestore"
	"PerguntaQueRespondo/backend/go/internal/crawler/ledger"
	"PerguntaQueRespondo/backend/go/internal/models"
	"PerguntaQueRespondo/backend/go/internal/rag/vectorindex"
	"PerguntaQueRespondo/backend/go/internal/search"
	"PerguntaQueRespondo/backend/go/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	results  []search.Result
	err      error
	requests []search.Request
}

func (f *fakeSearcher) Search(_ context.Context, req search.Request) ([]search.Result, error) {
	f.requests = append(f.requests, req)
	return f.results, f.err
}

type fakeExtractor struct {
	reject map[string]bool
	calls  []string
}

func (f *fakeExtractor) Extract(_ context.Context, url string) (string, bool) {
	f.calls = append(f.calls, url)
	if f.reject[url] {
		return "", false
	}
	return "Texto completo da notícia publicada em " + url, true
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(context.Context, string) ([]float32, error) { return []float32{1, 2, 3}, nil }

func (fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 2, 3}
	}
	return out, nil
}

type failingIndexer struct{ fail map[string]bool }

func (f failingIndexer) Upsert(_ context.Context, a models.Article, _ bool) error {
	if f.fail[a.Link] {
		return errors.New("disk full")
	}
	return nil
}

type env struct {
	root      string
	bronze    string
	indexDir  string
	ledger    *ledger.Ledger
	searcher  *fakeSearcher
	extractor *fakeExtractor
	collector *Collector
}

func newEnv(t *testing.T, results ...search.Result) *env {
	t.Helper()
	root := t.TempDir()
	e := &env{
		root:      root,
		bronze:    filepath.Join(root, "data", "bronze"),
		indexDir:  filepath.Join(root, "FAISS"),
		searcher:  &fakeSearcher{results: results},
		extractor: &fakeExtractor{reject: map[string]bool{}},
	}
	e.ledger = ledger.New(filepath.Join(e.bronze, "processed_urls.log"))
	log := logger.Discard()
	e.collector = New(
		e.searcher,
		e.extractor,
		articlestore.NewFileStore(e.bronze, log),
		vectorindex.NewUpdater(e.indexDir, fakeEmbedder{}, log),
		e.ledger,
		Options{},
		log,
	)
	e.collector.now = func() time.Time { return time.Date(2025, 8, 14, 9, 0, 0, 0, time.Local) }
	return e
}

// snapshot returns every file under root with its content.
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		raw, err := os.ReadFile(path)
		out[path] = string(raw)
		return err
	})
	require.NoError(t, err)
	return out
}

func TestCollectPersistsNewArticles(t *testing.T) {
	e := newEnv(t,
		search.Result{URL: "https://www.agenciabrasilia.df.gov.br/n/1", Title: "Vagas em creches"},
		search.Result{URL: "https://g1.globo.com/df/2", Source: "g1"},
		search.Result{URL: ""},
	)

	articles, err := e.collector.Collect(context.Background(), DailyQuery, false)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, "www.agenciabrasilia.df.gov.br", articles[0].Source)
	assert.Equal(t, "Vagas em creches", articles[0].Title)
	assert.Equal(t, "g1", articles[1].Source)
	assert.Equal(t, models.DefaultTitle, articles[1].Title)
	assert.Equal(t, DailyQuery, articles[1].OriginQuery)
	assert.Equal(t, "2025-08-14T09:00:00.000000", articles[0].CollectedAt)

	require.Len(t, e.searcher.requests, 1)
	assert.Equal(t, search.Request{Query: DailyQuery, SearchDepth: "advanced", MaxResults: 20}, e.searcher.requests[0])

	set, err := e.ledger.Load()
	require.NoError(t, err)
	assert.Len(t, set, 2)

	files, err := filepath.Glob(filepath.Join(e.bronze, "*.json"))
	require.NoError(t, err)
	assert.Len(t, files, 2)

	ix, err := vectorindex.Load(e.indexDir)
	require.NoError(t, err)
	assert.Equal(t, 2, ix.Len())
}

func TestCollectIsIdempotent(t *testing.T) {
	e := newEnv(t, search.Result{URL: "https://a/1"}, search.Result{URL: "https://a/2"})

	first, err := e.collector.Collect(context.Background(), "q", false)
	require.NoError(t, err)
	require.Len(t, first, 2)
	before := snapshot(t, e.root)
	e.extractor.calls = nil

	second, err := e.collector.Collect(context.Background(), "q", false)
	require.NoError(t, err)
	assert.NotNil(t, second)
	assert.Empty(t, second)
	assert.Empty(t, e.extractor.calls, "ledger URLs are never re-extracted")
	assert.Equal(t, before, snapshot(t, e.root))
}

func TestCollectTestModeWritesNothing(t *testing.T) {
	e := newEnv(t, search.Result{URL: "https://a/old"}, search.Result{URL: "https://a/1"}, search.Result{URL: "https://a/2"})
	require.NoError(t, e.ledger.Record("https://a/old", false))
	before := snapshot(t, e.root)

	articles, err := e.collector.Collect(context.Background(), DailyQuery, true)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, 5, e.searcher.requests[0].MaxResults)
	assert.Equal(t, before, snapshot(t, e.root))
	assert.False(t, vectorindex.Exists(e.indexDir))
}

func TestCollectSearchFailureReturnsEmpty(t *testing.T) {
	e := newEnv(t)
	e.searcher.err = errors.New("tavily down")

	articles, err := e.collector.Collect(context.Background(), "q", false)
	require.NoError(t, err)
	assert.NotNil(t, articles)
	assert.Empty(t, articles)
	assert.Empty(t, e.extractor.calls)
}

func TestCollectSkipsRejectedAndDuplicateURLs(t *testing.T) {
	e := newEnv(t,
		search.Result{URL: "https://a/gallery"},
		search.Result{URL: "https://a/1"},
		search.Result{URL: "https://a/1"},
		search.Result{URL: "https://a/gallery"},
	)
	e.extractor.reject["https://a/gallery"] = true

	articles, err := e.collector.Collect(context.Background(), "q", false)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, []string{"https://a/gallery", "https://a/1"}, e.extractor.calls)

	ok, err := e.ledger.Contains("https://a/gallery")
	require.NoError(t, err)
	assert.False(t, ok, "rejected pages stay eligible for later runs")
}

func TestCollectContinuesAfterPersistFailure(t *testing.T) {
	e := newEnv(t, search.Result{URL: "https://a/1"}, search.Result{URL: "https://a/2"})
	e.collector.indexer = failingIndexer{fail: map[string]bool{"https://a/1": true}}

	articles, err := e.collector.Collect(context.Background(), "q", false)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "https://a/2", articles[0].Link)

	ok, err := e.ledger.Contains("https://a/1")
	require.NoError(t, err)
	assert.False(t, ok, "URL is not recorded when indexing failed")
}

func TestCollectHistorical(t *testing.T) {
	e := newEnv(t, search.Result{URL: "https://a/1"})

	articles, err := e.collector.CollectHistorical(context.Background(), []string{"agosto de 2025", "julho de 2025"}, false)
	require.NoError(t, err)
	assert.Len(t, articles, 1, "second period finds the URL in the ledger")
	require.Len(t, e.searcher.requests, 2)
	assert.Equal(t, "notícias sobre educação no Distrito Federal e RIDE em julho de 2025", e.searcher.requests[1].Query)
}

func TestSourceOf(t *testing.T) {
	assert.Equal(t, "g1", sourceOf(search.Result{URL: "https://g1.globo.com/x", Source: "g1"}))
	assert.Equal(t, "localhost:8080", sourceOf(search.Result{URL: "http://localhost:8080/x"}))
	assert.True(t, strings.HasPrefix(sourceOf(search.Result{URL: "not a url"}), "not"))
}

func TestCollectTrimsURLsBeforeLedgerCheck(t *testing.T) {
	e := newEnv(t, search.Result{URL: "  https://g1.globo.com/df/3\n", Source: "g1"})

	articles, err := e.collector.Collect(context.Background(), DailyQuery, false)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "https://g1.globo.com/df/3", articles[0].Link)
	assert.Equal(t, []string{"https://g1.globo.com/df/3"}, e.extractor.calls)

	articles, err = e.collector.Collect(context.Background(), DailyQuery, false)
	require.NoError(t, err)
	assert.Empty(t, articles)
	assert.Len(t, e.extractor.calls, 1, "recorded URL is not extracted again")
}

func TestCollectSendsTopic(t *testing.T) {
	e := newEnv(t)
	e.collector.opts.Topic = "news"

	_, err := e.collector.Collect(context.Background(), DailyQuery, true)
	require.NoError(t, err)
	require.Len(t, e.searcher.requests, 1)
	assert.Equal(t, "news", e.searcher.requests[0].Topic)
	assert.Equal(t, 5, e.searcher.requests[0].MaxResults)
}
