// Package collector runs one crawl: search, extract, store, index and record.
package collector

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"PerguntaQueRespondo/backend/go/internal/crawler/articlestore"
	"PerguntaQueRespondo/backend/go/internal/models"
	"PerguntaQueRespondo/backend/go/internal/search"
	"PerguntaQueRespondo/backend/go/pkg/logger"
)

// DailyQuery is the search used by the daily crawl and /update_news/.
const DailyQuery = "notícias recentes sobre educação na Região Integrada de Desenvolvimento do Distrito Federal e Entorno (RIDE-DF)"

// HistoricalQuery returns the backfill search for one period, e.g. "agosto de 2025".
func HistoricalQuery(period string) string {
	return fmt.Sprintf("notícias sobre educação no Distrito Federal e RIDE em %s", period)
}

// Extractor turns a URL into article text.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, bool)
}

// Indexer adds an article to the vector index.
type Indexer interface {
	Upsert(ctx context.Context, article models.Article, dryRun bool) error
}

// Ledger remembers accepted URLs.
type Ledger interface {
	Load() (map[string]struct{}, error)
	Record(url string, dryRun bool) error
}

// Options tune a Collector.
type Options struct {
	SearchDepth    string
	Topic          string
	MaxResults     int
	TestMaxResults int
}

// Collector wires the crawl pipeline together. Runs are sequential.
type Collector struct {
	searcher  search.Searcher
	extractor Extractor
	store     articlestore.Store
	indexer   Indexer
	ledger    Ledger
	opts      Options
	log       *logger.Logger
	now       func() time.Time
}

// New creates a Collector.
func New(s search.Searcher, e Extractor, st articlestore.Store, ix Indexer, l Ledger, opts Options, log *logger.Logger) *Collector {
	if opts.SearchDepth == "" {
		opts.SearchDepth = "advanced"
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 20
	}
	if opts.TestMaxResults <= 0 {
		opts.TestMaxResults = 5
	}
	return &Collector{
		searcher:  s,
		extractor: e,
		store:     st,
		indexer:   ix,
		ledger:    l,
		opts:      opts,
		log:       log,
		now:       time.Now,
	}
}

// Collect runs one crawl for query and returns the newly accepted articles, never nil.
// In test mode fewer results are requested and nothing is persisted. Search failures
// end the run with an empty result; per-URL failures are logged and skipped.
func (c *Collector) Collect(ctx context.Context, query string, testMode bool) ([]models.Article, error) {
	log := c.log.WithFields(map[string]interface{}{"query": query, "test_mode": testMode})
	articles := []models.Article{}

	maxResults := c.opts.MaxResults
	if testMode {
		maxResults = c.opts.TestMaxResults
	}
	log.Info("searching for news")
	results, err := c.searcher.Search(ctx, search.Request{Query: query, SearchDepth: c.opts.SearchDepth, Topic: c.opts.Topic, MaxResults: maxResults})
	if err != nil {
		log.WithError(err).Error("search failed")
		return articles, nil
	}
	log.WithField("candidates", len(results)).Info("search finished")

	processed, err := c.ledger.Load()
	if err != nil {
		log.WithError(err).Warn("failed to read URL ledger, treating it as empty")
		processed = map[string]struct{}{}
	}

	attempted := make(map[string]struct{}, len(results))
	for _, r := range results {
		if err := ctx.Err(); err != nil {
			log.WithError(err).Warn("collection interrupted")
			break
		}
		// The ledger stores trimmed URLs.
		r.URL = strings.TrimSpace(r.URL)
		if r.URL == "" {
			continue
		}
		if _, ok := processed[r.URL]; ok {
			log.WithField("url", r.URL).Info("URL already processed, skipping")
			continue
		}
		if _, ok := attempted[r.URL]; ok {
			continue
		}
		attempted[r.URL] = struct{}{}

		text, ok := c.extractor.Extract(ctx, r.URL)
		if !ok {
			continue
		}

		article := models.NewArticle(sourceOf(r), r.Title, r.URL, text, query, c.now())
		if err := c.persist(ctx, article, testMode); err != nil {
			log.WithError(err).WithField("url", r.URL).Error("failed to persist article")
			continue
		}
		articles = append(articles, article)
	}

	log.WithField("new_articles", len(articles)).Info("collection finished")
	return articles, nil
}

// persist stores, indexes and records the article in that order. The URL is only
// recorded once the article is stored and indexed.
func (c *Collector) persist(ctx context.Context, article models.Article, dryRun bool) error {
	if _, err := c.store.Save(ctx, article, dryRun); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.indexer.Upsert(ctx, article, dryRun); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	if err := c.ledger.Record(article.Link, dryRun); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	return nil
}

// CollectHistorical runs Collect once per period and returns all new articles.
func (c *Collector) CollectHistorical(ctx context.Context, periods []string, testMode bool) ([]models.Article, error) {
	all := []models.Article{}
	for _, p := range periods {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		c.log.WithField("period", p).Info("collecting historical period")
		articles, err := c.Collect(ctx, HistoricalQuery(p), testMode)
		if err != nil {
			return all, err
		}
		all = append(all, articles...)
	}
	return all, nil
}

// sourceOf returns the provider's source name or, failing that, the URL host.
func sourceOf(r search.Result) string {
	if r.Source != "" {
		return r.Source
	}
	if u, err := url.Parse(r.URL); err == nil && u.Host != "" {
		return u.Host
	}
	return r.URL
}
