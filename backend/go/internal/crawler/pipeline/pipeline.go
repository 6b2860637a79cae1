// Package pipeline assembles a Collector and its clients from the configuration.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"PerguntaQueRespondo/backend/go/internal/config"
	"PerguntaQueRespondo/backend/go/internal/crawler/articlestore"
	"PerguntaQueRespondo/backend/go/internal/crawler/collector"
	"PerguntaQueRespondo/backend/go/internal/crawler/extractor"
	"PerguntaQueRespondo/backend/go/internal/crawler/ledger"
	miniodb "PerguntaQueRespondo/backend/go/internal/database/minio"
	"PerguntaQueRespondo/backend/go/internal/embedding"
	"PerguntaQueRespondo/backend/go/internal/llm"
	"PerguntaQueRespondo/backend/go/internal/models"
	"PerguntaQueRespondo/backend/go/internal/rag/vectorindex"
	"PerguntaQueRespondo/backend/go/internal/search"
	"PerguntaQueRespondo/backend/go/pkg/httpclient"
	"PerguntaQueRespondo/backend/go/pkg/logger"
)

// Pipeline owns a Collector and the clients it was built with.
type Pipeline struct {
	*collector.Collector
	closers []io.Closer
}

// Build validates the crawler configuration and wires search, extraction, storage,
// indexing and the URL ledger into a Collector.
func Build(ctx context.Context, cfg *config.AppConfig, log *logger.Logger) (*Pipeline, error) {
	if err := cfg.ValidateCrawler(); err != nil {
		return nil, err
	}
	p := &Pipeline{}

	searcher, err := NewSearcher(cfg, log)
	if err != nil {
		return nil, err
	}

	extractLLM, err := llm.NewClient(ctx, cfg.LLM.Provider, cfg.LLM.CrawlerAPIKey, cfg.LLM.Extraction)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction LLM: %w", err)
	}
	p.closers = append(p.closers, extractLLM)
	ext := extractor.New(extractLLM, extractor.OptionsFromConfig(cfg.Crawler), log.WithField("component", "extractor"))

	emb, err := embedding.New(ctx, cfg.Embedding)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to create embedding model: %w", err)
	}
	p.closers = append(p.closers, emb)

	store, err := NewStore(ctx, cfg, log)
	if err != nil {
		p.Close()
		return nil, err
	}

	p.Collector = collector.New(
		searcher,
		ext,
		store,
		vectorindex.NewUpdater(cfg.Index.Dir, emb, log.WithField("component", "vectorindex")),
		ledger.New(cfg.Crawler.LedgerFile),
		collector.Options{
			SearchDepth:    cfg.Search.SearchDepth,
			Topic:          cfg.Search.Topic,
			MaxResults:     cfg.Crawler.MaxResults,
			TestMaxResults: cfg.Crawler.TestMaxResults,
		},
		log.WithField("component", "collector"),
	)
	return p, nil
}

// Close releases the LLM and embedding clients.
func (p *Pipeline) Close() error {
	var errs []error
	for _, c := range p.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewSearcher builds the configured web search client behind a circuit breaker.
func NewSearcher(cfg *config.AppConfig, log *logger.Logger) (search.Searcher, error) {
	switch cfg.Search.Provider {
	case "tavily", "":
		client := httpclient.NewWithBreaker(config.Duration(cfg.Search.Timeout, 30*time.Second), cfg.Middleware.CircuitBreaker.Settings("tavily"), log)
		t, err := search.NewTavily(client, cfg.Search.BaseURL, cfg.Search.APIKey)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported search provider: %s", cfg.Search.Provider)
	}
}

// NewStore returns the bronze file store, mirrored to MinIO when enabled.
func NewStore(ctx context.Context, cfg *config.AppConfig, log *logger.Logger) (articlestore.Store, error) {
	files := articlestore.NewFileStore(cfg.Crawler.BronzeDir, log.WithField("component", "articlestore"))
	if !cfg.Storage.MinIO.Enabled {
		return files, nil
	}
	client, err := miniodb.NewClient(ctx, cfg.Storage.MinIO, log)
	if err != nil {
		return nil, err
	}
	return articlestore.MultiStore{
		files,
		articlestore.NewMinioStore(client, cfg.Storage.MinIO.Bucket, log.WithField("component", "articlestore")),
	}, nil
}

// Unavailable stands in for a Collector that could not be built. Every run fails
// with Err.
type Unavailable struct {
	Err error
}

func (u Unavailable) Collect(context.Context, string, bool) ([]models.Article, error) {
	return nil, fmt.Errorf("news collection is not configured: %w", u.Err)
}
