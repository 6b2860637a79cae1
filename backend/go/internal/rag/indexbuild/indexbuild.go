// Package indexbuild rebuilds the vector index from the bronze layer.
package indexbuild

import (
	"context"
	"errors"
	"fmt"

	"PerguntaQueRespondo/backend/go/internal/crawler/knowledge"
	"PerguntaQueRespondo/backend/go/internal/rag/interfaces"
	"PerguntaQueRespondo/backend/go/internal/rag/schema"
	"PerguntaQueRespondo/backend/go/internal/rag/vectorindex"
	"PerguntaQueRespondo/backend/go/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// ErrNoArticles is returned when the bronze layer holds nothing to index.
var ErrNoArticles = errors.New("no articles to index")

// Builder embeds bronze articles in batches and writes a fresh index.
type Builder struct {
	Embedder    interfaces.Embedder
	BronzeDir   string
	IndexDir    string
	BatchSize   int
	Concurrency int
	Log         *logger.Logger
}

// Rebuild indexes every bronze article matching pattern and replaces the index in
// IndexDir. It returns the number of indexed documents.
func (b *Builder) Rebuild(ctx context.Context, pattern string) (int, error) {
	articles, err := knowledge.Load(b.BronzeDir, pattern, b.Log)
	if err != nil {
		return 0, err
	}
	if len(articles) == 0 {
		return 0, ErrNoArticles
	}

	docs := make([]*schema.Document, len(articles))
	for i, a := range articles {
		docs[i] = vectorindex.ArticleDocument(a)
	}

	batchSize := max(b.BatchSize, 1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.Concurrency, 1))
	for start := 0; start < len(docs); start += batchSize {
		batch := docs[start:min(start+batchSize, len(docs))]
		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, d := range batch {
				texts[i] = d.Text
			}
			vecs, err := b.Embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return fmt.Errorf("failed to embed batch: %w", err)
			}
			if len(vecs) != len(batch) {
				return fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(batch))
			}
			for i, d := range batch {
				d.Embedding = vecs[i]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	ix, err := vectorindex.New(len(docs[0].Embedding))
	if err != nil {
		return 0, err
	}
	if err := ix.Add(docs...); err != nil {
		return 0, err
	}
	if err := ix.Save(b.IndexDir); err != nil {
		return 0, err
	}
	b.Log.WithFields(map[string]interface{}{"documents": ix.Len(), "dir": b.IndexDir}).Info("vector index rebuilt")
	return ix.Len(), nil
}
