package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"PerguntaQueRespondo/backend/go/internal/models"
	"PerguntaQueRespondo/backend/go/internal/rag/interfaces"
	"PerguntaQueRespondo/backend/go/internal/rag/schema"
	"PerguntaQueRespondo/backend/go/pkg/logger"

	"github.com/google/uuid"
)

// Updater adds crawled articles to the persisted index. Upserts within one process
// are serialized; two processes writing the same directory still race and the last
// save wins.
type Updater struct {
	dir      string
	embedder interfaces.Embedder
	log      *logger.Logger
	mu       sync.Mutex
}

// NewUpdater creates an Updater for the index stored in dir.
func NewUpdater(dir string, embedder interfaces.Embedder, log *logger.Logger) *Updater {
	return &Updater{dir: dir, embedder: embedder, log: log}
}

// ArticleDocument converts an article into an index document without an embedding.
func ArticleDocument(a models.Article) *schema.Document {
	return &schema.Document{
		ID:       uuid.NewString(),
		Text:     a.Document(),
		Metadata: a.Metadata(),
	}
}

// Upsert embeds the article and appends it to the index, creating the index when none
// exists yet. Nothing is embedded or written in dry-run mode.
func (u *Updater) Upsert(ctx context.Context, article models.Article, dryRun bool) error {
	if dryRun {
		u.log.WithField("link", article.Link).Info("[test mode] vector index not updated")
		return nil
	}

	doc := ArticleDocument(article)
	vec, err := u.embedder.Embed(ctx, doc.Text)
	if err != nil {
		return fmt.Errorf("failed to embed article: %w", err)
	}
	doc.Embedding = vec

	u.mu.Lock()
	defer u.mu.Unlock()

	ix, err := Load(u.dir)
	switch {
	case errors.Is(err, ErrNotFound):
		if ix, err = New(len(vec)); err != nil {
			return err
		}
		u.log.WithField("dir", u.dir).Info("creating new vector index")
	case err != nil:
		return fmt.Errorf("failed to load vector index: %w", err)
	}

	if err := ix.Add(doc); err != nil {
		return err
	}
	if err := ix.Save(u.dir); err != nil {
		return err
	}
	u.log.WithFields(map[string]interface{}{"link": article.Link, "documents": ix.Len()}).Info("vector index updated")
	return nil
}
