// Package articlestore persists accepted articles to the bronze layer.
package articlestore

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"PerguntaQueRespondo/backend/go/internal/models"
)

// Store saves one article and returns where it was written.
type Store interface {
	Save(ctx context.Context, article models.Article, dryRun bool) (string, error)
}

// ObjectName returns the bronze record name for article saved on day:
// {YYYY-MM-DD}_{source with "." replaced by "_"}_{first 10 hex chars of md5(link)}.json
func ObjectName(article models.Article, day time.Time) string {
	sum := md5.Sum([]byte(article.Link))
	source := strings.NewReplacer(".", "_", "/", "_", "\\", "_").Replace(article.Source)
	return fmt.Sprintf("%s_%s_%s.json", day.Format("2006-01-02"), source, hex.EncodeToString(sum[:])[:10])
}

// MultiStore saves to each store in order and stops at the first error. The location
// reported is the first store's.
type MultiStore []Store

// Save implements Store.
func (m MultiStore) Save(ctx context.Context, article models.Article, dryRun bool) (string, error) {
	var first string
	for i, s := range m {
		loc, err := s.Save(ctx, article, dryRun)
		if err != nil {
			return "", err
		}
		if i == 0 {
			first = loc
		}
	}
	return first, nil
}
