// Package knowledge reads the bronze layer back into articles.
package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"PerguntaQueRespondo/backend/go/internal/models"
	"PerguntaQueRespondo/backend/go/pkg/logger"

	"github.com/gobwas/glob"
)

// DefaultPattern matches every bronze record.
const DefaultPattern = "*.json"

// Load returns the articles stored in dir whose file name matches pattern, ordered by
// file name. Files without the .json extension (the URL ledger among them) are ignored.
// Unreadable or empty records are logged and skipped.
func Load(dir, pattern string, log *logger.Logger) ([]models.Article, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read bronze directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	articles := make([]models.Article, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || !g.Match(name) {
			continue
		}
		a, err := readArticle(filepath.Join(dir, name))
		if err != nil {
			log.WithError(err).WithField("file", name).Warn("skipping unreadable bronze record")
			continue
		}
		if strings.TrimSpace(a.Text) == "" {
			log.WithField("file", name).Warn("skipping bronze record without text")
			continue
		}
		articles = append(articles, a)
	}
	return articles, nil
}

func readArticle(path string) (models.Article, error) {
	var a models.Article
	raw, err := os.ReadFile(path)
	if err != nil {
		return a, err
	}
	if err := json.Unmarshal(raw, &a); err != nil {
		return a, fmt.Errorf("invalid JSON: %w", err)
	}
	return a, nil
}
