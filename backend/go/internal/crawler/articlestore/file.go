package articlestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"PerguntaQueRespondo/backend/go/internal/models"
	"PerguntaQueRespondo/backend/go/pkg/logger"
)

// FileStore writes one JSON file per article into the bronze directory.
type FileStore struct {
	dir string
	log *logger.Logger
	now func() time.Time
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string, log *logger.Logger) *FileStore {
	return &FileStore{dir: dir, log: log, now: time.Now}
}

// Dir returns the bronze directory.
func (s *FileStore) Dir() string { return s.dir }

// Save writes the article. In dry-run mode the target path is returned but nothing is written.
func (s *FileStore) Save(_ context.Context, article models.Article, dryRun bool) (string, error) {
	path := filepath.Join(s.dir, ObjectName(article, s.now()))
	if dryRun {
		s.log.WithField("path", path).Info("[test mode] article not saved")
		return path, nil
	}

	data, err := Encode(article)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create bronze directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".article-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write article: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write article: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move article into place: %w", err)
	}

	s.log.WithField("path", path).Info("article saved")
	return path, nil
}

// Encode renders an article as 4-space indented JSON with non-ASCII text kept as is.
func Encode(article models.Article) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(article); err != nil {
		return nil, fmt.Errorf("failed to encode article: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
