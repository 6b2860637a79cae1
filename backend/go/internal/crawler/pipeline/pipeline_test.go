package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"PerguntaQueRespondo/backend/go/internal/config"
	"PerguntaQueRespondo/backend/go/internal/crawler/articlestore"
	"PerguntaQueRespondo/backend/go/internal/search"
	"PerguntaQueRespondo/backend/go/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequiresCrawlerKeys(t *testing.T) {
	_, err := Build(context.Background(), config.Default(), logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvTavilyAPIKey)
}

func TestNewSearcher(t *testing.T) {
	cfg := config.Default()
	cfg.Search.APIKey = "tvly"
	s, err := NewSearcher(cfg, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, &search.Tavily{}, s)

	cfg.Search.Provider = "bing"
	_, err = NewSearcher(cfg, logger.Discard())
	assert.Error(t, err)
}

func TestNewStoreWithoutMinIO(t *testing.T) {
	cfg := config.Default()
	cfg.Crawler.BronzeDir = filepath.Join(t.TempDir(), "bronze")

	store, err := NewStore(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	fs, ok := store.(*articlestore.FileStore)
	require.True(t, ok)
	assert.Equal(t, cfg.Crawler.BronzeDir, fs.Dir())
}

func TestUnavailable(t *testing.T) {
	cause := errors.New("TAVILY_API_KEY missing")
	articles, err := Unavailable{Err: cause}.Collect(context.Background(), "q", true)
	assert.Nil(t, articles)
	assert.ErrorIs(t, err, cause)
}
