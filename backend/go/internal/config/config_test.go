package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvTavilyAPIKey, EnvGeminiAPIKey, EnvGoogleAPIKey, EnvCohereAPIKey, EnvMinIOAccess, EnvMinIOSecret, EnvRedisPass} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Address)
	assert.True(t, cfg.Server.ExposeErrors)
	assert.Equal(t, "data/bronze/processed_urls.log", cfg.Crawler.LedgerFile)
	assert.Equal(t, 20, cfg.Crawler.MaxResults)
	assert.Equal(t, 5, cfg.Crawler.TestMaxResults)
	assert.Equal(t, "news", cfg.Search.Topic, "topic default comes from Default()")
	assert.Len(t, cfg.Crawler.HistoricalPeriods, 6)
	assert.Equal(t, 10, cfg.Index.RetrieveK)
	assert.Equal(t, 5, cfg.Rerank.TopN)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Answer.Model)
}

func TestLoadConfigYAMLOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  address: ":9000"
  exposeErrors: false
crawler:
  bronzeDir: /tmp/bronze
  maxResults: 7
index:
  retrieveK: 4
rerank:
  provider: none
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.False(t, cfg.Server.ExposeErrors)
	assert.Equal(t, "/tmp/bronze", cfg.Crawler.BronzeDir)
	assert.Equal(t, "data/bronze/processed_urls.log", cfg.Crawler.LedgerFile, "ledger default comes from Default()")
	assert.Equal(t, 7, cfg.Crawler.MaxResults)
	assert.Equal(t, 5, cfg.Crawler.TestMaxResults)
	assert.Equal(t, 4, cfg.Index.RetrieveK)
	assert.Equal(t, "none", cfg.Rerank.Provider)
}

func TestLoadConfigBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigEnvKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTavilyAPIKey, "tvly")
	t.Setenv(EnvGeminiAPIKey, "gem")
	t.Setenv(EnvCohereAPIKey, "co")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "tvly", cfg.Search.APIKey)
	assert.Equal(t, "gem", cfg.LLM.CrawlerAPIKey)
	assert.Equal(t, "gem", cfg.LLM.AnswerAPIKey, "answer key falls back to the crawler key")
	assert.Equal(t, "gem", cfg.Embedding.Gemini.APIKey)
	assert.Equal(t, "co", cfg.Rerank.Cohere.APIKey)

	t.Setenv(EnvGoogleAPIKey, "goog")
	cfg, err = LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "goog", cfg.LLM.AnswerAPIKey)
	assert.Equal(t, "goog", cfg.Embedding.Gemini.APIKey)
}

func TestValidateCrawler(t *testing.T) {
	cfg := Default()
	err := cfg.ValidateCrawler()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvTavilyAPIKey)
	assert.Contains(t, err.Error(), EnvGeminiAPIKey)

	cfg.Search.APIKey = "tvly"
	cfg.LLM.CrawlerAPIKey = "gem"
	cfg.Embedding.Gemini.APIKey = "gem"
	assert.NoError(t, cfg.ValidateCrawler())

	cfg.Embedding.Provider = "word2vec"
	assert.Error(t, cfg.ValidateCrawler())
}

func TestValidateServer(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.ValidateServer())

	cfg.LLM.AnswerAPIKey = "goog"
	cfg.Embedding.Provider = "ollama"
	assert.NoError(t, cfg.ValidateServer())

	cfg.Session.Backend = "memcached"
	assert.Error(t, cfg.ValidateServer())
	cfg.Session.Backend = "redis"

	cfg.Rerank.Provider = "bm25"
	assert.Error(t, cfg.ValidateServer())
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, Duration("", 5*time.Second))
	assert.Equal(t, 5*time.Second, Duration("soon", 5*time.Second))
	assert.Equal(t, 5*time.Second, Duration("-1s", 5*time.Second))
	assert.Equal(t, 90*time.Second, Duration("1m30s", 5*time.Second))
}

func TestCircuitBreakerSettings(t *testing.T) {
	cb := CircuitBreakerConfig{Enabled: true, FailureThreshold: 3, SuccessThreshold: 2, Timeout: "10s"}
	s := cb.Settings("tavily")
	require.NotNil(t, s)
	assert.Equal(t, "tavily", s.Name)
	assert.Equal(t, uint32(3), s.FailureThreshold)
	assert.Equal(t, uint32(2), s.SuccessThreshold)
	assert.Equal(t, 10*time.Second, s.Timeout)

	cb.Timeout = ""
	assert.Equal(t, 30*time.Second, cb.Settings("tavily").Timeout)

	cb.Enabled = false
	assert.Nil(t, cb.Settings("tavily"))
}
