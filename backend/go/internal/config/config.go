package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"PerguntaQueRespondo/backend/go/pkg/circuitbreaker"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppInfo maps the 'app' section of the YAML file.
type AppInfo struct {
	Name        string `yaml:"name"`        // application name
	Version     string `yaml:"version"`     // application version
	Environment string `yaml:"environment"` // e.g. "development", "production"
}

// LoggerConfig configures pkg/logger.
type LoggerConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

// ServerConfig configures the chatbot HTTP surface.
type ServerConfig struct {
	Address string `yaml:"address"` // listen address, e.g. ":8000"
	// ExposeErrors keeps the historical behaviour of returning the raw error text with
	// a 400 status. When false, errors are mapped to fixed messages and status codes.
	ExposeErrors    bool   `yaml:"exposeErrors"`
	ShutdownTimeout string `yaml:"shutdownTimeout"` // e.g. "10s"
}

// ScheduleConfig configures the daily crawl.
type ScheduleConfig struct {
	At       string `yaml:"at"`       // HH:MM
	Timezone string `yaml:"timezone"` // IANA name
}

// CrawlerConfig configures the collector and the article extractor.
type CrawlerConfig struct {
	BronzeDir         string         `yaml:"bronzeDir"`         // bronze layer directory
	LedgerFile        string         `yaml:"ledgerFile"`        // processed URL log
	MaxResults        int            `yaml:"maxResults"`        // search results per run
	TestMaxResults    int            `yaml:"testMaxResults"`    // search results per test run
	FetchTimeout      string         `yaml:"fetchTimeout"`      // page fetch timeout
	UserAgent         string         `yaml:"userAgent"`         // browser-like UA header
	MinPageChars      int            `yaml:"minPageChars"`      // pre-filter before the LLM
	MaxPromptChars    int            `yaml:"maxPromptChars"`    // page text sent to the LLM
	MinArticleChars   int            `yaml:"minArticleChars"`   // minimum cleaned article size
	HistoricalPeriods []string       `yaml:"historicalPeriods"` // months for the backfill run
	Schedule          ScheduleConfig `yaml:"schedule"`
}

// SearchConfig configures the web search provider (Tavily).
type SearchConfig struct {
	Provider    string `yaml:"provider"`
	BaseURL     string `yaml:"baseURL"`
	APIKey      string `yaml:"apiKey"` // usually taken from TAVILY_API_KEY
	SearchDepth string `yaml:"searchDepth"`
	Topic       string `yaml:"topic"` // "news" restricts results to news sources
	Timeout     string `yaml:"timeout"`
}

// GeminiConfig configures the Gemini models.
type GeminiConfig struct {
	APIKey string `yaml:"apiKey"` // Gemini API key
	Model  string `yaml:"model"`  // Gemini model name
}

// GenerationConfig holds sampling parameters for one LLM use.
type GenerationConfig struct {
	Model           string  `yaml:"model"`
	Temperature     float32 `yaml:"temperature"`
	TopP            float32 `yaml:"topP"`
	TopK            int32   `yaml:"topK"`
	MaxOutputTokens int32   `yaml:"maxOutputTokens"`
}

// LLMConfig holds the generative model settings for extraction and for answering.
type LLMConfig struct {
	Provider string `yaml:"provider"` // only "gemini" is supported
	// CrawlerAPIKey is the key used by the extractor (GEMINI_API_KEY).
	CrawlerAPIKey string `yaml:"crawlerApiKey"`
	// AnswerAPIKey is the key used by the answerer (GOOGLE_API_KEY, falls back to GEMINI_API_KEY).
	AnswerAPIKey string           `yaml:"answerApiKey"`
	Extraction   GenerationConfig `yaml:"extraction"`
	Answer       GenerationConfig `yaml:"answer"`
}

// OllamaConfig points at a local Ollama server.
type OllamaConfig struct {
	BaseURL string `yaml:"baseURL"`
	Model   string `yaml:"model"`
}

// EmbeddingConfig selects the embedding provider. The same provider and model must be
// used for indexing and querying, otherwise the vectors are not comparable.
type EmbeddingConfig struct {
	Provider string       `yaml:"provider"` // "gemini" or "ollama"
	Gemini   GeminiConfig `yaml:"gemini"`
	Ollama   OllamaConfig `yaml:"ollama"`
}

// CohereConfig configures the Cohere rerank API.
type CohereConfig struct {
	APIKey  string `yaml:"apiKey"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"baseURL"`
}

// CrossEncoderConfig points at a cross-encoder served over HTTP
// (text-embeddings-inference compatible /rerank endpoint).
type CrossEncoderConfig struct {
	BaseURL string `yaml:"baseURL"`
	Model   string `yaml:"model"`
}

// RerankConfig selects the reranker.
type RerankConfig struct {
	Provider     string             `yaml:"provider"` // "crossEncoder", "cohere" or "none"
	TopN         int                `yaml:"topN"`
	Timeout      string             `yaml:"timeout"`
	Cohere       CohereConfig       `yaml:"cohere"`
	CrossEncoder CrossEncoderConfig `yaml:"crossEncoder"`
}

// IndexConfig configures the persisted vector index.
type IndexConfig struct {
	Dir         string `yaml:"dir"`
	RetrieveK   int    `yaml:"retrieveK"`
	BatchSize   int    `yaml:"batchSize"`   // rebuild: texts per embedding call
	Concurrency int    `yaml:"concurrency"` // rebuild: embedding calls in flight
}

// MinIOConfig holds the MinIO object storage connection.
type MinIOConfig struct {
	Enabled   bool   `yaml:"enabled"`   // mirror bronze records to object storage
	Endpoint  string `yaml:"endpoint"`  // MinIO endpoint
	AccessKey string `yaml:"accessKey"` // access key
	SecretKey string `yaml:"secretKey"` // secret key
	Bucket    string `yaml:"bucket"`    // bucket for bronze records
	Secure    bool   `yaml:"secure"`    // use HTTPS
}

// StorageConfig groups optional storage backends.
type StorageConfig struct {
	MinIO MinIOConfig `yaml:"minio"`
}

// RedisConfig holds the Redis connection.
type RedisConfig struct {
	Address  string `yaml:"address"`  // e.g. "localhost:6379"
	Password string `yaml:"password"` // Redis password
	DB       int    `yaml:"db"`       // Redis database number
}

// SessionConfig configures chat session storage.
type SessionConfig struct {
	Backend    string      `yaml:"backend"` // "memory" or "redis"
	CookieName string      `yaml:"cookieName"`
	TTL        string      `yaml:"ttl"`
	Capacity   int         `yaml:"capacity"` // memory backend: max sessions
	Redis      RedisConfig `yaml:"redis"`
}

// RateLimiterConfig configures the token bucket in front of /ask/.
type RateLimiterConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Rate     float64 `yaml:"rate"` // tokens per second
	Capacity int     `yaml:"capacity"`
}

// CircuitBreakerConfig configures the outbound circuit breakers.
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"` // e.g. "30s"
}

// Settings maps c onto breaker settings for the named upstream, or nil when disabled.
func (c CircuitBreakerConfig) Settings(name string) *circuitbreaker.Settings {
	if !c.Enabled {
		return nil
	}
	return &circuitbreaker.Settings{
		Name:             name,
		FailureThreshold: c.FailureThreshold,
		SuccessThreshold: c.SuccessThreshold,
		Timeout:          Duration(c.Timeout, 30*time.Second),
	}
}

// MiddlewareConfig groups the middleware settings.
type MiddlewareConfig struct {
	RateLimiter    RateLimiterConfig    `yaml:"rateLimiter"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// AppConfig is the root of the YAML file.
type AppConfig struct {
	App        AppInfo          `yaml:"app"`
	Logger     LoggerConfig     `yaml:"logger"`
	Server     ServerConfig     `yaml:"server"`
	Crawler    CrawlerConfig    `yaml:"crawler"`
	Search     SearchConfig     `yaml:"search"`
	LLM        LLMConfig        `yaml:"llm"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Rerank     RerankConfig     `yaml:"rerank"`
	Index      IndexConfig      `yaml:"index"`
	Storage    StorageConfig    `yaml:"storage"`
	Session    SessionConfig    `yaml:"session"`
	Middleware MiddlewareConfig `yaml:"middleware"`
}

// Environment variables holding secrets.
const (
	EnvTavilyAPIKey = "TAVILY_API_KEY"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
	EnvCohereAPIKey = "COHERE_API_KEY"
	EnvMinIOAccess  = "MINIO_ACCESS_KEY"
	EnvMinIOSecret  = "MINIO_SECRET_KEY"
	EnvRedisPass    = "REDIS_PASSWORD"
)

// LoadConfig loads .env (if present), then the YAML file at path, applies defaults and
// overlays secrets from the environment.
//
// Parameters:
//
//	path: YAML config path. A missing file is not an error; defaults are used.
//
// Returns:
//
//	*AppConfig: the resolved configuration.
//	error: when the file exists but cannot be read or parsed.
func LoadConfig(path string) (*AppConfig, error) {
	// .env is optional, exactly like load_dotenv().
	_ = godotenv.Load()

	cfg := Default()
	yamlFile, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML file '%s': %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read YAML file '%s': %w", path, err)
	}

	applyDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		App:    AppInfo{Name: "pergunta-que-respondo", Version: "dev", Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Server: ServerConfig{Address: ":8000", ExposeErrors: true, ShutdownTimeout: "10s"},
		Crawler: CrawlerConfig{
			BronzeDir:       "data/bronze",
			LedgerFile:      "data/bronze/processed_urls.log",
			MaxResults:      20,
			TestMaxResults:  5,
			FetchTimeout:    "20s",
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			MinPageChars:    500,
			MaxPromptChars:  15000,
			MinArticleChars: 250,
			HistoricalPeriods: []string{
				"agosto de 2025", "julho de 2025", "junho de 2025",
				"maio de 2025", "abril de 2025", "março de 2025",
			},
			Schedule: ScheduleConfig{At: "06:00", Timezone: "America/Sao_Paulo"},
		},
		Search: SearchConfig{
			Provider:    "tavily",
			BaseURL:     "https://api.tavily.com",
			SearchDepth: "advanced",
			Topic:       "news",
			Timeout:     "30s",
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Extraction: GenerationConfig{
				Model:           "gemini-1.5-flash",
				Temperature:     0.2,
				TopP:            1,
				TopK:            1,
				MaxOutputTokens: 8192,
			},
			Answer: GenerationConfig{Model: "gemini-2.5-flash", Temperature: 0},
		},
		Embedding: EmbeddingConfig{
			Provider: "gemini",
			Gemini:   GeminiConfig{Model: "text-embedding-004"},
			Ollama:   OllamaConfig{BaseURL: "http://localhost:11434", Model: "all-minilm"},
		},
		Rerank: RerankConfig{
			Provider: "crossEncoder",
			TopN:     5,
			Timeout:  "30s",
			Cohere:   CohereConfig{Model: "rerank-multilingual-v3.0", BaseURL: "https://api.cohere.ai"},
			CrossEncoder: CrossEncoderConfig{
				BaseURL: "http://localhost:8080",
				Model:   "cross-encoder/ms-marco-MiniLM-L-6-v2",
			},
		},
		Index: IndexConfig{Dir: "FAISS", RetrieveK: 10, BatchSize: 16, Concurrency: 2},
		Storage: StorageConfig{
			MinIO: MinIOConfig{Bucket: "bronze"},
		},
		Session: SessionConfig{
			Backend:    "memory",
			CookieName: "sessionid",
			TTL:        "24h",
			Capacity:   1000,
			Redis:      RedisConfig{Address: "localhost:6379"},
		},
		Middleware: MiddlewareConfig{
			RateLimiter: RateLimiterConfig{Enabled: false, Rate: 1, Capacity: 10},
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          true,
				FailureThreshold: 5,
				SuccessThreshold: 1,
				Timeout:          "30s",
			},
		},
	}
}

// applyDefaults fills zero values left by a partial YAML file.
func applyDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.Server.Address == "" {
		cfg.Server.Address = def.Server.Address
	}
	if cfg.Crawler.BronzeDir == "" {
		cfg.Crawler.BronzeDir = def.Crawler.BronzeDir
	}
	if cfg.Crawler.LedgerFile == "" {
		cfg.Crawler.LedgerFile = cfg.Crawler.BronzeDir + "/processed_urls.log"
	}
	if cfg.Crawler.MaxResults <= 0 {
		cfg.Crawler.MaxResults = def.Crawler.MaxResults
	}
	if cfg.Crawler.TestMaxResults <= 0 {
		cfg.Crawler.TestMaxResults = def.Crawler.TestMaxResults
	}
	if cfg.Crawler.MinPageChars <= 0 {
		cfg.Crawler.MinPageChars = def.Crawler.MinPageChars
	}
	if cfg.Crawler.MaxPromptChars <= 0 {
		cfg.Crawler.MaxPromptChars = def.Crawler.MaxPromptChars
	}
	if cfg.Crawler.MinArticleChars <= 0 {
		cfg.Crawler.MinArticleChars = def.Crawler.MinArticleChars
	}
	if cfg.Crawler.UserAgent == "" {
		cfg.Crawler.UserAgent = def.Crawler.UserAgent
	}
	if cfg.Index.Dir == "" {
		cfg.Index.Dir = def.Index.Dir
	}
	if cfg.Index.RetrieveK <= 0 {
		cfg.Index.RetrieveK = def.Index.RetrieveK
	}
	if cfg.Index.BatchSize <= 0 {
		cfg.Index.BatchSize = def.Index.BatchSize
	}
	if cfg.Index.Concurrency <= 0 {
		cfg.Index.Concurrency = def.Index.Concurrency
	}
	if cfg.Rerank.TopN <= 0 {
		cfg.Rerank.TopN = def.Rerank.TopN
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = def.Session.CookieName
	}
	if cfg.Session.Capacity <= 0 {
		cfg.Session.Capacity = def.Session.Capacity
	}
}

// applyEnv overlays secrets from the environment. Environment values win over YAML.
func applyEnv(cfg *AppConfig) {
	if v := os.Getenv(EnvTavilyAPIKey); v != "" {
		cfg.Search.APIKey = v
	}
	if v := os.Getenv(EnvGeminiAPIKey); v != "" {
		cfg.LLM.CrawlerAPIKey = v
	}
	if v := os.Getenv(EnvGoogleAPIKey); v != "" {
		cfg.LLM.AnswerAPIKey = v
	}
	if cfg.LLM.AnswerAPIKey == "" {
		cfg.LLM.AnswerAPIKey = cfg.LLM.CrawlerAPIKey
	}
	if cfg.Embedding.Gemini.APIKey == "" {
		cfg.Embedding.Gemini.APIKey = firstNonEmpty(cfg.LLM.AnswerAPIKey, cfg.LLM.CrawlerAPIKey)
	}
	if v := os.Getenv(EnvCohereAPIKey); v != "" {
		cfg.Rerank.Cohere.APIKey = v
	}
	if v := os.Getenv(EnvMinIOAccess); v != "" {
		cfg.Storage.MinIO.AccessKey = v
	}
	if v := os.Getenv(EnvMinIOSecret); v != "" {
		cfg.Storage.MinIO.SecretKey = v
	}
	if v := os.Getenv(EnvRedisPass); v != "" {
		cfg.Session.Redis.Password = v
	}
}

// ValidateCrawler reports the configuration errors that make collection impossible.
// Missing search or Gemini keys are fatal for the crawler.
func (c *AppConfig) ValidateCrawler() error {
	var missing []string
	if c.Search.APIKey == "" {
		missing = append(missing, EnvTavilyAPIKey)
	}
	if c.LLM.CrawlerAPIKey == "" {
		missing = append(missing, EnvGeminiAPIKey)
	}
	if len(missing) > 0 {
		return fmt.Errorf("API keys not found in environment: %s", strings.Join(missing, ", "))
	}
	return c.validateEmbedding()
}

// ValidateServer reports configuration errors for the chatbot server.
func (c *AppConfig) ValidateServer() error {
	if c.LLM.AnswerAPIKey == "" {
		return fmt.Errorf("API key not found in environment: %s or %s", EnvGoogleAPIKey, EnvGeminiAPIKey)
	}
	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported session backend: %s", c.Session.Backend)
	}
	switch c.Rerank.Provider {
	case "crossEncoder", "cohere", "none":
	default:
		return fmt.Errorf("unsupported rerank provider: %s", c.Rerank.Provider)
	}
	return c.validateEmbedding()
}

func (c *AppConfig) validateEmbedding() error {
	switch c.Embedding.Provider {
	case "gemini":
		if c.Embedding.Gemini.APIKey == "" {
			return errors.New("gemini embedding provider requires an API key")
		}
	case "ollama":
	default:
		return fmt.Errorf("unsupported embedding provider: %s", c.Embedding.Provider)
	}
	return nil
}

// Duration parses a duration string from the config, returning def when empty or invalid.
func Duration(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
