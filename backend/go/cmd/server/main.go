package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PerguntaQueRespondo/backend/go/internal/chatbot/api"
	"PerguntaQueRespondo/backend/go/internal/chatbot/session"
	"PerguntaQueRespondo/backend/go/internal/config"
	"PerguntaQueRespondo/backend/go/internal/crawler/pipeline"
	"PerguntaQueRespondo/backend/go/internal/embedding"
	"PerguntaQueRespondo/backend/go/internal/llm"
	"PerguntaQueRespondo/backend/go/internal/rag/answerer"
	"PerguntaQueRespondo/backend/go/internal/rag/rerankers"
	"PerguntaQueRespondo/backend/go/internal/rag/vectorindex"
	"PerguntaQueRespondo/backend/go/pkg/logger"
	"PerguntaQueRespondo/backend/go/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const serviceName = "chatbot"

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	// 1. Initialize Logger
	logger.Init(logrus.InfoLevel)
	appLogger := logger.New(serviceName)
	appLogger.Info("Starting chatbot server...")

	// 2. Load Configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	appLogger.Info("Configuration loaded successfully.")

	ctx := context.Background()

	// 3. Initialize the RAG engine
	emb, err := embedding.New(ctx, cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedding model: %v", err)
	}
	answerLLM, err := llm.NewClient(ctx, cfg.LLM.Provider, cfg.LLM.AnswerAPIKey, cfg.LLM.Answer)
	if err != nil {
		log.Fatalf("Failed to create answer LLM: %v", err)
	}
	reranker, err := rerankers.New(cfg.Rerank, cfg.Middleware.CircuitBreaker, appLogger.WithField("component", "reranker"))
	if err != nil {
		log.Fatalf("Failed to create reranker: %v", err)
	}
	indexDir := cfg.Index.Dir
	engine := answerer.New(answerer.Components{
		Embedder: emb,
		Reranker: reranker,
		LLM:      answerLLM,
		LoadIndex: func(context.Context) (answerer.Retriever, error) {
			ix, err := vectorindex.Load(indexDir)
			if err != nil {
				return nil, err
			}
			return ix, nil
		},
		Closers: []io.Closer{answerLLM, emb},
	},
		answerer.WithRetrieveK(cfg.Index.RetrieveK),
		answerer.WithTopN(cfg.Rerank.TopN),
		answerer.WithLogger(appLogger.WithField("component", "answerer")),
	)
	engine.Init(ctx)
	defer engine.Close()

	// 4. Initialize the news collector behind /update_news/
	var collector api.Collector
	news, err := pipeline.Build(ctx, cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Warn("news collection disabled, /update_news/ will fail")
		collector = pipeline.Unavailable{Err: err}
	} else {
		defer news.Close()
		collector = news
	}

	// 5. Initialize sessions and middleware
	sessions, err := session.New(ctx, cfg.Session, appLogger)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}
	defer sessions.Close()

	var limiter *ratelimiter.KeyedLimiter
	if rl := cfg.Middleware.RateLimiter; rl.Enabled {
		if limiter, err = ratelimiter.NewKeyedLimiter(rl.Rate, rl.Capacity, 10000); err != nil {
			log.Fatalf("Failed to create rate limiter: %v", err)
		}
	}

	srv, err := api.New(engine, collector, sessions, api.Options{
		ServiceName:  serviceName,
		ExposeErrors: cfg.Server.ExposeErrors,
		CookieName:   cfg.Session.CookieName,
		CookieTTL:    config.Duration(cfg.Session.TTL, session.DefaultTTL),
		RateLimiter:  limiter,
	}, appLogger)
	if err != nil {
		log.Fatalf("Failed to create HTTP handlers: %v", err)
	}

	// 6. Start Gin HTTP Server in a goroutine
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	httpServer := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Infof("HTTP server listening at %s", cfg.Server.Address)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	// 7. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Duration(cfg.Server.ShutdownTimeout, 10*time.Second))
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("HTTP server forced to shut down")
	}
	appLogger.Info("Server gracefully stopped")
}
