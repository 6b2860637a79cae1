// Package api is the chatbot's HTTP surface.
package api

import (
	"context"
	"embed"
	"html/template"
	"time"

	"PerguntaQueRespondo/backend/go/internal/chatbot/session"
	"PerguntaQueRespondo/backend/go/internal/models"
	"PerguntaQueRespondo/backend/go/internal/rag/answerer"
	"PerguntaQueRespondo/backend/go/pkg/httpmiddleware"
	"PerguntaQueRespondo/backend/go/pkg/logger"
	"PerguntaQueRespondo/backend/go/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// Answerer answers a question from the indexed news.
type Answerer interface {
	Answer(ctx context.Context, question string) (*models.Answer, error)
	State() answerer.State
}

// Collector runs one news collection.
type Collector interface {
	Collect(ctx context.Context, query string, testMode bool) ([]models.Article, error)
}

// Options configure a Server.
type Options struct {
	ServiceName string
	// ExposeErrors returns raw error text with status 400 instead of typed responses.
	ExposeErrors bool
	CookieName   string
	CookieTTL    time.Duration
	// RateLimiter guards /ask/. Nil disables limiting.
	RateLimiter *ratelimiter.KeyedLimiter
}

// Server holds the handlers' dependencies.
type Server struct {
	answerer  Answerer
	collector Collector
	sessions  session.Store
	opts      Options
	log       *logger.Logger
	tmpl      *template.Template
}

// New creates a Server.
func New(a Answerer, c Collector, sessions session.Store, opts Options, log *logger.Logger) (*Server, error) {
	if opts.ServiceName == "" {
		opts.ServiceName = "chatbot"
	}
	if opts.CookieName == "" {
		opts.CookieName = "sessionid"
	}
	if opts.CookieTTL <= 0 {
		opts.CookieTTL = session.DefaultTTL
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		answerer:  a,
		collector: c,
		sessions:  sessions,
		opts:      opts,
		log:       log,
		tmpl:      tmpl,
	}, nil
}

// Router builds the gin engine with every route and middleware.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		httpmiddleware.RequestID(),
		httpmiddleware.RequestLogger(s.log, s.opts.ServiceName),
	)
	r.SetHTMLTemplate(s.tmpl)

	ask := []gin.HandlerFunc{s.ask}
	if s.opts.RateLimiter != nil {
		ask = append([]gin.HandlerFunc{httpmiddleware.RateLimit(s.opts.RateLimiter)}, ask...)
	}
	r.Any("/ask/", ask...)

	r.GET("/", s.chat)
	r.POST("/", s.chat)
	r.GET("/update_news/", s.updateNews)
	r.POST("/update_news/", s.updateNews)
	r.GET("/healthz", s.healthz)
	return r
}
