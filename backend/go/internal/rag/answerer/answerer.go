// Package answerer answers questions about RIDE-DF education news from the vector index.
package answerer

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"PerguntaQueRespondo/backend/go/internal/models"
	"PerguntaQueRespondo/backend/go/internal/rag/interfaces"
	"PerguntaQueRespondo/backend/go/internal/rag/rerankers"
	"PerguntaQueRespondo/backend/go/internal/rag/schema"
	"PerguntaQueRespondo/backend/go/pkg/apperrors"
	"PerguntaQueRespondo/backend/go/pkg/logger"
)

// State is the lifecycle of a Service.
type State int32

const (
	Uninitialized State = iota
	Initializing
	Ready
	Degraded
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Degraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Retriever is the read side of the vector index.
type Retriever interface {
	Search(vector []float32, k int) ([]schema.ScoredDocument, error)
	Len() int
}

// Components are the collaborators of a Service.
type Components struct {
	Embedder interfaces.Embedder
	Reranker interfaces.Reranker // nil keeps retrieval order
	LLM      interfaces.LLM
	// LoadIndex is called once, on first use. An error leaves the service degraded.
	LoadIndex func(ctx context.Context) (Retriever, error)
	// Closers are released by Close, e.g. the LLM and embedding clients.
	Closers []io.Closer
}

// Option configures a Service.
type Option func(*Service)

// WithRetrieveK sets how many documents are fetched from the index.
func WithRetrieveK(k int) Option { return func(s *Service) { s.retrieveK = k } }

// WithTopN sets how many documents survive reranking.
func WithTopN(n int) Option { return func(s *Service) { s.topN = n } }

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option { return func(s *Service) { s.log = l } }

// Service is the retrieval-augmented answerer.
type Service struct {
	c          Components
	retrieveK  int
	topN       int
	maxSources int
	minContext int
	snippetLen int
	log        *logger.Logger

	once  sync.Once
	state atomic.Int32
	index Retriever
}

// New creates a Service. Nothing is loaded until Init or the first Answer.
func New(c Components, opts ...Option) *Service {
	s := &Service{
		c:          c,
		retrieveK:  10,
		topN:       5,
		maxSources: 3,
		minContext: 50,
		snippetLen: 200,
		log:        logger.New("answerer"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.c.Reranker == nil {
		s.c.Reranker = rerankers.Passthrough{}
	}
	return s
}

// Init loads the index. It runs at most once; later calls return immediately. A load
// failure is logged and the service stays degraded for the life of the process.
func (s *Service) Init(ctx context.Context) {
	s.once.Do(func() {
		s.state.Store(int32(Initializing))
		if s.c.LoadIndex == nil {
			s.log.Error("no index loader configured")
			s.state.Store(int32(Degraded))
			return
		}
		ix, err := s.c.LoadIndex(ctx)
		if err == nil && ix == nil {
			err = errors.New("index loader returned no index")
		}
		if err != nil {
			s.log.WithError(err).Error("failed to load vector index, answering in degraded mode")
			s.state.Store(int32(Degraded))
			return
		}
		s.index = ix
		s.state.Store(int32(Ready))
		s.log.WithField("documents", ix.Len()).Info("RAG engine ready")
	})
}

// State returns the current lifecycle state.
func (s *Service) State() State { return State(s.state.Load()) }

// Ready reports whether the index is loaded.
func (s *Service) Ready() bool { return s.State() == Ready }

// Close releases the components' resources.
func (s *Service) Close() error {
	var errs []error
	for _, c := range s.c.Closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Answer answers question from the indexed news. Replies for a degraded engine or
// missing context are answers, not errors; embedding and LLM failures are returned as
// upstream errors.
func (s *Service) Answer(ctx context.Context, question string) (*models.Answer, error) {
	s.Init(ctx)
	if !s.Ready() {
		return &models.Answer{Answer: MsgDegraded, Sources: []models.Source{}}, nil
	}

	docs, err := s.retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	contexts := make([]string, len(docs))
	for i, d := range docs {
		contexts[i] = d.Text
	}
	if len(contexts) == 0 || utf8.RuneCountInString(strings.Join(contexts, " ")) < s.minContext {
		return &models.Answer{Answer: NoContextMessage(question), Sources: []models.Source{}}, nil
	}

	reply, err := s.c.LLM.Generate(ctx, BuildPrompt(question, contexts))
	if err != nil {
		return nil, apperrors.Upstream("generate answer", err)
	}

	return &models.Answer{Answer: reply, Sources: s.sources(docs)}, nil
}

func (s *Service) retrieve(ctx context.Context, question string) ([]*schema.Document, error) {
	vec, err := s.c.Embedder.Embed(ctx, question)
	if err != nil {
		return nil, apperrors.Upstream("embed question", err)
	}
	hits, err := s.index.Search(vec, s.retrieveK)
	if err != nil {
		return nil, apperrors.Internal("search index", err)
	}

	docs := make([]*schema.Document, len(hits))
	for i, h := range hits {
		docs[i] = h.Document
	}

	reranked, err := s.c.Reranker.Rerank(ctx, question, docs, s.topN)
	if err != nil {
		s.log.WithError(err).Warn("reranker failed, keeping retrieval order")
		if len(docs) > s.topN {
			docs = docs[:s.topN]
		}
		return docs, nil
	}
	return reranked, nil
}

func (s *Service) sources(docs []*schema.Document) []models.Source {
	n := min(len(docs), s.maxSources)
	out := make([]models.Source, 0, n)
	for _, d := range docs[:n] {
		label := d.MetadataString(schema.MetadataKeySource)
		if label == "" {
			label = d.MetadataString(schema.MetadataKeySourceAlt)
		}
		if label == "" {
			label = UnknownSource
		}
		out = append(out, models.Source{Label: label, Snippet: Snippet(d.Text, s.snippetLen)})
	}
	return out
}
