// Package rerankers holds the Reranker implementations used after vector retrieval.
package rerankers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"PerguntaQueRespondo/backend/go/internal/config"
	"PerguntaQueRespondo/backend/go/internal/rag/interfaces"
	"PerguntaQueRespondo/backend/go/internal/rag/schema"
	"PerguntaQueRespondo/backend/go/pkg/httpclient"
	"PerguntaQueRespondo/backend/go/pkg/logger"
)

// New builds the reranker selected in cfg. Provider "none" keeps retrieval order.
func New(cfg config.RerankConfig, breaker config.CircuitBreakerConfig, log *logger.Logger) (interfaces.Reranker, error) {
	timeout := config.Duration(cfg.Timeout, 30*time.Second)
	switch cfg.Provider {
	case "crossEncoder":
		r, err := NewCrossEncoderReranker(httpclient.NewWithBreaker(timeout, breaker.Settings("cross-encoder"), log), cfg.CrossEncoder.BaseURL)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "cohere":
		r, err := NewCohereReranker(httpclient.NewWithBreaker(timeout, breaker.Settings("cohere"), log), cfg.Cohere.BaseURL, cfg.Cohere.APIKey, cfg.Cohere.Model)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "none", "":
		return Passthrough{}, nil
	default:
		return nil, fmt.Errorf("unsupported rerank provider: %s", cfg.Provider)
	}
}

// Passthrough keeps the retrieval order and truncates to the top n.
type Passthrough struct{}

// Rerank implements interfaces.Reranker.
func (Passthrough) Rerank(_ context.Context, _ string, docs []*schema.Document, topN int) ([]*schema.Document, error) {
	if topN >= 0 && topN < len(docs) {
		return docs[:topN], nil
	}
	return docs, nil
}

type scoredIndex struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

func texts(docs []*schema.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Text
	}
	return out
}

// pick orders docs by descending score and keeps the top n. Out-of-range or duplicate
// indices from the server are an error rather than silently dropped.
func pick(docs []*schema.Document, scored []scoredIndex, topN int) ([]*schema.Document, error) {
	seen := make(map[int]bool, len(scored))
	for _, s := range scored {
		if s.Index < 0 || s.Index >= len(docs) || seen[s.Index] {
			return nil, fmt.Errorf("reranker returned invalid index %d for %d documents", s.Index, len(docs))
		}
		seen[s.Index] = true
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if topN >= 0 && topN < len(scored) {
		scored = scored[:topN]
	}
	out := make([]*schema.Document, len(scored))
	for i, s := range scored {
		out[i] = docs[s.Index]
	}
	return out, nil
}
