package rerankers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"PerguntaQueRespondo/backend/go/internal/rag/interfaces"
	"PerguntaQueRespondo/backend/go/internal/rag/schema"
	"PerguntaQueRespondo/backend/go/pkg/httpclient"
)

// CrossEncoderReranker scores (query, document) pairs with a cross-encoder served over
// HTTP by text-embeddings-inference (POST /rerank).
type CrossEncoderReranker struct {
	client  *httpclient.Client
	baseURL string
}

type crossEncoderRequest struct {
	Query    string   `json:"query"`
	Texts    []string `json:"texts"`
	Truncate bool     `json:"truncate"`
}

// NewCrossEncoderReranker creates a CrossEncoderReranker for the server at baseURL.
func NewCrossEncoderReranker(client *httpclient.Client, baseURL string) (*CrossEncoderReranker, error) {
	if baseURL == "" {
		return nil, errors.New("cross-encoder: missing base URL")
	}
	return &CrossEncoderReranker{client: client, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Rerank re-orders docs by cross-encoder score and keeps the top n.
func (r *CrossEncoderReranker) Rerank(ctx context.Context, query string, docs []*schema.Document, topN int) ([]*schema.Document, error) {
	if len(docs) == 0 {
		return docs, nil
	}

	var scored []scoredIndex
	req := crossEncoderRequest{Query: query, Texts: texts(docs), Truncate: true}
	if err := r.client.PostJSON(ctx, r.baseURL+"/rerank", nil, req, &scored); err != nil {
		return nil, fmt.Errorf("cross-encoder rerank: %w", err)
	}
	return pick(docs, scored, topN)
}

var _ interfaces.Reranker = (*CrossEncoderReranker)(nil)
