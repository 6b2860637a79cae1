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

const defaultCohereURL = "https://api.cohere.ai"

// CohereReranker implements the Reranker interface using the Cohere Rerank API.
type CohereReranker struct {
	client  *httpclient.Client
	baseURL string
	apiKey  string
	model   string
}

type cohereRerankRequest struct {
	Model           string   `json:"model"`
	Query           string   `json:"query"`
	Documents       []string `json:"documents"`
	TopN            int      `json:"top_n"`
	ReturnDocuments bool     `json:"return_documents"`
}

type cohereRerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// NewCohereReranker creates a new CohereReranker.
func NewCohereReranker(client *httpclient.Client, baseURL, apiKey, model string) (*CohereReranker, error) {
	if apiKey == "" {
		return nil, errors.New("cohere: missing API key")
	}
	if baseURL == "" {
		baseURL = defaultCohereURL
	}
	return &CohereReranker{client: client, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, model: model}, nil
}

// Rerank re-orders docs by Cohere relevance score and keeps the top n.
func (r *CohereReranker) Rerank(ctx context.Context, query string, docs []*schema.Document, topN int) ([]*schema.Document, error) {
	if len(docs) == 0 {
		return docs, nil
	}

	reqBody := cohereRerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: texts(docs),
		TopN:      min(topN, len(docs)),
	}
	var resp cohereRerankResponse
	headers := map[string]string{"Authorization": "Bearer " + r.apiKey}
	if err := r.client.PostJSON(ctx, r.baseURL+"/v1/rerank", headers, reqBody, &resp); err != nil {
		return nil, fmt.Errorf("cohere rerank: %w", err)
	}

	scored := make([]scoredIndex, 0, len(resp.Results))
	for _, res := range resp.Results {
		scored = append(scored, scoredIndex{Index: res.Index, Score: res.RelevanceScore})
	}
	return pick(docs, scored, topN)
}

// compile-time check to ensure CohereReranker implements the Reranker interface
var _ interfaces.Reranker = (*CohereReranker)(nil)
