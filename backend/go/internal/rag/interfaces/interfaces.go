package interfaces

import (
	"context"

	"PerguntaQueRespondo/backend/go/internal/rag/schema"
)

// Reranker re-orders retrieved documents by relevance to the query and keeps the top n.
type Reranker interface {
	Rerank(ctx context.Context, query string, docs []*schema.Document, topN int) ([]*schema.Document, error)
}

// Embedder is the embedding model used for both indexing and querying.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// LLM is the interface for a large language model that can generate text.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
