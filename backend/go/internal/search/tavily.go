package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"PerguntaQueRespondo/backend/go/pkg/httpclient"
)

// DefaultTavilyURL is the public Tavily endpoint.
const DefaultTavilyURL = "https://api.tavily.com"

// Tavily is a Searcher backed by the Tavily search API.
type Tavily struct {
	client  *httpclient.Client
	baseURL string
	apiKey  string
}

// NewTavily creates a Tavily client. An empty baseURL selects the public endpoint.
func NewTavily(client *httpclient.Client, baseURL, apiKey string) (*Tavily, error) {
	if apiKey == "" {
		return nil, errors.New("tavily: missing API key")
	}
	if baseURL == "" {
		baseURL = DefaultTavilyURL
	}
	return &Tavily{client: client, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}, nil
}

type tavilyRequest struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth,omitempty"`
	MaxResults  int    `json:"max_results,omitempty"`
	Topic       string `json:"topic,omitempty"`
}

type tavilyResponse struct {
	Query   string `json:"query"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
		Source  string  `json:"source"`
	} `json:"results"`
}

// Search runs one query. Results keep the provider's ranking order.
func (t *Tavily) Search(ctx context.Context, req Request) ([]Result, error) {
	body := tavilyRequest{
		Query:       req.Query,
		SearchDepth: req.SearchDepth,
		MaxResults:  req.MaxResults,
		Topic:       req.Topic,
	}
	headers := map[string]string{"Authorization": "Bearer " + t.apiKey}

	var resp tavilyResponse
	if err := t.client.PostJSON(ctx, t.baseURL+"/search", headers, body, &resp); err != nil {
		return nil, fmt.Errorf("tavily search: %w", err)
	}

	results := make([]Result, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, Result{
			URL:     r.URL,
			Title:   r.Title,
			Source:  r.Source,
			Content: r.Content,
			Score:   r.Score,
		})
	}
	return results, nil
}
