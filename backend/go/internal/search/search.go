// Package search queries the web search API that feeds the crawler.
package search

import "context"

// Request describes one search.
type Request struct {
	Query       string
	SearchDepth string // "basic" or "advanced"
	Topic       string // "general" or "news"; empty leaves the provider default
	MaxResults  int
}

// Result is one search hit. Source is empty when the provider does not report one.
type Result struct {
	URL     string
	Title   string
	Source  string
	Content string
	Score   float64
}

// Searcher is implemented by web search providers.
type Searcher interface {
	Search(ctx context.Context, req Request) ([]Result, error)
}
