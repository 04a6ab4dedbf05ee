package domain

import "context"

// SearchResult is one web search hit.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// Searcher is the web research capability.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
	// FetchText returns a page's visible text, capped for prompt use.
	FetchText(ctx context.Context, url string) (string, error)
}
