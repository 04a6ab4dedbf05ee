package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"agora/internal/domain"
)

const (
	duckduckgoURL = "https://html.duckduckgo.com/html/"

	// maxPageBody bounds page downloads; maxPageText caps the text handed
	// to the summarizer.
	maxPageBody = 2 * 1024 * 1024
	maxPageText = 3000
	// minPageText filters out pages that stripped down to nothing useful.
	minPageText = 100
)

// Client searches the web through the DuckDuckGo HTML endpoint. Requests
// are paced to stay polite toward a service without an official API.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// New creates a search client. minInterval spaces consecutive requests.
func New(userAgent string, minInterval time.Duration, logger *slog.Logger) *Client {
	if minInterval <= 0 {
		minInterval = 5 * time.Second
	}
	return &Client{
		baseURL:   duckduckgoURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: 15 * time.Second},
		limiter:   rate.NewLimiter(rate.Every(minInterval), 1),
		logger:    logger,
	}
}

// Search returns up to maxResults hits for the query.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := c.baseURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: HTTP %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBody))
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	results := parseResults(doc, maxResults)
	c.logger.Debug("web search", "query", query, "results", len(results))
	return results, nil
}

// parseResults pairs result__a anchors with result__snippet nodes in
// document order.
func parseResults(doc *html.Node, maxResults int) []domain.SearchResult {
	var titles, urls, snippets []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			switch {
			case hasClass(n, "result__a") && len(titles) < maxResults:
				urls = append(urls, attr(n, "href"))
				titles = append(titles, strings.TrimSpace(textContent(n)))
			case hasClass(n, "result__snippet") && len(snippets) < maxResults:
				snippets = append(snippets, strings.TrimSpace(textContent(n)))
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	results := make([]domain.SearchResult, 0, len(titles))
	for i, title := range titles {
		r := domain.SearchResult{Title: title, URL: urls[i]}
		if title == "" {
			r.Title = "No title"
		}
		if i < len(snippets) && snippets[i] != "" {
			r.Snippet = snippets[i]
		} else {
			r.Snippet = "No description"
		}
		results = append(results, r)
	}
	return results
}

// FetchText downloads a page and returns its visible text, whitespace
// collapsed and capped for prompt use.
func (c *Client) FetchText(ctx context.Context, pageURL string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch page: HTTP %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBody))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	text := strings.Join(strings.Fields(visibleText(doc)), " ")
	if len(text) > maxPageText {
		text = text[:maxPageText]
	}
	if len(text) < minPageText {
		return "", fmt.Errorf("page has no usable text")
	}
	return text, nil
}

// visibleText collects text nodes, skipping script and style subtrees.
func visibleText(n *html.Node) string {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(visibleText(child))
		sb.WriteString(" ")
	}
	return sb.String()
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(textContent(child))
	}
	return sb.String()
}

var _ domain.Searcher = (*Client)(nil)
