// ABOUTME: Web research pipeline: search, then fetch and extract top hits concurrently
// ABOUTME: Settle-all semantics; output order always mirrors search ranking
package web

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"applebridge/internal/config"
)

// ContentResult pairs a search hit with its fetched page content. Content
// is nil exactly when the fetch or extraction for that hit failed, in which
// case Error carries the reason.
type ContentResult struct {
	SearchResult
	Content *string `json:"content"`
	Error   string  `json:"error,omitempty"`
}

// ResearchResult is the pipeline output for one query.
type ResearchResult struct {
	Query   string          `json:"query"`
	Results []ContentResult `json:"results"`
	Error   string          `json:"error,omitempty"`
}

// Pipeline runs searches and content fetches against a search engine's
// HTML endpoint.
type Pipeline struct {
	SearchURL  string
	UserAgent  string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	MaxPages   int
	Client     *http.Client // nil means http.DefaultClient
}

// NewPipeline builds a pipeline from configuration.
func NewPipeline(cfg *config.Config) *Pipeline {
	return &Pipeline{
		SearchURL:  cfg.SearchURL,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.FetchTimeout,
		Retries:    cfg.FetchRetries,
		RetryDelay: cfg.FetchBaseWait,
		MaxPages:   cfg.MaxContentPages,
	}
}

// Research searches for query and fetches content for the top hits. Per-hit
// failures are recorded on the corresponding ContentResult and never abort
// the run; only a failure of the search request itself returns an error.
func (p *Pipeline) Research(ctx context.Context, query string) (*ResearchResult, error) {
	searchResults, err := p.search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	out := &ResearchResult{Query: query, Results: []ContentResult{}}
	if len(searchResults) == 0 {
		out.Error = fmt.Sprintf("no search results found for %q", query)
		return out, nil
	}

	maxPages := p.MaxPages
	if maxPages <= 0 {
		maxPages = 5
	}
	if len(searchResults) > maxPages {
		searchResults = searchResults[:maxPages]
	}

	out.Results = p.fetchAll(ctx, searchResults)
	return out, nil
}

// search fetches the results page for the URL-encoded query and extracts
// hits, falling back to the loose extraction strategy when needed.
func (p *Pipeline) search(ctx context.Context, query string) ([]SearchResult, error) {
	searchURL := fmt.Sprintf("%s?q=%s", p.SearchURL, url.QueryEscape(query))
	page, err := Fetch(ctx, searchURL, FetchOptions{
		Timeout:    p.Timeout,
		Retries:    p.Retries,
		RetryDelay: p.RetryDelay,
		UserAgent:  p.UserAgent,
		MaxBytes:   1 << 20,
		Client:     p.Client,
	})
	if err != nil {
		return nil, err
	}
	return ExtractSearchResults(page), nil
}

// fetchAll fetches and extracts every hit concurrently. Workers write into
// their own slot, so result order matches input order regardless of
// completion timing, and no worker failure cancels a sibling.
func (p *Pipeline) fetchAll(ctx context.Context, hits []SearchResult) []ContentResult {
	results := make([]ContentResult, len(hits))

	var g errgroup.Group
	for i, hit := range hits {
		results[i] = ContentResult{SearchResult: hit}
		g.Go(func() error {
			page, err := Fetch(ctx, hit.URL, FetchOptions{
				Timeout:    p.Timeout,
				Retries:    p.Retries,
				RetryDelay: p.RetryDelay,
				UserAgent:  p.UserAgent,
				Client:     p.Client,
			})
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			content := ExtractMainContent(page)
			results[i].Content = &content
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	return results
}
