package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"facebook-scraper/internal/config"
)

const maxResponseBytes = 32 << 20

// ErrRateLimited matches a *StatusError carrying HTTP 429.
var ErrRateLimited = errors.New("rate limited by search API")

// Searcher runs one keyword search and returns the raw post objects.
type Searcher interface {
	SearchPosts(ctx context.Context, keyword string) ([]gjson.Result, error)
}

// StatusError is returned for any non-200 answer from the search API.
type StatusError struct {
	Keyword    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search for %q returned status %d", e.Keyword, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

// SearchClient calls the RapidAPI Facebook post search.
type SearchClient struct {
	client      *http.Client
	searchURL   string
	host        string
	apiKey      string
	recentPosts string
	dateFilter  string
}

func NewSearchClient(cfg config.RapidAPIConfig) *SearchClient {
	return &SearchClient{
		client:      &http.Client{Timeout: cfg.RequestTimeout()},
		searchURL:   cfg.SearchURL(),
		host:        cfg.Host,
		apiKey:      cfg.Key,
		recentPosts: cfg.RecentPosts,
		dateFilter:  cfg.DateFilter,
	}
}

// SearchPosts returns the elements of the response's "results" list, or
// nothing if the list is missing.
func (c *SearchClient) SearchPosts(ctx context.Context, keyword string) ([]gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := url.Values{}
	q.Set("query", keyword)
	q.Set("recent_posts", c.recentPosts)
	q.Set("date_filter", c.dateFilter)
	req.URL.RawQuery = q.Encode()

	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &StatusError{Keyword: keyword, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("response body exceeds %d bytes", maxResponseBytes)
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("response body is not valid JSON")
	}

	results := gjson.GetBytes(body, "results")
	if !results.IsArray() {
		return nil, nil
	}
	return results.Array(), nil
}
