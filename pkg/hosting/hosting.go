// Package hosting is a minimal client for the GitHub-style REST API used to
// sync issues and pull requests into the local cache.
package hosting

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultPageSize = 100

// Issue is one tracking issue as returned by the issues endpoint.
type Issue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	HTMLURL   string    `json:"html_url"`
	UpdatedAt time.Time `json:"updated_at"`
	PR        *struct{} `json:"pull_request,omitempty"`
}

// IsPullRequest reports whether this issues-endpoint entry is actually a PR.
// GitHub returns pull requests from the issues listing too.
func (i Issue) IsPullRequest() bool {
	return i.PR != nil
}

// PullRequest is one pull request as returned by the pulls endpoint.
type PullRequest struct {
	Number         int       `json:"number"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	State          string    `json:"state"`
	HTMLURL        string    `json:"html_url"`
	MergeCommitSHA string    `json:"merge_commit_sha"`
	UpdatedAt      time.Time `json:"updated_at"`

	Head struct {
		Ref string `json:"ref"`
	} `json:"head"`
}

// Client talks to a GitHub-compatible REST API.
type Client struct {
	baseURL    string
	token      string
	pageSize   int
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithPageSize overrides the per-page item count (default 100).
func WithPageSize(n uint) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = int(n)
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// NewClient creates a client for the API at baseURL, e.g.
// "https://api.github.com". The token may be empty for public repositories.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		token:    token,
		pageSize: defaultPageSize,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Issues fetches one page of issues for "owner/repo", most recently updated
// first. The returned bool reports whether another page may follow.
func (c *Client) Issues(ctx context.Context, repo string, page int) ([]Issue, bool, error) {
	var issues []Issue
	err := c.get(ctx, fmt.Sprintf("/repos/%s/issues", repo), page, url.Values{
		"state":     {"all"},
		"sort":      {"updated"},
		"direction": {"desc"},
	}, &issues)
	if err != nil {
		return nil, false, err
	}

	return issues, len(issues) == c.pageSize, nil
}

// PullRequests fetches one page of pull requests for "owner/repo", most
// recently updated first. The returned bool reports whether another page may
// follow.
func (c *Client) PullRequests(ctx context.Context, repo string, page int) ([]PullRequest, bool, error) {
	var prs []PullRequest
	err := c.get(ctx, fmt.Sprintf("/repos/%s/pulls", repo), page, url.Values{
		"state":     {"all"},
		"sort":      {"updated"},
		"direction": {"desc"},
	}, &prs)
	if err != nil {
		return nil, false, err
	}

	return prs, len(prs) == c.pageSize, nil
}

// get issues a GET against path and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, page int, params url.Values, out any) error {
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(c.pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{Path: path, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}

	return nil
}
