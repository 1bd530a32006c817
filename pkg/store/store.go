// Package store persists the local cache of hosting provider entities.
//
// The cache is populated by "cutplan pull" and read during planning so a run
// never blocks on the hosting provider API. The Driver is the primary
// interface for working with cached issues and pull requests per the storage
// implementor.
package store

import (
	"context"
	"time"
)

// Issue is a cached tracking issue.
type Issue struct {
	// Repo is the "owner/repo" slug the issue lives in.
	Repo string

	Number int
	Title  string
	State  string
	URL    string

	UpdatedAt time.Time
}

// PullRequest is a cached pull request from the release repository.
type PullRequest struct {
	Number int
	Title  string
	Body   string

	// HeadBranch is the source branch the PR was opened from.
	HeadBranch string

	State string

	// MergeSHA is the merge commit on the target branch, empty while open.
	MergeSHA string

	URL string

	UpdatedAt time.Time
}

// Driver defines the interface for persisting and retrieving cached entities
// in a storage backend.
type Driver interface {
	// UpsertIssue inserts or updates an issue keyed by (repo, number).
	UpsertIssue(ctx context.Context, issue *Issue) error

	// Issue retrieves an issue by repo slug and number.
	// Returns NotFoundError when absent.
	Issue(ctx context.Context, repo string, number int) (*Issue, error)

	// FindIssue retrieves an issue by number across every cached repo.
	// When several repos cache the same number, the lowest repo slug wins.
	// Returns NotFoundError when absent.
	FindIssue(ctx context.Context, number int) (*Issue, error)

	// OldestIssueNumber returns the lowest issue number cached for repo,
	// or 0 when no issues are cached.
	OldestIssueNumber(ctx context.Context, repo string) (int, error)

	// UpsertPullRequest inserts or updates a pull request keyed by number.
	UpsertPullRequest(ctx context.Context, pr *PullRequest) error

	// PullRequest retrieves a pull request by number.
	// Returns NotFoundError when absent.
	PullRequest(ctx context.Context, number int) (*PullRequest, error)

	// ListPullRequests returns all cached pull requests ordered by number.
	ListPullRequests(ctx context.Context) ([]*PullRequest, error)

	// Close closes the store and releases any resources.
	Close() error
}
