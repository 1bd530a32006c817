// Package inmemory provides a map-backed store driver for tests and dry runs.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cutplanco/cutplan/pkg/store"
)

// Driver implements store.Driver using in-memory maps.
type Driver struct {
	mu sync.RWMutex

	// issues is keyed by "repo#number".
	issues map[string]*store.Issue

	// prs is keyed by PR number.
	prs map[int]*store.PullRequest
}

// NewDriver creates a new in-memory store.
func NewDriver() *Driver {
	return &Driver{
		issues: make(map[string]*store.Issue),
		prs:    make(map[int]*store.PullRequest),
	}
}

func issueKey(repo string, number int) string {
	return fmt.Sprintf("%s#%d", repo, number)
}

func (d *Driver) UpsertIssue(_ context.Context, issue *store.Issue) error {
	if issue == nil {
		return errors.New("cannot store nil issue")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	cp := *issue
	d.issues[issueKey(issue.Repo, issue.Number)] = &cp
	return nil
}

func (d *Driver) Issue(_ context.Context, repo string, number int) (*store.Issue, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	issue, ok := d.issues[issueKey(repo, number)]
	if !ok {
		return nil, store.NotFoundError{Kind: "issue", Key: issueKey(repo, number)}
	}

	cp := *issue
	return &cp, nil
}

func (d *Driver) FindIssue(_ context.Context, number int) (*store.Issue, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var found *store.Issue
	for _, issue := range d.issues {
		if issue.Number != number {
			continue
		}
		if found == nil || issue.Repo < found.Repo {
			found = issue
		}
	}

	if found == nil {
		return nil, store.NotFoundError{Kind: "issue", Key: fmt.Sprintf("#%d", number)}
	}

	cp := *found
	return &cp, nil
}

func (d *Driver) OldestIssueNumber(_ context.Context, repo string) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	oldest := 0
	for _, issue := range d.issues {
		if issue.Repo != repo {
			continue
		}
		if oldest == 0 || issue.Number < oldest {
			oldest = issue.Number
		}
	}

	return oldest, nil
}

func (d *Driver) UpsertPullRequest(_ context.Context, pr *store.PullRequest) error {
	if pr == nil {
		return errors.New("cannot store nil pull request")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	cp := *pr
	d.prs[pr.Number] = &cp
	return nil
}

func (d *Driver) PullRequest(_ context.Context, number int) (*store.PullRequest, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	pr, ok := d.prs[number]
	if !ok {
		return nil, store.NotFoundError{Kind: "pull request", Key: fmt.Sprintf("#%d", number)}
	}

	cp := *pr
	return &cp, nil
}

func (d *Driver) ListPullRequests(_ context.Context) ([]*store.PullRequest, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*store.PullRequest, 0, len(d.prs))
	for _, pr := range d.prs {
		cp := *pr
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}
