package store

import (
	"context"
	"errors"
	"strconv"

	"github.com/cutplanco/cutplan/pkg/attribution"
	"github.com/cutplanco/cutplan/pkg/plan"
)

// IssueSource adapts a Driver to the attribution lookup interface. Numeric
// keys are resolved against each configured issue repo in order; the first
// hit wins. A key cached only outside the configured repos still resolves,
// so the caller can flag the repo mismatch instead of reporting a miss.
type IssueSource struct {
	driver Driver
	repos  []string
}

func NewIssueSource(driver Driver, repos []string) *IssueSource {
	return &IssueSource{driver: driver, repos: repos}
}

func (s *IssueSource) Lookup(ctx context.Context, key string) (*attribution.IssueRef, error) {
	number, err := strconv.Atoi(key)
	if err != nil {
		// Non-numeric keys can never appear in the numeric cache.
		return nil, nil
	}

	for _, repo := range s.repos {
		issue, err := s.driver.Issue(ctx, repo, number)
		if err != nil {
			var nf NotFoundError
			if errors.As(err, &nf) {
				continue
			}
			return nil, err
		}

		return issueRef(issue), nil
	}

	issue, err := s.driver.FindIssue(ctx, number)
	if err != nil {
		var nf NotFoundError
		if errors.As(err, &nf) {
			return nil, nil
		}
		return nil, err
	}

	return issueRef(issue), nil
}

func issueRef(issue *Issue) *attribution.IssueRef {
	return &attribution.IssueRef{
		Repo:   issue.Repo,
		Number: issue.Number,
		URL:    issue.URL,
	}
}

// PullRequestSource adapts a Driver to the planner's pull request lookup.
type PullRequestSource struct {
	driver Driver
}

func NewPullRequestSource(driver Driver) *PullRequestSource {
	return &PullRequestSource{driver: driver}
}

func (s *PullRequestSource) PullRequest(ctx context.Context, number int) (*plan.PullRequestInfo, error) {
	pr, err := s.driver.PullRequest(ctx, number)
	if err != nil {
		var nf NotFoundError
		if errors.As(err, &nf) {
			return nil, nil
		}
		return nil, err
	}

	return &plan.PullRequestInfo{
		Number:     pr.Number,
		Title:      pr.Title,
		Body:       pr.Body,
		HeadBranch: pr.HeadBranch,
		URL:        pr.URL,
	}, nil
}
