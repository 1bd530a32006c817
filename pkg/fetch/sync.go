package fetch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cutplanco/cutplan/pkg/hosting"
	"github.com/cutplanco/cutplan/pkg/store"
)

// Source is the page-oriented hosting API consumed by the Syncer.
type Source interface {
	Issues(ctx context.Context, repo string, page int) ([]hosting.Issue, bool, error)
	PullRequests(ctx context.Context, repo string, page int) ([]hosting.PullRequest, bool, error)
}

// Summary reports what one sync walk covered.
type Summary struct {
	Issues       int
	PullRequests int
	Written      int
	Failed       int
}

// Syncer walks the hosting API and funnels entities through a worker pool
// into the cache.
type Syncer struct {
	source Source
	pool   *Pool
	logger *slog.Logger
}

// NewSyncer creates a Syncer over the given source and pool.
func NewSyncer(source Source, pool *Pool, logger *slog.Logger) *Syncer {
	return &Syncer{source: source, pool: pool, logger: logger}
}

// SyncIssues walks every page of issues for the given repos and enqueues
// them for caching. Pull requests returned by the issues endpoint are skipped.
func (s *Syncer) SyncIssues(ctx context.Context, repos []string, summary *Summary) error {
	for _, repo := range repos {
		for page := 1; ; page++ {
			issues, more, err := s.source.Issues(ctx, repo, page)
			if err != nil {
				return fmt.Errorf("syncing issues for %s: %w", repo, err)
			}

			for _, issue := range issues {
				if issue.IsPullRequest() {
					continue
				}

				s.pool.Enqueue(Job{Issue: &store.Issue{
					Repo:      repo,
					Number:    issue.Number,
					Title:     issue.Title,
					State:     issue.State,
					URL:       issue.HTMLURL,
					UpdatedAt: issue.UpdatedAt,
				}})
				summary.Issues++
			}

			if !more {
				break
			}
		}

		s.logger.Debug("issue pages walked", "repo", repo)
	}

	return nil
}

// SyncPullRequests walks every page of pull requests for the release repo
// and enqueues them for caching.
func (s *Syncer) SyncPullRequests(ctx context.Context, repo string, summary *Summary) error {
	for page := 1; ; page++ {
		prs, more, err := s.source.PullRequests(ctx, repo, page)
		if err != nil {
			return fmt.Errorf("syncing pull requests for %s: %w", repo, err)
		}

		for _, pr := range prs {
			s.pool.Enqueue(Job{PullRequest: &store.PullRequest{
				Number:     pr.Number,
				Title:      pr.Title,
				Body:       pr.Body,
				HeadBranch: pr.Head.Ref,
				State:      pr.State,
				MergeSHA:   pr.MergeCommitSHA,
				URL:        pr.HTMLURL,
				UpdatedAt:  pr.UpdatedAt,
			}})
			summary.PullRequests++
		}

		if !more {
			break
		}
	}

	s.logger.Debug("pull request pages walked", "repo", repo)
	return nil
}

// Finish drains the pool and folds its write stats into the summary.
func (s *Syncer) Finish(summary *Summary) {
	s.pool.Close()
	summary.Written, summary.Failed = s.pool.Stats()
}
