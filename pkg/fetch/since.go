package fetch

import (
	"context"
	"time"

	"github.com/cutplanco/cutplan/pkg/hosting"
)

// SinceSource wraps a Source and stops a page walk once entities older than
// the cutoff appear. It relies on the hosting API returning items sorted by
// update time, newest first.
type SinceSource struct {
	inner  Source
	cutoff time.Time
}

// NewSinceSource wraps inner with an updated-since cutoff.
func NewSinceSource(inner Source, cutoff time.Time) *SinceSource {
	return &SinceSource{inner: inner, cutoff: cutoff}
}

func (s *SinceSource) Issues(ctx context.Context, repo string, page int) ([]hosting.Issue, bool, error) {
	issues, more, err := s.inner.Issues(ctx, repo, page)
	if err != nil {
		return nil, false, err
	}

	for i, issue := range issues {
		if issue.UpdatedAt.Before(s.cutoff) {
			return issues[:i], false, nil
		}
	}
	return issues, more, nil
}

func (s *SinceSource) PullRequests(ctx context.Context, repo string, page int) ([]hosting.PullRequest, bool, error) {
	prs, more, err := s.inner.PullRequests(ctx, repo, page)
	if err != nil {
		return nil, false, err
	}

	for i, pr := range prs {
		if pr.UpdatedAt.Before(s.cutoff) {
			return prs[:i], false, nil
		}
	}
	return prs, more, nil
}
