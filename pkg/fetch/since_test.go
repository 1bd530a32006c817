package fetch

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cutplanco/cutplan/pkg/hosting"
)

type stampedSource struct {
	issueTimes []time.Time
	prTimes    []time.Time
	more       bool
}

func (s *stampedSource) Issues(_ context.Context, _ string, _ int) ([]hosting.Issue, bool, error) {
	issues := make([]hosting.Issue, len(s.issueTimes))
	for i, ts := range s.issueTimes {
		issues[i] = hosting.Issue{Number: i + 1, UpdatedAt: ts}
	}
	return issues, s.more, nil
}

func (s *stampedSource) PullRequests(_ context.Context, _ string, _ int) ([]hosting.PullRequest, bool, error) {
	prs := make([]hosting.PullRequest, len(s.prTimes))
	for i, ts := range s.prTimes {
		prs[i] = hosting.PullRequest{Number: i + 1, UpdatedAt: ts}
	}
	return prs, s.more, nil
}

var _ = Describe("SinceSource", func() {
	var (
		now    time.Time
		cutoff time.Time
	)

	BeforeEach(func() {
		now = time.Now().UTC()
		cutoff = now.Add(-24 * time.Hour)
	})

	It("truncates the page at the first stale issue and stops paging", func() {
		src := NewSinceSource(&stampedSource{
			issueTimes: []time.Time{now, now.Add(-time.Hour), now.Add(-48 * time.Hour), now},
			more:       true,
		}, cutoff)

		issues, more, err := src.Issues(context.Background(), "acme/widgets", 1)
		Expect(err).ToNot(HaveOccurred())
		Expect(issues).To(HaveLen(2))
		Expect(more).To(BeFalse())
	})

	It("passes fresh pages through untouched", func() {
		src := NewSinceSource(&stampedSource{
			issueTimes: []time.Time{now, now.Add(-time.Hour)},
			more:       true,
		}, cutoff)

		issues, more, err := src.Issues(context.Background(), "acme/widgets", 1)
		Expect(err).ToNot(HaveOccurred())
		Expect(issues).To(HaveLen(2))
		Expect(more).To(BeTrue())
	})

	It("truncates pull request pages the same way", func() {
		src := NewSinceSource(&stampedSource{
			prTimes: []time.Time{now, now.Add(-72 * time.Hour)},
			more:    true,
		}, cutoff)

		prs, more, err := src.PullRequests(context.Background(), "acme/widgets", 1)
		Expect(err).ToNot(HaveOccurred())
		Expect(prs).To(HaveLen(1))
		Expect(more).To(BeFalse())
	})
})
