package plan_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cutplanco/cutplan/pkg/plan"
	"github.com/cutplanco/cutplan/pkg/semver"
)

var _ = Describe("ResolveRange", func() {
	var (
		repo *fakeRepo
		ctx  context.Context
	)

	BeforeEach(func() {
		repo = newFakeRepo()
		ctx = context.Background()
	})

	It("requires an explicit head ref", func() {
		_, err := plan.ResolveRange(ctx, repo, repo, semver.MustParse("1.0.0"), nil, "")
		Expect(err).To(MatchError(plan.ErrHeadRefRequired))
	})

	It("spans all reachable history for a first release", func() {
		repo.reachable["main"] = []plan.Commit{{SHA: "c2"}, {SHA: "c1"}}

		got, err := plan.ResolveRange(ctx, repo, repo, semver.MustParse("1.0.0"), nil, "main")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.FromTag).To(BeEmpty())
		Expect(got.HeadRef).To(Equal("main"))
		Expect(got.Commits).To(HaveLen(2))
	})

	It("spans comparison tag to head ref for an untagged target", func() {
		comparison := semver.MustParse("9.1.0")
		repo.addTag("9.1.0")
		repo.between["v9.1.0..release/9.2"] = []plan.Commit{{SHA: "c3"}}

		got, err := plan.ResolveRange(ctx, repo, repo, semver.MustParse("9.2.0"), &comparison, "release/9.2")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.FromTag).To(Equal("v9.1.0"))
		Expect(got.HeadRef).To(Equal("release/9.2"))
		Expect(got.Commits).To(Equal([]plan.Commit{{SHA: "c3"}}))
	})

	It("closes the range at the target's own tag when already tagged", func() {
		comparison := semver.MustParse("1.0.0")
		repo.addTag("1.0.0")
		repo.addTag("1.1.0")
		repo.between["v1.0.0..v1.1.0"] = []plan.Commit{{SHA: "c9"}}

		got, err := plan.ResolveRange(ctx, repo, repo, semver.MustParse("1.1.0"), &comparison, "release/1.1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.HeadRef).To(Equal("v1.1.0"))
		Expect(got.Commits).To(Equal([]plan.Commit{{SHA: "c9"}}))
	})

	It("fails with TagNotFoundError when the comparison's tag is missing", func() {
		comparison := semver.MustParse("1.0.0")

		_, err := plan.ResolveRange(ctx, repo, repo, semver.MustParse("1.1.0"), &comparison, "main")

		var notFound plan.TagNotFoundError
		Expect(errors.As(err, &notFound)).To(BeTrue())
		Expect(notFound.Version).To(Equal("1.0.0"))
	})

	It("fails with RangeResolutionError instead of over-including history", func() {
		comparison := semver.MustParse("1.0.0")
		repo.addTag("1.0.0")
		repo.commitsErr = errors.New("bad object")

		_, err := plan.ResolveRange(ctx, repo, repo, semver.MustParse("1.1.0"), &comparison, "main")

		var rangeErr plan.RangeResolutionError
		Expect(errors.As(err, &rangeErr)).To(BeTrue())
		Expect(rangeErr.FromTag).To(Equal("v1.0.0"))
		Expect(errors.Unwrap(rangeErr)).To(MatchError("bad object"))
	})
})
