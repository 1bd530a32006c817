package plan_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cutplanco/cutplan/pkg/plan"
	"github.com/cutplanco/cutplan/pkg/semver"
)

var _ = Describe("RenderBranchName", func() {
	It("substitutes major and minor", func() {
		name := plan.RenderBranchName("release/{major}.{minor}", semver.MustParse("9.2.1"))
		Expect(name).To(Equal("release/9.2"))
	})

	It("supports patch and full version placeholders", func() {
		v := semver.MustParse("1.2.3-rc.0")
		Expect(plan.RenderBranchName("rel-{major}.{minor}.{patch}", v)).To(Equal("rel-1.2.3"))
		Expect(plan.RenderBranchName("build/{version}", v)).To(Equal("build/1.2.3-rc.0"))
	})
})

var _ = Describe("PlanBranch", func() {
	It("creates from the default branch when nothing exists", func() {
		name := plan.RenderBranchName("release/{major}.{minor}", semver.MustParse("9.0.0"))
		got := plan.PlanBranch(name, plan.BranchFacts{DefaultBranch: "main"})

		Expect(got).To(Equal(plan.BranchPlan{
			Name:       "release/9.0",
			SourceRef:  "main",
			MustCreate: true,
		}))
	})

	It("reuses a locally existing branch", func() {
		got := plan.PlanBranch("release/1.2", plan.BranchFacts{
			ExistsLocally: true,
			DefaultBranch: "main",
		})

		Expect(got.MustCreate).To(BeFalse())
		Expect(got.Name).To(Equal("release/1.2"))
		Expect(got.SourceRef).To(BeEmpty())
	})

	It("treats remote-only existence like local existence", func() {
		got := plan.PlanBranch("release/1.2", plan.BranchFacts{
			ExistsRemotely: true,
			DefaultBranch:  "main",
		})

		Expect(got.MustCreate).To(BeFalse())
	})

	It("branches from the previous release line when configured and known", func() {
		got := plan.PlanBranch("release/2.0", plan.BranchFacts{
			DefaultBranch:       "main",
			FromPreviousRelease: true,
			LatestReleaseBranch: "release/1.9",
		})

		Expect(got.MustCreate).To(BeTrue())
		Expect(got.SourceRef).To(Equal("release/1.9"))
	})

	It("falls back to the default branch when the previous line is unknown", func() {
		got := plan.PlanBranch("release/2.0", plan.BranchFacts{
			DefaultBranch:       "main",
			FromPreviousRelease: true,
		})

		Expect(got.MustCreate).To(BeTrue())
		Expect(got.SourceRef).To(Equal("main"))
	})
})
