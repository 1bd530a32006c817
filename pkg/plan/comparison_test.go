package plan_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cutplanco/cutplan/pkg/plan"
	"github.com/cutplanco/cutplan/pkg/semver"
)

func versions(ss ...string) []semver.Version {
	out := make([]semver.Version, len(ss))
	for i, s := range ss {
		out[i] = semver.MustParse(s)
	}
	return out
}

var _ = Describe("FindComparison", func() {
	Context("final target", func() {
		It("compares against the previous final under both policies", func() {
			target := semver.MustParse("2.0.0")
			available := versions("1.0.0", "1.5.0", "1.9.0", "2.0.0-rc.1")

			for _, policy := range []plan.Policy{plan.PolicyFinalOnly, plan.PolicyIncludeRCs} {
				got, ok := plan.FindComparison(target, available, policy)
				Expect(ok).To(BeTrue())
				Expect(got).To(Equal(semver.MustParse("1.9.0")), "policy %s", policy)
			}
		})

		It("ignores prerelease siblings of its own core", func() {
			target := semver.MustParse("3.0.0")
			available := versions("2.9.0", "3.0.0-rc.0", "3.0.0-rc.1", "3.0.0-rc.2")

			got, ok := plan.FindComparison(target, available, plan.PolicyIncludeRCs)
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(semver.MustParse("2.9.0")))
		})
	})

	Context("prerelease target with include-rcs", func() {
		It("prefers the previous candidate of the same core", func() {
			target := semver.MustParse("2.0.0-rc.2")
			available := versions("1.9.0", "2.0.0-rc.0", "2.0.0-rc.1")

			got, ok := plan.FindComparison(target, available, plan.PolicyIncludeRCs)
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(semver.MustParse("2.0.0-rc.1")))
		})

		It("accepts same-core candidates of a different tier", func() {
			target := semver.MustParse("2.0.0-rc.0")
			available := versions("1.9.0", "2.0.0-beta.3")

			got, ok := plan.FindComparison(target, available, plan.PolicyIncludeRCs)
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(semver.MustParse("2.0.0-beta.3")))
		})

		It("falls back to the previous final when no same-core candidate exists", func() {
			target := semver.MustParse("2.0.0-rc.0")
			available := versions("1.8.0", "1.9.0", "1.9.0-rc.4")

			got, ok := plan.FindComparison(target, available, plan.PolicyIncludeRCs)
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(semver.MustParse("1.9.0")))
		})
	})

	Context("prerelease target with final-only", func() {
		It("ignores all prereleases including same-core ones", func() {
			target := semver.MustParse("2.0.0-rc.2")
			available := versions("1.9.0", "2.0.0-rc.0", "2.0.0-rc.1")

			got, ok := plan.FindComparison(target, available, plan.PolicyFinalOnly)
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(semver.MustParse("1.9.0")))
		})

		It("never returns a prerelease", func() {
			targets := versions("2.0.0", "2.0.0-rc.1", "1.5.0-beta.0")
			available := versions("1.0.0-rc.0", "1.0.0", "1.4.0-alpha.1", "2.0.0-rc.0")

			for _, target := range targets {
				got, ok := plan.FindComparison(target, available, plan.PolicyFinalOnly)
				if ok {
					Expect(got.IsFinal()).To(BeTrue(), "target %s", target)
				}
			}
		})
	})

	Context("no qualifying version", func() {
		It("reports the first comparable release", func() {
			target := semver.MustParse("1.0.0")
			_, ok := plan.FindComparison(target, nil, plan.PolicyFinalOnly)
			Expect(ok).To(BeFalse())
		})

		It("finds nothing when only later versions exist", func() {
			target := semver.MustParse("1.0.0")
			available := versions("1.0.1", "2.0.0")
			_, ok := plan.FindComparison(target, available, plan.PolicyIncludeRCs)
			Expect(ok).To(BeFalse())
		})

		It("finds nothing for a prerelease under final-only with no earlier final", func() {
			target := semver.MustParse("1.0.0-rc.1")
			available := versions("1.0.0-rc.0")
			_, ok := plan.FindComparison(target, available, plan.PolicyFinalOnly)
			Expect(ok).To(BeFalse())
		})
	})
})

var _ = Describe("ParsePolicy", func() {
	It("defaults to final-only", func() {
		p, ok := plan.ParsePolicy("")
		Expect(ok).To(BeTrue())
		Expect(p).To(Equal(plan.PolicyFinalOnly))
	})

	It("rejects unknown spellings", func() {
		_, ok := plan.ParsePolicy("everything")
		Expect(ok).To(BeFalse())
	})
})
