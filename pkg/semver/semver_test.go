package semver_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cutplanco/cutplan/pkg/semver"
)

var _ = Describe("Parse", func() {
	It("parses a final version", func() {
		v, err := semver.Parse("1.2.3")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Major).To(Equal(uint64(1)))
		Expect(v.Minor).To(Equal(uint64(2)))
		Expect(v.Patch).To(Equal(uint64(3)))
		Expect(v.IsFinal()).To(BeTrue())
	})

	It("accepts a leading v prefix", func() {
		v, err := semver.Parse("v2.0.0")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(semver.MustParse("2.0.0")))
	})

	It("parses prerelease suffixes", func() {
		v, err := semver.Parse("2.0.0-rc.1")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.IsFinal()).To(BeFalse())
		Expect(v.Tier).To(Equal(semver.TierRC))
		Expect(v.Sequence).To(Equal(uint64(1)))
	})

	It("rejects malformed strings", func() {
		for _, s := range []string{"", "1.2", "1.2.3.4", "1.2.x", "1.2.3-rc", "1.2.3-rc.", "nightly"} {
			_, err := semver.Parse(s)
			Expect(err).To(HaveOccurred(), "expected %q to be rejected", s)

			var invalid semver.InvalidVersionError
			Expect(err).To(BeAssignableToTypeOf(invalid))
		}
	})

	It("rejects unknown prerelease tiers", func() {
		_, err := semver.Parse("1.2.3-nightly.4")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Compare", func() {
	ordered := []string{
		"0.9.0",
		"1.0.0-alpha.0",
		"1.0.0-alpha.1",
		"1.0.0-beta.0",
		"1.0.0-rc.0",
		"1.0.0-rc.2",
		"1.0.0",
		"1.0.1",
		"1.1.0-rc.0",
		"1.1.0",
		"2.0.0-alpha.0",
		"2.0.0",
	}

	It("orders versions totally", func() {
		for i, a := range ordered {
			for j, b := range ordered {
				got := semver.MustParse(a).Compare(semver.MustParse(b))
				switch {
				case i < j:
					Expect(got).To(Equal(-1), "%s vs %s", a, b)
				case i > j:
					Expect(got).To(Equal(1), "%s vs %s", a, b)
				default:
					Expect(got).To(Equal(0), "%s vs %s", a, b)
				}
			}
		}
	})

	It("ranks a final above every prerelease of the same core", func() {
		final := semver.MustParse("3.1.0")
		for _, s := range []string{"3.1.0-alpha.9", "3.1.0-beta.9", "3.1.0-rc.9"} {
			pre := semver.MustParse(s)
			Expect(pre.SameCore(final)).To(BeTrue())
			Expect(final.Compare(pre)).To(Equal(1))
			Expect(pre.Less(final)).To(BeTrue())
		}
	})

	It("ranks tiers alpha < beta < rc", func() {
		alpha := semver.MustParse("1.0.0-alpha.5")
		beta := semver.MustParse("1.0.0-beta.0")
		rc := semver.MustParse("1.0.0-rc.0")
		Expect(alpha.Less(beta)).To(BeTrue())
		Expect(beta.Less(rc)).To(BeTrue())
	})
})

var _ = Describe("Render", func() {
	It("round-trips finals and prereleases", func() {
		for _, s := range []string{"1.2.3", "0.0.1", "2.0.0-rc.2", "10.20.30-beta.4"} {
			Expect(semver.MustParse(s).Render(false)).To(Equal(s))
			Expect(semver.MustParse(s).Render(true)).To(Equal("v" + s))
		}
	})

	It("parses its own v-prefixed output", func() {
		v := semver.MustParse("4.5.6-alpha.7")
		back, err := semver.Parse(v.Render(true))
		Expect(err).NotTo(HaveOccurred())
		Expect(back).To(Equal(v))
	})
})
