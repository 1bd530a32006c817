package plancmder

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cutplanco/cutplan/pkg/attribution"
	"github.com/cutplanco/cutplan/pkg/config"
)

var _ = Describe("NewPlanCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := NewPlanCmd()
		Expect(cmd.Use).To(Equal("plan <target-version>"))
	})

	It("requires exactly one argument", func() {
		cmd := NewPlanCmd()
		cmd.SetArgs([]string{})
		Expect(cmd.Execute()).To(HaveOccurred())

		cmd = NewPlanCmd()
		cmd.SetArgs([]string{"1.0.0", "2.0.0"})
		Expect(cmd.Execute()).To(HaveOccurred())
	})

	It("registers the planning flags", func() {
		cmd := NewPlanCmd()
		for _, name := range []string{
			"from", "dir", "json", "watch",
			"policy", "version-gap",
			"branch-template", "from-previous-release",
			"partial-match", "issue-repos",
			"storage-driver", "sqlite", "postgres",
			"events", "brokers", "topic",
		} {
			Expect(cmd.Flags().Lookup(name)).ToNot(BeNil(), "missing flag %s", name)
		}
	})
})

var _ = Describe("buildPatterns", func() {
	It("compiles the default patterns", func() {
		patterns, err := buildPatterns(config.DefaultPatterns())
		Expect(err).ToNot(HaveOccurred())
		Expect(patterns).To(HaveLen(3))
		Expect(patterns[0].Order).To(Equal(1))
		Expect(patterns[0].Strategy).To(Equal(attribution.StrategyBranchName))
	})

	It("orders patterns by their order value", func() {
		entries := []config.PatternConfig{
			{Order: 5, Strategy: "pr_title", Regex: `#(?P<issue>\d+)`},
			{Order: 1, Strategy: "branch_name", Regex: `^(?P<issue>\d+)-`},
		}
		patterns, err := buildPatterns(entries)
		Expect(err).ToNot(HaveOccurred())
		Expect(patterns[0].Order).To(Equal(1))
		Expect(patterns[1].Order).To(Equal(5))
	})

	It("rejects unknown strategies", func() {
		entries := []config.PatternConfig{
			{Order: 1, Strategy: "commit_trailer", Regex: `#(?P<issue>\d+)`},
		}
		_, err := buildPatterns(entries)
		Expect(err).To(MatchError(ContainSubstring("unknown extraction strategy")))
	})

	It("rejects an empty pattern list", func() {
		_, err := buildPatterns(nil)
		Expect(err).To(MatchError(ContainSubstring("no extraction patterns")))
	})

	It("surfaces regex compile errors with the pattern order", func() {
		entries := []config.PatternConfig{
			{Order: 2, Strategy: "pr_body", Regex: `((`},
		}
		_, err := buildPatterns(entries)
		Expect(err).To(MatchError(ContainSubstring("pattern 2")))
	})
})
