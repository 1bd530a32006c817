package attribution_test

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cutplanco/cutplan/pkg/attribution"
	"github.com/cutplanco/cutplan/pkg/logger"
)

var _ = Describe("ClassifyReasons", func() {
	It("tags different_repo matches with repo-config reasons", func() {
		match := attribution.PartialMatch{
			IssueKey:    "42",
			MatchType:   attribution.MatchDifferentRepo,
			FoundInRepo: "acme/other",
		}

		reasons := attribution.ClassifyReasons(match, attribution.ClassifyContext{})
		Expect(reasons).To(ConsistOf(
			attribution.ReasonRepoConfigMismatch,
			attribution.ReasonWrongIssueRepos,
		))
	})

	It("tags not_found matches with typo and stale-cache reasons", func() {
		match := attribution.PartialMatch{IssueKey: "42", MatchType: attribution.MatchNotFound}

		reasons := attribution.ClassifyReasons(match, attribution.ClassifyContext{})
		Expect(reasons).To(ConsistOf(
			attribution.ReasonTypo,
			attribution.ReasonPullNotRun,
		))
	})

	It("adds the cutoff reason for keys older than the cache horizon", func() {
		match := attribution.PartialMatch{IssueKey: "42", MatchType: attribution.MatchNotFound}
		ctx := attribution.ClassifyContext{OldestCachedIssue: 100}

		reasons := attribution.ClassifyReasons(match, ctx)
		Expect(reasons).To(ContainElement(attribution.ReasonOlderThanCutoff))
	})

	It("does not add the cutoff reason for non-numeric keys", func() {
		match := attribution.PartialMatch{IssueKey: "PROJ-42", MatchType: attribution.MatchNotFound}
		ctx := attribution.ClassifyContext{OldestCachedIssue: 100}

		reasons := attribution.ClassifyReasons(match, ctx)
		Expect(reasons).NotTo(ContainElement(attribution.ReasonOlderThanCutoff))
	})

	It("never returns an empty set", func() {
		for _, t := range []attribution.MatchType{attribution.MatchNotFound, attribution.MatchDifferentRepo} {
			reasons := attribution.ClassifyReasons(attribution.PartialMatch{MatchType: t}, attribution.ClassifyContext{})
			Expect(reasons).NotTo(BeEmpty())
		}
	})
})

var _ = Describe("Enforce", func() {
	newPartial := func(key string) attribution.PartialMatch {
		return attribution.PartialMatch{
			IssueKey:  key,
			MatchType: attribution.MatchNotFound,
			Reasons:   []attribution.Reason{attribution.ReasonTypo},
		}
	}

	It("does nothing under ignore", func() {
		var buf bytes.Buffer
		log := logger.New(logger.WithWriter(&buf))

		err := attribution.Enforce(
			[]attribution.PartialMatch{newPartial("1")},
			nil,
			attribution.ActionIgnore,
			log,
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(BeEmpty())
	})

	It("emits one consolidated notice per reason under warn", func() {
		var buf bytes.Buffer
		log := logger.New(logger.WithWriter(&buf))

		partials := []attribution.PartialMatch{newPartial("11"), newPartial("7")}
		err := attribution.Enforce(partials, nil, attribution.ActionWarn, log)
		Expect(err).NotTo(HaveOccurred())

		out := buf.String()
		Expect(out).To(ContainSubstring(attribution.ReasonTypo.Description()))
		// Both keys grouped into a single notice, sorted.
		Expect(out).To(ContainSubstring("11, 7"))
		Expect(out).To(ContainSubstring("cutplan pull"))
	})

	It("emits reason notices in declaration order under warn", func() {
		var buf bytes.Buffer
		log := logger.New(logger.WithWriter(&buf))

		partials := []attribution.PartialMatch{
			{
				IssueKey:  "33",
				MatchType: attribution.MatchDifferentRepo,
				Reasons:   []attribution.Reason{attribution.ReasonWrongIssueRepos, attribution.ReasonRepoConfigMismatch},
			},
			newPartial("7"),
		}

		err := attribution.Enforce(partials, nil, attribution.ActionWarn, log)
		Expect(err).NotTo(HaveOccurred())

		out := buf.String()
		typo := strings.Index(out, attribution.ReasonTypo.Description())
		mismatch := strings.Index(out, attribution.ReasonRepoConfigMismatch.Description())
		wrongRepos := strings.Index(out, attribution.ReasonWrongIssueRepos.Description())
		Expect(typo).To(BeNumerically(">=", 0))
		Expect(mismatch).To(BeNumerically(">", typo))
		Expect(wrongRepos).To(BeNumerically(">", mismatch))
	})

	It("includes the resolution repo for different_repo matches under warn", func() {
		var buf bytes.Buffer
		log := logger.New(logger.WithWriter(&buf))

		partials := []attribution.PartialMatch{{
			IssueKey:    "33",
			MatchType:   attribution.MatchDifferentRepo,
			FoundInRepo: "acme/other",
			IssueURL:    "https://example.test/33",
			Reasons:     []attribution.Reason{attribution.ReasonRepoConfigMismatch},
		}}

		err := attribution.Enforce(partials, nil, attribution.ActionWarn, log)
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("acme/other"))
		Expect(buf.String()).To(ContainSubstring("https://example.test/33"))
	})

	It("fails with the unresolved count under error", func() {
		err := attribution.Enforce(
			[]attribution.PartialMatch{newPartial("1"), newPartial("2"), newPartial("3")},
			nil,
			attribution.ActionError,
			logger.Nop(),
		)

		var partialErr attribution.PartialAttributionError
		Expect(errors.As(err, &partialErr)).To(BeTrue())
		Expect(partialErr.Matches).To(HaveLen(3))
		Expect(partialErr.Error()).To(ContainSubstring("3"))
	})

	It("skips partials whose key was resolved elsewhere", func() {
		resolved := map[string]bool{"1": true}

		err := attribution.Enforce(
			[]attribution.PartialMatch{newPartial("1")},
			resolved,
			attribution.ActionError,
			logger.Nop(),
		)
		Expect(err).NotTo(HaveOccurred())
	})
})
