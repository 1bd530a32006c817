package gitrepo_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cutplanco/cutplan/pkg/gitrepo"
	"github.com/cutplanco/cutplan/pkg/semver"
)

// run executes a git command in dir, failing the spec on error.
func run(dir string, args ...string) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test",
		"GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test",
		"GIT_COMMITTER_EMAIL=test@example.com",
	)
	out, err := cmd.CombinedOutput()
	Expect(err).NotTo(HaveOccurred(), "git %v: %s", args, out)
}

// commit writes a file and commits it with the given subject.
func commit(dir, subject string) {
	f := filepath.Join(dir, "file.txt")
	Expect(os.WriteFile(f, []byte(subject), 0o644)).To(Succeed())
	run(dir, "add", ".")
	run(dir, "commit", "-m", subject)
}

var _ = Describe("Repo", func() {
	var (
		dir  string
		repo *gitrepo.Repo
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "gitrepo-test-*")
		Expect(err).NotTo(HaveOccurred())

		run(dir, "init", "-b", "main")
		commit(dir, "initial commit")

		ctx = context.Background()
		repo, err = gitrepo.Open(ctx, dir, "origin", "release/{major}.{minor}")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	Describe("Open", func() {
		It("fails outside a git repository", func() {
			plain, err := os.MkdirTemp("", "not-a-repo-*")
			Expect(err).NotTo(HaveOccurred())
			defer os.RemoveAll(plain)

			_, err = gitrepo.Open(ctx, plain, "origin", "release/{major}.{minor}")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ListVersions", func() {
		It("parses version tags and skips everything else", func() {
			run(dir, "tag", "v1.0.0")
			run(dir, "tag", "v2.0.0-rc.1")
			run(dir, "tag", "nightly-build")

			versions, err := repo.ListVersions(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(versions).To(HaveLen(2))
		})
	})

	Describe("TagFor", func() {
		It("finds v-prefixed tags", func() {
			run(dir, "tag", "v1.2.3")

			tag, ok, err := repo.TagFor(ctx, semver.MustParse("1.2.3"))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(tag).To(Equal("v1.2.3"))
		})

		It("finds bare tags", func() {
			run(dir, "tag", "1.2.3")

			tag, ok, err := repo.TagFor(ctx, semver.MustParse("1.2.3"))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(tag).To(Equal("1.2.3"))
		})

		It("reports missing tags", func() {
			_, ok, err := repo.TagFor(ctx, semver.MustParse("9.9.9"))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("BranchExists", func() {
		It("detects local branches", func() {
			run(dir, "branch", "release/1.0")

			exists, err := repo.BranchExists(ctx, "release/1.0", false)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())

			exists, err = repo.BranchExists(ctx, "release/2.0", false)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})
	})

	Describe("DefaultBranch", func() {
		It("resolves the remote HEAD", func() {
			run(dir, "update-ref", "refs/remotes/origin/trunk", "HEAD")
			run(dir, "symbolic-ref", "refs/remotes/origin/HEAD", "refs/remotes/origin/trunk")

			Expect(repo.DefaultBranch(ctx)).To(Equal("trunk"))
		})

		It("falls back to main when the remote has no HEAD", func() {
			Expect(repo.DefaultBranch(ctx)).To(Equal("main"))
		})
	})

	Describe("LatestReleaseBranch", func() {
		It("returns the highest-versioned release branch", func() {
			run(dir, "branch", "release/1.9")
			run(dir, "branch", "release/1.10")
			run(dir, "branch", "release/0.4")

			name, ok, err := repo.LatestReleaseBranch(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			// Numeric ordering, not lexical: 1.10 beats 1.9.
			Expect(name).To(Equal("release/1.10"))
		})

		It("reports when no release branch exists", func() {
			_, ok, err := repo.LatestReleaseBranch(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("commit queries", func() {
		BeforeEach(func() {
			run(dir, "tag", "v1.0.0")
			commit(dir, "Merge pull request #512 from acme/3117-fix-crash")
			commit(dir, "Add pagination (#513)")
		})

		It("returns commits newest first with PR numbers", func() {
			commits, err := repo.CommitsReachableFrom(ctx, "main")
			Expect(err).NotTo(HaveOccurred())
			Expect(commits).To(HaveLen(3))
			Expect(commits[0].Subject).To(Equal("Add pagination (#513)"))
			Expect(commits[0].PRNumber).To(Equal(513))
			Expect(commits[1].PRNumber).To(Equal(512))
			Expect(commits[2].Subject).To(Equal("initial commit"))
			Expect(commits[2].PRNumber).To(Equal(0))
			Expect(commits[0].AuthorName).To(Equal("Test"))
		})

		It("excludes the lower bound in between queries", func() {
			commits, err := repo.CommitsBetween(ctx, "v1.0.0", "main")
			Expect(err).NotTo(HaveOccurred())
			Expect(commits).To(HaveLen(2))
			Expect(commits[1].Subject).To(ContainSubstring("Merge pull request #512"))
		})

		It("fails for unknown refs", func() {
			_, err := repo.CommitsBetween(ctx, "v9.9.9", "main")
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("ExtractPRNumber", func() {
	It("extracts from merge commit subjects", func() {
		Expect(gitrepo.ExtractPRNumber("Merge pull request #512 from acme/branch")).To(Equal(512))
	})

	It("extracts from squash merge subjects", func() {
		Expect(gitrepo.ExtractPRNumber("Add pagination (#513)")).To(Equal(513))
	})

	It("returns zero when the subject carries no PR reference", func() {
		Expect(gitrepo.ExtractPRNumber("fix typo")).To(Equal(0))
		Expect(gitrepo.ExtractPRNumber("mention #99 mid-subject")).To(Equal(0))
	})
})
