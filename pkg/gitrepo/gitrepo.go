// Package gitrepo reads version, branch, and commit facts from a local git
// checkout by shelling out to git. It implements the planner's provider
// interfaces so planning runs against the real repository state.
package gitrepo

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/cutplanco/cutplan/pkg/plan"
	"github.com/cutplanco/cutplan/pkg/semver"
)

// Repo is a handle on a local git checkout.
type Repo struct {
	// dir is the working directory git commands run in.
	dir string

	// remote is the remote release branches and tags are checked against.
	remote string

	// releasePrefix is the leading literal of rendered release branch
	// names, used to enumerate existing release lines.
	releasePrefix string
}

// Open verifies dir is inside a git repository and returns a handle on it.
func Open(ctx context.Context, dir, remote, branchTemplate string) (*Repo, error) {
	r := &Repo{
		dir:           dir,
		remote:        remote,
		releasePrefix: templatePrefix(branchTemplate),
	}

	if _, err := r.git(ctx, "rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("not a git repository: %s", dir)
	}

	return r, nil
}

// templatePrefix returns the literal prefix of a branch template, up to the
// first placeholder. "release/{major}.{minor}" yields "release/".
func templatePrefix(template string) string {
	if i := strings.IndexByte(template, '{'); i >= 0 {
		return template[:i]
	}
	return template
}

// git runs a git subcommand in the repo directory and returns trimmed stdout.
func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir

	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(string(ee.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}

	return strings.TrimSpace(string(out)), nil
}

// ListVersions returns every tag that parses as a semantic version.
// Tags that do not parse are skipped rather than failing the run.
func (r *Repo) ListVersions(ctx context.Context) ([]semver.Version, error) {
	out, err := r.git(ctx, "tag", "--list")
	if err != nil {
		return nil, err
	}

	var versions []semver.Version
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		v, err := semver.Parse(line)
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}

	return versions, nil
}

// TagFor returns the tag name for a version and whether it exists. Both the
// v-prefixed and bare spellings are checked, preferring the prefixed one.
func (r *Repo) TagFor(ctx context.Context, v semver.Version) (string, bool, error) {
	for _, tag := range []string{v.Render(true), v.Render(false)} {
		_, err := r.git(ctx, "rev-parse", "--verify", "--quiet", "refs/tags/"+tag)
		if err == nil {
			return tag, true, nil
		}
	}

	return "", false, nil
}

// BranchExists checks for a branch locally or on the configured remote.
func (r *Repo) BranchExists(ctx context.Context, name string, remote bool) (bool, error) {
	ref := "refs/heads/" + name
	if remote {
		ref = "refs/remotes/" + r.remote + "/" + name
	}

	_, err := r.git(ctx, "rev-parse", "--verify", "--quiet", ref)
	return err == nil, nil
}

// DefaultBranch resolves the repository's default branch from the remote
// HEAD, falling back to "main" when the remote has no HEAD ref locally.
func (r *Repo) DefaultBranch(ctx context.Context) string {
	out, err := r.git(ctx, "symbolic-ref", "--short", "refs/remotes/"+r.remote+"/HEAD")
	if err != nil {
		return "main"
	}

	return strings.TrimPrefix(out, r.remote+"/")
}

// LatestReleaseBranch returns the release branch whose embedded version sorts
// highest, and whether any release branch exists. Both local and remote
// branches are considered.
func (r *Repo) LatestReleaseBranch(ctx context.Context) (string, bool, error) {
	out, err := r.git(ctx, "branch", "--all", "--format=%(refname:short)")
	if err != nil {
		return "", false, err
	}

	var best string
	var bestV semver.Version
	found := false

	for _, line := range strings.Split(out, "\n") {
		name := strings.TrimSpace(line)
		name = strings.TrimPrefix(name, r.remote+"/")
		if !strings.HasPrefix(name, r.releasePrefix) {
			continue
		}

		v, ok := branchVersion(strings.TrimPrefix(name, r.releasePrefix))
		if !ok {
			continue
		}

		if !found || bestV.Less(v) {
			best, bestV, found = name, v, true
		}
	}

	return best, found, nil
}

// branchVersion parses the version remainder of a release branch name.
// "9.0" and "9.0.1" both parse; anything else is ignored.
func branchVersion(s string) (semver.Version, bool) {
	if strings.Count(s, ".") == 1 {
		s += ".0"
	}

	v, err := semver.Parse(s)
	if err != nil {
		return semver.Version{}, false
	}
	return v, true
}

// logFormat renders one commit per line with unit separators between fields.
const logFormat = "--format=%H%x1f%s%x1f%an%x1f%ae"

// CommitsReachableFrom returns every commit reachable from ref, newest first.
func (r *Repo) CommitsReachableFrom(ctx context.Context, ref string) ([]plan.Commit, error) {
	out, err := r.git(ctx, "log", logFormat, ref)
	if err != nil {
		return nil, err
	}

	return parseLog(out), nil
}

// CommitsBetween returns commits reachable from toRef but not fromTag,
// newest first.
func (r *Repo) CommitsBetween(ctx context.Context, fromTag, toRef string) ([]plan.Commit, error) {
	out, err := r.git(ctx, "log", logFormat, fromTag+".."+toRef)
	if err != nil {
		return nil, err
	}

	return parseLog(out), nil
}

func parseLog(out string) []plan.Commit {
	var commits []plan.Commit
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\x1f")
		if len(fields) < 4 {
			continue
		}

		commits = append(commits, plan.Commit{
			SHA:         fields[0],
			Subject:     fields[1],
			AuthorName:  fields[2],
			AuthorEmail: fields[3],
			PRNumber:    ExtractPRNumber(fields[1]),
		})
	}

	return commits
}
