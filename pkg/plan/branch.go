package plan

import (
	"strconv"
	"strings"

	"github.com/cutplanco/cutplan/pkg/semver"
)

// BranchFacts are the repository facts PlanBranch needs, resolved by the
// caller for the rendered branch name.
type BranchFacts struct {
	ExistsLocally  bool
	ExistsRemotely bool

	// DefaultBranch is the fallback source ref for new branches.
	DefaultBranch string

	// FromPreviousRelease branches new release lines off the previous
	// release branch instead of the default branch.
	FromPreviousRelease bool

	// LatestReleaseBranch is the branch of the immediately preceding
	// release line, empty when unknown.
	LatestReleaseBranch string
}

// RenderBranchName renders a branch name template for a target version.
// Supported placeholders: {major}, {minor}, {patch}, {version}.
func RenderBranchName(template string, target semver.Version) string {
	r := strings.NewReplacer(
		"{major}", strconv.FormatUint(target.Major, 10),
		"{minor}", strconv.FormatUint(target.Minor, 10),
		"{patch}", strconv.FormatUint(target.Patch, 10),
		"{version}", target.Render(false),
	)
	return r.Replace(template)
}

// PlanBranch decides the working branch for a release. A branch that exists
// anywhere, locally or on the remote, is reused as-is: iterative prerelease
// builds land on the branch created by the first candidate. The caller is
// responsible for fetching a remote-only branch.
func PlanBranch(name string, facts BranchFacts) BranchPlan {
	if facts.ExistsLocally || facts.ExistsRemotely {
		return BranchPlan{Name: name, MustCreate: false}
	}

	source := facts.DefaultBranch
	if facts.FromPreviousRelease && facts.LatestReleaseBranch != "" {
		source = facts.LatestReleaseBranch
	}

	return BranchPlan{
		Name:       name,
		SourceRef:  source,
		MustCreate: true,
	}
}
