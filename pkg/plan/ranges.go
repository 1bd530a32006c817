package plan

import (
	"context"
	"errors"

	"github.com/cutplanco/cutplan/pkg/semver"
)

// ErrHeadRefRequired is returned when ResolveRange is called without an
// explicit head ref. Falling back to an implicit default silently produces
// a wrong change set, so the ref the branch strategist resolved must always
// be passed through.
var ErrHeadRefRequired = errors.New("head ref must be explicit")

// ResolveRange produces the set of commits that are new for a release.
//
// With no comparison the range is everything reachable from the upper
// bound. When the target itself is already tagged the range is closed at
// that tag, so regenerating notes for a published release is stable;
// otherwise the upper bound is headRef.
func ResolveRange(
	ctx context.Context,
	versions VersionProvider,
	commits CommitProvider,
	target semver.Version,
	comparison *semver.Version,
	headRef string,
) (CommitRange, error) {
	if headRef == "" {
		return CommitRange{}, ErrHeadRefRequired
	}

	upper := headRef
	if tag, ok, err := versions.TagFor(ctx, target); err != nil {
		return CommitRange{}, RangeResolutionError{HeadRef: headRef, Cause: err}
	} else if ok {
		upper = tag
	}

	if comparison == nil {
		list, err := commits.CommitsReachableFrom(ctx, upper)
		if err != nil {
			return CommitRange{}, RangeResolutionError{HeadRef: upper, Cause: err}
		}
		return CommitRange{HeadRef: upper, Commits: list}, nil
	}

	fromTag, ok, err := versions.TagFor(ctx, *comparison)
	if err != nil {
		return CommitRange{}, RangeResolutionError{HeadRef: upper, Cause: err}
	}
	if !ok {
		return CommitRange{}, TagNotFoundError{Version: comparison.Render(false)}
	}

	list, err := commits.CommitsBetween(ctx, fromTag, upper)
	if err != nil {
		return CommitRange{}, RangeResolutionError{FromTag: fromTag, HeadRef: upper, Cause: err}
	}

	return CommitRange{FromTag: fromTag, HeadRef: upper, Commits: list}, nil
}
