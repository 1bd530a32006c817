package plan

import "github.com/cutplanco/cutplan/pkg/semver"

// FindComparison picks the version a release's changelog is computed
// against. It returns false when no qualifying version exists, meaning this
// is the first release comparable to the target.
//
// Final targets always compare against the previous final, regardless of
// policy: intermediate candidates are invisible to changelog readers. For
// prerelease targets the policy decides between the previous candidate of
// the same core triple (include-rcs) and the previous final (final-only).
func FindComparison(target semver.Version, available []semver.Version, policy Policy) (semver.Version, bool) {
	if target.IsFinal() {
		return greatestFinalBefore(target, available)
	}

	switch policy {
	case PolicyIncludeRCs:
		if v, ok := greatestSameCoreBefore(target, available); ok {
			return v, true
		}
		return greatestFinalBefore(target, available)

	default: // PolicyFinalOnly
		return greatestFinalBefore(target, available)
	}
}

// greatestFinalBefore returns the greatest final version strictly before
// target.
func greatestFinalBefore(target semver.Version, available []semver.Version) (semver.Version, bool) {
	var best semver.Version
	found := false
	for _, v := range available {
		if !v.IsFinal() || !v.Less(target) {
			continue
		}
		if !found || best.Less(v) {
			best = v
			found = true
		}
	}
	return best, found
}

// greatestSameCoreBefore returns the greatest version of target's core
// triple strictly before target. Prereleases of any tier qualify.
func greatestSameCoreBefore(target semver.Version, available []semver.Version) (semver.Version, bool) {
	var best semver.Version
	found := false
	for _, v := range available {
		if !v.SameCore(target) || !v.Less(target) {
			continue
		}
		if !found || best.Less(v) {
			best = v
			found = true
		}
	}
	return best, found
}
