// Package semver models release version identifiers.
//
// A version is a core triple (major, minor, patch) with an optional
// prerelease suffix of the form "<tier>.<sequence>", where the tier is one
// of alpha, beta, or rc. Finals outrank every prerelease of the same core
// triple, and prereleases of the same triple order by tier rank
// (alpha < beta < rc) then by sequence number.
package semver

import (
	"fmt"
	"regexp"
	"strconv"
)

// Tier is the prerelease tier of a version.
type Tier int

const (
	// TierNone marks a final version with no prerelease suffix.
	TierNone Tier = iota
	TierAlpha
	TierBeta
	TierRC
)

// String returns the tag spelling of the tier ("" for finals).
func (t Tier) String() string {
	switch t {
	case TierAlpha:
		return "alpha"
	case TierBeta:
		return "beta"
	case TierRC:
		return "rc"
	default:
		return ""
	}
}

// InvalidVersionError reports a version string that does not parse.
type InvalidVersionError struct {
	Input string
}

func (e InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version: %q", e.Input)
}

// Version is an immutable parsed version identifier.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64

	// Tier and Sequence describe the prerelease suffix.
	// Tier is TierNone for final versions, in which case Sequence is zero
	// and meaningless.
	Tier     Tier
	Sequence uint64
}

var versionPattern = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)(?:-([a-z]+)\.(\d+))?$`)

// Parse parses a tag or version string such as "1.2.3", "v1.2.3" or
// "2.0.0-rc.1". Prerelease tiers other than alpha, beta, and rc are
// rejected: the engine has no ordering defined for them.
func Parse(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, InvalidVersionError{Input: s}
	}

	// The pattern only admits digit runs, so these cannot fail.
	major, _ := strconv.ParseUint(m[1], 10, 64)
	minor, _ := strconv.ParseUint(m[2], 10, 64)
	patch, _ := strconv.ParseUint(m[3], 10, 64)

	v := Version{Major: major, Minor: minor, Patch: patch}

	if m[4] == "" {
		return v, nil
	}

	switch m[4] {
	case "alpha":
		v.Tier = TierAlpha
	case "beta":
		v.Tier = TierBeta
	case "rc":
		v.Tier = TierRC
	default:
		return Version{}, InvalidVersionError{Input: s}
	}

	seq, err := strconv.ParseUint(m[5], 10, 64)
	if err != nil {
		return Version{}, InvalidVersionError{Input: s}
	}
	v.Sequence = seq

	return v, nil
}

// MustParse parses s and panics on failure. For tests and constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsFinal reports whether v has no prerelease suffix.
func (v Version) IsFinal() bool {
	return v.Tier == TierNone
}

// Core returns the (major, minor, patch) triple ignoring any prerelease.
func (v Version) Core() (uint64, uint64, uint64) {
	return v.Major, v.Minor, v.Patch
}

// SameCore reports whether v and o share the same core triple.
func (v Version) SameCore(o Version) bool {
	return v.Major == o.Major && v.Minor == o.Minor && v.Patch == o.Patch
}

// Compare totally orders versions. It returns -1 when v < o, 0 when equal,
// and 1 when v > o. The core triple compares lexicographically; on equal
// triples a final outranks any prerelease, and two prereleases compare by
// tier rank then sequence.
func (v Version) Compare(o Version) int {
	if c := compareUint(v.Major, o.Major); c != 0 {
		return c
	}
	if c := compareUint(v.Minor, o.Minor); c != 0 {
		return c
	}
	if c := compareUint(v.Patch, o.Patch); c != 0 {
		return c
	}

	switch {
	case v.IsFinal() && o.IsFinal():
		return 0
	case v.IsFinal():
		return 1
	case o.IsFinal():
		return -1
	}

	if c := compareUint(uint64(v.Tier), uint64(o.Tier)); c != 0 {
		return c
	}
	return compareUint(v.Sequence, o.Sequence)
}

// Less reports whether v orders strictly before o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

// Render formats the version, optionally with the "v" tag prefix.
func (v Version) Render(withPrefix bool) string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if !v.IsFinal() {
		s += fmt.Sprintf("-%s.%d", v.Tier, v.Sequence)
	}
	if withPrefix {
		s = "v" + s
	}
	return s
}

// String formats the version without the "v" prefix.
func (v Version) String() string {
	return v.Render(false)
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
