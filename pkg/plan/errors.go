package plan

import "fmt"

// TagNotFoundError reports a version that exists in history but whose tag
// cannot be resolved in the repository.
type TagNotFoundError struct {
	Version string
}

func (e TagNotFoundError) Error() string {
	return fmt.Sprintf("tag not found for version %s", e.Version)
}

// RangeResolutionError reports a commit range that could not be resolved.
// Callers must treat it as fatal rather than falling back to all history,
// which would silently over-include changes.
type RangeResolutionError struct {
	FromTag string
	HeadRef string
	Cause   error
}

func (e RangeResolutionError) Error() string {
	return fmt.Sprintf("resolving commit range %s..%s: %v", e.FromTag, e.HeadRef, e.Cause)
}

func (e RangeResolutionError) Unwrap() error {
	return e.Cause
}

// VersionGapError reports a gap between the comparison version and the
// target, raised only under the error gap policy.
type VersionGapError struct {
	From string
	To   string
}

func (e VersionGapError) Error() string {
	return fmt.Sprintf("version gap detected between %s and %s", e.From, e.To)
}
