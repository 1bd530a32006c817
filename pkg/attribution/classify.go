package attribution

import "strconv"

// MatchType discriminates why an extracted key failed to bind cleanly.
type MatchType int

const (
	// MatchNotFound means the key is unknown in every cached repository.
	MatchNotFound MatchType = iota

	// MatchDifferentRepo means the key resolved, but in a repository the
	// tool is not configured to treat as an issue tracker.
	MatchDifferentRepo
)

func (t MatchType) String() string {
	if t == MatchDifferentRepo {
		return "different_repo"
	}
	return "not_found"
}

// Reason is a heuristic explanation for a partial match. Reasons are
// advisory and unordered; several may apply to the same match.
type Reason int

const (
	// ReasonOlderThanCutoff: the key is numerically plausible but predates
	// the history-fetch cutoff, so it was never cached.
	ReasonOlderThanCutoff Reason = iota

	// ReasonTypo: the key may simply not exist.
	ReasonTypo

	// ReasonPullNotRun: the local cache may not have been refreshed since
	// the key was created upstream.
	ReasonPullNotRun

	// ReasonRepoConfigMismatch: the key exists, but not in a repository
	// configured as authoritative for this project.
	ReasonRepoConfigMismatch

	// ReasonWrongIssueRepos: the configured set of tracking repositories
	// may be incomplete.
	ReasonWrongIssueRepos
)

// Description is the human-readable explanation used in warn notices.
func (r Reason) Description() string {
	switch r {
	case ReasonOlderThanCutoff:
		return "the issue predates the fetch cutoff and was never cached"
	case ReasonTypo:
		return "the issue key may not exist (typo in branch, title, or body)"
	case ReasonPullNotRun:
		return "the local cache may be stale; issues created upstream since the last pull are missing"
	case ReasonRepoConfigMismatch:
		return "the issue exists in a repository not configured as an issue tracker"
	case ReasonWrongIssueRepos:
		return "the configured issue repositories may be incomplete"
	default:
		return "unknown"
	}
}

// PartialMatch is an attribution attempt that found a plausible key but
// could not bind it unambiguously to the expected tracker. Created during
// attribution, consumed by policy enforcement, never persisted.
type PartialMatch struct {
	IssueKey      string
	ExtractedFrom string
	MatchType     MatchType

	// FoundInRepo and IssueURL are set for different_repo matches.
	FoundInRepo string
	IssueURL    string

	Reasons []Reason
}

// ClassifyContext carries the cache facts the classifier's heuristics need.
type ClassifyContext struct {
	// OldestCachedIssue is the lowest issue number present in the cache
	// for the expected repositories, zero when the cache is empty or the
	// fact is unknown.
	OldestCachedIssue int
}

// ClassifyReasons assigns likely-cause reasons to a partial match. The set
// is always non-empty.
func ClassifyReasons(match PartialMatch, ctx ClassifyContext) []Reason {
	if match.MatchType == MatchDifferentRepo {
		return []Reason{ReasonRepoConfigMismatch, ReasonWrongIssueRepos}
	}

	reasons := []Reason{ReasonTypo, ReasonPullNotRun}
	if n, err := strconv.Atoi(match.IssueKey); err == nil && ctx.OldestCachedIssue > 0 && n < ctx.OldestCachedIssue {
		reasons = append([]Reason{ReasonOlderThanCutoff}, reasons...)
	}
	return reasons
}
