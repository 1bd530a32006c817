package attribution

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Action is the policy applied to unresolved partial matches.
type Action int

const (
	ActionWarn Action = iota
	ActionIgnore
	ActionError
)

// ParseAction parses the config spelling of a partial-match action.
func ParseAction(s string) (Action, bool) {
	switch s {
	case "warn", "":
		return ActionWarn, true
	case "ignore":
		return ActionIgnore, true
	case "error":
		return ActionError, true
	default:
		return ActionWarn, false
	}
}

func (a Action) String() string {
	switch a {
	case ActionIgnore:
		return "ignore"
	case ActionError:
		return "error"
	default:
		return "warn"
	}
}

// PartialAttributionError is returned under the error action. It carries
// the full unresolved list for caller-side reporting; no partial planning
// output accompanies it.
type PartialAttributionError struct {
	Matches []PartialMatch
}

func (e PartialAttributionError) Error() string {
	return fmt.Sprintf("%d unresolved partial issue match(es)", len(e.Matches))
}

// Enforce applies the partial-match policy. resolvedKeys are issue keys
// that another change bound successfully; partials for those keys are
// considered resolved and reported but never failed on.
//
// Under warn, one consolidated notice is emitted per distinct reason,
// listing every affected key, instead of one notice per key.
func Enforce(partials []PartialMatch, resolvedKeys map[string]bool, action Action, logger *slog.Logger) error {
	if len(partials) == 0 || action == ActionIgnore {
		return nil
	}

	var unresolved, resolved []PartialMatch
	for _, p := range partials {
		if resolvedKeys[p.IssueKey] {
			resolved = append(resolved, p)
		} else {
			unresolved = append(unresolved, p)
		}
	}

	if len(unresolved) == 0 {
		if len(resolved) > 0 {
			logger.Info("partial issue matches were fully resolved", "count", len(resolved))
		}
		return nil
	}

	if action == ActionError {
		return PartialAttributionError{Matches: unresolved}
	}

	logger.Warn("unresolved partial issue matches",
		"unresolved", len(unresolved),
		"resolved", len(resolved),
	)

	grouped := keysByReason(unresolved)
	reasons := make([]Reason, 0, len(grouped))
	for reason := range grouped {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })

	for _, reason := range reasons {
		logger.Warn(reason.Description(), "issues", strings.Join(grouped[reason], ", "))
	}

	for _, p := range unresolved {
		if p.MatchType != MatchDifferentRepo {
			continue
		}
		logger.Warn("issue resolved outside configured trackers",
			"issue", p.IssueKey,
			"found_in", p.FoundInRepo,
			"url", p.IssueURL,
		)
	}

	logger.Warn("to resolve, refresh the cache with 'cutplan pull' and check the configured issue repositories")

	return nil
}

// keysByReason groups the affected issue keys under each distinct reason,
// keys sorted for stable output.
func keysByReason(partials []PartialMatch) map[Reason][]string {
	grouped := make(map[Reason][]string)
	for _, p := range partials {
		for _, r := range p.Reasons {
			grouped[r] = append(grouped[r], p.IssueKey)
		}
	}
	for r := range grouped {
		sort.Strings(grouped[r])
	}
	return grouped
}
