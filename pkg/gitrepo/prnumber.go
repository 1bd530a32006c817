package gitrepo

import (
	"regexp"
	"strconv"
)

// Merge and squash commits carry the PR number in their subject line.
// GitHub writes "Merge pull request #512 from owner/branch" for merge
// commits and "Title (#512)" for squash merges.
var (
	mergeSubjectRe  = regexp.MustCompile(`^Merge pull request #(\d+) from `)
	squashSubjectRe = regexp.MustCompile(`\(#(\d+)\)$`)
)

// ExtractPRNumber returns the pull request number embedded in a commit
// subject, or zero when the subject carries none.
func ExtractPRNumber(subject string) int {
	if m := mergeSubjectRe.FindStringSubmatch(subject); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n
		}
	}

	if m := squashSubjectRe.FindStringSubmatch(subject); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n
		}
	}

	return 0
}
