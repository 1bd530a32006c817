// Package eventstream publishes release planning results to downstream
// consumers (dashboards, release bots, audit pipelines).
package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// TypeReleasePlanned is the event type discriminator on the wire.
	TypeReleasePlanned = "cutplan.release.planned"

	// SchemaVersion is bumped whenever the event payload changes shape.
	SchemaVersion = 1
)

// ReleasePlannedEvent is emitted after a successful planning run.
type ReleasePlannedEvent struct {
	// ID uniquely identifies this planning run.
	ID string `json:"id"`

	Type          string `json:"type"`
	SchemaVersion int    `json:"schema_version"`

	// Repo is the "owner/repo" slug the plan was computed for.
	Repo string `json:"repo"`

	// Target is the rendered target version, e.g. "9.0.0-rc.1".
	Target string `json:"target"`

	// Comparison is the rendered comparison version, empty for a first release.
	Comparison string `json:"comparison,omitempty"`

	// Branch is the release branch name the plan settled on.
	Branch string `json:"branch"`

	// BranchCreated is true when the branch still needs to be created.
	BranchCreated bool `json:"branch_created"`

	// CommitCount is the number of commits in the resolved range.
	CommitCount int `json:"commit_count"`

	// IssueCount is the number of distinct issues attributed.
	IssueCount int `json:"issue_count"`

	// PartialCount is the number of partial matches reported.
	PartialCount int `json:"partial_count"`

	PlannedAt time.Time `json:"planned_at"`
}

// NewReleasePlannedEvent stamps a fresh event with an ID and timestamp.
func NewReleasePlannedEvent(repo, target string) ReleasePlannedEvent {
	return ReleasePlannedEvent{
		ID:            uuid.NewString(),
		Type:          TypeReleasePlanned,
		SchemaVersion: SchemaVersion,
		Repo:          repo,
		Target:        target,
		PlannedAt:     time.Now().UTC(),
	}
}
