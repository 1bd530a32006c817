package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	pullStateFile = "pull.json"
)

// PullState records the last successful issue sync from the hosting provider.
// The planner consults OldestIssue to decide whether a missing issue key may
// simply predate the cached window.
type PullState struct {
	// LastPull is when the cache was last refreshed.
	LastPull time.Time `json:"last_pull"`

	// OldestIssue maps "owner/repo" to the lowest issue number present in
	// the cache for that repository.
	OldestIssue map[string]int64 `json:"oldest_issue"`
}

// LoadPullState loads the pull state from a target .cutplan/pull.json.
// Returns nil, nil if no pull state exists (the cache has never been synced).
// If overrideDir is non-empty, it is used instead of the default ~/.cutplan/ location.
func (m *Manager) LoadPullState(overrideDir string) (*PullState, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, pullStateFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading pull state: %w", err)
	}

	state := &PullState{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing pull state: %w", err)
	}

	return state, nil
}

// SavePullState persists the pull state to a target .cutplan/pull.json.
func (m *Manager) SavePullState(state *PullState, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil pull state")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling pull state: %w", err)
	}

	path := filepath.Join(dir, pullStateFile)
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("writing pull state: %w", err)
	}

	return nil
}

// ClearPullState removes the pull state file.
// Returns nil if the file doesn't exist (already cleared).
func (m *Manager) ClearPullState(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, pullStateFile)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing pull state: %w", err)
	}

	return nil
}
