// Package dotdir manages the .cutplan/ and ~/.cutplan directories.
//
// The dot directory holds the config file, the local issue/PR cache database,
// and the pull state recording when issue data was last synced. Pull state is
// persisted as a JSON file so the planner can flag issue keys that predate the
// cached window.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the cutplan directory.
	dirName = ".cutplan"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .cutplan/ directory.
// Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.cutplan/ dir
//  3. Home ~/.cutplan/ dir
//  4. If none found, attempt to create ~/.cutplan/ dir
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating cutplan directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// localDirExists checks whether a .cutplan/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
