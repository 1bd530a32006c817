package plancmder

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow batches the burst of ref writes a single git operation
// produces into one re-plan.
const debounceWindow = 400 * time.Millisecond

// watchRefs blocks, invoking fn whenever the repository's refs change.
// It returns when ctx is cancelled or the watcher fails.
func watchRefs(ctx context.Context, dir string, log *slog.Logger, fn func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	gitDir := filepath.Join(dir, ".git")
	if err := watcher.Add(gitDir); err != nil {
		return err
	}

	// Loose refs live under refs/heads and refs/tags; packed-refs and HEAD
	// sit in the git dir itself, already covered above.
	for _, sub := range []string{
		filepath.Join(gitDir, "refs", "heads"),
		filepath.Join(gitDir, "refs", "tags"),
	} {
		if _, statErr := os.Stat(sub); statErr == nil {
			if err := watcher.Add(sub); err != nil {
				return err
			}
		}
	}

	log.Info("watching for ref changes", "dir", gitDir)

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event := <-watcher.Events:
			if !refEvent(event) {
				continue
			}
			if debounce == nil {
				debounce = time.AfterFunc(debounceWindow, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				debounce.Reset(debounceWindow)
			}

		case <-fire:
			fn()

		case err := <-watcher.Errors:
			return err
		}
	}
}

// refEvent filters watcher noise down to writes that can move a ref.
func refEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}

	name := filepath.Base(event.Name)
	if name == "HEAD" || name == "packed-refs" {
		return true
	}

	return filepath.Base(filepath.Dir(event.Name)) == "heads" ||
		filepath.Base(filepath.Dir(event.Name)) == "tags"
}
