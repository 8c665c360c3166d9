package main

import (
	"path/filepath"
	"time"

	"lbsim/pkg/config"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// denyListMsg carries a reloaded deny-set.
type denyListMsg []string

// denyListErrMsg reports a deny-list file that could not be reloaded.
type denyListErrMsg struct{ err error }

// initWatcher watches the directory holding the deny-list file.
// Returns nil if the watcher cannot be created; the dashboard then runs
// with the deny-list it started with.
func initWatcher(path string) *fsnotify.Watcher {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logrus.WithError(err).Warn("fsnotify: failed to create watcher, deny-list reload disabled")
		return nil
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close() // Best effort close
		logrus.WithError(err).WithField("dir", dir).Warn("fsnotify: failed to watch, deny-list reload disabled")
		return nil
	}

	return watcher
}

// runWatcher returns a tea.Cmd that waits for a debounced change to
// cfg.DenyList and reports the recomputed deny-set. Returns nil once the
// watcher is closed.
func runWatcher(watcher *fsnotify.Watcher, cfg config.Config) tea.Cmd {
	target := filepath.Clean(cfg.DenyList)

	return func() tea.Msg {
		debounceTimer := newDebounceTimer()
		defer debounceTimer.Stop()

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				resetDebounceTimer(debounceTimer)

			case <-debounceTimer.C:
				list, err := cfg.Blocklist()
				if err != nil {
					return denyListErrMsg{err: err}
				}
				return denyListMsg(list)

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				return denyListErrMsg{err: err}
			}
		}
	}
}

// newDebounceTimer creates a new timer for debouncing file system events.
func newDebounceTimer() *time.Timer {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	return timer
}

// resetDebounceTimer resets the debounce timer to prevent rapid-fire events.
func resetDebounceTimer(timer *time.Timer) {
	const debounceDuration = 100 * time.Millisecond
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(debounceDuration)
}
