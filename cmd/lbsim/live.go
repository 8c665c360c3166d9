package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"lbsim/pkg/config"
	"lbsim/pkg/dispatcher"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// liveOptions configures the paced run.
type liveOptions struct {
	cycles   int
	interval time.Duration
	watch    bool
}

// runLive runs opts.cycles ticks, one per interval. With watch set, a second
// goroutine reloads the deny-list on file changes and hands the new set to
// the tick loop, which applies it between ticks; the dispatcher itself is only
// touched by the tick loop. SIGINT or SIGTERM stops the run early.
func runLive(ctx context.Context, d *dispatcher.Dispatcher, cfg config.Config, opts liveOptions, log logrus.FieldLogger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	updates := make(chan []string, 1)

	if opts.watch {
		watcher, err := newDenyListWatcher(cfg.DenyList)
		if err != nil {
			log.WithError(err).WithField("path", cfg.DenyList).Warn("deny-list watch unavailable")
		} else {
			g.Go(func() error {
				defer func() { _ = watcher.Close() }()
				watchDenyList(ctx, watcher, cfg, updates, log)
				return nil
			})
		}
	}

	g.Go(func() error {
		defer cancel()
		return tickLoop(ctx, d, opts, updates, log)
	})

	return g.Wait()
}

// tickLoop drives the dispatcher. It returns nil after the last cycle and
// nil on interrupt, leaving the dispatcher at the last completed cycle.
func tickLoop(ctx context.Context, d *dispatcher.Dispatcher, opts liveOptions, updates <-chan []string, log logrus.FieldLogger) error {
	ticker := time.NewTicker(opts.interval)
	defer ticker.Stop()

	for done := 0; done < opts.cycles; {
		select {
		case <-ctx.Done():
			log.WithField("cycle", d.Clock()).Warn("run interrupted")
			return nil
		case list := <-updates:
			d.Filter().Replace(list)
			log.WithFields(logrus.Fields{"cycle": d.Clock(), "blocked": len(list)}).Info("deny-list reloaded")
		case <-ticker.C:
			d.Tick()
			done++
		}
	}
	return nil
}

// newDenyListWatcher watches the directory holding path, so that editors that
// replace the file on save are still seen.
func newDenyListWatcher(path string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	return watcher, nil
}

// watchDenyList sends the recomputed deny-set on every debounced change to
// cfg.DenyList. An unreadable or invalid file keeps the current set.
func watchDenyList(ctx context.Context, watcher *fsnotify.Watcher, cfg config.Config, updates chan<- []string, log logrus.FieldLogger) {
	target := filepath.Clean(cfg.DenyList)
	debounce := newDebounceTimer()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			resetDebounceTimer(debounce)
		case <-debounce.C:
			list, err := cfg.Blocklist()
			if err != nil {
				log.WithError(err).WithField("path", target).Warn("deny-list reload failed, keeping current set")
				continue
			}
			select {
			case updates <- list:
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("deny-list watcher error")
		}
	}
}

// newDebounceTimer creates a stopped timer for debouncing file system events.
func newDebounceTimer() *time.Timer {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	return timer
}

// resetDebounceTimer restarts the debounce window.
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
