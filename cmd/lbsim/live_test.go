package main

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lbsim/pkg/config"
	"lbsim/pkg/dispatcher"

	logtest "github.com/sirupsen/logrus/hooks/test"
)

func newLiveDispatcher(t *testing.T) *dispatcher.Dispatcher {
	t.Helper()

	logger, _ := logtest.NewNullLogger()
	d, err := dispatcher.New(dispatcher.DefaultConfig(1),
		dispatcher.WithRand(rand.New(rand.NewSource(1))), //nolint:gosec // deterministic test
		dispatcher.WithLogger(logger),
	)
	if err != nil {
		t.Fatalf("dispatcher.New: %v", err)
	}
	return d
}

func TestTickLoop_RunsAllCycles(t *testing.T) {
	d := newLiveDispatcher(t)
	logger, _ := logtest.NewNullLogger()

	err := tickLoop(context.Background(), d, liveOptions{cycles: 5, interval: time.Millisecond}, nil, logger)
	if err != nil {
		t.Fatalf("tickLoop: %v", err)
	}
	if d.Clock() != 5 {
		t.Errorf("Clock() = %d, want 5", d.Clock())
	}
}

func TestTickLoop_AppliesDenyListBetweenTicks(t *testing.T) {
	d := newLiveDispatcher(t)
	logger, hook := logtest.NewNullLogger()

	updates := make(chan []string, 1)
	updates <- []string{"5.5.5.5"}

	err := tickLoop(context.Background(), d, liveOptions{cycles: 2, interval: 20 * time.Millisecond}, updates, logger)
	if err != nil {
		t.Fatalf("tickLoop: %v", err)
	}

	f := d.Filter()
	if !f.IsBlocked("5.5.5.5") {
		t.Error("reloaded address should be blocked")
	}
	if f.IsBlocked("192.168.1.100") {
		t.Error("Replace should drop addresses absent from the new list")
	}
	if hook.LastEntry() == nil || hook.LastEntry().Message != "deny-list reloaded" {
		t.Errorf("expected reload log entry, got %v", hook.AllEntries())
	}
}

func TestTickLoop_StopsOnCancel(t *testing.T) {
	d := newLiveDispatcher(t)
	logger, _ := logtest.NewNullLogger()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tickLoop(ctx, d, liveOptions{cycles: 1000, interval: time.Hour}, nil, logger)
	if err != nil {
		t.Fatalf("interrupt should not be an error: %v", err)
	}
	if d.Clock() != 0 {
		t.Errorf("Clock() = %d, want 0", d.Clock())
	}
}

func TestWatchDenyList_SendsReloadedSet(t *testing.T) {
	dir := t.TempDir()
	denyPath := filepath.Join(dir, "deny.yaml")
	if err := os.WriteFile(denyPath, []byte("blocked: [5.5.5.5]\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	watcher, err := newDenyListWatcher(denyPath)
	if err != nil {
		t.Fatalf("newDenyListWatcher: %v", err)
	}
	defer func() { _ = watcher.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, _ := logtest.NewNullLogger()
	updates := make(chan []string, 1)
	go watchDenyList(ctx, watcher, config.Config{DenyList: denyPath}, updates, logger)

	// Give watcher time to initialize
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(denyPath, []byte("blocked: [6.6.6.6]\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case list := <-updates:
		found := false
		for _, ip := range list {
			if ip == "6.6.6.6" {
				found = true
			}
		}
		if !found {
			t.Errorf("reloaded set %v is missing 6.6.6.6", list)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for deny-list reload")
	}
}

func TestWatchDenyList_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	denyPath := filepath.Join(dir, "deny.yaml")
	if err := os.WriteFile(denyPath, []byte("blocked: []\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	watcher, err := newDenyListWatcher(denyPath)
	if err != nil {
		t.Fatalf("newDenyListWatcher: %v", err)
	}
	defer func() { _ = watcher.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, _ := logtest.NewNullLogger()
	updates := make(chan []string, 1)
	go watchDenyList(ctx, watcher, config.Config{DenyList: denyPath}, updates, logger)

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case list := <-updates:
		t.Fatalf("unexpected reload: %v", list)
	case <-time.After(300 * time.Millisecond):
	}
}
