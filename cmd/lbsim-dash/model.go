package main

import (
	"errors"
	"time"

	"lbsim/pkg/config"
	"lbsim/pkg/dispatcher"
	"lbsim/pkg/simlog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// Speed limits for the +/- keys.
const (
	minInterval = 10 * time.Millisecond
	maxInterval = 2 * time.Second
)

// tickMsg is sent by Bubble Tea on every tick interval.
// Each one advances the simulation by a cycle unless paused.
type tickMsg time.Time

// tickCmd returns a command that sends a tickMsg after d.
func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the Bubble Tea model for the dashboard. Update runs on a single
// goroutine, which makes it the dispatcher's only caller.
type Model struct {
	d        *dispatcher.Dispatcher
	feed     *eventFeed
	cycles   int
	interval time.Duration
	paused   bool
	snap     dispatcher.Snapshot

	// Deny-list reload
	watcher *fsnotify.Watcher
	denyCfg config.Config
	reloads int
	lastErr error

	// UI state
	keys     keyMap
	help     help.Model
	progress progress.Model
	gauge    progress.Model
	styles   Styles
	width    int
	height   int
}

// newModel creates a Model over a dispatcher whose queue is already seeded.
func newModel(d *dispatcher.Dispatcher, feed *eventFeed, cycles int, interval time.Duration) Model {
	theme := simlog.DefaultTheme()
	return Model{
		d:        d,
		feed:     feed,
		cycles:   cycles,
		interval: interval,
		snap:     d.Snapshot(),
		keys:     defaultKeyMap(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient()),
		gauge:    progress.New(progress.WithSolidFill(string(theme.Warning)), progress.WithoutPercentage()),
		styles:   NewStyles(theme),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.interval), m.watchCmd())
}

// watchCmd waits for the next deny-list change; nil when not watching.
func (m Model) watchCmd() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return runWatcher(m.watcher, m.denyCfg)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		barWidth := min(max(msg.Width-30, 10), 60)
		m.progress.Width = barWidth
		m.gauge.Width = barWidth

	case tickMsg:
		if m.finished() {
			return m, nil
		}
		if !m.paused {
			m = m.step()
		}
		return m, tickCmd(m.interval)

	case denyListMsg:
		m.d.Filter().Replace(msg)
		m.reloads++
		m.lastErr = nil
		return m, m.watchCmd()

	case denyListErrMsg:
		m.lastErr = msg.err
		return m, m.watchCmd()
	}

	return m, nil
}

// handleKeyPress processes keyboard input.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
	case key.Matches(msg, m.keys.Step):
		if m.paused && !m.finished() {
			m = m.step()
		}
	case key.Matches(msg, m.keys.Faster):
		m.interval = max(m.interval/2, minInterval)
	case key.Matches(msg, m.keys.Slower):
		m.interval = min(m.interval*2, maxInterval)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// step runs one cycle and captures the resulting state.
func (m Model) step() Model {
	m.d.Tick()
	m.snap = m.d.Snapshot()
	return m
}

// finished reports whether every requested cycle has run.
func (m Model) finished() bool {
	return m.d.Clock() >= m.cycles
}

// close stops the deny-list watcher and releases the dispatcher.
func (m Model) close() error {
	var errs []error
	if m.watcher != nil {
		errs = append(errs, m.watcher.Close())
	}
	errs = append(errs, m.d.Close())
	return errors.Join(errs...)
}
