package main

import (
	"fmt"
	"strings"

	"lbsim/pkg/protocol"

	"github.com/charmbracelet/lipgloss"
)

// maxServerRows caps the server table; the rest are summarized.
const maxServerRows = 16

// View implements tea.Model.
func (m Model) View() string {
	sections := []string{
		m.renderStatusBar(),
		m.renderProgress(),
		m.renderServers(),
		m.renderQueue(),
		m.renderFeed(),
		"",
		m.help.View(m.keys),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderStatusBar renders the run state: cycle, pool size, queue and counters.
func (m Model) renderStatusBar() string {
	s := m.styles
	item := func(label string, value any) string {
		return s.Label.Render(label+" ") + s.Value.Render(fmt.Sprint(value))
	}

	parts := []string{
		s.Title.Render("lbsim"),
		item("cycle", fmt.Sprintf("%d/%d", m.snap.Cycle, m.cycles)),
		item("servers", len(m.snap.Servers)),
		item("busy", m.snap.Busy()),
		item("queue", m.snap.QueueLen),
		item("blocked", m.feed.count(protocol.EventBlocked)),
		item("interval", m.interval),
	}

	switch {
	case m.finished():
		parts = append(parts, s.Done.Render("DONE"))
	case m.paused:
		parts = append(parts, s.Paused.Render("PAUSED"))
	}

	return s.StatusBar.Render(strings.Join(parts, "  "))
}

// renderProgress renders cycle progress.
func (m Model) renderProgress() string {
	pct := 0.0
	if m.cycles > 0 {
		pct = float64(m.snap.Cycle) / float64(m.cycles)
	}
	return " " + m.progress.ViewAs(pct)
}

// renderServers renders one row per server in index order.
func (m Model) renderServers() string {
	s := m.styles
	var b strings.Builder
	b.WriteString(s.Section.Render("Servers"))
	b.WriteString("\n")

	rows := m.snap.Servers
	hidden := 0
	if len(rows) > maxServerRows {
		hidden = len(rows) - maxServerRows
		rows = rows[:maxServerRows]
	}

	for _, st := range rows {
		status := s.Idle.Render(fmt.Sprintf("%-14s", st.String()))
		detail := ""
		if st.State == protocol.ServerBusy {
			status = s.Busy.Render(fmt.Sprintf("%-14s", st.String()))
			detail = s.Muted.Render(fmt.Sprintf("%s -> %s", st.Request.Source, st.Request.Destination))
		}
		fmt.Fprintf(&b, "  #%-3d %s %s\n", st.Index, status, detail)
	}
	if hidden > 0 {
		fmt.Fprintf(&b, "  %s\n", s.Muted.Render(fmt.Sprintf("... and %d more", hidden)))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// renderQueue renders the queue length against the scale-up threshold.
func (m Model) renderQueue() string {
	s := m.styles
	threshold := len(m.snap.Servers) * m.d.Config().ScaleUpRatio
	pct := 0.0
	if threshold > 0 {
		pct = min(float64(m.snap.QueueLen)/float64(threshold), 1)
	}
	label := s.Muted.Render(fmt.Sprintf("%d / %d before scale-up", m.snap.QueueLen, threshold))
	return s.Section.Render("Queue") + "\n  " + m.gauge.ViewAs(pct) + " " + label
}

// renderFeed renders the most recent notable events and deny-list status.
func (m Model) renderFeed() string {
	s := m.styles
	var b strings.Builder
	b.WriteString(s.Section.Render("Recent events"))

	if len(m.feed.lines) == 0 {
		b.WriteString("\n  " + s.Muted.Render("none yet"))
	}
	for _, l := range m.feed.lines {
		style := s.Muted
		switch l.typ {
		case protocol.EventBlocked:
			style = s.Blocked
		case protocol.EventServerAdded:
			style = s.Added
		case protocol.EventServerRemoved:
			style = s.Removed
		case protocol.EventDropped:
			style = s.Dropped
		}
		fmt.Fprintf(&b, "\n  %s %s", s.Muted.Render(fmt.Sprintf("%6d", l.cycle)), style.Render(l.text))
	}

	if m.watcher != nil {
		status := fmt.Sprintf("deny-list: %d blocked, reloaded %d times", m.d.Filter().Len(), m.reloads)
		if m.lastErr != nil {
			status += " (last reload failed: " + m.lastErr.Error() + ")"
		}
		b.WriteString("\n\n  " + s.Muted.Render(status))
	}
	return b.String()
}
