package main

import (
	"lbsim/pkg/simlog"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the dashboard's lipgloss styles.
type Styles struct {
	Title     lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Idle      lipgloss.Style
	Busy      lipgloss.Style
	Blocked   lipgloss.Style
	Added     lipgloss.Style
	Removed   lipgloss.Style
	Dropped   lipgloss.Style
	Paused    lipgloss.Style
	Done      lipgloss.Style
	Section   lipgloss.Style
	Muted     lipgloss.Style
	StatusBar lipgloss.Style
}

// NewStyles builds the dashboard styles from the shared terminal theme.
func NewStyles(theme simlog.Theme) Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Label:     lipgloss.NewStyle().Foreground(theme.Muted),
		Value:     lipgloss.NewStyle().Bold(true),
		Idle:      lipgloss.NewStyle().Foreground(theme.Muted),
		Busy:      lipgloss.NewStyle().Foreground(theme.Warning),
		Blocked:   lipgloss.NewStyle().Foreground(theme.Error),
		Added:     lipgloss.NewStyle().Foreground(theme.Success),
		Removed:   lipgloss.NewStyle().Foreground(theme.Warning),
		Dropped:   lipgloss.NewStyle().Foreground(theme.Error).Bold(true),
		Paused:    lipgloss.NewStyle().Foreground(theme.Warning).Bold(true),
		Done:      lipgloss.NewStyle().Foreground(theme.Success).Bold(true),
		Section:   lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1),
		Muted:     lipgloss.NewStyle().Foreground(theme.Muted),
		StatusBar: lipgloss.NewStyle().Padding(0, 1),
	}
}
