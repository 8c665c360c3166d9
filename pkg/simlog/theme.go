package simlog

import "github.com/charmbracelet/lipgloss"

// Theme defines the colours used for terminal output.
type Theme struct {
	Primary lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Muted   lipgloss.Color
}

// DefaultTheme returns the default terminal theme.
func DefaultTheme() Theme {
	return Theme{
		Primary: lipgloss.Color("12"),  // Blue
		Success: lipgloss.Color("10"),  // Green
		Warning: lipgloss.Color("11"),  // Yellow
		Error:   lipgloss.Color("9"),   // Red
		Muted:   lipgloss.Color("240"), // Gray
	}
}

// Styles holds the lipgloss styles derived from a Theme.
type Styles struct {
	Header  lipgloss.Style
	Idle    lipgloss.Style
	Busy    lipgloss.Style
	Blocked lipgloss.Style
	Added   lipgloss.Style
	Removed lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles builds the styles for theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Idle:    lipgloss.NewStyle().Foreground(theme.Muted),
		Busy:    lipgloss.NewStyle().Foreground(theme.Warning),
		Blocked: lipgloss.NewStyle().Foreground(theme.Error),
		Added:   lipgloss.NewStyle().Foreground(theme.Success),
		Removed: lipgloss.NewStyle().Foreground(theme.Warning),
		Muted:   lipgloss.NewStyle().Foreground(theme.Muted),
	}
}
