package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette for the TUI.
type Theme struct {
	Primary    lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() Theme {
	return Theme{
		Primary:    lipgloss.Color("#7C3AED"),
		Foreground: lipgloss.Color("#CDD6F4"),
		Muted:      lipgloss.Color("#6C7086"),
		Success:    lipgloss.Color("#A6E3A1"),
		Error:      lipgloss.Color("#F38BA8"),
		Border:     lipgloss.Color("#45475A"),
	}
}

// Styles contains the pre-configured lipgloss styles.
type Styles struct {
	Title   lipgloss.Style
	Prompt  lipgloss.Style
	Answer  lipgloss.Style
	Sources lipgloss.Style
	Error   lipgloss.Style
	Help    lipgloss.Style
}

// DefaultStyles builds the styles from the default theme.
func DefaultStyles() Styles {
	theme := DefaultTheme()
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),
		Prompt: lipgloss.NewStyle().
			Foreground(theme.Foreground),
		Answer: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		Sources: lipgloss.NewStyle().
			Foreground(theme.Muted),
		Error: lipgloss.NewStyle().
			Foreground(theme.Error),
		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),
	}
}
