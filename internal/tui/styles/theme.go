package styles

import "github.com/charmbracelet/lipgloss"

// Theme defines the core UI styles
type Theme struct {
	App       lipgloss.Style
	Title     lipgloss.Style
	Status    lipgloss.Style
	Indicator lipgloss.Style
	Error     lipgloss.Style
	Help      lipgloss.Style
	Command   lipgloss.Style
}

// NewTheme builds the styles from the configured colors
func NewTheme(text, background string) Theme {
	fg := lipgloss.Color(text)
	bg := lipgloss.Color(background)

	return Theme{
		App: lipgloss.NewStyle().
			Foreground(fg).
			Background(bg),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7B61FF")),
		Status: lipgloss.NewStyle().
			Foreground(fg),
		Indicator: lipgloss.NewStyle().
			Bold(true).
			Foreground(fg),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5A9")),
		Command: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#73F59F")),
	}
}

// Default is the theme used when no colors are configured
var Default = NewTheme("#FFFFFF", "#111416")
