package main

import "github.com/charmbracelet/lipgloss"

const logo = `
  __ _
 / _(_) __ _ _ __   ___
| |_| |/ _' | '_ \ / _ \
|  _| | (_| | |_) | (_) |
|_| |_|\__,_| .__/ \___/
            |_|
`

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7B61FF"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#959595"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
)
