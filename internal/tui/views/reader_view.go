package views

import (
	"fmt"
	"strings"

	"fiapo/internal/tui/common"
	"fiapo/internal/tui/components"
	"fiapo/internal/tui/styles"
	"fiapo/pkg/types"
)

// chromeLines is the number of rows under the page: indicator and status
const chromeLines = 2

// RenderReaderView draws the current page with the bottom indicator and
// the status or command line under it.
func RenderReaderView(m common.ModelReader, theme styles.Theme) string {
	if m.ShowHelp() {
		return theme.App.Render(RenderHelp(m, theme))
	}

	width, height := m.Size()
	var sb strings.Builder

	if page := m.Page(); page != nil {
		sb.WriteString(components.RenderPage(page, width, height-chromeLines))
	} else {
		sb.WriteString(renderEmpty(theme))
	}
	sb.WriteString("\n")

	if m.ShowIndicator() {
		sb.WriteString(RenderIndicator(m, theme))
	}
	sb.WriteString("\n")

	if m.Mode() == types.Command {
		sb.WriteString(theme.Command.Render(m.CommandView()))
	} else {
		sb.WriteString(m.StatusView())
	}

	return sb.String()
}

// RenderIndicator renders "N / total"
func RenderIndicator(m common.ModelReader, theme styles.Theme) string {
	current, total := m.Progress()
	if total == 0 {
		return ""
	}
	return theme.Indicator.Render(fmt.Sprintf("%d / %d", current, total))
}

// RenderHelp renders the full key help plus the commands
func RenderHelp(m common.ModelReader, theme styles.Theme) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("fiapo"))
	sb.WriteString("\n\n")
	sb.WriteString(m.HelpView())
	sb.WriteString("\n\n")
	sb.WriteString(theme.Help.Render(`Commands:
  :N   jump to page N
  :r   reload the session from disk
  :q   quit`))
	return sb.String()
}

func renderEmpty(theme styles.Theme) string {
	return theme.Help.Render("No pages loaded. Run: fiapo read <files...>")
}
