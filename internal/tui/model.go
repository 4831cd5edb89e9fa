// Package tui is the terminal reader. It draws the current page with
// half-block characters and turns pages from the keyboard.
package tui

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strconv"
	"strings"

	"fiapo/internal/config"
	"fiapo/internal/errors"
	"fiapo/internal/log"
	"fiapo/internal/reader"
	"fiapo/internal/tui/components"
	"fiapo/internal/tui/messages"
	"fiapo/internal/tui/styles"
	"fiapo/internal/tui/views"
	"fiapo/internal/watch"
	"fiapo/pkg/types"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Session is what the reader needs from the application controller
type Session interface {
	Navigate(dir reader.Direction) (*reader.Page, bool)
	JumpTo(number int) (*reader.Page, error)
	Current() (*reader.Page, bool)
	Progress() (current, total int)
	Reload(ctx context.Context) (*reader.Page, error)
	Changes() <-chan watch.Change
}

type Model struct {
	session Session
	keys    types.KeyMap
	theme   styles.Theme
	help    help.Model
	input   textinput.Model
	status  *components.StatusBar

	// Core state
	mode          types.Mode
	page          *reader.Page
	nextIsLeft    bool
	showHelp      bool
	showIndicator bool
	width         int
	height        int
}

// New creates a reader over session using the colors, direction and
// indicator setting of cfg.
func New(session Session, cfg *config.Config) *Model {
	theme := styles.NewTheme(cfg.TextColor, cfg.BackgroundColor)

	input := textinput.New()
	input.Prompt = ":"
	input.PromptStyle = theme.Command
	input.CharLimit = 32
	input.Cursor.SetMode(cursor.CursorStatic)

	m := &Model{
		session:       session,
		keys:          types.DefaultKeyMap(cfg.NextIsLeft()),
		theme:         theme,
		help:          help.New(),
		input:         input,
		status:        components.NewStatusBar(theme),
		mode:          types.Normal,
		nextIsLeft:    cfg.NextIsLeft(),
		showIndicator: cfg.Reader.ShowBottomIndicator,
		width:         80,
		height:        24,
	}
	m.page, _ = session.Current()
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return waitForChange(m.session.Changes())
}

// View implements tea.Model
func (m *Model) View() string {
	return views.RenderReaderView(m, m.theme)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.mode == types.Command {
			return m.handleCommandMode(msg)
		}
		return m.handleNormalKeys(msg)

	case messages.PageMsg:
		m.status.SetLoading(false)
		if msg.Page != nil {
			m.page = msg.Page
		}
		m.status.SetText(msg.Status)
		return m, nil

	case messages.ErrorMsg:
		m.status.SetLoading(false)
		m.status.SetError(msg.Err)
		return m, nil

	case messages.FileChangedMsg:
		m.status.SetText(fmt.Sprintf("%s changed on disk, :r to reload", filepath.Base(msg.Change.Path)))
		return m, waitForChange(m.session.Changes())

	case spinner.TickMsg:
		return m, m.status.Update(msg)
	}
	return m, nil
}

func (m *Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.Left):
		if m.nextIsLeft {
			m.turn(reader.Next)
		} else {
			m.turn(reader.Prev)
		}
	case key.Matches(msg, m.keys.Right):
		if m.nextIsLeft {
			m.turn(reader.Prev)
		} else {
			m.turn(reader.Next)
		}
	case key.Matches(msg, m.keys.Next):
		m.turn(reader.Next)
	case key.Matches(msg, m.keys.Prev):
		m.turn(reader.Prev)
	case key.Matches(msg, m.keys.First):
		return m, m.jump(1)
	case key.Matches(msg, m.keys.Last):
		_, total := m.session.Progress()
		return m, m.jump(total)
	case key.Matches(msg, m.keys.Reload):
		return m, m.reload()
	case key.Matches(msg, m.keys.EnterCmdMode):
		m.mode = types.Command
		m.input.SetValue("")
		return m, m.input.Focus()
	}
	return m, nil
}

func (m *Model) handleCommandMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ExitCmdMode):
		m.exitCommandMode()
		return m, nil
	case key.Matches(msg, m.keys.ExecuteCmd):
		cmd := strings.TrimSpace(m.input.Value())
		m.exitCommandMode()
		return m, m.executeCommand(cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) exitCommandMode() {
	m.mode = types.Normal
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case "":
		return nil
	case "q", "quit":
		return tea.Quit
	case "r", "reload":
		return m.reload()
	}

	number, err := strconv.Atoi(cmd)
	if err != nil {
		m.status.SetError(fmt.Errorf("unknown command: %s", cmd))
		return nil
	}
	return m.jump(number)
}

// turn pages synchronously; the server renders at most one page inline
func (m *Model) turn(dir reader.Direction) {
	if page, ok := m.session.Navigate(dir); ok {
		m.page = page
		m.status.SetText("")
	}
}

func (m *Model) jump(number int) tea.Cmd {
	session := m.session
	load := func() tea.Msg {
		page, err := session.JumpTo(number)
		if err != nil {
			return messages.ErrorMsg{Err: err}
		}
		return messages.PageMsg{Page: page}
	}
	return tea.Batch(m.status.SetLoading(true), load)
}

func (m *Model) reload() tea.Cmd {
	session := m.session
	m.status.SetText("Reloading")
	load := func() tea.Msg {
		page, err := session.Reload(context.Background())
		if err != nil {
			log.LogWithError(err).Warn("Reload failed")
			if errors.IsEmptySession(err) {
				return messages.ErrorMsg{Err: fmt.Errorf("nothing readable to reload")}
			}
			return messages.ErrorMsg{Err: err}
		}
		return messages.PageMsg{Page: page, Status: "Reloaded"}
	}
	return tea.Batch(m.status.SetLoading(true), load)
}

func waitForChange(changes <-chan watch.Change) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		change, ok := <-changes
		if !ok {
			return nil
		}
		return messages.FileChangedMsg{Change: change}
	}
}

// Page returns the image being shown
func (m *Model) Page() image.Image {
	if m.page == nil {
		return nil
	}
	return m.page.Image
}

// Progress returns the page number being shown and the session total
func (m *Model) Progress() (current, total int) {
	_, total = m.session.Progress()
	if m.page == nil {
		return 0, total
	}
	return m.page.Number, total
}

func (m *Model) Mode() types.Mode {
	return m.mode
}

func (m *Model) CommandView() string {
	return m.input.View()
}

// StatusView shows the status message, or the key hints when there is none
func (m *Model) StatusView() string {
	if v := m.status.View(); v != "" {
		return v
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

func (m *Model) HelpView() string {
	return m.help.FullHelpView(m.keys.FullHelp())
}

func (m *Model) ShowHelp() bool {
	return m.showHelp
}

func (m *Model) ShowIndicator() bool {
	return m.showIndicator
}

func (m *Model) Size() (width, height int) {
	return m.width, m.height
}

// Status returns the current status message
func (m *Model) Status() string {
	return m.status.Text()
}

// Run starts the terminal reader on the alternate screen
func Run(session Session, cfg *config.Config) error {
	p := tea.NewProgram(New(session, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
