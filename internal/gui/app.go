//go:build !nogui
// +build !nogui

// Package gui is the desktop reader built on fyne
package gui

import (
	"context"
	"fmt"
	"image/color"
	"path/filepath"

	"fiapo/internal/config"
	"fiapo/internal/log"
	"fiapo/internal/reader"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/dialog"
)

// App is the GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	cfg        *config.Config
	session    Session

	// Theme settings
	textColor color.NRGBA
	bgColor   color.NRGBA

	nextIsLeft bool
	reading    bool

	home   *homeScreen
	reader *readerScreen
}

// NewApp creates the GUI on top of fyneApp
func NewApp(fyneApp fyne.App, session Session, cfg *config.Config) *App {
	a := &App{
		fyneApp:    fyneApp,
		cfg:        cfg,
		session:    session,
		textColor:  parseHexColor(cfg.TextColor, color.NRGBA{R: 255, G: 255, B: 255, A: 255}),
		bgColor:    parseHexColor(cfg.BackgroundColor, color.NRGBA{R: 17, G: 20, B: 22, A: 255}),
		nextIsLeft: cfg.NextIsLeft(),
	}

	a.mainWindow = fyneApp.NewWindow("fiapo")
	a.mainWindow.Resize(fyne.NewSize(900, 1000))
	a.home = newHomeScreen(a)
	a.reader = newReaderScreen(a)
	a.mainWindow.Canvas().SetOnTypedKey(a.HandleKey)
	a.ShowHome()
	return a
}

// StartGUI opens paths, if any, and runs the desktop reader until its
// window is closed.
func StartGUI(session Session, cfg *config.Config, paths []string) error {
	a := NewApp(app.NewWithID("io.github.fiapo"), session, cfg)
	if len(paths) > 0 {
		if err := a.Open(paths); err != nil {
			log.LogWithError(err).Warn("Initial import failed")
		}
	}
	a.Run()
	return nil
}

// IsGUIAvailable returns whether the GUI is available in this build
func IsGUIAvailable() bool {
	return true
}

// GetMainWindow returns the main window instance
func (a *App) GetMainWindow() fyne.Window {
	return a.mainWindow
}

// Run shows the main window and blocks until it closes
func (a *App) Run() {
	go a.watchChanges()
	a.mainWindow.ShowAndRun()
}

// Open imports paths and switches to the reader. A failed import keeps
// the current screen and session.
func (a *App) Open(paths []string) error {
	plan, err := a.session.Import(context.Background(), paths)
	if err != nil {
		a.ShowError("Import failed", err)
		return err
	}
	if len(plan.Skipped) > 0 {
		a.reader.setStatus(fmt.Sprintf("%d file(s) skipped", len(plan.Skipped)))
	} else {
		a.reader.setStatus("")
	}
	a.ShowReader()
	return nil
}

// ShowHome switches to the home screen
func (a *App) ShowHome() {
	a.reading = false
	a.mainWindow.SetContent(a.home.content)
}

// ShowReader switches to the reader screen showing the current page
func (a *App) ShowReader() {
	a.reading = true
	page, _ := a.session.Current()
	a.reader.show(page)
	a.mainWindow.SetContent(a.reader.content)
}

// Back drops the session and returns home
func (a *App) Back() {
	a.session.Reset()
	a.reader.show(nil)
	a.ShowHome()
}

// IsReading reports whether the reader screen is shown
func (a *App) IsReading() bool {
	return a.reading
}

// Turn moves one page in dir
func (a *App) Turn(dir reader.Direction) {
	if page, ok := a.session.Navigate(dir); ok {
		a.reader.show(page)
	}
}

// JumpTo shows the 1-based page number
func (a *App) JumpTo(number int) {
	page, err := a.session.JumpTo(number)
	if err != nil {
		a.reader.setStatus(err.Error())
		return
	}
	a.reader.show(page)
}

// Reload rebuilds the session from disk
func (a *App) Reload() {
	page, err := a.session.Reload(context.Background())
	if err != nil {
		a.ShowError("Reload failed", err)
		return
	}
	a.reader.setStatus("Reloaded")
	a.reader.show(page)
}

// HandleKey turns pages on the reader screen. Left and Right follow the
// configured reading direction.
func (a *App) HandleKey(ev *fyne.KeyEvent) {
	if !a.reading {
		return
	}

	switch ev.Name {
	case fyne.KeyLeft:
		if a.nextIsLeft {
			a.Turn(reader.Next)
		} else {
			a.Turn(reader.Prev)
		}
	case fyne.KeyRight:
		if a.nextIsLeft {
			a.Turn(reader.Prev)
		} else {
			a.Turn(reader.Next)
		}
	case fyne.KeySpace, fyne.KeyPageDown, fyne.KeyDown:
		a.Turn(reader.Next)
	case fyne.KeyPageUp, fyne.KeyUp, fyne.KeyBackspace:
		a.Turn(reader.Prev)
	case fyne.KeyHome:
		a.JumpTo(1)
	case fyne.KeyEnd:
		_, total := a.session.Progress()
		a.JumpTo(total)
	case fyne.KeyF5:
		a.Reload()
	case fyne.KeyEscape:
		a.Back()
	}
}

func (a *App) watchChanges() {
	changes := a.session.Changes()
	if changes == nil {
		return
	}
	for change := range changes {
		a.reader.setStatus(fmt.Sprintf("%s changed on disk, press F5 to reload", filepath.Base(change.Path)))
	}
}

// ShowError displays an error dialog
func (a *App) ShowError(title string, err error) {
	if err == nil {
		return
	}
	log.LogWithError(err).Warn(title)
	dialog.ShowError(err, a.mainWindow)
}

// ShowInfo displays an information dialog
func (a *App) ShowInfo(message string) {
	dialog.ShowInformation("Information", message, a.mainWindow)
}

func (a *App) text(s string, size float32) *canvas.Text {
	t := canvas.NewText(s, a.textColor)
	t.TextSize = size
	t.Alignment = fyne.TextAlignCenter
	return t
}
