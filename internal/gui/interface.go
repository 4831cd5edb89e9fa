package gui

import (
	"context"

	"fiapo/internal/reader"
	"fiapo/internal/search"
	"fiapo/internal/session"
	"fiapo/internal/watch"
)

// Interface defines the contract for GUI operations
type Interface interface {
	Run()
	ShowError(title string, err error)
	ShowInfo(message string)
}

// Session is what the desktop reader needs from the application
// controller. *app.Controller implements it.
type Session interface {
	Import(ctx context.Context, paths []string) (*session.Plan, error)
	Navigate(dir reader.Direction) (*reader.Page, bool)
	JumpTo(number int) (*reader.Page, error)
	Current() (*reader.Page, bool)
	Progress() (current, total int)
	Reload(ctx context.Context) (*reader.Page, error)
	Reset()
	Changes() <-chan watch.Change
	Search(ctx context.Context, title string, size uint) ([]search.Hit, error)
}
