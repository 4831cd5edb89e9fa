//go:build !nogui
// +build !nogui

package gui

import (
	"context"
	"fmt"

	"fiapo/internal/search"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// coverSize bounds the cover thumbnails of search results
const coverSize = 256

type homeScreen struct {
	app         *App
	content     fyne.CanvasObject
	searchEntry *widget.Entry
	results     *fyne.Container
	status      *widget.Label
}

func newHomeScreen(a *App) *homeScreen {
	h := &homeScreen{
		app:     a,
		results: container.NewVBox(),
		status:  widget.NewLabel(""),
	}

	importFile := widget.NewButtonWithIcon("Import file", theme.FileIcon(), func() {
		dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
			if err != nil {
				a.ShowError("Import failed", err)
				return
			}
			if r == nil {
				return
			}
			path := r.URI().Path()
			r.Close()
			a.Open([]string{path})
		}, a.mainWindow)
	})

	importFolder := widget.NewButtonWithIcon("Import folder", theme.FolderOpenIcon(), func() {
		dialog.ShowFolderOpen(func(l fyne.ListableURI, err error) {
			if err != nil {
				a.ShowError("Import failed", err)
				return
			}
			if l == nil {
				return
			}
			files, err := folderContents(l.Path())
			if err != nil {
				a.ShowError("Import failed", err)
				return
			}
			a.Open(files)
		}, a.mainWindow)
	})

	h.searchEntry = widget.NewEntry()
	h.searchEntry.SetPlaceHolder("Search a title")
	h.searchEntry.OnSubmitted = func(title string) {
		go h.search(title)
	}
	if !a.cfg.Search.Enabled {
		h.searchEntry.Disable()
	}

	top := container.NewVBox(
		a.text("fiapo", 32),
		container.NewHBox(layout.NewSpacer(), importFile, importFolder, layout.NewSpacer()),
		h.searchEntry,
		h.status,
	)

	h.content = container.NewStack(
		canvas.NewRectangle(a.bgColor),
		container.NewBorder(top, nil, nil, nil, container.NewVScroll(h.results)),
	)
	return h
}

// search queries the catalog and lists the hits
func (h *homeScreen) search(title string) error {
	if title == "" {
		return nil
	}
	h.status.SetText(fmt.Sprintf("Searching %q...", title))

	hits, err := h.app.session.Search(context.Background(), title, coverSize)
	if err != nil {
		h.status.SetText(err.Error())
		h.results.RemoveAll()
		return err
	}

	h.status.SetText(fmt.Sprintf("%d result(s)", len(hits)))
	h.results.RemoveAll()
	for _, hit := range hits {
		h.results.Add(h.resultCard(hit))
	}
	return nil
}

func (h *homeScreen) resultCard(hit search.Hit) fyne.CanvasObject {
	var cover fyne.CanvasObject
	if hit.Cover != nil {
		img := canvas.NewImageFromImage(hit.Cover)
		img.FillMode = canvas.ImageFillContain
		img.SetMinSize(fyne.NewSize(128, 180))
		cover = img
	} else {
		cover = widget.NewIcon(theme.BrokenImageIcon())
	}

	details := container.NewVBox(
		widget.NewLabelWithStyle(hit.EnglishTitle, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel(hit.RomajiTitle),
		widget.NewLabel("Author: "+hit.Author),
		widget.NewLabel("Artist: "+hit.Artist),
	)
	return container.NewBorder(nil, nil, cover, nil, details)
}
