//go:build !nogui
// +build !nogui

package gui

import (
	"fmt"
	"strconv"

	"fiapo/internal/reader"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

type readerScreen struct {
	app       *App
	content   fyne.CanvasObject
	image     *canvas.Image
	indicator *canvas.Text
	status    *widget.Label
	jump      *widget.Entry
}

func newReaderScreen(a *App) *readerScreen {
	r := &readerScreen{
		app:       a,
		image:     &canvas.Image{FillMode: canvas.ImageFillContain},
		indicator: a.text("", 16),
		status:    widget.NewLabel(""),
		jump:      widget.NewEntry(),
	}
	r.indicator.Hidden = !a.cfg.Reader.ShowBottomIndicator

	r.jump.SetPlaceHolder("Page")
	r.jump.OnSubmitted = func(s string) {
		number, err := strconv.Atoi(s)
		if err != nil {
			r.setStatus(fmt.Sprintf("not a page number: %s", s))
			return
		}
		r.jump.SetText("")
		a.JumpTo(number)
	}

	leftDir, rightDir := reader.Prev, reader.Next
	if a.nextIsLeft {
		leftDir, rightDir = reader.Next, reader.Prev
	}
	left := widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() { a.Turn(leftDir) })
	right := widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() { a.Turn(rightDir) })

	top := container.NewHBox(
		widget.NewButtonWithIcon("Back", theme.HomeIcon(), a.Back),
		widget.NewButtonWithIcon("Reload", theme.ViewRefreshIcon(), a.Reload),
		layout.NewSpacer(),
		r.status,
	)
	bottom := container.NewBorder(nil, nil, left, container.NewHBox(r.jump, right), r.indicator)

	r.content = container.NewStack(
		canvas.NewRectangle(a.bgColor),
		container.NewBorder(top, bottom, nil, nil, r.image),
	)
	return r
}

// show displays page, or nothing when page is nil
func (r *readerScreen) show(page *reader.Page) {
	if page == nil {
		r.image.Image = nil
		r.indicator.Text = ""
	} else {
		r.image.Image = page.Image
		_, total := r.app.session.Progress()
		r.indicator.Text = fmt.Sprintf("%d / %d", page.Number, total)
	}
	r.image.Refresh()
	r.indicator.Refresh()
}

func (r *readerScreen) setStatus(s string) {
	r.status.SetText(s)
}
