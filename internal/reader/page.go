package reader

import "image"

// Direction of a page turn
type Direction int

const (
	Next Direction = iota
	Prev
)

func (d Direction) String() string {
	if d == Prev {
		return "prev"
	}
	return "next"
}

// Page is a decoded page handed to the UI. It is never modified after it
// enters the window.
type Page struct {
	Image  image.Image
	Number int // 1-based position in the session
}
