package reader

import (
	"image"
	"sync/atomic"

	"fiapo/internal/source"
)

// slot is a window entry and the position it was rendered from
type slot struct {
	page  *Page
	src   int
	local int
}

// window is a deque of slots in reading order. rev changes on every
// mutation and may be read without the Server's mu.
type window struct {
	slots []slot
	rev   atomic.Uint64
}

func newWindow(capacity int) *window {
	return &window{slots: make([]slot, 0, capacity+1)}
}

func (w *window) len() int { return len(w.slots) }

func (w *window) at(i int) slot { return w.slots[i] }

func (w *window) head() slot { return w.slots[0] }

func (w *window) tail() slot { return w.slots[len(w.slots)-1] }

func (w *window) pushBack(s slot) {
	w.slots = append(w.slots, s)
	w.rev.Add(1)
}

func (w *window) pushFront(s slot) {
	w.slots = append(w.slots, slot{})
	copy(w.slots[1:], w.slots)
	w.slots[0] = s
	w.rev.Add(1)
}

func (w *window) popBack() {
	w.slots[len(w.slots)-1] = slot{}
	w.slots = w.slots[:len(w.slots)-1]
	w.rev.Add(1)
}

// reset drops every page so the images can be collected
func (w *window) reset() {
	clear(w.slots)
	w.slots = w.slots[:0]
	w.rev.Add(1)
}

func (w *window) popFront() {
	copy(w.slots, w.slots[1:])
	w.slots[len(w.slots)-1] = slot{}
	w.slots = w.slots[:len(w.slots)-1]
	w.rev.Add(1)
}

// renderFrom renders the first page at or after local in source src,
// crossing into later sources when src has nothing left.
func renderFrom(seq *source.Sequencer, src, local int) (slot, bool) {
	for i := src; i < seq.Len(); i++ {
		s := seq.Source(i)
		if i == src {
			s.SetCursor(local)
		} else {
			s.SetCursor(0)
		}
		if index, img, ok := s.RenderNext(); ok {
			return newSlot(seq, i, index, img), true
		}
	}
	return slot{}, false
}

// renderBefore renders the last page before local in source src, crossing
// into earlier sources when src has nothing left.
func renderBefore(seq *source.Sequencer, src, local int) (slot, bool) {
	for i := src; i >= 0; i-- {
		s := seq.Source(i)
		if i == src {
			s.SetCursor(local)
		} else {
			s.SetCursor(s.PageCount())
		}
		if index, img, ok := s.RenderPrev(); ok {
			return newSlot(seq, i, index, img), true
		}
	}
	return slot{}, false
}

func newSlot(seq *source.Sequencer, src, local int, img image.Image) slot {
	return slot{
		page:  &Page{Image: img, Number: seq.Global(src, local) + 1},
		src:   src,
		local: local,
	}
}
