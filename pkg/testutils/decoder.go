package testutils

import (
	"fmt"
	"image"
	"path/filepath"
	"sync"
	"time"

	"fiapo/internal/decoder"
	"fiapo/internal/errors"
)

// PageImage is the image a FakeDecoder renders. It remembers where it came
// from so tests can assert navigation order.
type PageImage struct {
	*image.Gray
	Path  string
	Index int
}

// ID returns "<file name>#<index>"
func (p *PageImage) ID() string {
	return fmt.Sprintf("%s#%d", filepath.Base(p.Path), p.Index)
}

// PageID returns the ID of a FakeDecoder image, or "" for anything else
func PageID(img image.Image) string {
	if p, ok := img.(*PageImage); ok {
		return p.ID()
	}
	return ""
}

type fakeDoc struct {
	pages  int
	failed map[int]bool
}

// FakeDecoder is an in-memory decoder.Decoder that keeps open/close
// accounting per path.
type FakeDecoder struct {
	mu      sync.Mutex
	docs    map[string]*fakeDoc
	opens   map[string]int
	closes  map[string]int
	openNow map[string]int
	maxOpen int
	renders int
	delay   time.Duration
}

// NewFakeDecoder creates an empty fake decoder
func NewFakeDecoder() *FakeDecoder {
	return &FakeDecoder{
		docs:    make(map[string]*fakeDoc),
		opens:   make(map[string]int),
		closes:  make(map[string]int),
		openNow: make(map[string]int),
	}
}

// Add registers a document with pages pages. Rendering any of failPages
// fails with RenderFailed.
func (f *FakeDecoder) Add(path string, pages int, failPages ...int) *FakeDecoder {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc := &fakeDoc{pages: pages, failed: make(map[int]bool)}
	for _, p := range failPages {
		doc.failed[p] = true
	}
	f.docs[path] = doc
	return f
}

// Remove forgets path so later opens fail as if the file was deleted
func (f *FakeDecoder) Remove(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, path)
}

// SetDelay makes every render sleep for d
func (f *FakeDecoder) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

// Open implements decoder.Decoder
func (f *FakeDecoder) Open(path string) (decoder.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, ok := f.docs[path]
	if !ok {
		return nil, errors.NewDecodeError("cannot open document", path, -1, errors.Unreadable, nil)
	}
	f.opens[path]++
	f.openNow[path]++
	if n := f.openCountLocked(); n > f.maxOpen {
		f.maxOpen = n
	}
	return &fakeHandle{f: f, path: path, doc: doc}, nil
}

// Opens returns how many times path was opened
func (f *FakeDecoder) Opens(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens[path]
}

// Closes returns how many times a handle for path was closed
func (f *FakeDecoder) Closes(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes[path]
}

// IsOpen reports whether a handle for path is currently open
func (f *FakeDecoder) IsOpen(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.openNow[path] > 0
}

// OpenCount returns the number of handles currently open
func (f *FakeDecoder) OpenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.openCountLocked()
}

// MaxOpen returns the highest number of simultaneously open handles seen
func (f *FakeDecoder) MaxOpen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxOpen
}

// Renders returns the number of render calls
func (f *FakeDecoder) Renders() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.renders
}

func (f *FakeDecoder) openCountLocked() int {
	n := 0
	for _, c := range f.openNow {
		n += c
	}
	return n
}

type fakeHandle struct {
	f      *FakeDecoder
	path   string
	doc    *fakeDoc
	closed bool
}

func (h *fakeHandle) PageCount() int {
	return h.doc.pages
}

func (h *fakeHandle) Render(index int) (image.Image, error) {
	h.f.mu.Lock()
	h.f.renders++
	delay := h.f.delay
	h.f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if h.closed {
		return nil, errors.NewDecodeError("render on closed handle", h.path, index, errors.RenderFailed, nil)
	}
	if index < 0 || index >= h.doc.pages || h.doc.failed[index] {
		return nil, errors.NewDecodeError("cannot render page", h.path, index, errors.RenderFailed, nil)
	}
	return &PageImage{Gray: image.NewGray(image.Rect(0, 0, 2, 3)), Path: h.path, Index: index}, nil
}

func (h *fakeHandle) Close() error {
	h.f.mu.Lock()
	defer h.f.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	h.f.closes[h.path]++
	h.f.openNow[h.path]--
	return nil
}
