package decoder

import (
	"image"

	"github.com/gen2brain/go-fitz"

	"fiapo/internal/errors"
	"fiapo/internal/log"
)

// DefaultDPI is the render resolution used when none is configured
const DefaultDPI = 150

// Fitz decodes PDF, EPUB, XPS, CBZ, FB2 and MOBI documents through MuPDF
type Fitz struct {
	dpi float64
}

// NewFitz creates a MuPDF backed decoder rendering at dpi
func NewFitz(dpi float64) *Fitz {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Fitz{dpi: dpi}
}

// Open opens the document at path
func (f *Fitz) Open(path string) (Handle, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, errors.NewDecodeError("cannot open document", path, -1, errors.Unreadable, err)
	}

	log.LogWithFields(log.F("path", path), log.F("pages", doc.NumPage())).Debug("Document opened")
	return &fitzHandle{doc: doc, path: path, dpi: f.dpi}, nil
}

// fitzHandle is not safe for concurrent use; callers serialize renders.
type fitzHandle struct {
	doc  *fitz.Document
	path string
	dpi  float64
}

func (h *fitzHandle) PageCount() int {
	return h.doc.NumPage()
}

func (h *fitzHandle) Render(index int) (image.Image, error) {
	if index < 0 || index >= h.doc.NumPage() {
		return nil, errors.NewDecodeError("page out of range", h.path, index, errors.RenderFailed, nil)
	}
	img, err := h.doc.ImageDPI(index, h.dpi)
	if err != nil {
		return nil, errors.NewDecodeError("cannot render page", h.path, index, errors.RenderFailed, err)
	}
	return img, nil
}

func (h *fitzHandle) Close() error {
	log.LogWithFields(log.F("path", h.path)).Debug("Document closed")
	return h.doc.Close()
}
