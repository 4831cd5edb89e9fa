// Package source holds the documents of a reading session. A Source renders
// its own pages in either direction and owns at most one decoder handle; a
// Sequencer orders Sources and maps global page numbers onto them.
package source

import (
	"image"
	"path/filepath"

	"fiapo/internal/decoder"
	"fiapo/internal/errors"
	"fiapo/internal/log"
)

// Source is one document contributing pages to a session.
//
// The cursor sits between pages: pages [0, cursor) are behind it and
// [cursor, PageCount) ahead. A Source is not safe for concurrent use.
type Source struct {
	kind      Kind
	path      string
	name      string
	pageCount int
	cursor    int
	dec       decoder.Decoder
	handle    decoder.Handle
}

// New opens path once to count its pages. The handle stays open when
// keepOpen is set and is released otherwise. A document that cannot be
// opened returns an Unreadable error; an empty one returns a Source with
// no pages.
func New(kind Kind, path string, dec decoder.Decoder, keepOpen bool) (*Source, error) {
	if kind == Directory {
		return nil, errors.NewDecodeError("directories are not supported", path, -1, errors.Unreadable, nil)
	}

	s := &Source{
		kind: kind,
		path: path,
		name: filepath.Base(path),
		dec:  dec,
	}
	if err := s.Open(); err != nil {
		return nil, err
	}
	s.pageCount = s.handle.PageCount()
	if s.pageCount < 0 {
		s.pageCount = 0
	}
	if !keepOpen || s.pageCount == 0 {
		s.release()
	}
	return s, nil
}

// Kind returns the source kind
func (s *Source) Kind() Kind { return s.kind }

// Path returns the file the pages come from
func (s *Source) Path() string { return s.path }

// Name returns the file name used for ordering
func (s *Source) Name() string { return s.name }

// PageCount returns the number of pages counted at construction
func (s *Source) PageCount() int { return s.pageCount }

// Cursor returns the position of the next page RenderNext would produce
func (s *Source) Cursor() int { return s.cursor }

// IsOpen reports whether the decoder handle is held
func (s *Source) IsOpen() bool { return s.handle != nil }

// Open acquires the decoder handle. It does nothing if the handle is held.
func (s *Source) Open() error {
	if s.handle != nil {
		return nil
	}
	h, err := s.dec.Open(s.path)
	if err != nil {
		if errors.IsUnreadable(err) {
			return err
		}
		return errors.NewDecodeError("cannot open document", s.path, -1, errors.Unreadable, err)
	}
	s.handle = h
	return nil
}

// SetCursor moves the cursor, clamped to [0, PageCount]
func (s *Source) SetCursor(cursor int) {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > s.pageCount {
		cursor = s.pageCount
	}
	s.cursor = cursor
}

// RenderNext renders the page at the cursor and advances past it. Pages
// that fail to render are logged and skipped. ok is false when no page is
// left ahead; the handle is released once the cursor reaches the end.
func (s *Source) RenderNext() (index int, img image.Image, ok bool) {
	for s.cursor < s.pageCount {
		if err := s.Open(); err != nil {
			log.LogWithError(err).Warn("Source cannot be reopened")
			return 0, nil, false
		}

		index = s.cursor
		page, err := s.handle.Render(index)
		s.cursor++
		if s.cursor == s.pageCount {
			s.release()
		}
		if err != nil {
			log.LogWithError(err).Warn("Skipping page")
			continue
		}
		return index, page, true
	}
	s.release()
	return 0, nil, false
}

// RenderPrev renders the page before the cursor and moves back over it.
// It mirrors RenderNext, releasing the handle once the cursor reaches 0.
func (s *Source) RenderPrev() (index int, img image.Image, ok bool) {
	for s.cursor > 0 {
		if err := s.Open(); err != nil {
			log.LogWithError(err).Warn("Source cannot be reopened")
			return 0, nil, false
		}

		index = s.cursor - 1
		page, err := s.handle.Render(index)
		s.cursor--
		if s.cursor == 0 {
			s.release()
		}
		if err != nil {
			log.LogWithError(err).Warn("Skipping page")
			continue
		}
		return index, page, true
	}
	s.release()
	return 0, nil, false
}

// Close releases the decoder handle. The Source stays usable and reopens
// on the next render.
func (s *Source) Close() {
	s.release()
}

func (s *Source) release() {
	if s.handle == nil {
		return
	}
	if err := s.handle.Close(); err != nil {
		log.LogWithFields(log.F("path", s.path), log.F("error", err.Error())).Warn("Closing decoder handle failed")
	}
	s.handle = nil
}
