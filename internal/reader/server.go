// Package reader holds the live reading session: a bounded window of
// decoded pages around the current position that slides across document
// boundaries as the reader turns pages.
package reader

import (
	"fmt"
	"sync"
	"sync/atomic"

	"fiapo/internal/errors"
	"fiapo/internal/log"
	"fiapo/internal/source"
)

// DefaultDepth is the number of pages kept on each side of the current one
const DefaultDepth = 2

// Server owns one session and its page window. The window holds at most
// 2*depth+1 pages.
//
// mu guards the session; renderMu serializes every call into a Source.
// Whoever needs both takes mu first.
type Server struct {
	mu       sync.Mutex
	renderMu sync.Mutex
	idle     *sync.Cond

	depth    int
	prefetch bool

	seq    *source.Sequencer
	total  int
	window *window
	cursor int
	gen    atomic.Uint64

	lastDir  Direction
	headDone bool // nothing renders before the head slot
	tailDone bool // nothing renders after the tail slot
	running  bool // prefetch goroutine active
}

// Option configures a Server
type Option func(*Server)

// WithDepth sets how many pages are buffered ahead of and behind the
// current page.
func WithDepth(depth int) Option {
	return func(s *Server) {
		if depth >= 0 {
			s.depth = depth
		}
	}
}

// WithPrefetch moves window replenishment to a background goroutine
func WithPrefetch(prefetch bool) Option {
	return func(s *Server) { s.prefetch = prefetch }
}

// NewServer creates a Server with no session loaded
func NewServer(opts ...Option) *Server {
	s := &Server{depth: DefaultDepth}
	for _, opt := range opts {
		opt(s)
	}
	s.idle = sync.NewCond(&s.mu)
	s.window = newWindow(s.capacity())
	return s
}

// Depth returns the look-ahead/behind depth
func (s *Server) Depth() int { return s.depth }

func (s *Server) capacity() int { return 2*s.depth + 1 }

// SetSources replaces the session. Handles of the previous session are
// released and the first page plus up to depth pages ahead are rendered
// before it returns; with prefetch only the first page is. total is used
// for progress only; zero means the sum of the sources' page counts.
func (s *Server) SetSources(sources []*source.Source, total int) {
	seq := source.NewSequencer(sources)
	if total <= 0 {
		total = seq.TotalPages()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.seq
	s.gen.Add(1)
	s.seq = seq
	s.total = total
	s.clearLocked()
	s.lastDir = Next

	s.renderMu.Lock()
	if old != nil {
		old.Close()
	}
	if seq.Len() > 0 {
		if first, ok := renderFrom(seq, 0, 0); ok {
			s.window.pushBack(first)
			if !s.prefetch {
				s.fillLocked(Next)
			}
			s.releaseIdleLocked()
		} else {
			log.LogWithFields(log.F("sources", seq.Len())).Warn("No page of the session could be rendered")
		}
	}
	s.renderMu.Unlock()

	if s.prefetch && s.window.len() > 0 {
		s.scheduleLocked()
	}

	log.LogWithFields(
		log.F("sources", seq.Len()),
		log.F("pages", total),
		log.F("buffered", s.window.len()),
	).Debug("Session loaded")
}

// Reset drops the session and releases every handle
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.seq
	s.gen.Add(1)
	s.seq = nil
	s.total = 0
	s.clearLocked()

	if old != nil {
		s.renderMu.Lock()
		old.Close()
		s.renderMu.Unlock()
	}
}

func (s *Server) clearLocked() {
	s.window.reset()
	s.cursor = 0
	s.headDone = false
	s.tailDone = false
}

// Current returns the page at the window cursor
func (s *Server) Current() (*Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.window.len() == 0 {
		return nil, false
	}
	return s.window.at(s.cursor).page, true
}

// Next turns to the following page. At the end of the session it returns
// the same page again. It returns false only when no page is loaded.
func (s *Server) Next() (*Page, bool) {
	return s.step(Next)
}

// Prev turns to the preceding page, mirroring Next
func (s *Server) Prev() (*Page, bool) {
	return s.step(Prev)
}

// Navigate turns one page in dir
func (s *Server) Navigate(dir Direction) (*Page, bool) {
	return s.step(dir)
}

func (s *Server) step(dir Direction) (*Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.window.len() == 0 {
		return nil, false
	}
	s.lastDir = dir
	head, tail := s.window.head().src, s.window.tail().src

	// The neighbour is rendered on the spot when it is not buffered yet
	if !s.hasNeighborLocked(dir) {
		s.renderMu.Lock()
		s.extendLocked(dir)
		s.renderMu.Unlock()
	}
	if s.hasNeighborLocked(dir) {
		if dir == Next {
			s.cursor++
		} else {
			s.cursor--
		}
		s.trimLocked()
	}

	if s.prefetch {
		// An edge that left a source leaves its handle to close
		if s.window.head().src != head || s.window.tail().src != tail {
			s.renderMu.Lock()
			s.releaseIdleLocked()
			s.renderMu.Unlock()
		}
		s.scheduleLocked()
	} else {
		s.renderMu.Lock()
		s.fillLocked(dir)
		s.releaseIdleLocked()
		s.renderMu.Unlock()
	}

	return s.window.at(s.cursor).page, true
}

// JumpTo discards the window and refills it around the 1-based page
// number. Numbers outside the session fail with InvalidPage and leave the
// session untouched.
func (s *Server) JumpTo(number int) (*Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq == nil || number < 1 || number > s.seq.TotalPages() {
		return nil, errors.NewSessionError(fmt.Sprintf("page %d is out of range", number), errors.InvalidPage, nil)
	}
	src, local, _ := s.seq.Locate(number - 1)

	s.gen.Add(1)
	s.clearLocked()
	s.lastDir = Next

	s.renderMu.Lock()
	s.closeOthersLocked(src)
	first, ok := renderFrom(s.seq, src, local)
	if !ok {
		first, ok = renderBefore(s.seq, src, local)
	}
	if !ok {
		s.renderMu.Unlock()
		return nil, errors.NewDecodeError("no page renders from here", s.seq.Source(src).Path(), local, errors.RenderFailed, nil)
	}
	s.window.pushBack(first)
	if !s.prefetch {
		s.fillLocked(Next)
		s.fillLocked(Prev)
	}
	s.releaseIdleLocked()
	s.renderMu.Unlock()

	if s.prefetch {
		s.scheduleLocked()
	}
	return s.window.at(s.cursor).page, nil
}

// Progress returns the 1-based number of the current page and the total
// page count of the session. Both are 0 without a session.
func (s *Server) Progress() (current, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.window.len() == 0 {
		return 0, s.total
	}
	return s.window.at(s.cursor).page.Number, s.total
}

// Buffered returns the number of decoded pages held
func (s *Server) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.len()
}

func (s *Server) hasNeighborLocked(dir Direction) bool {
	if dir == Next {
		return s.cursor+1 < s.window.len()
	}
	return s.cursor > 0
}

func (s *Server) ahead() int  { return s.window.len() - 1 - s.cursor }
func (s *Server) behind() int { return s.cursor }

// fillLocked renders until depth pages are buffered in dir or the session
// ends. Callers hold mu and renderMu.
func (s *Server) fillLocked(dir Direction) {
	for {
		if dir == Next && s.ahead() >= s.depth {
			return
		}
		if dir == Prev && s.behind() >= s.depth {
			return
		}
		if !s.extendLocked(dir) {
			return
		}
		s.trimLocked()
	}
}

// extendLocked renders one page beyond the window edge in dir. Callers
// hold mu and renderMu.
func (s *Server) extendLocked(dir Direction) bool {
	if dir == Next {
		if s.tailDone {
			return false
		}
		tail := s.window.tail()
		next, ok := renderFrom(s.seq, tail.src, tail.local+1)
		if !ok {
			s.tailDone = true
			return false
		}
		s.window.pushBack(next)
		return true
	}

	if s.headDone {
		return false
	}
	head := s.window.head()
	prev, ok := renderBefore(s.seq, head.src, head.local)
	if !ok {
		s.headDone = true
		return false
	}
	s.window.pushFront(prev)
	s.cursor++
	return true
}

// trimLocked evicts from whichever side holds more than depth pages until
// the window fits its capacity. The current slot is never evicted.
func (s *Server) trimLocked() {
	for s.window.len() > s.capacity() {
		if s.behind() > s.depth {
			s.window.popFront()
			s.cursor--
			s.headDone = false
		} else {
			s.window.popBack()
			s.tailDone = false
		}
	}
}

// releaseIdleLocked closes the handles of sources the window edges do not
// touch, so at most two are open. Callers hold mu and renderMu.
func (s *Server) releaseIdleLocked() {
	if s.seq == nil || s.window.len() == 0 {
		return
	}
	head, tail := s.window.head().src, s.window.tail().src
	for i, src := range s.seq.Sources() {
		if i != head && i != tail && src.IsOpen() {
			src.Close()
		}
	}
}

// closeOthersLocked closes every handle but that of source keep. Callers
// hold mu and renderMu.
func (s *Server) closeOthersLocked(keep int) {
	for i, src := range s.seq.Sources() {
		if i != keep && src.IsOpen() {
			src.Close()
		}
	}
}
