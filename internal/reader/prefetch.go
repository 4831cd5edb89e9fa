package reader

import (
	"fiapo/internal/log"
	"fiapo/internal/source"
)

// job is one page the prefetcher renders beyond anchor, the window edge
// it saw when the job was taken.
type job struct {
	gen    uint64
	rev    uint64
	dir    Direction
	anchor slot
}

// scheduleLocked starts the prefetch goroutine unless it is running. It
// picks up the latest window state on every iteration. Callers hold mu.
func (s *Server) scheduleLocked() {
	if s.running {
		return
	}
	s.running = true
	go s.prefetchLoop()
}

// Wait blocks until the prefetch goroutine is idle
func (s *Server) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.running {
		s.idle.Wait()
	}
}

func (s *Server) prefetchLoop() {
	for {
		s.mu.Lock()
		j, ok := s.nextJobLocked()
		if !ok {
			s.running = false
			s.idle.Broadcast()
			s.mu.Unlock()
			return
		}
		seq := s.seq
		s.mu.Unlock()

		// mu is not held while decoding; the window may move meanwhile.
		// A job taken before the window last changed is taken again from
		// the new edge instead.
		var rendered slot
		var got bool
		s.renderMu.Lock()
		fresh := s.gen.Load() == j.gen && s.window.rev.Load() == j.rev
		if fresh {
			rendered, got = renderJob(seq, j)
		}
		s.renderMu.Unlock()
		if !fresh {
			log.LogWithFields(log.F("direction", j.dir.String())).Debug("Retaking prefetch job after the window moved")
			continue
		}

		s.mu.Lock()
		s.applyLocked(j, rendered, got)
		s.mu.Unlock()
	}
}

// nextJobLocked returns the next page to prefetch in the direction of the
// last turn, if that side holds fewer than depth pages.
func (s *Server) nextJobLocked() (job, bool) {
	if s.seq == nil || s.window.len() == 0 {
		return job{}, false
	}
	j := job{gen: s.gen.Load(), rev: s.window.rev.Load(), dir: s.lastDir}
	if s.lastDir == Next {
		if s.tailDone || s.ahead() >= s.depth {
			return job{}, false
		}
		j.anchor = s.window.tail()
	} else {
		if s.headDone || s.behind() >= s.depth {
			return job{}, false
		}
		j.anchor = s.window.head()
	}
	return j, true
}

func renderJob(seq *source.Sequencer, j job) (slot, bool) {
	if j.dir == Next {
		return renderFrom(seq, j.anchor.src, j.anchor.local+1)
	}
	return renderBefore(seq, j.anchor.src, j.anchor.local)
}

// applyLocked adds a prefetched page if the session and the window edge
// are unchanged since the job was taken; stale results are dropped.
// Callers hold mu.
func (s *Server) applyLocked(j job, rendered slot, got bool) {
	if j.gen != s.gen.Load() || s.window.len() == 0 {
		log.LogWithFields(log.F("direction", j.dir.String())).Debug("Dropping prefetched page of a replaced session")
		return
	}

	edge := s.window.tail()
	if j.dir == Prev {
		edge = s.window.head()
	}
	if edge.src == j.anchor.src && edge.local == j.anchor.local {
		s.pushLocked(j.dir, rendered, got)
	}

	s.renderMu.Lock()
	s.releaseIdleLocked()
	s.renderMu.Unlock()
}

func (s *Server) pushLocked(dir Direction, rendered slot, got bool) {
	switch {
	case !got && dir == Next:
		s.tailDone = true
	case !got:
		s.headDone = true
	case dir == Next:
		s.window.pushBack(rendered)
	default:
		s.window.pushFront(rendered)
		s.cursor++
	}
	s.trimLocked()
}
