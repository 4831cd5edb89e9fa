package source

import (
	"sort"

	"fiapo/internal/log"
)

// Sequencer orders Sources by file name and addresses their pages as one
// continuous sequence of 0-based global indices.
type Sequencer struct {
	sources []*Source
	offsets []int // global index of each source's first page
	total   int
}

// NewSequencer sorts sources by case-sensitive file name, keeping input
// order among equal names. Sources without pages are dropped.
func NewSequencer(sources []*Source) *Sequencer {
	kept := make([]*Source, 0, len(sources))
	for _, s := range sources {
		if s == nil {
			continue
		}
		if s.PageCount() <= 0 {
			log.LogWithFields(log.F("path", s.Path())).Warn("Dropping source without pages")
			s.Close()
			continue
		}
		kept = append(kept, s)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Name() < kept[j].Name()
	})

	seq := &Sequencer{sources: kept, offsets: make([]int, len(kept))}
	for i, s := range kept {
		seq.offsets[i] = seq.total
		seq.total += s.PageCount()
	}
	return seq
}

// Sources returns the ordered sources
func (q *Sequencer) Sources() []*Source { return q.sources }

// Len returns the number of sources
func (q *Sequencer) Len() int { return len(q.sources) }

// Source returns the source at i, or nil
func (q *Sequencer) Source(i int) *Source {
	if i < 0 || i >= len(q.sources) {
		return nil
	}
	return q.sources[i]
}

// TotalPages returns the sum of all page counts
func (q *Sequencer) TotalPages() int { return q.total }

// Locate maps a global index to a source index and a local page index
func (q *Sequencer) Locate(global int) (src, local int, ok bool) {
	if global < 0 || global >= q.total {
		return 0, 0, false
	}
	// First source starting after global, minus one
	src = sort.Search(len(q.offsets), func(i int) bool {
		return q.offsets[i] > global
	}) - 1
	return src, global - q.offsets[src], true
}

// Global maps a source index and local page index to a global index, or -1
func (q *Sequencer) Global(src, local int) int {
	if src < 0 || src >= len(q.sources) || local < 0 || local >= q.sources[src].PageCount() {
		return -1
	}
	return q.offsets[src] + local
}

// Close releases every source's decoder handle
func (q *Sequencer) Close() {
	for _, s := range q.sources {
		s.Close()
	}
}
