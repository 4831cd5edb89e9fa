package reader

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"fiapo/internal/errors"
	"fiapo/internal/source"
	"fiapo/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// doc is a fake document: a name and a page count, plus pages that fail
type doc struct {
	name   string
	pages  int
	failed []int
}

func load(t *testing.T, dec *testutils.FakeDecoder, docs ...doc) []*source.Source {
	t.Helper()
	sources := make([]*source.Source, 0, len(docs))
	for _, d := range docs {
		path := "/books/" + d.name
		dec.Add(path, d.pages, d.failed...)
		s, err := source.New(source.Document, path, dec, false)
		require.NoError(t, err)
		sources = append(sources, s)
	}
	return sources
}

func id(p *Page) string {
	if p == nil {
		return ""
	}
	return testutils.PageID(p.Image)
}

// ids lists the window contents, for white-box assertions
func (s *Server) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, s.window.len())
	for i := 0; i < s.window.len(); i++ {
		out = append(out, testutils.PageID(s.window.at(i).page.Image))
	}
	return out
}

// walk turns n pages in dir and returns the ids shown
func walk(t *testing.T, srv *Server, dir Direction, n int) []string {
	t.Helper()
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		p, ok := srv.Navigate(dir)
		require.True(t, ok)
		out = append(out, id(p))
		assert.LessOrEqual(t, srv.Buffered(), 2*srv.Depth()+1)
	}
	return out
}

func TestEmptySession(t *testing.T) {
	srv := NewServer()

	p, ok := srv.Next()
	assert.Nil(t, p)
	assert.False(t, ok)

	srv.SetSources(nil, 0)
	for i := 0; i < 3; i++ {
		_, ok = srv.Next()
		assert.False(t, ok)
		_, ok = srv.Prev()
		assert.False(t, ok)
	}
	_, ok = srv.Current()
	assert.False(t, ok)

	current, total := srv.Progress()
	assert.Equal(t, 0, current)
	assert.Equal(t, 0, total)
}

func TestSinglePageSession(t *testing.T) {
	dec := testutils.NewFakeDecoder()
	srv := NewServer()
	srv.SetSources(load(t, dec, doc{"only.pdf", 1, nil}), 1)

	assert.Equal(t, 1, srv.Buffered())
	for i := 0; i < 4; i++ {
		p, ok := srv.Next()
		require.True(t, ok)
		assert.Equal(t, "only.pdf#0", id(p))
		p, ok = srv.Prev()
		require.True(t, ok)
		assert.Equal(t, "only.pdf#0", id(p))
	}
	assert.Equal(t, 1, srv.Buffered())
	assert.Equal(t, 2, dec.Opens("/books/only.pdf"), "opened to count and to render, never again")
}

func TestInitialFill(t *testing.T) {
	dec := testutils.NewFakeDecoder()
	srv := NewServer(WithDepth(2))
	srv.SetSources(load(t, dec, doc{"a.pdf", 10, nil}), 0)

	p, ok := srv.Current()
	require.True(t, ok)
	assert.Equal(t, "a.pdf#0", id(p))
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, []string{"a.pdf#0", "a.pdf#1", "a.pdf#2"}, srv.ids())

	current, total := srv.Progress()
	assert.Equal(t, 1, current)
	assert.Equal(t, 10, total)
}

func TestSeamlessCrossing(t *testing.T) {
	dec := testutils.NewFakeDecoder()
	srv := NewServer()
	srv.SetSources(load(t, dec, doc{"a.pdf", 3, nil}, doc{"b.pdf", 2, nil}), 5)

	got := walk(t, srv, Next, 6)
	assert.Equal(t, []string{"a.pdf#1", "a.pdf#2", "b.pdf#0", "b.pdf#1", "b.pdf#1", "b.pdf#1"}, got)

	current, total := srv.Progress()
	assert.Equal(t, 5, current)
	assert.Equal(t, 5, total)
}

func TestSortedOrder(t *testing.T) {
	dec := testutils.NewFakeDecoder()
	srv := NewServer()
	srv.SetSources(load(t, dec, doc{"b.pdf", 2, nil}, doc{"a.pdf", 2, nil}), 4)

	p, ok := srv.Current()
	require.True(t, ok)
	assert.Equal(t, "a.pdf#0", id(p))
	assert.Equal(t, []string{"a.pdf#1", "b.pdf#0", "b.pdf#1"}, walk(t, srv, Next, 3))
}

func TestFirstPagePrevIsNoop(t *testing.T) {
	dec := testutils.NewFakeDecoder()
	srv := NewServer()
	srv.SetSources(load(t, dec, doc{"a.pdf", 4, nil}), 4)

	assert.Equal(t, []string{"a.pdf#0", "a.pdf#0"}, walk(t, srv, Prev, 2))
	assert.Equal(t, []string{"a.pdf#1"}, walk(t, srv, Next, 1))
	assert.Equal(t, []string{"a.pdf#0", "a.pdf#0"}, walk(t, srv, Prev, 2))
}

func TestRoundTrip(t *testing.T) {
	dec := testutils.NewFakeDecoder()
	srv := NewServer()
	srv.SetSources(load(t, dec, doc{"a.pdf", 4, nil}, doc{"b.pdf", 1, nil}, doc{"c.pdf", 3, nil}), 8)

	for i := 0; i < 6; i++ {
		before, _ := srv.Current()
		_, ok := srv.Next()
		require.True(t, ok)
		after, ok := srv.Prev()
		require.True(t, ok)
		assert.Equal(t, id(before), id(after), "round trip at page %d", before.Number)
		srv.Next()
	}
}

func TestFullWalkAcrossDepths(t *testing.T) {
	docs := []doc{{"a.pdf", 3, nil}, {"b.png", 1, nil}, {"c.png", 1, nil}, {"d.pdf", 4, nil}}

	var forward []string
	for _, d := range docs {
		for i := 0; i < d.pages; i++ {
			forward = append(forward, fmt.Sprintf("%s#%d", d.name, i))
		}
	}
	backward := make([]string, 0, len(forward))
	for i := len(forward) - 2; i >= 0; i-- {
		backward = append(backward, forward[i])
	}

	for _, depth := range []int{0, 1, 2, 3} {
		t.Run(fmt.Sprintf("depth %d", depth), func(t *testing.T) {
			dec := testutils.NewFakeDecoder()
			srv := NewServer(WithDepth(depth))
			srv.SetSources(load(t, dec, docs...), 0)

			assert.Equal(t, forward[1:], walk(t, srv, Next, len(forward)-1))
			assert.Equal(t, backward, walk(t, srv, Prev, len(forward)-1))
			assert.LessOrEqual(t, dec.MaxOpen(), 2)
		})
	}
}

func TestWindowEviction(t *testing.T) {
	dec := testutils.NewFakeDecoder()
	srv := NewServer(WithDepth(1))
	srv.SetSources(load(t, dec, doc{"a.pdf", 6, nil}), 6)

	assert.Equal(t, []string{"a.pdf#0", "a.pdf#1"}, srv.ids())
	walk(t, srv, Next, 3)
	assert.Equal(t, []string{"a.pdf#2", "a.pdf#3", "a.pdf#4"}, srv.ids())

	renders := dec.Renders()
	walk(t, srv, Prev, 1)
	assert.Equal(t, []string{"a.pdf#1", "a.pdf#2", "a.pdf#3"}, srv.ids())
	assert.Equal(t, renders+1, dec.Renders(), "evicted pages cost a decode")
}

func TestDroppedSources(t *testing.T) {
	dec := testutils.NewFakeDecoder()
	srv := NewServer()
	srv.SetSources(load(t, dec, doc{"empty.pdf", 0, nil}, doc{"a.pdf", 3, nil}), 0)

	_, total := srv.Progress()
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"a.pdf#1", "a.pdf#2", "a.pdf#2"}, walk(t, srv, Next, 3))
	assert.Equal(t, 1, dec.Opens("/books/empty.pdf"), "only opened to count pages")
}

func TestRenderFailureSkipsPage(t *testing.T) {
	dec := testutils.NewFakeDecoder()
	srv := NewServer()
	srv.SetSources(load(t, dec, doc{"a.pdf", 4, []int{1}}, doc{"b.pdf", 2, []int{0, 1}}, doc{"c.pdf", 1, nil}), 0)

	assert.Equal(t, []string{"a.pdf#2", "a.pdf#3", "c.pdf#0", "c.pdf#0"}, walk(t, srv, Next, 4))
	assert.Equal(t, []string{"a.pdf#3", "a.pdf#2", "a.pdf#0"}, walk(t, srv, Prev, 3))
}

func TestHandleDiscipline(t *testing.T) {
	dec := testutils.NewFakeDecoder()
	srv := NewServer()
	srv.SetSources(load(t, dec, doc{"a.pdf", 3, nil}, doc{"b.pdf", 6, nil}), 0)

	// a is rendered to its end by the initial fill and closed right away
	assert.Equal(t, []string{"a.pdf#0", "a.pdf#1", "a.pdf#2"}, srv.ids())
	assert.False(t, dec.IsOpen("/books/a.pdf"))
	assert.Equal(t, 2, dec.Closes("/books/a.pdf"), "closed after counting and after its last page")

	walk(t, srv, Next, 2)
	assert.True(t, dec.IsOpen("/books/b.pdf"))
	assert.False(t, dec.IsOpen("/books/a.pdf"))
	opens := dec.Opens("/books/a.pdf")

	walk(t, srv, Next, 4)
	assert.False(t, dec.IsOpen("/books/b.pdf"), "closed after its last page")
	assert.Equal(t, opens, dec.Opens("/books/a.pdf"), "a not reopened while reading b")
	assert.LessOrEqual(t, dec.MaxOpen(), 2)
}

func TestJumpTo(t *testing.T) {
	dec := testutils.NewFakeDecoder()
	srv := NewServer()
	srv.SetSources(load(t, dec, doc{"a.pdf", 3, nil}, doc{"b.pdf", 4, nil}), 7)

	p, err := srv.JumpTo(5)
	require.NoError(t, err)
	assert.Equal(t, "b.pdf#1", id(p))
	assert.Equal(t, 5, p.Number)
	assert.Equal(t, []string{"a.pdf#2", "b.pdf#0", "b.pdf#1", "b.pdf#2", "b.pdf#3"}, srv.ids())

	assert.Equal(t, []string{"b.pdf#0", "a.pdf#2", "a.pdf#1"}, walk(t, srv, Prev, 3))

	p, err = srv.JumpTo(1)
	require.NoError(t, err)
	assert.Equal(t, "a.pdf#0", id(p))

	for _, n := range []int{0, -1, 8} {
		_, err = srv.JumpTo(n)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidPage), "page %d", n)
	}
	current, _ := srv.Progress()
	assert.Equal(t, 1, current, "invalid jumps leave the session untouched")
	assert.LessOrEqual(t, dec.MaxOpen(), 2)

	_, err = NewServer().JumpTo(1)
	assert.True(t, errors.Is(err, errors.ErrInvalidPage))
}

func TestSetSourcesReplacesSession(t *testing.T) {
	dec := testutils.NewFakeDecoder()
	srv := NewServer()
	srv.SetSources(load(t, dec, doc{"a.pdf", 9, nil}), 0)
	walk(t, srv, Next, 3)
	require.True(t, dec.IsOpen("/books/a.pdf"))

	srv.SetSources(load(t, dec, doc{"z.pdf", 2, nil}), 0)
	assert.False(t, dec.IsOpen("/books/a.pdf"), "previous session released")

	p, ok := srv.Current()
	require.True(t, ok)
	assert.Equal(t, "z.pdf#0", id(p))
	assert.Equal(t, []string{"z.pdf#0", "z.pdf#1"}, srv.ids())
}

func TestReset(t *testing.T) {
	dec := testutils.NewFakeDecoder()
	srv := NewServer()
	srv.SetSources(load(t, dec, doc{"a.pdf", 9, nil}), 0)
	walk(t, srv, Next, 2)

	srv.Reset()
	assert.Equal(t, 0, dec.OpenCount())
	_, ok := srv.Next()
	assert.False(t, ok)
	assert.Equal(t, 0, srv.Buffered())
}

func TestPrefetch(t *testing.T) {
	docs := []doc{{"a.pdf", 4, nil}, {"b.pdf", 3, nil}}

	t.Run("fills in the background", func(t *testing.T) {
		dec := testutils.NewFakeDecoder()
		srv := NewServer(WithPrefetch(true))
		srv.SetSources(load(t, dec, docs...), 0)
		srv.Wait()
		assert.Equal(t, []string{"a.pdf#0", "a.pdf#1", "a.pdf#2"}, srv.ids())

		walk(t, srv, Next, 3)
		srv.Wait()
		assert.Equal(t, []string{"a.pdf#1", "a.pdf#2", "a.pdf#3", "b.pdf#0", "b.pdf#1"}, srv.ids())
		assert.LessOrEqual(t, dec.MaxOpen(), 2)
	})

	t.Run("order matches synchronous mode", func(t *testing.T) {
		dec := testutils.NewFakeDecoder()
		dec.SetDelay(time.Millisecond)
		srv := NewServer(WithPrefetch(true), WithDepth(1))
		srv.SetSources(load(t, dec, docs...), 0)

		assert.Equal(t, []string{"a.pdf#1", "a.pdf#2", "a.pdf#3", "b.pdf#0", "b.pdf#1", "b.pdf#2"}, walk(t, srv, Next, 6))
		assert.Equal(t, []string{"b.pdf#1", "b.pdf#0", "a.pdf#3"}, walk(t, srv, Prev, 3))
		srv.Wait()
		assert.LessOrEqual(t, srv.Buffered(), 3)
		assert.LessOrEqual(t, dec.MaxOpen(), 2)
	})

	t.Run("stale results are dropped", func(t *testing.T) {
		dec := testutils.NewFakeDecoder()
		dec.SetDelay(5 * time.Millisecond)
		srv := NewServer(WithPrefetch(true))

		srv.SetSources(load(t, dec, doc{"old.pdf", 20, nil}), 0)
		srv.Next()
		srv.SetSources(load(t, dec, doc{"new.pdf", 5, nil}), 0)
		srv.Wait()

		assert.Equal(t, []string{"new.pdf#0", "new.pdf#1", "new.pdf#2"}, srv.ids())
		assert.False(t, dec.IsOpen("/books/old.pdf"))
		assert.LessOrEqual(t, dec.MaxOpen(), 2)
	})

	t.Run("inline render releases the source left behind", func(t *testing.T) {
		dec := testutils.NewFakeDecoder()
		srv := NewServer(WithPrefetch(true), WithDepth(1))
		srv.SetSources(load(t, dec, doc{"a.pdf", 3, nil}, doc{"b.pdf", 1, nil}, doc{"c.pdf", 5, []int{2}}, doc{"d.pdf", 2, nil}), 0)

		// Turning faster than the background fill forces inline renders
		var shown []string
		for i := 0; i < 9; i++ {
			p, ok := srv.Next()
			require.True(t, ok)
			shown = append(shown, id(p))
		}
		srv.Wait()
		assert.Equal(t, []string{"a.pdf#1", "a.pdf#2", "b.pdf#0", "c.pdf#0", "c.pdf#1", "c.pdf#3", "c.pdf#4", "d.pdf#0", "d.pdf#1"}, shown)
		assert.LessOrEqual(t, dec.MaxOpen(), 2)
		assert.LessOrEqual(t, dec.OpenCount(), 2)
	})
}

// TestRandomWalk turns and jumps at random through documents with a
// broken page, comparing prefetch mode against synchronous mode.
func TestRandomWalk(t *testing.T) {
	docs := []doc{{"a.pdf", 3, nil}, {"b.pdf", 1, nil}, {"c.pdf", 5, []int{2}}, {"d.pdf", 2, nil}}

	syncDec := testutils.NewFakeDecoder()
	syncSrv := NewServer(WithDepth(1))
	syncSrv.SetSources(load(t, syncDec, docs...), 0)

	preDec := testutils.NewFakeDecoder()
	preSrv := NewServer(WithDepth(1), WithPrefetch(true))
	preSrv.SetSources(load(t, preDec, docs...), 0)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		var want, got *Page
		switch r := rng.Intn(20); {
		case r == 0:
			n := 1 + rng.Intn(11)
			var err error
			want, err = syncSrv.JumpTo(n)
			require.NoError(t, err)
			got, err = preSrv.JumpTo(n)
			require.NoError(t, err)
		case r < 11:
			want, _ = syncSrv.Next()
			got, _ = preSrv.Next()
		default:
			want, _ = syncSrv.Prev()
			got, _ = preSrv.Prev()
		}
		require.Equal(t, id(want), id(got), "step %d", i)
		if i%5 == 0 {
			preSrv.Wait()
		}
		require.LessOrEqual(t, preSrv.Buffered(), 3)
	}
	preSrv.Wait()

	assert.LessOrEqual(t, syncDec.MaxOpen(), 2)
	assert.LessOrEqual(t, preDec.MaxOpen(), 2)
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "next", Next.String())
	assert.Equal(t, "prev", Prev.String())
}
