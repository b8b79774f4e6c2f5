package grid

import (
	"github.com/roach88/gridq/internal/datasource"
	"github.com/roach88/gridq/internal/page"
)

// pageState returns the pagination state against the current total; the
// caller holds the lock. Local grids clamp lazily here, so a filter that
// shrinks the result never leaves an out-of-range page on screen.
func (g *Grid[T]) pageState() page.State {
	st := g.page
	switch g.mode {
	case datasource.Local:
		st.Total = len(g.pipeline.Visible())
	case datasource.Paged:
		st.Total = max(0, g.server.Total)
		if g.server.Total == datasource.UnknownTotal {
			return st
		}
	default:
		st.Size = page.All
		st.Total = len(g.server.Items)
	}
	return st.Clamp()
}

// clampPage stores the page index clamped against the current total and
// reports a move; the caller holds the lock. Local grids call it whenever
// the visible count may have changed.
func (g *Grid[T]) clampPage() {
	st := g.pageState()
	if st.Index == g.page.Index {
		return
	}
	g.page.Index = st.Index
	g.emit(PageChanged)
}

// movePage installs st when its index differs from the one on screen.
func (g *Grid[T]) movePage(st page.State) {
	if st.Index == g.pageState().Index {
		g.page.Index = st.Index
		return
	}
	g.page.Index = st.Index
	g.emit(PageChanged)
	g.refresh()
}

// NavigateTo moves the page window. Moves past either end are ignored, and
// nothing moves when the page size is page.All.
func (g *Grid[T]) NavigateTo(a page.Action) {
	_ = g.update(func() error {
		if g.mode == datasource.Streaming {
			return nil
		}
		g.movePage(g.pageState().Navigate(a))
		return nil
	})
}

// SetCurrentPage moves to a zero-based page index, clamped to the valid
// range.
func (g *Grid[T]) SetCurrentPage(index int) {
	_ = g.update(func() error {
		if g.mode == datasource.Streaming {
			return nil
		}
		g.movePage(g.pageState().GoTo(index))
		return nil
	})
}

// SetRowsPerPage changes the page size and returns to the first page. Zero
// selects page.DefaultSize; page.All shows everything.
func (g *Grid[T]) SetRowsPerPage(size int) {
	_ = g.update(func() error {
		next := g.page.WithSize(size)
		if next.Size == g.page.Size {
			return nil
		}
		moved := g.page.Index != 0
		g.page = next
		g.emit(RowsPerPageChanged)
		if moved {
			g.emit(PageChanged)
		}
		g.refresh()
		return nil
	})
}

// CurrentPage returns the zero-based index of the page on screen.
func (g *Grid[T]) CurrentPage() int {
	var i int
	g.read(func() { i = g.pageState().Index })
	return i
}

// RowsPerPage returns the page size, or page.All.
func (g *Grid[T]) RowsPerPage() int {
	var n int
	g.read(func() { n = g.page.Size })
	return n
}

// PageCount returns the number of pages; at least 1.
func (g *Grid[T]) PageCount() int {
	var n int
	g.read(func() { n = g.pageState().Count() })
	return n
}

// CanNavigate reports whether a would move the page window.
func (g *Grid[T]) CanNavigate(a page.Action) bool {
	var ok bool
	g.read(func() { ok = g.pageState().CanNavigate(a) })
	return ok
}

// PageItems returns the rows on screen: the current page of the visible
// items, or the server's last answer for remote grids.
func (g *Grid[T]) PageItems() []T {
	var out []T
	g.read(func() {
		if g.mode.Remote() {
			out = append([]T(nil), g.server.Items...)
			return
		}
		out = append([]T(nil), page.Slice(g.pipeline.Visible(), g.pageState())...)
	})
	return out
}

// TotalCount returns the number of items matching the filters. A streaming
// source that does not report a total counts what it has shown so far.
func (g *Grid[T]) TotalCount() int {
	var n int
	g.read(func() {
		switch {
		case !g.mode.Remote():
			n = len(g.pipeline.Visible())
		case g.server.Total != datasource.UnknownTotal:
			n = g.server.Total
		case g.mode == datasource.Streaming:
			n = g.viewport.offset + len(g.server.Items)
		default:
			n = len(g.server.Items)
		}
	})
	return n
}
