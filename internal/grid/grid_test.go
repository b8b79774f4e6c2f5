package grid

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gridq/internal/column"
	"github.com/roach88/gridq/internal/datasource"
	"github.com/roach88/gridq/internal/filter"
	"github.com/roach88/gridq/internal/ir"
	"github.com/roach88/gridq/internal/order"
	"github.com/roach88/gridq/internal/page"
	"github.com/roach88/gridq/internal/selection"
	"github.com/roach88/gridq/internal/testutil"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type person struct {
	ID   int
	Name string
	Age  int
}

func people(n int) []person {
	out := make([]person, n)
	for i := range out {
		out[i] = person{ID: i + 1, Name: fmt.Sprintf("person-%02d", i+1), Age: 20 + i%7}
	}
	return out
}

func personColumns() []*column.Column[person] {
	return []*column.Column[person]{
		column.String("name", func(p person) string { return p.Name }),
		column.Number("id", func(p person) int { return p.ID }),
		column.Number("age", func(p person) int { return p.Age }),
		column.String("note", func(p person) string { return "" }, column.Unfilterable(), column.Unsortable()),
	}
}

func ids(items []person) []int {
	out := make([]int, len(items))
	for i, p := range items {
		out[i] = p.ID
	}
	return out
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func newLocal(t *testing.T, items []person, mutate ...func(*Config[person])) *Grid[person] {
	t.Helper()
	cfg := Config[person]{Columns: personColumns(), Items: items, Logger: quiet}
	for _, m := range mutate {
		m(&cfg)
	}
	g, err := New(cfg)
	require.NoError(t, err)
	return g
}

func TestNew_ConflictingSources(t *testing.T) {
	fetch := func(context.Context, datasource.Request[person]) (datasource.Page[person], error) {
		return datasource.Page[person]{}, nil
	}

	_, err := New(Config[person]{Items: people(1), ServerData: fetch})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeConflictingSources))

	_, err = New(Config[person]{ServerData: fetch, VirtualizeServerData: fetch})
	assert.True(t, IsCode(err, ErrCodeConflictingSources))
}

func TestNew_QuickFilterRemote(t *testing.T) {
	fetch := func(context.Context, datasource.Request[person]) (datasource.Page[person], error) {
		return datasource.Page[person]{}, nil
	}
	_, err := New(Config[person]{
		ServerData:  fetch,
		QuickFilter: func(person) bool { return true },
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeQuickFilterRemote))
}

func TestNew_ColumnErrors(t *testing.T) {
	_, err := New(Config[person]{Columns: []*column.Column[person]{
		column.String("name", func(p person) string { return p.Name }, column.WithOperators(ir.OpGreaterThan)),
	}})
	assert.True(t, IsCode(err, ErrCodeUnsupportedOperator))

	_, err = New(Config[person]{Columns: []*column.Column[person]{
		column.String("name", func(p person) string { return p.Name }),
		column.String("name", func(p person) string { return p.Name }),
	}})
	assert.True(t, IsCode(err, ErrCodeDuplicateColumn))

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "name", cfgErr.Field)
}

func TestNew_LocalModeWithoutItems(t *testing.T) {
	g, err := New(Config[person]{Columns: personColumns()})
	require.NoError(t, err)
	assert.Equal(t, datasource.Local, g.Mode())
	assert.Empty(t, g.VisibleItems())
	assert.Equal(t, 1, g.PageCount())
}

func TestFilterLifecycle(t *testing.T) {
	items := []person{
		{ID: 1, Name: "Alice", Age: 30},
		{ID: 2, Name: "bob", Age: 25},
		{ID: 3, Name: "Carol", Age: 41},
		{ID: 4, Name: "alan", Age: 19},
	}
	g := newLocal(t, items)

	id := g.AddFilter()
	views := g.Filters()
	require.Len(t, views, 1)
	assert.Equal(t, "name", views[0].Field)
	assert.Equal(t, ir.OpNone, views[0].Operator)
	assert.False(t, views[0].Committed)
	assert.Len(t, g.VisibleItems(), 4, "a filter without an operator matches everything")

	require.NoError(t, g.SetFilterOperator(id, ir.OpStartsWith))
	assert.Len(t, g.VisibleItems(), 4, "a null value matches everything")

	require.NoError(t, g.SetFilterValue(id, ir.String("al")))
	assert.Equal(t, []int{4}, ids(g.VisibleItems()))

	require.NoError(t, g.SetFilterCase(id, filter.CaseInsensitive))
	assert.Equal(t, []int{1, 4}, ids(g.VisibleItems()))

	// A second, incomplete filter is discarded on close.
	second := g.AddFilter()
	require.NoError(t, g.SetFilterColumn(second, "age"))
	assert.Equal(t, ir.OpNumEqual, g.Filters()[1].Operator)

	g.CloseFilters()
	views = g.Filters()
	require.Len(t, views, 1)
	assert.Equal(t, id, views[0].ID)
	assert.True(t, views[0].Committed)
	assert.Equal(t, []int{1, 4}, ids(g.VisibleItems()))

	require.NoError(t, g.RemoveFilter(id))
	assert.Len(t, g.VisibleItems(), 4)
}

func TestUnchangedFilterEditIsSilent(t *testing.T) {
	g := newLocal(t, people(8), func(c *Config[person]) { c.RowsPerPage = 2 })
	id, err := g.AddFilterDefinition("name", ir.OpContains, ir.String("person"), filter.CaseDefault)
	require.NoError(t, err)
	g.NavigateTo(page.Next)
	g.VisibleItems()
	recomputed := g.Recomputations()

	rec := &recorder{}
	g.Subscribe(rec.record)

	require.NoError(t, g.SetFilterValue(id, ir.String("person")))
	require.NoError(t, g.SetFilterCase(id, filter.CaseDefault))
	require.NoError(t, g.SetFilterOperator(id, ir.OpContains))
	assert.Empty(t, rec.kinds())
	assert.Equal(t, 1, g.CurrentPage(), "no page reset without a change")
	g.VisibleItems()
	assert.Equal(t, recomputed, g.Recomputations())

	require.NoError(t, g.SetFilterValue(id, ir.String("person-0")))
	assert.Equal(t, []EventKind{FiltersChanged, PageChanged}, rec.kinds())
	assert.Equal(t, 0, g.CurrentPage())
}

func TestFilterConjunction(t *testing.T) {
	g := newLocal(t, people(20))

	_, err := g.AddFilterDefinition("age", ir.OpGreaterThanOrEqual, ir.Number(24), filter.CaseDefault)
	require.NoError(t, err)
	_, err = g.AddFilterDefinition("id", ir.OpLessThanOrEqual, ir.Number(10), filter.CaseDefault)
	require.NoError(t, err)

	for _, p := range g.VisibleItems() {
		assert.GreaterOrEqual(t, p.Age, 24)
		assert.LessOrEqual(t, p.ID, 10)
	}
	assert.Equal(t, []int{5, 6, 7}, ids(g.VisibleItems()))

	g.ClearFilters()
	assert.Len(t, g.VisibleItems(), 20)
}

func TestFilterErrors(t *testing.T) {
	g := newLocal(t, people(3))

	_, err := g.AddFilterDefinition("missing", ir.OpEqual, ir.String("x"), filter.CaseDefault)
	assert.True(t, IsCode(err, ErrCodeUnknownColumn))

	_, err = g.AddFilterDefinition("note", ir.OpEqual, ir.String("x"), filter.CaseDefault)
	assert.True(t, IsCode(err, ErrCodeUnfilterableColumn))

	_, err = g.AddFilterDefinition("name", ir.OpGreaterThan, ir.String("x"), filter.CaseDefault)
	assert.True(t, IsCode(err, ErrCodeUnsupportedOperator))

	id := g.AddFilter()
	err = g.SetFilterOperator(id, ir.OpAfter)
	assert.True(t, IsCode(err, ErrCodeUnsupportedOperator))
	assert.Equal(t, ir.OpNone, g.Filters()[0].Operator, "a rejected operator leaves the filter unchanged")

	assert.True(t, IsCode(g.RemoveFilter("nope"), ErrCodeUnknownFilter))
}

func TestUncoercibleFilterValue(t *testing.T) {
	g := newLocal(t, people(5))

	id, err := g.AddFilterDefinition("age", ir.OpNumEqual, ir.String("abc"), filter.CaseDefault)
	require.NoError(t, err)
	assert.Empty(t, g.VisibleItems())

	require.NoError(t, g.SetFilterOperator(id, ir.OpNumNotEqual))
	assert.Len(t, g.VisibleItems(), 5)
}

func TestSorts(t *testing.T) {
	items := []person{
		{ID: 1, Name: "c", Age: 30},
		{ID: 2, Name: "a", Age: 25},
		{ID: 3, Name: "b", Age: 30},
		{ID: 4, Name: "d", Age: 25},
	}
	g := newLocal(t, items)

	require.NoError(t, g.SetSort("age", order.Descending, nil))
	assert.Equal(t, []int{1, 3, 2, 4}, ids(g.VisibleItems()), "ties keep source order")

	require.NoError(t, g.AddSort("name", order.Ascending, nil))
	assert.Equal(t, []int{3, 1, 2, 4}, ids(g.VisibleItems()))
	assert.Equal(t, []SortView{
		{Field: "age", Direction: order.Descending, Priority: 0},
		{Field: "name", Direction: order.Ascending, Priority: 1},
	}, g.Sorts())

	require.NoError(t, g.RemoveSort("age"))
	assert.Equal(t, []int{2, 3, 1, 4}, ids(g.VisibleItems()))
	assert.Equal(t, 0, g.Sorts()[0].Priority)

	g.ClearSorts()
	assert.Equal(t, []int{1, 2, 3, 4}, ids(g.VisibleItems()))

	assert.True(t, IsCode(g.SetSort("note", order.Ascending, nil), ErrCodeUnsortableColumn))
	assert.True(t, IsCode(g.SetSort("missing", order.Ascending, nil), ErrCodeUnknownColumn))
}

func TestSortCustomKeyAndComparer(t *testing.T) {
	items := []person{{ID: 1, Name: "b"}, {ID: 2, Name: "a"}, {ID: 3, Name: "c"}}
	g := newLocal(t, items)

	reverse := func(a, b ir.Value) int { return -order.CompareValues(a, b) }
	require.NoError(t, g.SetSort("name", order.Ascending, nil, WithComparer(reverse)))
	assert.Equal(t, []int{3, 1, 2}, ids(g.VisibleItems()))

	byID := func(p person) ir.Value { return ir.Number(float64(-p.ID)) }
	require.NoError(t, g.SetSort("name", order.Ascending, byID))
	assert.Equal(t, []int{3, 2, 1}, ids(g.VisibleItems()))
}

func TestToggleSort(t *testing.T) {
	g := newLocal(t, people(3))

	require.NoError(t, g.ToggleSort("id"))
	assert.Equal(t, order.Ascending, g.Sorts()[0].Direction)
	require.NoError(t, g.ToggleSort("id"))
	assert.Equal(t, order.Descending, g.Sorts()[0].Direction)
	require.NoError(t, g.ToggleSort("id"))
	assert.Equal(t, order.Ascending, g.Sorts()[0].Direction, "unsorted state is skipped by default")

	u := newLocal(t, people(3), func(c *Config[person]) { c.AllowUnsortedState = true })
	require.NoError(t, u.ToggleSort("id"))
	require.NoError(t, u.ToggleSort("id"))
	require.NoError(t, u.ToggleSort("id"))
	assert.Empty(t, u.Sorts())
}

func TestPaging(t *testing.T) {
	g := newLocal(t, people(20))
	rec := &recorder{}
	g.Subscribe(rec.record)

	assert.Equal(t, page.DefaultSize, g.RowsPerPage())
	assert.Equal(t, 2, g.PageCount())
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, ids(g.PageItems()))

	g.NavigateTo(page.Next)
	assert.Equal(t, 1, g.CurrentPage())
	assert.Equal(t, 11, g.PageItems()[0].ID)
	assert.False(t, g.CanNavigate(page.Next))

	rec.reset()
	g.NavigateTo(page.Next)
	assert.Equal(t, 1, g.CurrentPage())
	assert.Empty(t, rec.kinds(), "a move past the end is ignored")

	g.SetRowsPerPage(4)
	assert.Equal(t, 0, g.CurrentPage())
	assert.Equal(t, []EventKind{RowsPerPageChanged, PageChanged}, rec.kinds())

	g.NavigateTo(page.Last)
	assert.Equal(t, 4, g.CurrentPage())
	assert.Equal(t, []int{17, 18, 19, 20}, ids(g.PageItems()))

	g.SetCurrentPage(99)
	assert.Equal(t, 4, g.CurrentPage())

	g.SetRowsPerPage(page.All)
	assert.Equal(t, 1, g.PageCount())
	assert.Len(t, g.PageItems(), 20)
	assert.False(t, g.CanNavigate(page.Next))
	assert.False(t, g.CanNavigate(page.Last))
}

func TestFilterChangeResetsPage(t *testing.T) {
	g := newLocal(t, people(20), func(c *Config[person]) { c.RowsPerPage = 4 })
	g.SetCurrentPage(3)
	require.Equal(t, 3, g.CurrentPage())

	rec := &recorder{}
	g.Subscribe(rec.record)
	_, err := g.AddFilterDefinition("id", ir.OpLessThanOrEqual, ir.Number(15), filter.CaseDefault)
	require.NoError(t, err)

	assert.Equal(t, 0, g.CurrentPage())
	assert.Equal(t, []EventKind{FiltersChanged, PageChanged}, rec.kinds())
	assert.Equal(t, 15, g.TotalCount())
}

func TestShrinkingItemsClampsPage(t *testing.T) {
	all := people(20)
	g := newLocal(t, all, func(c *Config[person]) { c.RowsPerPage = 4 })
	g.NavigateTo(page.Last)
	require.Equal(t, 4, g.CurrentPage())

	require.NoError(t, g.SetItems(all[:6]))
	assert.Equal(t, 1, g.CurrentPage())
	assert.Equal(t, []int{5, 6}, ids(g.PageItems()))
}

func TestItemsChangeKeepsPageClamped(t *testing.T) {
	all := people(20)
	g := newLocal(t, all, func(c *Config[person]) { c.RowsPerPage = 4 })
	g.NavigateTo(page.Last)
	require.Equal(t, 4, g.CurrentPage())

	rec := &recorder{}
	g.Subscribe(rec.record)

	require.NoError(t, g.SetItems(all[:5]))
	assert.Equal(t, 1, g.CurrentPage())
	assert.Equal(t, []EventKind{ItemsChanged, PageChanged}, rec.kinds())

	rec.reset()
	require.NoError(t, g.SetItems(all))
	assert.Equal(t, 1, g.CurrentPage(), "growing the items does not restore the old page")
	assert.Equal(t, []int{5, 6, 7, 8}, ids(g.PageItems()))
	assert.Equal(t, []EventKind{ItemsChanged}, rec.kinds())

	rec.reset()
	require.NoError(t, g.SetItems(all[:8]))
	assert.Equal(t, 1, g.CurrentPage())
	assert.Equal(t, []EventKind{ItemsChanged}, rec.kinds())
}

func TestMemoizedPipeline(t *testing.T) {
	g := newLocal(t, people(10))
	g.VisibleItems()
	g.PageItems()
	g.TotalCount()
	assert.Equal(t, 1, g.Recomputations())

	require.NoError(t, g.SetSort("age", order.Ascending, nil))
	g.VisibleItems()
	g.VisibleItems()
	assert.Equal(t, 2, g.Recomputations())
}

func TestQuickFilter(t *testing.T) {
	g := newLocal(t, people(10), func(c *Config[person]) {
		c.QuickFilter = func(p person) bool { return p.ID%2 == 0 }
	})
	assert.Equal(t, []int{2, 4, 6, 8, 10}, ids(g.VisibleItems()))

	require.NoError(t, g.SetQuickFilter(nil))
	assert.Len(t, g.VisibleItems(), 10)
}

func TestSingleSelection(t *testing.T) {
	items := people(3)
	g := newLocal(t, items)

	g.SetSelected(items[0], true)
	g.SetSelected(items[1], true)
	assert.Equal(t, []person{items[1]}, g.Selected())

	sel, ok := g.SelectedItem()
	require.True(t, ok)
	assert.Equal(t, items[1], sel)

	g.SetSelectAll(true)
	assert.Len(t, g.Selected(), 1, "select all is ignored in single mode")

	rec := &recorder{}
	unsubscribe := g.Subscribe(rec.record)
	g.SetSelectAll(false)
	assert.Empty(t, g.Selected(), "deselect all clears single mode too")
	_, ok = g.SelectedItem()
	assert.False(t, ok)
	assert.Equal(t, []EventKind{SelectionChanged}, rec.kinds())
	unsubscribe()

	g.SetSelected(items[1], true)

	g.SetSelectedItems(items)
	assert.Equal(t, []person{items[2]}, g.Selected())
}

func TestMultiSelectionFollowsVisibleItems(t *testing.T) {
	items := people(6)
	g := newLocal(t, items, func(c *Config[person]) { c.MultiSelection = true })

	_, err := g.AddFilterDefinition("id", ir.OpLessThanOrEqual, ir.Number(3), filter.CaseDefault)
	require.NoError(t, err)

	g.SetSelectAll(true)
	assert.Equal(t, []int{1, 2, 3}, ids(g.Selected()))
	assert.Equal(t, selection.Checked, g.SelectAllState())

	g.ClearFilters()
	assert.Equal(t, selection.Indeterminate, g.SelectAllState())
	assert.True(t, g.IsSelected(items[0]), "selection survives filtering")

	g.SetSelectAll(false)
	assert.Empty(t, g.Selected())
	assert.Equal(t, selection.Unchecked, g.SelectAllState())
}

func TestSelectableAndComparer(t *testing.T) {
	items := people(4)
	g := newLocal(t, items, func(c *Config[person]) {
		c.MultiSelection = true
		c.Selectable = func(p person) bool { return p.ID != 2 }
		c.SelectionComparer = func(a, b person) bool { return a.ID == b.ID }
	})

	g.SetSelected(items[1], true)
	assert.Empty(t, g.Selected())

	renamed := items[0]
	renamed.Name = "renamed"
	g.SetSelected(items[0], true)
	assert.True(t, g.IsSelected(renamed), "identity comes from the comparer")

	g.SetSelectionComparer(func(a, b person) bool { return a == b })
	assert.False(t, g.IsSelected(renamed))
}

func TestHierarchy(t *testing.T) {
	items := people(4)
	g := newLocal(t, items)

	assert.True(t, g.ToggleHierarchy(items[0]))
	assert.True(t, g.ToggleHierarchy(items[1]))
	assert.Len(t, g.Expanded(), 2)

	assert.False(t, g.ToggleHierarchy(items[0]))
	assert.False(t, g.IsExpanded(items[0]))

	g.ExpandAll()
	assert.Len(t, g.Expanded(), 4)
	g.CollapseAll()
	assert.Empty(t, g.Expanded())

	single := newLocal(t, items, func(c *Config[person]) { c.ExpandSingleRow = true })
	single.ToggleHierarchy(items[0])
	single.ToggleHierarchy(items[1])
	assert.Equal(t, []person{items[1]}, single.Expanded())
	single.ExpandAll()
	assert.Len(t, single.Expanded(), 1)
}

func TestSubscriberMayCallBack(t *testing.T) {
	items := people(3)
	g := newLocal(t, items, func(c *Config[person]) { c.MultiSelection = true })

	var seen [][]int
	g.Subscribe(func(e Event) {
		if e.Kind != SelectionChanged {
			return
		}
		sel := g.Selected()
		seen = append(seen, ids(sel))
		if len(sel) == 1 {
			g.SetSelected(items[2], true)
		}
	})

	g.SetSelected(items[0], true)
	assert.Equal(t, [][]int{{1}, {1, 3}}, seen)
}

func TestUnsubscribe(t *testing.T) {
	g := newLocal(t, people(3))
	rec := &recorder{}
	unsubscribe := g.Subscribe(rec.record)

	require.NoError(t, g.SetSort("id", order.Descending, nil))
	unsubscribe()
	require.NoError(t, g.SetSort("id", order.Ascending, nil))

	assert.Equal(t, []EventKind{SortsChanged}, rec.kinds())
}

func TestRemoveColumnDropsFiltersAndSorts(t *testing.T) {
	g := newLocal(t, people(5))
	_, err := g.AddFilterDefinition("age", ir.OpGreaterThan, ir.Number(21), filter.CaseDefault)
	require.NoError(t, err)
	require.NoError(t, g.SetSort("age", order.Descending, nil))

	require.NoError(t, g.RemoveColumn("age"))
	assert.Empty(t, g.Filters())
	assert.Empty(t, g.Sorts())
	assert.Len(t, g.VisibleItems(), 5)
	assert.True(t, IsCode(g.RemoveColumn("age"), ErrCodeUnknownColumn))

	require.NoError(t, g.AddColumn(column.Number("age", func(p person) int { return p.Age })))
	assert.True(t, IsCode(g.AddColumn(column.Number("age", func(p person) int { return p.Age })), ErrCodeDuplicateColumn))
}

// remote fixtures

func pageOf(items []person, total int) datasource.Page[person] {
	return datasource.Page[person]{Items: items, Total: total}
}

func newRemote(t *testing.T, f *testutil.GatedFetch[person], streaming bool) (*Grid[person], *recorder) {
	t.Helper()
	cfg := Config[person]{
		Columns: personColumns(),
		Logger:  quiet,
		Tokens:  testutil.NewSequentialTokens(""),
	}
	if streaming {
		cfg.VirtualizeServerData = f.Func()
	} else {
		cfg.ServerData = f.Func()
	}
	g, err := New(cfg)
	require.NoError(t, err)
	rec := &recorder{}
	g.Subscribe(rec.record)
	return g, rec
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestRemote_LatestRequestWins(t *testing.T) {
	ctx := testContext(t)
	stale := people(3)
	fresh := []person{{ID: 42, Name: "fresh"}}

	f := testutil.NewGatedFetch(func(req datasource.Request[person]) datasource.Page[person] {
		if req.Seq == 1 {
			return pageOf(stale, 30)
		}
		return pageOf(fresh, 1)
	})
	f.IgnoreCancel = true
	g, rec := newRemote(t, f, false)

	_, err := g.AddFilterDefinition("name", ir.OpContains, ir.String("e"), filter.CaseDefault)
	require.NoError(t, err)
	seq, err := f.Arrived(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), seq)
	assert.True(t, g.IsLoading())

	require.NoError(t, g.SetSort("age", order.Ascending, nil))
	seq, err = f.Arrived(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), seq)

	f.Release(2)
	require.NoError(t, g.Wait(ctx))
	assert.Equal(t, fresh, g.PageItems())
	assert.False(t, g.IsLoading())

	f.Release(1)
	assert.Never(t, func() bool {
		return len(g.PageItems()) != 1 || g.TotalCount() != 1
	}, 100*time.Millisecond, 5*time.Millisecond, "a superseded result must never be applied")

	for _, e := range rec.all() {
		if e.Kind == ServerDataLoaded || e.Kind == ServerDataFailed {
			assert.Equal(t, "req-2", e.Token)
		}
	}

	reqs := f.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, []ir.SortSpec{{Field: "age"}}, reqs[1].Query.Sorts)
	require.Len(t, reqs[1].Query.Filters, 1)
	assert.Equal(t, ir.OpContains, reqs[1].Query.Filters[0].Operator)
	assert.Equal(t, 0, reqs[1].PageIndex)
	assert.Equal(t, page.DefaultSize, reqs[1].PageSize)
}

func TestRemote_FailureKeepsData(t *testing.T) {
	ctx := testContext(t)
	loaded := people(2)
	boom := errors.New("server unavailable")

	f := testutil.NewGatedFetch(func(datasource.Request[person]) datasource.Page[person] {
		return pageOf(loaded, 2)
	})
	f.Fail = func(req datasource.Request[person]) error {
		if req.Seq == 2 {
			return boom
		}
		return nil
	}
	g, rec := newRemote(t, f, false)

	f.Release(1)
	require.NoError(t, g.ReloadServerData(ctx))
	assert.Equal(t, loaded, g.PageItems())
	assert.NoError(t, g.LastError())

	rec.reset()
	f.Release(2)
	require.NoError(t, g.ReloadServerData(ctx))
	assert.ErrorIs(t, g.LastError(), boom)
	assert.Equal(t, loaded, g.PageItems(), "a failed fetch keeps the displayed data")
	assert.False(t, g.IsLoading())
	assert.Contains(t, rec.kinds(), ServerDataFailed)

	f.Release(3)
	require.NoError(t, g.ReloadServerData(ctx))
	assert.NoError(t, g.LastError())
}

func TestRemote_PanicIsAFailure(t *testing.T) {
	ctx := testContext(t)
	g, err := New(Config[person]{
		Columns: personColumns(),
		Logger:  quiet,
		ServerData: func(context.Context, datasource.Request[person]) (datasource.Page[person], error) {
			panic("boom")
		},
	})
	require.NoError(t, err)

	require.NoError(t, g.ReloadServerData(ctx))
	require.Error(t, g.LastError())
	assert.Contains(t, g.LastError().Error(), "boom")
}

func TestRemote_IdenticalQueryIsNotRefetched(t *testing.T) {
	ctx := testContext(t)
	f := testutil.NewGatedFetch(func(datasource.Request[person]) datasource.Page[person] {
		return pageOf(people(2), 2)
	})
	g, _ := newRemote(t, f, false)

	f.Release(1)
	require.NoError(t, g.ReloadServerData(ctx))

	// An incomplete filter does not change the query.
	g.AddFilter()
	g.ClearSorts()
	require.NoError(t, g.Wait(ctx))
	assert.Len(t, f.Requests(), 1)
}

func TestRemote_PageNavigationFetches(t *testing.T) {
	ctx := testContext(t)
	f := testutil.NewGatedFetch(func(req datasource.Request[person]) datasource.Page[person] {
		return pageOf(people(req.PageSize), 25)
	})
	g, _ := newRemote(t, f, false)

	f.Release(1)
	require.NoError(t, g.ReloadServerData(ctx))
	assert.Equal(t, 3, g.PageCount())
	assert.Equal(t, 25, g.TotalCount())

	f.Release(2)
	g.NavigateTo(page.Last)
	require.NoError(t, g.Wait(ctx))

	reqs := f.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, 2, reqs[1].PageIndex)
	assert.Equal(t, 20, reqs[1].Offset)
	assert.Equal(t, 10, reqs[1].Count)
}

func TestRemote_Streaming(t *testing.T) {
	ctx := testContext(t)
	f := testutil.NewGatedFetch(func(req datasource.Request[person]) datasource.Page[person] {
		return pageOf(people(req.Count), datasource.UnknownTotal)
	})
	g, _ := newRemote(t, f, true)
	assert.Equal(t, datasource.Streaming, g.Mode())

	f.Release(1)
	g.SetViewport(10, 5)
	require.NoError(t, g.Wait(ctx))

	reqs := f.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, datasource.Streaming, reqs[0].Mode)
	assert.Equal(t, 10, reqs[0].Offset)
	assert.Equal(t, 5, reqs[0].Count)
	assert.Len(t, g.PageItems(), 5)
	assert.Equal(t, 15, g.TotalCount())
}

func TestRemote_RejectsLocalOperations(t *testing.T) {
	f := testutil.NewGatedFetch(func(datasource.Request[person]) datasource.Page[person] {
		return datasource.Page[person]{}
	})
	g, _ := newRemote(t, f, false)

	assert.True(t, IsCode(g.SetItems(people(1)), ErrCodeConflictingSources))
	assert.True(t, IsCode(g.SetQuickFilter(func(person) bool { return true }), ErrCodeQuickFilterRemote))

	local := newLocal(t, people(1))
	assert.True(t, IsCode(local.SetServerData(f.Func()), ErrCodeConflictingSources))
}

func TestRemote_SetServerDataDiscardsInFlight(t *testing.T) {
	ctx := testContext(t)
	old := testutil.NewGatedFetch(func(datasource.Request[person]) datasource.Page[person] {
		return pageOf(people(3), 3)
	})
	old.IgnoreCancel = true
	g, _ := newRemote(t, old, false)

	_, err := g.AddFilterDefinition("id", ir.OpGreaterThan, ir.Number(0), filter.CaseDefault)
	require.NoError(t, err)
	_, err = old.Arrived(ctx)
	require.NoError(t, err)

	replacement := []person{{ID: 99}}
	next := testutil.NewGatedFetch(func(datasource.Request[person]) datasource.Page[person] {
		return pageOf(replacement, 1)
	})
	next.Release(2)
	require.NoError(t, g.SetServerData(next.Func()))
	require.NoError(t, g.Wait(ctx))
	assert.Equal(t, replacement, g.PageItems())

	old.Release(1)
	assert.Never(t, func() bool {
		return len(g.PageItems()) != 1
	}, 50*time.Millisecond, 5*time.Millisecond)
}

func TestRemote_Cancel(t *testing.T) {
	ctx := testContext(t)
	f := testutil.NewGatedFetch(func(datasource.Request[person]) datasource.Page[person] {
		return pageOf(people(1), 1)
	})
	g, rec := newRemote(t, f, false)

	_, err := g.AddFilterDefinition("id", ir.OpGreaterThan, ir.Number(0), filter.CaseDefault)
	require.NoError(t, err)
	_, err = f.Arrived(ctx)
	require.NoError(t, err)

	g.Cancel()
	assert.False(t, g.IsLoading())
	require.NoError(t, g.Wait(ctx))
	assert.Empty(t, g.PageItems())
	assert.Equal(t, []EventKind{FiltersChanged, LoadingChanged, LoadingChanged}, rec.kinds())
}
