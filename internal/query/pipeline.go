package query

import (
	"github.com/roach88/gridq/internal/datasource"
	"github.com/roach88/gridq/internal/filter"
	"github.com/roach88/gridq/internal/ir"
	"github.com/roach88/gridq/internal/order"
	"github.com/roach88/gridq/internal/page"
)

// Versions identifies one state of the pipeline inputs.
type Versions struct {
	Source  uint64
	Filters uint64
	Sorts   uint64
}

// Pipeline is the memoized filter-then-sort stage of one grid. It is not safe
// for concurrent use; the owning grid serialises access.
type Pipeline[T any] struct {
	items   []T
	filters []*filter.Definition[T]
	quick   filter.Predicate[T]
	sorts   []*order.Definition[T]

	versions Versions

	memo           []T
	memoKey        Versions
	memoValid      bool
	recomputations int
}

// New returns a pipeline over items.
func New[T any](items []T) *Pipeline[T] {
	return &Pipeline[T]{items: items}
}

// SetItems replaces the source collection.
func (p *Pipeline[T]) SetItems(items []T) {
	p.items = items
	p.versions.Source++
}

// Items returns the source collection.
func (p *Pipeline[T]) Items() []T { return p.items }

// SetFilters replaces the filter definitions. The pipeline references the
// definitions; call TouchFilters after editing one in place.
func (p *Pipeline[T]) SetFilters(defs []*filter.Definition[T]) {
	p.filters = defs
	p.versions.Filters++
}

// TouchFilters records an in-place edit of a filter definition.
func (p *Pipeline[T]) TouchFilters() { p.versions.Filters++ }

// SetQuickFilter replaces the ad-hoc predicate applied after the filter
// definitions. Nil removes it.
func (p *Pipeline[T]) SetQuickFilter(pred filter.Predicate[T]) {
	p.quick = pred
	p.versions.Filters++
}

// SetSorts replaces the sort definitions.
func (p *Pipeline[T]) SetSorts(defs []*order.Definition[T]) {
	p.sorts = defs
	p.versions.Sorts++
}

// Versions returns the current input versions.
func (p *Pipeline[T]) Versions() Versions { return p.versions }

// Recomputations counts how many times the sequence was recomputed.
func (p *Pipeline[T]) Recomputations() int { return p.recomputations }

// Visible returns the filtered and sorted sequence, recomputing only when an
// input version changed since the last read. Callers must not modify the
// returned slice.
func (p *Pipeline[T]) Visible() []T {
	if p.memoValid && p.memoKey == p.versions {
		return p.memo
	}
	pred := filter.And(filter.CompileAll(p.filters), p.quick)
	out := filter.Apply(p.items, pred)
	out = order.Sort(out, order.Compile(p.sorts))

	p.memo = out
	p.memoKey = p.versions
	p.memoValid = true
	p.recomputations++
	return out
}

// Invalidate drops the memo without bumping a version.
func (p *Pipeline[T]) Invalidate() { p.memoValid = false }

// Describe builds the remote request for the current filters and sorts. For
// Paged mode the window comes from pg; for Streaming mode from offset and
// count. The request carries copies of the definitions so later edits do not
// race with the fetch.
func (p *Pipeline[T]) Describe(mode datasource.Mode, pg page.State, offset, count int) datasource.Request[T] {
	req := datasource.Request[T]{Mode: mode}

	for _, d := range p.filters {
		if !d.Active() {
			continue
		}
		cp := *d
		req.Filters = append(req.Filters, &cp)
		req.Query.Filters = append(req.Query.Filters, cp.Spec())
	}
	for _, d := range order.Ordered(p.sorts) {
		cp := *d
		req.Sorts = append(req.Sorts, &cp)
		req.Query.Sorts = append(req.Query.Sorts, cp.Spec())
	}
	if req.Query.Filters == nil {
		req.Query.Filters = []ir.FilterSpec{}
	}
	if req.Query.Sorts == nil {
		req.Query.Sorts = []ir.SortSpec{}
	}

	switch mode {
	case datasource.Paged:
		req.PageIndex = pg.Index
		req.PageSize = pg.Size
		if !pg.ShowsAll() {
			req.Offset, req.Count = pg.Window()
		}
	default:
		req.Offset, req.Count = max(offset, 0), max(count, 0)
	}
	req.Query.Offset = req.Offset
	req.Query.Limit = req.Count
	return req
}
