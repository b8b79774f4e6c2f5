package grid

import (
	"github.com/roach88/gridq/internal/column"
	"github.com/roach88/gridq/internal/filter"
	"github.com/roach88/gridq/internal/ir"
)

// FilterView is a snapshot of one filter definition.
type FilterView struct {
	ID        string
	Field     string
	Operator  ir.Operator
	Value     ir.Value
	Case      filter.Case
	Committed bool
}

// Filters returns snapshots of the filter definitions in creation order.
func (g *Grid[T]) Filters() []FilterView {
	var out []FilterView
	g.read(func() {
		out = make([]FilterView, len(g.filters))
		for i, d := range g.filters {
			out[i] = FilterView{
				ID:        d.ID,
				Field:     d.Field(),
				Operator:  d.Operator,
				Value:     d.Value,
				Case:      d.Case,
				Committed: d.Active(),
			}
		}
	})
	return out
}

// AddFilter opens a new filter on the first filterable column with no
// operator chosen. It matches everything until an operator is set. Returns
// the filter's ID.
func (g *Grid[T]) AddFilter() string {
	var id string
	_ = g.update(func() error {
		d := &filter.Definition[T]{ID: g.newID()}
		for _, c := range g.cols.All() {
			if c.Filterable {
				d.Column = c
				break
			}
		}
		id = d.ID
		g.setFilters(append(g.filters, d))
		return nil
	})
	return id
}

// AddFilterDefinition adds a filter programmatically. The column and operator
// are checked now; a value that cannot be read in the column's kind is not
// an error (the filter falls back to its no-match or match-all behavior).
func (g *Grid[T]) AddFilterDefinition(field string, op ir.Operator, value ir.Value, c filter.Case) (string, error) {
	var id string
	err := g.update(func() error {
		col, err := g.filterableColumn(field)
		if err != nil {
			return err
		}
		d := &filter.Definition[T]{ID: g.newID(), Column: col, Operator: op, Value: value, Case: c}
		if err := g.checkOperator(d); err != nil {
			return err
		}
		id = d.ID
		g.setFilters(append(g.filters, d))
		return nil
	})
	return id, err
}

// RemoveFilter drops one filter.
func (g *Grid[T]) RemoveFilter(id string) error {
	return g.update(func() error {
		i := g.filterIndex(id)
		if i < 0 {
			return NewUnknownFilterError(id)
		}
		next := append(g.filters[:i:i], g.filters[i+1:]...)
		g.setFilters(next)
		return nil
	})
}

// SetFilterColumn retargets a filter. The operator resets to the column's
// default and the value is cleared.
func (g *Grid[T]) SetFilterColumn(id, field string) error {
	return g.editFilter(id, func(d *filter.Definition[T]) error {
		col, err := g.filterableColumn(field)
		if err != nil {
			return err
		}
		d.Column = col
		d.Operator = col.DefaultOperator()
		d.Value = nil
		return nil
	})
}

// SetFilterOperator changes a filter's operator.
func (g *Grid[T]) SetFilterOperator(id string, op ir.Operator) error {
	return g.editFilter(id, func(d *filter.Definition[T]) error {
		probe := *d
		probe.Operator = op
		if err := g.checkOperator(&probe); err != nil {
			return err
		}
		d.Operator = op
		return nil
	})
}

// SetFilterValue changes a filter's value. Nil clears it.
func (g *Grid[T]) SetFilterValue(id string, value ir.Value) error {
	return g.editFilter(id, func(d *filter.Definition[T]) error {
		d.Value = value
		return nil
	})
}

// SetFilterCase changes how a string filter treats letter case.
func (g *Grid[T]) SetFilterCase(id string, c filter.Case) error {
	return g.editFilter(id, func(d *filter.Definition[T]) error {
		d.Case = c
		return nil
	})
}

// CloseFilters commits the filters being edited: a filter is kept when its
// operator needs no value or it has one, and discarded otherwise.
func (g *Grid[T]) CloseFilters() {
	_ = g.update(func() error {
		kept := filter.Retain(g.filters)
		if len(kept) != len(g.filters) {
			g.setFilters(kept)
		}
		return nil
	})
}

// ClearFilters discards every filter at once.
func (g *Grid[T]) ClearFilters() {
	_ = g.update(func() error {
		if len(g.filters) > 0 {
			g.setFilters(nil)
		}
		return nil
	})
}

func (g *Grid[T]) editFilter(id string, fn func(d *filter.Definition[T]) error) error {
	return g.update(func() error {
		i := g.filterIndex(id)
		if i < 0 {
			return NewUnknownFilterError(id)
		}
		d := g.filters[i]
		before := *d
		if err := fn(d); err != nil {
			return err
		}
		if *d == before {
			return nil
		}
		g.pipeline.TouchFilters()
		g.filtersChanged()
		return nil
	})
}

// setFilters installs a new filter list; the caller holds the lock.
func (g *Grid[T]) setFilters(defs []*filter.Definition[T]) {
	g.filters = defs
	g.pipeline.SetFilters(defs)
	g.filtersChanged()
}

// filtersChanged returns to the first page and refetches remote data.
func (g *Grid[T]) filtersChanged() {
	g.emit(FiltersChanged)
	if g.page.Index != 0 {
		g.page = g.page.GoTo(0)
		g.emit(PageChanged)
	}
	g.refresh()
}

func (g *Grid[T]) filterIndex(id string) int {
	for i, d := range g.filters {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (g *Grid[T]) filterableColumn(field string) (*column.Column[T], error) {
	col, ok := g.cols.Lookup(field)
	if !ok {
		return nil, NewUnknownColumnError(field)
	}
	if !col.Filterable {
		return nil, newConfigError(ErrCodeUnfilterableColumn, field, "column %q is not filterable", field)
	}
	return col, nil
}

func (g *Grid[T]) checkOperator(d *filter.Definition[T]) error {
	if err := filter.Validate(d); err != nil {
		return newConfigError(ErrCodeUnsupportedOperator, d.Field(), "%v", err)
	}
	return nil
}
