package grid

import (
	"github.com/roach88/gridq/internal/column"
	"github.com/roach88/gridq/internal/ir"
	"github.com/roach88/gridq/internal/order"
)

// SortView is a snapshot of one sort definition.
type SortView struct {
	Field     string
	Direction order.Direction
	Priority  int
}

// Sorts returns the active sort definitions by priority.
func (g *Grid[T]) Sorts() []SortView {
	var out []SortView
	g.read(func() {
		for _, d := range order.Ordered(g.sorts) {
			out = append(out, SortView{Field: d.Field, Direction: d.Direction, Priority: d.Priority})
		}
	})
	return out
}

// SortOption customizes one sort definition.
type SortOption func(*sortOptions)

type sortOptions struct {
	comparer func(a, b ir.Value) int
}

// WithComparer overrides the ordering of one sort definition.
func WithComparer(c func(a, b ir.Value) int) SortOption {
	return func(o *sortOptions) { o.comparer = c }
}

// SetSort makes field the only sort key. Direction None clears sorting.
// key may be nil to sort by the column's value.
func (g *Grid[T]) SetSort(field string, dir order.Direction, key func(T) ir.Value, opts ...SortOption) error {
	return g.update(func() error {
		d, err := g.sortDefinition(field, dir, key, opts)
		if err != nil {
			return err
		}
		if dir == order.None {
			g.setSorts(nil)
			return nil
		}
		g.setSorts([]*order.Definition[T]{d})
		return nil
	})
}

// AddSort adds field as the lowest-priority sort key, or changes its
// direction in place when it is already sorted. Direction None removes it.
func (g *Grid[T]) AddSort(field string, dir order.Direction, key func(T) ir.Value, opts ...SortOption) error {
	return g.update(func() error {
		d, err := g.sortDefinition(field, dir, key, opts)
		if err != nil {
			return err
		}
		if dir == order.None {
			g.removeSort(field)
			return nil
		}
		next := make([]*order.Definition[T], 0, len(g.sorts)+1)
		replaced := false
		for _, s := range g.sorts {
			if s.Field == field {
				d.Priority = s.Priority
				next = append(next, d)
				replaced = true
				continue
			}
			next = append(next, s)
		}
		if !replaced {
			d.Priority = len(next)
			next = append(next, d)
		}
		g.setSorts(next)
		return nil
	})
}

// ToggleSort cycles field through ascending, descending and (when unsorted
// state is allowed) unsorted, keeping the other sort keys.
func (g *Grid[T]) ToggleSort(field string) error {
	return g.update(func() error {
		var cur order.Direction
		var existing *order.Definition[T]
		for _, s := range g.sorts {
			if s.Field == field {
				existing = s
				cur = s.Direction
			}
		}

		next := order.Ascending
		switch cur {
		case order.Ascending:
			next = order.Descending
		case order.Descending:
			if g.allowUnsortedState {
				next = order.None
			}
		}

		var opts []SortOption
		var key func(T) ir.Value
		if existing != nil {
			key = existing.Key
			opts = append(opts, WithComparer(existing.Comparer))
		}
		d, err := g.sortDefinition(field, next, key, opts)
		if err != nil {
			return err
		}
		if next == order.None {
			g.removeSort(field)
			return nil
		}
		if existing == nil {
			d.Priority = len(g.sorts)
			g.setSorts(append(g.sorts[:len(g.sorts):len(g.sorts)], d))
			return nil
		}
		d.Priority = existing.Priority
		sorts := make([]*order.Definition[T], len(g.sorts))
		for i, s := range g.sorts {
			if s == existing {
				sorts[i] = d
			} else {
				sorts[i] = s
			}
		}
		g.setSorts(sorts)
		return nil
	})
}

// RemoveSort drops the sort on field. The remaining keys keep their relative
// order and are renumbered from zero.
func (g *Grid[T]) RemoveSort(field string) error {
	return g.update(func() error {
		if _, ok := g.cols.Lookup(field); !ok {
			return NewUnknownColumnError(field)
		}
		g.removeSort(field)
		return nil
	})
}

// ClearSorts drops every sort key.
func (g *Grid[T]) ClearSorts() {
	_ = g.update(func() error {
		if len(g.sorts) > 0 {
			g.setSorts(nil)
		}
		return nil
	})
}

func (g *Grid[T]) removeSort(field string) {
	kept := make([]*order.Definition[T], 0, len(g.sorts))
	for _, s := range order.Ordered(g.sorts) {
		if s.Field != field {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(g.sorts) {
		return
	}
	for i, s := range kept {
		cp := *s
		cp.Priority = i
		kept[i] = &cp
	}
	g.setSorts(kept)
}

func (g *Grid[T]) sortDefinition(field string, dir order.Direction, key func(T) ir.Value, opts []SortOption) (*order.Definition[T], error) {
	col, ok := g.cols.Lookup(field)
	if !ok {
		return nil, NewUnknownColumnError(field)
	}
	if !col.Sortable {
		return nil, newConfigError(ErrCodeUnsortableColumn, field, "column %q is not sortable", field)
	}
	var o sortOptions
	for _, opt := range opts {
		opt(&o)
	}
	if key == nil {
		key = col.Value
	}
	return &order.Definition[T]{
		Field:     field,
		Direction: dir,
		Key:       key,
		Comparer:  comparerFor(col, o.comparer),
	}, nil
}

func comparerFor[T any](col *column.Column[T], override func(a, b ir.Value) int) func(a, b ir.Value) int {
	if override != nil {
		return override
	}
	if col.Comparer != nil {
		return col.Comparer
	}
	return nil
}

// setSorts installs a new sort list; the caller holds the lock. The page is
// kept.
func (g *Grid[T]) setSorts(defs []*order.Definition[T]) {
	g.sorts = defs
	g.pipeline.SetSorts(defs)
	g.emit(SortsChanged)
	g.refresh()
}
