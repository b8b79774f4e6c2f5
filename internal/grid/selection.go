package grid

import "github.com/roach88/gridq/internal/selection"

// SetSelected selects or deselects item. In single-selection mode selecting
// an item evicts the previous one in the same step. Unselectable items are
// ignored without a notification.
func (g *Grid[T]) SetSelected(item T, selected bool) {
	_ = g.update(func() error {
		if g.sel.SetSelected(item, selected) {
			g.emit(SelectionChanged)
		}
		return nil
	})
}

// SetSelectAll selects exactly the visible items, or clears the selection.
// Items hidden by filters are neither added nor removed when selecting.
func (g *Grid[T]) SetSelectAll(selected bool) {
	_ = g.update(func() error {
		if g.sel.SetSelectAll(g.visible(), selected) {
			g.emit(SelectionChanged)
		}
		return nil
	})
}

// SetSelectedItem is the two-way binding entry point for the single selected
// item.
func (g *Grid[T]) SetSelectedItem(item T) {
	_ = g.update(func() error {
		if g.sel.Replace([]T{item}) {
			g.emit(SelectionChanged)
		}
		return nil
	})
}

// SetSelectedItems is the two-way binding entry point for the selected set.
func (g *Grid[T]) SetSelectedItems(items []T) {
	_ = g.update(func() error {
		if g.sel.Replace(items) {
			g.emit(SelectionChanged)
		}
		return nil
	})
}

// SetSelectionComparer swaps the identity used by selection and hierarchy.
// Current members are kept; only future membership tests change.
func (g *Grid[T]) SetSelectionComparer(eq selection.Equal[T]) {
	g.read(func() {
		g.sel.SetEqual(eq)
		g.hier.SetEqual(eq)
	})
}

// Selected returns the selected items in selection order.
func (g *Grid[T]) Selected() []T {
	var out []T
	g.read(func() { out = g.sel.Selected() })
	return out
}

// SelectedItem returns the most recently selected item.
func (g *Grid[T]) SelectedItem() (item T, ok bool) {
	g.read(func() {
		sel := g.sel.Selected()
		if len(sel) > 0 {
			item, ok = sel[len(sel)-1], true
		}
	})
	return item, ok
}

// IsSelected reports whether item is selected.
func (g *Grid[T]) IsSelected(item T) bool {
	var ok bool
	g.read(func() { ok = g.sel.IsSelected(item) })
	return ok
}

// SelectAllState derives the select-all control from the current visible
// items.
func (g *Grid[T]) SelectAllState() selection.TriState {
	var s selection.TriState
	g.read(func() { s = g.sel.State(g.visible()) })
	return s
}

// ToggleHierarchy expands or collapses item's detail row and reports whether
// it is now expanded.
func (g *Grid[T]) ToggleHierarchy(item T) bool {
	var expanded bool
	_ = g.update(func() error {
		expanded = g.hier.Toggle(item)
		g.emit(HierarchyChanged)
		return nil
	})
	return expanded
}

// ExpandAll expands every visible item. It does nothing in single-row mode.
func (g *Grid[T]) ExpandAll() {
	_ = g.update(func() error {
		if g.hier.ExpandAll(g.visible()) {
			g.emit(HierarchyChanged)
		}
		return nil
	})
}

// CollapseAll collapses every item.
func (g *Grid[T]) CollapseAll() {
	_ = g.update(func() error {
		if g.hier.CollapseAll() {
			g.emit(HierarchyChanged)
		}
		return nil
	})
}

// Expanded returns the expanded items in expansion order.
func (g *Grid[T]) Expanded() []T {
	var out []T
	g.read(func() { out = g.hier.Expanded() })
	return out
}

// IsExpanded reports whether item shows its detail row.
func (g *Grid[T]) IsExpanded(item T) bool {
	var ok bool
	g.read(func() { ok = g.hier.IsExpanded(item) })
	return ok
}
