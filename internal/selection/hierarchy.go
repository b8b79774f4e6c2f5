package selection

// Hierarchy tracks which items show their detail row.
type Hierarchy[T any] struct {
	single bool
	set    *Set[T]
}

// NewHierarchy returns an empty hierarchy state. With single set, expanding
// an item collapses the previous one.
func NewHierarchy[T any](single bool, eq Equal[T]) *Hierarchy[T] {
	return &Hierarchy[T]{single: single, set: NewSet(eq)}
}

// SetEqual swaps the equality without touching current members.
func (h *Hierarchy[T]) SetEqual(eq Equal[T]) { h.set.SetEqual(eq) }

// Single reports whether at most one item may be expanded.
func (h *Hierarchy[T]) Single() bool { return h.single }

// Toggle flips item and reports its new state.
func (h *Hierarchy[T]) Toggle(item T) (expanded bool) {
	if h.set.Remove(item) {
		return false
	}
	if h.single {
		h.set.Replace(item)
	} else {
		h.set.Add(item)
	}
	return true
}

// ExpandAll expands the given items and reports whether anything changed.
// It is a no-op in single-row mode.
func (h *Hierarchy[T]) ExpandAll(items []T) bool {
	if h.single {
		return false
	}
	changed := false
	for _, item := range items {
		if h.set.Add(item) {
			changed = true
		}
	}
	return changed
}

// CollapseAll collapses every item.
func (h *Hierarchy[T]) CollapseAll() bool { return h.set.Clear() }

// IsExpanded reports whether item shows its detail row.
func (h *Hierarchy[T]) IsExpanded(item T) bool { return h.set.Contains(item) }

// Expanded returns the expanded items in expansion order.
func (h *Hierarchy[T]) Expanded() []T { return h.set.Items() }
