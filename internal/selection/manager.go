package selection

// Mode is the selection cardinality.
type Mode int

const (
	// Single holds at most one item; selecting another evicts it.
	Single Mode = iota
	Multi
)

func (m Mode) String() string {
	if m == Multi {
		return "multi"
	}
	return "single"
}

// TriState is the derived state of a "select all" control.
type TriState int

const (
	Unchecked TriState = iota
	Indeterminate
	Checked
)

func (s TriState) String() string {
	switch s {
	case Checked:
		return "checked"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unchecked"
	}
}

// Manager is the selection state of one grid.
type Manager[T any] struct {
	mode       Mode
	set        *Set[T]
	selectable func(T) bool
}

// NewManager returns an empty selection. A nil selectable means every item
// may be selected.
func NewManager[T any](mode Mode, eq Equal[T], selectable func(T) bool) *Manager[T] {
	return &Manager[T]{mode: mode, set: NewSet(eq), selectable: selectable}
}

// Mode returns the selection mode.
func (m *Manager[T]) Mode() Mode { return m.mode }

// SetEqual swaps the equality without touching current members.
func (m *Manager[T]) SetEqual(eq Equal[T]) { m.set.SetEqual(eq) }

// CanSelect reports whether item may be selected.
func (m *Manager[T]) CanSelect(item T) bool {
	return m.selectable == nil || m.selectable(item)
}

// SetSelected selects or deselects one item and reports whether the
// selection changed. Selecting in Single mode evicts the previous member in
// the same step. Unselectable items are ignored.
func (m *Manager[T]) SetSelected(item T, selected bool) bool {
	if !m.CanSelect(item) {
		return false
	}
	if !selected {
		return m.set.Remove(item)
	}
	if m.mode == Single {
		return m.set.Replace(item)
	}
	return m.set.Add(item)
}

// SetSelectAll selects exactly the given visible items, or clears the whole
// selection. Selecting all is a no-op in Single mode; clearing is not.
// Previously selected items that are not visible stay selected when
// selecting all.
func (m *Manager[T]) SetSelectAll(visible []T, selected bool) bool {
	if !selected {
		return m.set.Clear()
	}
	if m.mode == Single {
		return false
	}
	changed := false
	for _, item := range visible {
		if m.CanSelect(item) && m.set.Add(item) {
			changed = true
		}
	}
	return changed
}

// Replace sets the selection to items, as when a host binds the selected
// items two-way. Single mode keeps only the last selectable item.
func (m *Manager[T]) Replace(items []T) bool {
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if m.CanSelect(item) {
			kept = append(kept, item)
		}
	}
	if m.mode == Single && len(kept) > 1 {
		kept = kept[len(kept)-1:]
	}
	return m.set.Reset(kept)
}

// Clear deselects everything.
func (m *Manager[T]) Clear() bool { return m.set.Clear() }

// IsSelected reports membership.
func (m *Manager[T]) IsSelected(item T) bool { return m.set.Contains(item) }

// Selected returns the selected items in selection order.
func (m *Manager[T]) Selected() []T { return m.set.Items() }

// Len returns the number of selected items.
func (m *Manager[T]) Len() int { return m.set.Len() }

// State derives the select-all control from the current visible set:
// checked when every selectable visible item is selected, unchecked when
// none is, indeterminate otherwise. An empty visible set is unchecked.
func (m *Manager[T]) State(visible []T) TriState {
	total, selected := 0, 0
	for _, item := range visible {
		if !m.CanSelect(item) {
			continue
		}
		total++
		if m.set.Contains(item) {
			selected++
		}
	}
	switch {
	case total == 0 || selected == 0:
		return Unchecked
	case selected == total:
		return Checked
	default:
		return Indeterminate
	}
}
