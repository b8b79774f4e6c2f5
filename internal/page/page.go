package page

import (
	"fmt"
	"strings"
)

// All is the page size sentinel meaning "show every item on one page".
// It disables navigation.
const All = -1

// DefaultSize is the page size used when none is configured.
const DefaultSize = 10

// Action is a navigation gesture.
type Action int

const (
	First Action = iota
	Previous
	Next
	Last
)

var actionNames = [...]string{"first", "previous", "next", "last"}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ParseAction reads "first", "previous"/"prev", "next" or "last".
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first":
		return First, nil
	case "previous", "prev":
		return Previous, nil
	case "next":
		return Next, nil
	case "last":
		return Last, nil
	}
	return First, fmt.Errorf("unknown page action %q", s)
}

// State is the pagination window. Index is zero-based. Size is positive or
// All. Total is the number of items the window is over.
type State struct {
	Index int
	Size  int
	Total int
}

// New returns a state on the first page. A size of zero selects DefaultSize;
// any other non-positive size means All.
func New(size int) State {
	return State{Size: normalizeSize(size)}
}

func normalizeSize(size int) int {
	switch {
	case size == 0:
		return DefaultSize
	case size < 0:
		return All
	}
	return size
}

// ShowsAll reports whether the window covers every item.
func (s State) ShowsAll() bool { return s.Size == All }

// Count is the number of pages; at least 1 so that an empty result still
// has a page to show.
func (s State) Count() int {
	if s.ShowsAll() || s.Total <= 0 || s.Size <= 0 {
		return 1
	}
	return (s.Total + s.Size - 1) / s.Size
}

// LastIndex is the index of the last valid page.
func (s State) LastIndex() int { return s.Count() - 1 }

// Clamp pulls Index into [0, LastIndex].
func (s State) Clamp() State {
	if s.ShowsAll() {
		s.Index = 0
		return s
	}
	s.Index = max(0, min(s.Index, s.LastIndex()))
	return s
}

// WithTotal records a new total and clamps the index.
func (s State) WithTotal(total int) State {
	s.Total = max(0, total)
	return s.Clamp()
}

// WithSize switches the page size and returns to the first page.
func (s State) WithSize(size int) State {
	s.Size = normalizeSize(size)
	s.Index = 0
	return s
}

// CanNavigate reports whether an action would move the window.
// Nothing moves when the window shows all items.
func (s State) CanNavigate(a Action) bool {
	if s.ShowsAll() {
		return false
	}
	switch a {
	case First, Previous:
		return s.Index > 0
	case Next, Last:
		return s.Index < s.LastIndex()
	}
	return false
}

// Navigate applies an action. Moves past either end clamp.
func (s State) Navigate(a Action) State {
	if s.ShowsAll() {
		return s
	}
	switch a {
	case First:
		s.Index = 0
	case Previous:
		s.Index--
	case Next:
		s.Index++
	case Last:
		s.Index = s.LastIndex()
	}
	return s.Clamp()
}

// GoTo moves to a page index, clamped.
func (s State) GoTo(index int) State {
	s.Index = index
	return s.Clamp()
}

// Window returns the item offset and count of the current page. For All the
// count is the total.
func (s State) Window() (offset, count int) {
	if s.ShowsAll() {
		return 0, s.Total
	}
	return s.Index * s.Size, s.Size
}

// Bounds returns the half-open range of the current page within Total.
func (s State) Bounds() (from, to int) {
	off, n := s.Window()
	from = min(off, s.Total)
	to = min(off+n, s.Total)
	return from, to
}

// Slice returns the items of the current page. The state is expected to be
// clamped against len(items).
func Slice[T any](items []T, s State) []T {
	s.Total = len(items)
	from, to := s.Bounds()
	return items[from:to:to]
}
