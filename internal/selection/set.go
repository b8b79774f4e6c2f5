package selection

import (
	"reflect"
	"slices"
)

// Equal decides whether two items are the same item.
type Equal[T any] func(a, b T) bool

// DefaultEqual uses == when T is comparable and structural equality
// otherwise. When T holds interfaces, == is used only for values whose
// dynamic contents are comparable.
func DefaultEqual[T any]() Equal[T] {
	t := reflect.TypeFor[T]()
	switch {
	case strictlyComparable(t):
		return func(a, b T) bool { return any(a) == any(b) }
	case t.Comparable():
		return func(a, b T) bool {
			va, vb := reflect.ValueOf(&a).Elem(), reflect.ValueOf(&b).Elem()
			if va.Comparable() && vb.Comparable() {
				return va.Equal(vb)
			}
			return reflect.DeepEqual(a, b)
		}
	default:
		return func(a, b T) bool { return reflect.DeepEqual(a, b) }
	}
}

// strictlyComparable reports whether == on t can never panic: t is
// comparable and no interface is reachable without a pointer.
func strictlyComparable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface:
		return false
	case reflect.Array:
		return strictlyComparable(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if !strictlyComparable(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return t.Comparable()
	}
}

// Set is an insertion-ordered set of items under an equality.
// The equality can be swapped at any time; existing members are kept and
// only future membership tests change.
type Set[T any] struct {
	eq    Equal[T]
	items []T
}

// NewSet returns an empty set. A nil equality selects DefaultEqual.
func NewSet[T any](eq Equal[T]) *Set[T] {
	s := &Set[T]{}
	s.SetEqual(eq)
	return s
}

// SetEqual replaces the equality.
func (s *Set[T]) SetEqual(eq Equal[T]) {
	if eq == nil {
		eq = DefaultEqual[T]()
	}
	s.eq = eq
}

func (s *Set[T]) index(item T) int {
	return slices.IndexFunc(s.items, func(m T) bool { return s.eq(m, item) })
}

// Contains reports membership.
func (s *Set[T]) Contains(item T) bool { return s.index(item) >= 0 }

// Add inserts item and reports whether the set changed.
func (s *Set[T]) Add(item T) bool {
	if s.Contains(item) {
		return false
	}
	s.items = append(s.items, item)
	return true
}

// Remove deletes item and reports whether the set changed.
func (s *Set[T]) Remove(item T) bool {
	i := s.index(item)
	if i < 0 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

// Replace makes item the only member and reports whether the set changed.
func (s *Set[T]) Replace(item T) bool {
	if len(s.items) == 1 && s.eq(s.items[0], item) {
		return false
	}
	s.items = []T{item}
	return true
}

// Reset replaces the members with items (deduplicated) and reports whether
// the set changed.
func (s *Set[T]) Reset(items []T) bool {
	next := NewSet(s.eq)
	for _, item := range items {
		next.Add(item)
	}
	if s.sameMembers(next) {
		return false
	}
	s.items = next.items
	return true
}

func (s *Set[T]) sameMembers(o *Set[T]) bool {
	if len(s.items) != len(o.items) {
		return false
	}
	for _, item := range o.items {
		if !s.Contains(item) {
			return false
		}
	}
	return true
}

// Clear removes every member and reports whether the set changed.
func (s *Set[T]) Clear() bool {
	if len(s.items) == 0 {
		return false
	}
	s.items = nil
	return true
}

// Len returns the number of members.
func (s *Set[T]) Len() int { return len(s.items) }

// Items returns the members in insertion order.
func (s *Set[T]) Items() []T { return slices.Clone(s.items) }
