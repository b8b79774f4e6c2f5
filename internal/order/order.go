package order

import (
	"cmp"
	"slices"
	"strings"

	"github.com/roach88/gridq/internal/ir"
)

// Direction of one sort key.
type Direction int

const (
	// None leaves the field unsorted.
	None Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "none"
	}
}

// ParseDirection reads "asc", "desc" or "none" (case-insensitive, long forms
// accepted).
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "":
		return Ascending, true
	case "desc", "descending":
		return Descending, true
	case "none":
		return None, true
	}
	return None, false
}

// Comparator is a three-way comparison over items.
type Comparator[T any] func(a, b T) int

// Definition is one sort key.
type Definition[T any] struct {
	Field     string
	Direction Direction
	Priority  int

	// Key extracts the sort key from an item. A nil result is null.
	Key func(T) ir.Value

	// Comparer overrides the natural ordering of the key when non-nil.
	Comparer func(a, b ir.Value) int
}

// Spec returns the serialisable form of the definition.
func (d *Definition[T]) Spec() ir.SortSpec {
	return ir.SortSpec{Field: d.Field, Descending: d.Direction == Descending}
}

// Ordered returns the definitions that take part in sorting, by ascending
// priority. Definitions with direction None or no key are dropped. The input
// slice is not modified.
func Ordered[T any](defs []*Definition[T]) []*Definition[T] {
	out := make([]*Definition[T], 0, len(defs))
	for _, d := range defs {
		if d != nil && d.Direction != None && d.Key != nil {
			out = append(out, d)
		}
	}
	slices.SortStableFunc(out, func(a, b *Definition[T]) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	return out
}

// Compile builds the composite comparator. It returns nil when no definition
// takes part; callers treat nil as the identity ordering.
func Compile[T any](defs []*Definition[T]) Comparator[T] {
	keys := Ordered(defs)
	if len(keys) == 0 {
		return nil
	}

	type compiled struct {
		key  func(T) ir.Value
		cmp  func(a, b ir.Value) int
		desc bool
	}
	cs := make([]compiled, len(keys))
	for i, d := range keys {
		c := d.Comparer
		if c == nil {
			c = CompareValues
		}
		cs[i] = compiled{key: d.Key, cmp: c, desc: d.Direction == Descending}
	}

	return func(a, b T) int {
		for _, c := range cs {
			r := c.cmp(c.key(a), c.key(b))
			if r == 0 {
				continue
			}
			if c.desc {
				return -r
			}
			return r
		}
		return 0
	}
}

// Sort returns a stably sorted copy of items. A nil comparator returns a
// copy in source order.
func Sort[T any](items []T, c Comparator[T]) []T {
	out := slices.Clone(items)
	if c == nil {
		return out
	}
	slices.SortStableFunc(out, c)
	return out
}

// CompareValues is the natural ordering of values: null sorts before any
// value, values of the same kind use that kind's ordering, and values of
// different kinds order by kind.
func CompareValues(a, b ir.Value) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if a.Kind() != b.Kind() {
		return cmp.Compare(a.Kind(), b.Kind())
	}

	switch av := a.(type) {
	case ir.String:
		return strings.Compare(string(av), string(b.(ir.String)))
	case ir.Number:
		return cmp.Compare(float64(av), float64(b.(ir.Number)))
	case ir.Bool:
		return compareBool(bool(av), bool(b.(ir.Bool)))
	case ir.Enum:
		return strings.Compare(string(av), string(b.(ir.Enum)))
	case ir.DateTime:
		return av.Time().Compare(b.(ir.DateTime).Time())
	case ir.DateOnly:
		return av.Compare(b.(ir.DateOnly))
	case ir.Guid:
		return strings.Compare(av.String(), b.(ir.Guid).String())
	}
	return strings.Compare(ir.Format(a), ir.Format(b))
}

// false before true
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
