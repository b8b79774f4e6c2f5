package filter

import (
	"errors"
	"fmt"

	"github.com/roach88/gridq/internal/column"
	"github.com/roach88/gridq/internal/ir"
)

// Case selects how string comparisons treat letter case.
type Case int

const (
	// CaseDefault compares strings ordinally.
	CaseDefault Case = iota
	// CaseInsensitive compares Unicode case-folded strings.
	CaseInsensitive
)

func (c Case) String() string {
	if c == CaseInsensitive {
		return "insensitive"
	}
	return "default"
}

// Predicate reports whether an item passes a filter.
type Predicate[T any] func(T) bool

// True is the constant-true predicate.
func True[T any]() Predicate[T] { return func(T) bool { return true } }

// False is the constant-false predicate.
func False[T any]() Predicate[T] { return func(T) bool { return false } }

// Definition is one filter criterion. It is mutated in place while a user
// edits it; compile it again after every change.
type Definition[T any] struct {
	ID       string
	Column   *column.Column[T]
	Operator ir.Operator
	Value    ir.Value
	Case     Case
}

// Field returns the name of the filtered column, or "" when none is chosen.
func (d *Definition[T]) Field() string {
	if d.Column == nil {
		return ""
	}
	return d.Column.Name
}

// Active reports whether the definition narrows results at all.
func (d *Definition[T]) Active() bool {
	if d == nil || d.Column == nil || d.Operator == ir.OpNone {
		return false
	}
	return !d.Operator.RequiresValue() || d.Value != nil
}

// Spec returns the serialisable form of the definition.
func (d *Definition[T]) Spec() ir.FilterSpec {
	spec := ir.FilterSpec{
		Field:           d.Field(),
		Operator:        d.Operator,
		Value:           d.Value,
		CaseInsensitive: d.Case == CaseInsensitive,
	}
	if d.Column != nil {
		spec.Kind = d.Column.Kind
	}
	return spec
}

// ErrUnsupportedOperator is wrapped by Validate when the operator is not in
// the column's allowed set.
var ErrUnsupportedOperator = errors.New("unsupported operator")

// ErrNotFilterable is wrapped by Validate when the column cannot be filtered.
var ErrNotFilterable = errors.New("column is not filterable")

// Validate checks the operator against the column. A definition with no
// column or no operator is valid: it is still being composed.
func Validate[T any](d *Definition[T]) error {
	if d.Column == nil || d.Operator == ir.OpNone {
		return nil
	}
	if !d.Column.Filterable {
		return fmt.Errorf("%w: %q", ErrNotFilterable, d.Column.Name)
	}
	if !d.Column.Allows(d.Operator) {
		return fmt.Errorf("%w: %q on %s column %q", ErrUnsupportedOperator, d.Operator, d.Column.Kind, d.Column.Name)
	}
	return nil
}

// Compile turns a definition into a predicate. It expects Validate to have
// passed; an operator outside the kind's table matches nothing.
func Compile[T any](d *Definition[T]) Predicate[T] {
	if d == nil || d.Column == nil || d.Operator == ir.OpNone {
		return True[T]()
	}
	m := Matcher(d.Column.Kind, d.Operator, d.Value, d.Case)
	get := d.Column.Value
	return func(item T) bool { return m(get(item)) }
}

// CompileAll combines definitions by conjunction. Inactive definitions are
// skipped; an empty list compiles to the constant-true predicate.
func CompileAll[T any](defs []*Definition[T]) Predicate[T] {
	preds := make([]Predicate[T], 0, len(defs))
	for _, d := range defs {
		if d == nil || d.Column == nil || d.Operator == ir.OpNone {
			continue
		}
		preds = append(preds, Compile(d))
	}
	return And(preds...)
}

// And returns the conjunction of preds. Nil entries are ignored.
func And[T any](preds ...Predicate[T]) Predicate[T] {
	live := make([]Predicate[T], 0, len(preds))
	for _, p := range preds {
		if p != nil {
			live = append(live, p)
		}
	}
	switch len(live) {
	case 0:
		return True[T]()
	case 1:
		return live[0]
	}
	return func(item T) bool {
		for _, p := range live {
			if !p(item) {
				return false
			}
		}
		return true
	}
}

// Apply returns the items that pass p, in source order. The input is not
// modified.
func Apply[T any](items []T, p Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if p(item) {
			out = append(out, item)
		}
	}
	return out
}

// Retain applies the close-time policy: a definition survives when its
// operator stands on its own (is empty / is not empty) or it carries a value.
// Definitions without a column or operator are discarded.
func Retain[T any](defs []*Definition[T]) []*Definition[T] {
	kept := make([]*Definition[T], 0, len(defs))
	for _, d := range defs {
		if d.Active() {
			kept = append(kept, d)
		}
	}
	return kept
}
