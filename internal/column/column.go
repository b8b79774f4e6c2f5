package column

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/gridq/internal/ir"
)

// Comparer is a total order over the values of one column. It overrides the
// kind's natural ordering when sorting (for example order.Natural).
type Comparer func(a, b ir.Value) int

// Column is static metadata about one field of the item type T.
//
// Columns are immutable once mounted on a grid; replacing a column is a
// remove followed by an add.
type Column[T any] struct {
	Name       string
	Kind       ir.ValueKind
	Sortable   bool
	Filterable bool

	// Value extracts the field from an item. A nil result is null.
	// It doubles as the default sort key selector.
	Value func(T) ir.Value

	// Comparer overrides the natural ordering of Kind when non-nil.
	Comparer Comparer

	// Operators is the allowed operator set, default first. Empty means the
	// kind's full table (ir.OperatorsFor).
	Operators []ir.Operator
}

// Option configures a column at declaration time.
type Option func(*options)

type options struct {
	unsortable   bool
	unfilterable bool
	comparer     Comparer
	operators    []ir.Operator
}

// WithComparer sets a custom ordering for the column.
func WithComparer(c Comparer) Option {
	return func(o *options) { o.comparer = c }
}

// WithOperators restricts the allowed operators. The first one becomes the
// default picked when a filter switches to this column.
func WithOperators(ops ...ir.Operator) Option {
	return func(o *options) { o.operators = ops }
}

// Unsortable marks the column as not sortable.
func Unsortable() Option {
	return func(o *options) { o.unsortable = true }
}

// Unfilterable marks the column as not filterable.
func Unfilterable() Option {
	return func(o *options) { o.unfilterable = true }
}

// New declares a column of the given kind over an arbitrary accessor.
// The typed constructors below are thin wrappers around New.
func New[T any](name string, kind ir.ValueKind, value func(T) ir.Value, opts ...Option) *Column[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Column[T]{
		Name:       name,
		Kind:       kind,
		Sortable:   !o.unsortable,
		Filterable: !o.unfilterable && kind != ir.KindOther,
		Value:      value,
		Comparer:   o.comparer,
		Operators:  o.operators,
	}
}

// String declares a text column.
func String[T any](name string, get func(T) string, opts ...Option) *Column[T] {
	return New(name, ir.KindString, func(item T) ir.Value { return ir.String(get(item)) }, opts...)
}

// NullableString declares a text column whose accessor may report null.
func NullableString[T any](name string, get func(T) *string, opts ...Option) *Column[T] {
	return New(name, ir.KindString, func(item T) ir.Value {
		if s := get(item); s != nil {
			return ir.String(*s)
		}
		return nil
	}, opts...)
}

// Numeric lists the Go types a Number column can read.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Number declares a numeric column.
func Number[T any, N Numeric](name string, get func(T) N, opts ...Option) *Column[T] {
	return New(name, ir.KindNumber, func(item T) ir.Value { return ir.Number(float64(get(item))) }, opts...)
}

// NullableNumber declares a numeric column whose accessor may report null.
func NullableNumber[T any, N Numeric](name string, get func(T) *N, opts ...Option) *Column[T] {
	return New(name, ir.KindNumber, func(item T) ir.Value {
		if n := get(item); n != nil {
			return ir.Number(float64(*n))
		}
		return nil
	}, opts...)
}

// Bool declares a boolean column.
func Bool[T any](name string, get func(T) bool, opts ...Option) *Column[T] {
	return New(name, ir.KindBool, func(item T) ir.Value { return ir.Bool(get(item)) }, opts...)
}

// NullableBool declares a boolean column whose accessor may report null.
func NullableBool[T any](name string, get func(T) *bool, opts ...Option) *Column[T] {
	return New(name, ir.KindBool, func(item T) ir.Value {
		if b := get(item); b != nil {
			return ir.Bool(*b)
		}
		return nil
	}, opts...)
}

// Enum declares an enumeration column over any string-like member type.
// An empty member name reads as null.
func Enum[T any, E ~string](name string, get func(T) E, opts ...Option) *Column[T] {
	return New(name, ir.KindEnum, func(item T) ir.Value {
		if e := get(item); e != "" {
			return ir.Enum(e)
		}
		return nil
	}, opts...)
}

// DateTime declares an instant column; a nil pointer is null.
func DateTime[T any](name string, get func(T) *time.Time, opts ...Option) *Column[T] {
	return New(name, ir.KindDateTime, func(item T) ir.Value {
		if t := get(item); t != nil {
			return ir.DateTime(*t)
		}
		return nil
	}, opts...)
}

// DateOnly declares a calendar-date column; a nil pointer is null. The time
// of day of the accessor's result is ignored.
func DateOnly[T any](name string, get func(T) *time.Time, opts ...Option) *Column[T] {
	return New(name, ir.KindDateOnly, func(item T) ir.Value {
		if t := get(item); t != nil {
			return ir.DateOf(*t)
		}
		return nil
	}, opts...)
}

// Guid declares an identifier column. The zero UUID reads as null.
func Guid[T any](name string, get func(T) uuid.UUID, opts ...Option) *Column[T] {
	return New(name, ir.KindGuid, func(item T) ir.Value {
		if id := get(item); id != uuid.Nil {
			return ir.Guid(id)
		}
		return nil
	}, opts...)
}

// AllowedOperators returns the effective operator set, default first.
// Unfilterable columns allow nothing.
func (c *Column[T]) AllowedOperators() []ir.Operator {
	if !c.Filterable {
		return nil
	}
	if len(c.Operators) > 0 {
		return slices.Clone(c.Operators)
	}
	return ir.OperatorsFor(c.Kind)
}

// DefaultOperator returns the first allowed operator, or ir.OpNone.
func (c *Column[T]) DefaultOperator() ir.Operator {
	ops := c.AllowedOperators()
	if len(ops) == 0 {
		return ir.OpNone
	}
	return ops[0]
}

// Allows reports whether op may be used to filter this column.
// ir.OpNone is always allowed: it is the "not chosen yet" state.
func (c *Column[T]) Allows(op ir.Operator) bool {
	if op == ir.OpNone {
		return true
	}
	return slices.Contains(c.AllowedOperators(), op)
}

// Validate checks the declaration: a name, an accessor, and an operator set
// drawn from the kind's table.
func (c *Column[T]) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("column name is required")
	}
	if c.Value == nil {
		return fmt.Errorf("column %q: value accessor is required", c.Name)
	}
	for _, op := range c.Operators {
		if !ir.Supports(c.Kind, op) {
			return fmt.Errorf("column %q: operator %q is not defined for %s values", c.Name, op, c.Kind)
		}
	}
	return nil
}
