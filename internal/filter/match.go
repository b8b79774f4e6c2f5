package filter

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/gridq/internal/ir"
)

// ValueMatcher tests one field value. A nil argument is a null field.
type ValueMatcher func(ir.Value) bool

func always(ir.Value) bool { return true }
func never(ir.Value) bool  { return false }

// Matcher compiles an operator and filter value for a column kind into a
// field-level test. It is the single dispatch point over value kinds.
func Matcher(kind ir.ValueKind, op ir.Operator, value ir.Value, c Case) ValueMatcher {
	if op == ir.OpNone {
		return always
	}
	if !ir.Supports(kind, op) {
		return never
	}

	switch op {
	case ir.OpEmpty:
		return isEmpty
	case ir.OpNotEmpty:
		return func(v ir.Value) bool { return !isEmpty(v) }
	}

	// Permissive null: a filter without a value does not filter yet.
	if value == nil {
		return always
	}
	want, ok := ir.Coerce(kind, value)
	if !ok || want == nil {
		if op.Negated() {
			return always
		}
		return never
	}

	var test func(field, want ir.Value) bool
	switch kind {
	case ir.KindString:
		return compileString(op, string(want.(ir.String)), c)
	case ir.KindNumber:
		test = compileNumber(op)
	case ir.KindBool:
		test = equalValues
	case ir.KindEnum:
		test = compileEquality(op)
	case ir.KindDateTime:
		test = compileDateTime(op)
	case ir.KindDateOnly:
		test = compileDateOnly(op)
	case ir.KindGuid:
		test = compileEquality(op)
	default:
		return never
	}
	return nullAware(kind, op, want, test)
}

// nullAware wraps a non-null test with the null-field rule and coerces field
// values that arrive in a different kind.
func nullAware(kind ir.ValueKind, op ir.Operator, want ir.Value, test func(field, want ir.Value) bool) ValueMatcher {
	negated := op.Negated()
	return func(field ir.Value) bool {
		if field != nil && field.Kind() != kind {
			field, _ = ir.Coerce(kind, field)
		}
		if field == nil {
			return negated
		}
		return test(field, want)
	}
}

func isEmpty(v ir.Value) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(ir.String); ok {
		return s == ""
	}
	return false
}

func compileString(op ir.Operator, want string, c Case) ValueMatcher {
	prep := func(s string) string { return s }
	if c == CaseInsensitive {
		prep = fold
	}
	want = prep(want)

	var test func(field string) bool
	switch op {
	case ir.OpContains:
		test = func(f string) bool { return strings.Contains(f, want) }
	case ir.OpNotContains:
		test = func(f string) bool { return !strings.Contains(f, want) }
	case ir.OpEqual:
		test = func(f string) bool { return f == want }
	case ir.OpNotEqual:
		test = func(f string) bool { return f != want }
	case ir.OpStartsWith:
		test = func(f string) bool { return strings.HasPrefix(f, want) }
	case ir.OpEndsWith:
		test = func(f string) bool { return strings.HasSuffix(f, want) }
	default:
		return never
	}

	negated := op.Negated()
	return func(field ir.Value) bool {
		if field == nil {
			return negated
		}
		return test(prep(ir.Format(field)))
	}
}

// fold normalises to NFC and applies full Unicode case folding.
// A Caser holds state, so one is created per call.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

func compileNumber(op ir.Operator) func(field, want ir.Value) bool {
	return func(field, want ir.Value) bool {
		f, w := float64(field.(ir.Number)), float64(want.(ir.Number))
		switch op {
		case ir.OpNumEqual:
			return f == w
		case ir.OpNumNotEqual:
			return f != w
		case ir.OpGreaterThan:
			return f > w
		case ir.OpGreaterThanOrEqual:
			return f >= w
		case ir.OpLessThan:
			return f < w
		case ir.OpLessThanOrEqual:
			return f <= w
		}
		return false
	}
}

func equalValues(field, want ir.Value) bool { return field == want }

func compileEquality(op ir.Operator) func(field, want ir.Value) bool {
	if op.Negated() {
		return func(field, want ir.Value) bool { return field != want }
	}
	return equalValues
}

func compileDateTime(op ir.Operator) func(field, want ir.Value) bool {
	return func(field, want ir.Value) bool {
		return compareOrdered(op, field.(ir.DateTime).Time().Compare(want.(ir.DateTime).Time()))
	}
}

func compileDateOnly(op ir.Operator) func(field, want ir.Value) bool {
	return func(field, want ir.Value) bool {
		return compareOrdered(op, field.(ir.DateOnly).Compare(want.(ir.DateOnly)))
	}
}

// compareOrdered maps a three-way comparison onto a date operator.
func compareOrdered(op ir.Operator, cmp int) bool {
	switch op {
	case ir.OpIs:
		return cmp == 0
	case ir.OpIsNot:
		return cmp != 0
	case ir.OpAfter:
		return cmp > 0
	case ir.OpOnOrAfter:
		return cmp >= 0
	case ir.OpBefore:
		return cmp < 0
	case ir.OpOnOrBefore:
		return cmp <= 0
	}
	return false
}
