package queryir

import (
	"fmt"

	"github.com/roach88/gridq/internal/ir"
)

// FromSpec lowers a grid query into a Select over table. Filters are
// conjoined in order; sorts keep their priority order.
func FromSpec(table string, q ir.QuerySpec) (Select, error) {
	preds := make([]Predicate, 0, len(q.Filters))
	for i, f := range q.Filters {
		p, err := Lower(f)
		if err != nil {
			return Select{}, fmt.Errorf("filter %d: %w", i, err)
		}
		preds = append(preds, p)
	}
	sel := Select{
		From:   table,
		Filter: Conjoin(preds...),
		Offset: max(q.Offset, 0),
		Limit:  max(q.Limit, 0),
	}
	for _, s := range q.Sorts {
		if s.Field == "" {
			return Select{}, fmt.Errorf("sort field is required")
		}
		sel.Order = append(sel.Order, OrderKey{Field: s.Field, Descending: s.Descending})
	}
	return sel, nil
}

// CountOf returns the Count over the rows sel filters.
func CountOf(sel Select) Count {
	return Count{From: sel.From, Filter: sel.Filter}
}

// Lower translates one filter spec into a predicate.
func Lower(f ir.FilterSpec) (Predicate, error) {
	if f.Field == "" {
		return nil, fmt.Errorf("filter field is required")
	}
	if f.Operator == ir.OpNone {
		return Const{Value: true}, nil
	}
	if !ir.Supports(f.Kind, f.Operator) {
		return Const{Value: false}, nil
	}

	switch f.Operator {
	case ir.OpEmpty:
		return IsNull{Field: f.Field, Empty: f.Kind == ir.KindString}, nil
	case ir.OpNotEmpty:
		return Not{Predicate: IsNull{Field: f.Field, Empty: f.Kind == ir.KindString}}, nil
	}

	if f.Value == nil {
		return Const{Value: true}, nil
	}
	negated := f.Operator.Negated()
	want, ok := ir.Coerce(f.Kind, f.Value)
	if !ok || want == nil {
		return Const{Value: negated}, nil
	}

	test, err := positive(f, want)
	if err != nil {
		return nil, err
	}
	if negated {
		// NOT over a null comparison is not true in SQL, so null fields
		// are admitted explicitly.
		return Or{Predicates: []Predicate{IsNull{Field: f.Field}, Not{Predicate: test}}}, nil
	}
	return test, nil
}

// positive builds the non-negated test for an operator.
func positive(f ir.FilterSpec, want ir.Value) (Predicate, error) {
	if f.Kind == ir.KindString {
		s := string(want.(ir.String))
		fold := f.CaseInsensitive
		switch f.Operator {
		case ir.OpContains, ir.OpNotContains:
			return Match{Field: f.Field, Mode: Contains, Value: s, Fold: fold}, nil
		case ir.OpStartsWith:
			return Match{Field: f.Field, Mode: Prefix, Value: s, Fold: fold}, nil
		case ir.OpEndsWith:
			return Match{Field: f.Field, Mode: Suffix, Value: s, Fold: fold}, nil
		case ir.OpEqual, ir.OpNotEqual:
			return Compare{Field: f.Field, Op: Eq, Value: want, Fold: fold}, nil
		}
		return nil, fmt.Errorf("operator %q has no text lowering", f.Operator)
	}

	op, ok := compareOps[f.Operator]
	if !ok {
		return nil, fmt.Errorf("operator %q has no %s lowering", f.Operator, f.Kind)
	}
	return Compare{Field: f.Field, Op: op, Value: want}, nil
}

// compareOps maps non-text operators onto their positive comparison.
var compareOps = map[ir.Operator]CompareOp{
	ir.OpNumEqual:           Eq,
	ir.OpNumNotEqual:        Eq,
	ir.OpGreaterThan:        Gt,
	ir.OpGreaterThanOrEqual: Ge,
	ir.OpLessThan:           Lt,
	ir.OpLessThanOrEqual:    Le,
	ir.OpEqual:              Eq,
	ir.OpNotEqual:           Eq,
	ir.OpIs:                 Eq,
	ir.OpIsNot:              Eq,
	ir.OpAfter:              Gt,
	ir.OpOnOrAfter:          Ge,
	ir.OpBefore:             Lt,
	ir.OpOnOrBefore:         Le,
}

// Conjoin flattens preds into one predicate. Constant-true members are
// dropped and a constant-false member wins. Returns nil when nothing
// filters.
func Conjoin(preds ...Predicate) Predicate {
	var out []Predicate
	for _, p := range preds {
		switch p := p.(type) {
		case nil:
		case Const:
			if !p.Value {
				return Const{Value: false}
			}
		case And:
			inner := Conjoin(p.Predicates...)
			if c, ok := inner.(Const); ok && !c.Value {
				return inner
			}
			if a, ok := inner.(And); ok {
				out = append(out, a.Predicates...)
			} else if inner != nil {
				out = append(out, inner)
			}
		default:
			out = append(out, p)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return And{Predicates: out}
}
