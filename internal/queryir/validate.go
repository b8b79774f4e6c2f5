package queryir

import (
	"fmt"
	"slices"
)

// ValidationResult lists the problems found in a query. A store refuses to
// compile a query with problems.
type ValidationResult struct {
	Valid    bool
	Problems []string
}

// Err returns the problems as one error, or nil.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("invalid query: %v", r.Problems)
}

// Validate checks that q only references known fields. IDField is always
// known. Field names reach SQL as identifiers, so an unknown name is
// rejected here rather than quoted blindly.
//
// Validate is a pure function with no side effects.
func Validate(q Query, fields []string) ValidationResult {
	v := &validator{fields: fields, problems: []string{}}
	v.validateQuery(q)
	return ValidationResult{Valid: len(v.problems) == 0, Problems: v.problems}
}

type validator struct {
	fields   []string
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) field(name string) {
	if name == IDField || slices.Contains(v.fields, name) {
		return
	}
	v.addProblem("unknown field %q", name)
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addProblem("nil query")
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	case Count:
		v.from(query.From)
		v.validatePredicate(query.Filter)
	case *Count:
		v.from(query.From)
		v.validatePredicate(query.Filter)
	default:
		v.addProblem("unknown query type %T", q)
	}
}

func (v *validator) from(table string) {
	if table == "" {
		v.addProblem("table name is required")
	}
}

func (v *validator) validateSelect(sel Select) {
	v.from(sel.From)
	for _, f := range sel.Fields {
		v.field(f)
	}
	v.validatePredicate(sel.Filter)
	for _, k := range sel.Order {
		v.field(k.Field)
	}
	if sel.Offset < 0 {
		v.addProblem("negative offset %d", sel.Offset)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil, Const:
	case Compare:
		v.field(pred.Field)
		if pred.Value == nil {
			v.addProblem("field %q compared to null; use IsNull", pred.Field)
		}
	case Match:
		v.field(pred.Field)
	case IsNull:
		v.field(pred.Field)
	case Not:
		if pred.Predicate == nil {
			v.addProblem("negation without operand")
		}
		v.validatePredicate(pred.Predicate)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case Or:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	default:
		v.addProblem("unknown predicate type %T", p)
	}
}
