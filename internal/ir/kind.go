package ir

import (
	"fmt"
	"slices"
	"strings"
)

// ValueKind is the declared kind of a column's values.
//
// The kind is resolved once, when a column is declared, and selects both the
// operator table (OperatorsFor) and the natural ordering used by sorting.
type ValueKind int

const (
	KindOther ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindEnum
	KindDateTime
	KindDateOnly
	KindGuid
)

var kindNames = map[ValueKind]string{
	KindOther:    "other",
	KindString:   "string",
	KindNumber:   "number",
	KindBool:     "bool",
	KindEnum:     "enum",
	KindDateTime: "datetime",
	KindDateOnly: "date",
	KindGuid:     "guid",
}

// String returns the schema name of the kind ("string", "number", ...).
func (k ValueKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText encodes the kind by its schema name.
func (k ValueKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a schema name.
func (k *ValueKind) UnmarshalText(b []byte) error {
	parsed, err := ParseValueKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseValueKind resolves a schema name to its kind.
// Accepts the names produced by String plus "boolean" and "uuid" aliases.
func ParseValueKind(s string) (ValueKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "text":
		return KindString, nil
	case "number", "numeric":
		return KindNumber, nil
	case "bool", "boolean":
		return KindBool, nil
	case "enum":
		return KindEnum, nil
	case "datetime", "timestamp":
		return KindDateTime, nil
	case "date", "dateonly":
		return KindDateOnly, nil
	case "guid", "uuid":
		return KindGuid, nil
	case "other", "":
		return KindOther, nil
	default:
		return KindOther, fmt.Errorf("unknown value kind %q", s)
	}
}

// Operator tags one filter operation. The empty Operator means "no operator
// chosen yet" and always matches.
type Operator string

const (
	OpNone Operator = ""

	// String operators. OpEqual and OpNotEqual are shared with Number and Guid.
	OpContains    Operator = "contains"
	OpNotContains Operator = "not contains"
	OpEqual       Operator = "equals"
	OpNotEqual    Operator = "not equals"
	OpStartsWith  Operator = "starts with"
	OpEndsWith    Operator = "ends with"
	OpEmpty       Operator = "is empty"
	OpNotEmpty    Operator = "is not empty"

	// Numeric operators.
	OpNumEqual           Operator = "="
	OpNumNotEqual        Operator = "!="
	OpGreaterThan        Operator = ">"
	OpGreaterThanOrEqual Operator = ">="
	OpLessThan           Operator = "<"
	OpLessThanOrEqual    Operator = "<="

	// Bool, Enum and date operators.
	OpIs         Operator = "is"
	OpIsNot      Operator = "is not"
	OpAfter      Operator = "is after"
	OpOnOrAfter  Operator = "is on or after"
	OpBefore     Operator = "is before"
	OpOnOrBefore Operator = "is on or before"
)

// operatorTable lists the allowed operators per kind. The first entry is the
// default operator picked when a filter switches to a column of that kind.
var operatorTable = map[ValueKind][]Operator{
	KindString:   {OpContains, OpNotContains, OpEqual, OpNotEqual, OpStartsWith, OpEndsWith, OpEmpty, OpNotEmpty},
	KindNumber:   {OpNumEqual, OpNumNotEqual, OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual},
	KindBool:     {OpIs},
	KindEnum:     {OpIs, OpIsNot},
	KindDateTime: {OpIs, OpIsNot, OpAfter, OpOnOrAfter, OpBefore, OpOnOrBefore, OpEmpty, OpNotEmpty},
	KindDateOnly: {OpIs, OpIsNot, OpAfter, OpOnOrAfter, OpBefore, OpOnOrBefore, OpEmpty, OpNotEmpty},
	KindGuid:     {OpEqual, OpNotEqual},
}

// OperatorsFor returns the operators defined for a kind, default first.
// The returned slice is a copy. KindOther has no operators.
func OperatorsFor(kind ValueKind) []Operator {
	return slices.Clone(operatorTable[kind])
}

// Supports reports whether op is defined for kind.
func Supports(kind ValueKind, op Operator) bool {
	return slices.Contains(operatorTable[kind], op)
}

// RequiresValue reports whether the operator needs a filter value to mean
// anything. Only the emptiness tests stand on their own.
func (op Operator) RequiresValue() bool {
	return op != OpEmpty && op != OpNotEmpty
}

// Negated reports whether the operator is the negative form of a test. Null
// field values satisfy negated operators and fail positive ones.
func (op Operator) Negated() bool {
	switch op {
	case OpNotContains, OpNotEqual, OpNumNotEqual, OpIsNot:
		return true
	default:
		return false
	}
}

// ParseOperator resolves an operator by its tag, accepting the Go-style
// spellings used on command lines ("NotContains", "greater_than", "gte").
func ParseOperator(s string) (Operator, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if op, ok := operatorAliases[key]; ok {
		return op, nil
	}
	for _, ops := range operatorTable {
		for _, op := range ops {
			if string(op) == key {
				return op, nil
			}
		}
	}
	return OpNone, fmt.Errorf("unknown operator %q", s)
}

var operatorAliases = map[string]Operator{
	"":             OpNone,
	"none":         OpNone,
	"notcontains":  OpNotContains,
	"not_contains": OpNotContains,
	"equal":        OpEqual,
	"eq":           OpEqual,
	"notequal":     OpNotEqual,
	"not_equal":    OpNotEqual,
	"ne":           OpNotEqual,
	"startswith":   OpStartsWith,
	"starts_with":  OpStartsWith,
	"endswith":     OpEndsWith,
	"ends_with":    OpEndsWith,
	"empty":        OpEmpty,
	"notempty":     OpNotEmpty,
	"not_empty":    OpNotEmpty,
	"gt":           OpGreaterThan,
	"greater_than": OpGreaterThan,
	"gte":          OpGreaterThanOrEqual,
	"lt":           OpLessThan,
	"less_than":    OpLessThan,
	"lte":          OpLessThanOrEqual,
	"==":           OpNumEqual,
	"isnot":        OpIsNot,
	"is_not":       OpIsNot,
	"after":        OpAfter,
	"onorafter":    OpOnOrAfter,
	"on_or_after":  OpOnOrAfter,
	"before":       OpBefore,
	"onorbefore":   OpOnOrBefore,
	"on_or_before": OpOnOrBefore,
}

// ParseOperatorFor resolves an operator for a column kind. The shared
// spellings "equals"/"not equals" map onto "="/"!=" for numbers and back.
func ParseOperatorFor(kind ValueKind, s string) (Operator, error) {
	op, err := ParseOperator(s)
	if err != nil {
		return OpNone, err
	}
	switch {
	case kind == KindNumber && op == OpEqual:
		op = OpNumEqual
	case kind == KindNumber && op == OpNotEqual:
		op = OpNumNotEqual
	case kind != KindNumber && op == OpNumEqual:
		op = OpEqual
	case kind != KindNumber && op == OpNumNotEqual:
		op = OpNotEqual
	}
	if op != OpNone && !Supports(kind, op) {
		return OpNone, fmt.Errorf("operator %q is not defined for %s values", op, kind)
	}
	return op, nil
}
