package queryir

import "github.com/roach88/gridq/internal/ir"

// IDField is the record identity column every store keeps.
const IDField = "id"

// Query is a backend-neutral query. Sealed to this package.
type Query interface {
	queryNode()
}

// Predicate is a row filter. Sealed to this package.
type Predicate interface {
	predicateNode()
}

// Select reads a window of ordered rows.
//
//	SELECT <fields> FROM <from> WHERE <filter> ORDER BY <order>, id LIMIT <limit> OFFSET <offset>
//
// Empty Fields selects every column. Limit <= 0 means no limit.
type Select struct {
	From   string
	Fields []string
	Filter Predicate // nil = no filter
	Order  []OrderKey
	Offset int
	Limit  int
}

func (Select) queryNode() {}

// Count counts the rows a Select with the same filter would see, ignoring
// its window. Paged sources report it as the total.
type Count struct {
	From   string
	Filter Predicate
}

func (Count) queryNode() {}

// OrderKey is one ORDER BY term.
type OrderKey struct {
	Field      string
	Descending bool
}

// CompareOp is a binary comparison.
type CompareOp int

const (
	Eq CompareOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

func (op CompareOp) String() string {
	switch op {
	case Ne:
		return "<>"
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	default:
		return "="
	}
}

// Compare is <field> <op> <value>. Value is never nil; Fold compares
// case-folded text.
type Compare struct {
	Field string
	Op    CompareOp
	Value ir.Value
	Fold  bool
}

func (Compare) predicateNode() {}

// MatchMode selects the substring test of a Match.
type MatchMode int

const (
	Contains MatchMode = iota
	Prefix
	Suffix
)

func (m MatchMode) String() string {
	switch m {
	case Prefix:
		return "prefix"
	case Suffix:
		return "suffix"
	default:
		return "contains"
	}
}

// Match is a substring test on text.
type Match struct {
	Field string
	Mode  MatchMode
	Value string
	Fold  bool
}

func (Match) predicateNode() {}

// IsNull holds when the field is null. With Empty it also holds for the
// empty string.
type IsNull struct {
	Field string
	Empty bool
}

func (IsNull) predicateNode() {}

// Not negates a predicate.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// And holds when every predicate holds. Empty is true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or holds when any predicate holds. Empty is false.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Const is a constant predicate.
type Const struct {
	Value bool
}

func (Const) predicateNode() {}
