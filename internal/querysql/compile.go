package querysql

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/gridq/internal/queryir"
)

// Compiler compiles queryir queries to parameterized SQL.
//
// CRITICAL: Every Select ends its ORDER BY with the id column so paging is
// deterministic. Values are always bound as parameters, never interpolated.
// Identifiers are quoted; callers validate them with queryir.Validate first.
type Compiler struct {
	Dialect Dialect
}

// NewCompiler returns a compiler for d.
func NewCompiler(d Dialect) *Compiler {
	return &Compiler{Dialect: d}
}

// Compile converts a query to SQL and its parameters.
func (c *Compiler) Compile(q queryir.Query) (string, []any, error) {
	b := &builder{dialect: c.Dialect}
	var err error
	switch query := q.(type) {
	case nil:
		return "", nil, fmt.Errorf("cannot compile nil query")
	case queryir.Select:
		err = b.selectSQL(query)
	case *queryir.Select:
		err = b.selectSQL(*query)
	case queryir.Count:
		err = b.countSQL(query)
	case *queryir.Count:
		err = b.countSQL(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
	if err != nil {
		return "", nil, err
	}
	return b.sql.String(), b.params, nil
}

// builder accumulates one statement and its parameters.
type builder struct {
	dialect Dialect
	sql     strings.Builder
	params  []any
}

func (b *builder) write(parts ...string) {
	for _, p := range parts {
		b.sql.WriteString(p)
	}
}

// bind records a parameter and returns its placeholder.
func (b *builder) bind(v any) string {
	b.params = append(b.params, v)
	return b.dialect.placeholder(len(b.params))
}

func (b *builder) selectSQL(q queryir.Select) error {
	b.write("SELECT ", fieldList(q.Fields), " FROM ", quote(q.From))
	if err := b.where(q.Filter); err != nil {
		return err
	}

	b.write(" ORDER BY ")
	for _, k := range q.Order {
		if k.Field == queryir.IDField {
			continue
		}
		b.write(quote(k.Field))
		if k.Descending {
			b.write(" DESC NULLS LAST, ")
		} else {
			b.write(" ASC NULLS FIRST, ")
		}
	}
	b.write(quote(queryir.IDField), " ASC")

	switch {
	case q.Limit > 0:
		b.write(" LIMIT ", b.bind(int64(q.Limit)))
	case q.Offset > 0 && b.dialect == SQLite:
		// SQLite only accepts OFFSET after a LIMIT.
		b.write(" LIMIT -1")
	}
	if q.Offset > 0 {
		b.write(" OFFSET ", b.bind(int64(q.Offset)))
	}
	return nil
}

func (b *builder) countSQL(q queryir.Count) error {
	b.write("SELECT COUNT(*) FROM ", quote(q.From))
	return b.where(q.Filter)
}

func (b *builder) where(p queryir.Predicate) error {
	if p == nil {
		return nil
	}
	b.write(" WHERE ")
	return b.predicate(p)
}

func fieldList(fields []string) string {
	if len(fields) == 0 {
		return "*"
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = quote(f)
	}
	return strings.Join(quoted, ", ")
}

// predicate writes p. Composite predicates are parenthesised.
func (b *builder) predicate(p queryir.Predicate) error {
	switch pred := p.(type) {
	case queryir.Const:
		if pred.Value {
			b.write("1 = 1")
		} else {
			b.write("1 = 0")
		}
	case queryir.IsNull:
		col := quote(pred.Field)
		if pred.Empty {
			b.write("(", col, " IS NULL OR ", col, " = '')")
		} else {
			b.write(col, " IS NULL")
		}
	case queryir.Compare:
		return b.compare(pred)
	case queryir.Match:
		b.match(pred)
	case queryir.Not:
		b.write("NOT (")
		if err := b.predicate(pred.Predicate); err != nil {
			return err
		}
		b.write(")")
	case queryir.And:
		return b.join(pred.Predicates, " AND ", "1 = 1")
	case queryir.Or:
		return b.join(pred.Predicates, " OR ", "1 = 0")
	default:
		return fmt.Errorf("unsupported predicate type: %T", p)
	}
	return nil
}

func (b *builder) join(preds []queryir.Predicate, sep, empty string) error {
	if len(preds) == 0 {
		b.write(empty)
		return nil
	}
	b.write("(")
	for i, p := range preds {
		if i > 0 {
			b.write(sep)
		}
		if err := b.predicate(p); err != nil {
			return err
		}
	}
	b.write(")")
	return nil
}

func (b *builder) compare(p queryir.Compare) error {
	if p.Value == nil {
		return fmt.Errorf("field %q compared to null", p.Field)
	}
	param, err := b.dialect.Param(p.Value)
	if err != nil {
		return fmt.Errorf("convert value: %w", err)
	}
	col := quote(p.Field)
	if s, ok := param.(string); ok && p.Fold {
		col = "lower(" + col + ")"
		param = b.fold(s)
	}
	b.write(col, " ", p.Op.String(), " ", b.bind(param))
	return nil
}

// match writes a substring test without LIKE, so the needle needs no
// escaping.
func (b *builder) match(p queryir.Match) {
	col := quote(p.Field)
	needle := p.Value
	if p.Fold {
		col = "lower(" + col + ")"
		needle = b.fold(needle)
	}

	if b.dialect == Postgres {
		switch p.Mode {
		case queryir.Prefix:
			b.write("strpos(", col, ", ", b.bind(needle), ") = 1")
		case queryir.Suffix:
			n := b.bind(needle)
			b.write("right(", col, ", length(", n, ")) = ", n)
		default:
			b.write("strpos(", col, ", ", b.bind(needle), ") > 0")
		}
		return
	}

	switch p.Mode {
	case queryir.Prefix:
		b.write("instr(", col, ", ", b.bind(needle), ") = 1")
	case queryir.Suffix:
		// SQLite's ? markers are positional, so the needle binds twice.
		b.write("substr(", col, ", length(", col, ") - length(", b.bind(needle), ") + 1) = ", b.bind(needle))
	default:
		b.write("instr(", col, ", ", b.bind(needle), ") > 0")
	}
}

// fold lowers a bound string the way the dialect's lower() lowers the
// column. SQLite's built-in lower() only folds ASCII letters.
func (b *builder) fold(s string) string {
	if b.dialect == SQLite {
		return asciiLower(s)
	}
	return cases.Lower(language.Und).String(s)
}

func asciiLower(s string) string {
	buf := []byte(s)
	for i, c := range buf {
		if 'A' <= c && c <= 'Z' {
			buf[i] = c + 'a' - 'A'
		}
	}
	return string(buf)
}
