package querysql

import (
	"strings"

	"github.com/roach88/gridq/internal/ir"
	"github.com/roach88/gridq/internal/queryir"
)

// ColumnDef is one stored column besides the id.
type ColumnDef struct {
	Name string
	Kind ir.ValueKind
}

// CreateTable returns the DDL for a record table: a text id primary key plus
// one column per definition.
func (d Dialect) CreateTable(table string, cols []ColumnDef) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(quote(table))
	b.WriteString(" (")
	b.WriteString(quote(queryir.IDField))
	b.WriteString(" ")
	b.WriteString(d.ColumnType(ir.KindString))
	b.WriteString(" PRIMARY KEY")
	for _, c := range cols {
		b.WriteString(", ")
		b.WriteString(quote(c.Name))
		b.WriteString(" ")
		b.WriteString(d.ColumnType(c.Kind))
	}
	b.WriteString(")")
	return b.String()
}

// Upsert returns an insert-or-update statement taking the id followed by one
// parameter per column, in order.
func (d Dialect) Upsert(table string, cols []ColumnDef) string {
	names := make([]string, 0, len(cols)+1)
	marks := make([]string, 0, len(cols)+1)
	names = append(names, quote(queryir.IDField))
	marks = append(marks, d.placeholder(1))
	sets := make([]string, 0, len(cols))
	for i, c := range cols {
		names = append(names, quote(c.Name))
		marks = append(marks, d.placeholder(i+2))
		sets = append(sets, quote(c.Name)+" = excluded."+quote(c.Name))
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(quote(table))
	b.WriteString(" (")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString(") VALUES (")
	b.WriteString(strings.Join(marks, ", "))
	b.WriteString(") ON CONFLICT (")
	b.WriteString(quote(queryir.IDField))
	if len(sets) == 0 {
		b.WriteString(") DO NOTHING")
		return b.String()
	}
	b.WriteString(") DO UPDATE SET ")
	b.WriteString(strings.Join(sets, ", "))
	return b.String()
}

// DropTable returns the DDL removing a record table.
func (d Dialect) DropTable(table string) string {
	return "DROP TABLE IF EXISTS " + quote(table)
}
