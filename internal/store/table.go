package store

import (
	"fmt"

	"github.com/roach88/gridq/internal/ir"
	"github.com/roach88/gridq/internal/queryir"
	"github.com/roach88/gridq/internal/querysql"
	"github.com/roach88/gridq/internal/record"
)

// Statement is a compiled query and its parameters.
type Statement struct {
	SQL  string
	Args []any
}

// Table maps one record schema onto a SQL table.
type Table struct {
	Name    string
	Schema  *record.Schema
	Dialect querysql.Dialect

	compiler *querysql.Compiler
	cols     []querysql.ColumnDef
}

// NewTable returns the table for schema, named after its grid.
func NewTable(schema *record.Schema, d querysql.Dialect) (*Table, error) {
	if schema.Spec.Name == "" {
		return nil, fmt.Errorf("grid name is required to derive a table name")
	}
	t := &Table{
		Name:     schema.Spec.Name,
		Schema:   schema,
		Dialect:  d,
		compiler: querysql.NewCompiler(d),
	}
	for _, name := range schema.Names {
		t.cols = append(t.cols, querysql.ColumnDef{Name: name, Kind: schema.Kinds[name]})
	}
	return t, nil
}

// CreateSQL returns the CREATE TABLE statement.
func (t *Table) CreateSQL() string { return t.Dialect.CreateTable(t.Name, t.cols) }

// DropSQL returns the DROP TABLE statement.
func (t *Table) DropSQL() string { return t.Dialect.DropTable(t.Name) }

// UpsertSQL returns the statement taking UpsertArgs.
func (t *Table) UpsertSQL() string { return t.Dialect.Upsert(t.Name, t.cols) }

// UpsertArgs returns the parameters storing r: its id, then one value per
// column.
func (t *Table) UpsertArgs(r record.Record) ([]any, error) {
	args := make([]any, 0, len(t.cols)+1)
	args = append(args, r.ID)
	for _, c := range t.cols {
		p, err := t.Dialect.Param(r.Fields[c.Name])
		if err != nil {
			return nil, fmt.Errorf("record %s: field %q: %w", r.ID, c.Name, err)
		}
		args = append(args, p)
	}
	return args, nil
}

// Queries compiles q into the page query and the query counting every row
// that matches q's filters.
func (t *Table) Queries(q ir.QuerySpec) (rows, count Statement, err error) {
	sel, err := queryir.FromSpec(t.Name, q)
	if err != nil {
		return rows, count, fmt.Errorf("lower query: %w", err)
	}
	sel.Fields = t.fields()
	if err := queryir.Validate(sel, t.Schema.Names).Err(); err != nil {
		return rows, count, err
	}

	rows.SQL, rows.Args, err = t.compiler.Compile(sel)
	if err != nil {
		return rows, count, fmt.Errorf("compile page query: %w", err)
	}
	count.SQL, count.Args, err = t.compiler.Compile(queryir.CountOf(sel))
	if err != nil {
		return rows, count, fmt.Errorf("compile count query: %w", err)
	}
	return rows, count, nil
}

// fields lists the selected columns: the id, then the schema's columns.
func (t *Table) fields() []string {
	out := make([]string, 0, len(t.cols)+1)
	out = append(out, queryir.IDField)
	for _, c := range t.cols {
		out = append(out, c.Name)
	}
	return out
}

// Decode converts one row, scanned in fields order, into a record.
func (t *Table) Decode(raw []any) (record.Record, error) {
	if len(raw) != len(t.cols)+1 {
		return record.Record{}, fmt.Errorf("row has %d columns, want %d", len(raw), len(t.cols)+1)
	}
	id, err := t.Dialect.Scan(ir.KindString, raw[0])
	if err != nil || id == nil {
		return record.Record{}, fmt.Errorf("row id: unreadable value %v", raw[0])
	}
	r := record.Record{ID: ir.Format(id), Fields: make(map[string]ir.Value, len(t.cols))}
	for i, c := range t.cols {
		v, err := t.Dialect.Scan(c.Kind, raw[i+1])
		if err != nil {
			return record.Record{}, fmt.Errorf("record %s: column %q: %w", r.ID, c.Name, err)
		}
		if v != nil {
			r.Fields[c.Name] = v
		}
	}
	return r, nil
}
