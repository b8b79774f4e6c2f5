// Package record is the dynamic item type used when a grid's schema comes
// from a file instead of a Go struct: the CLI, the stores and the
// conformance harness all work on Grid[record.Record].
package record

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/gridq/internal/column"
	"github.com/roach88/gridq/internal/ir"
	"github.com/roach88/gridq/internal/order"
)

// Record is one row: an identity plus typed field values. A missing field
// is null.
type Record struct {
	ID     string
	Fields map[string]ir.Value
}

// Get returns the named field, or nil.
func (r Record) Get(name string) ir.Value {
	return r.Fields[name]
}

// Equal compares records by identity. Records hold maps, so the grid's
// default equality would compare them structurally.
func Equal(a, b Record) bool { return a.ID == b.ID }

// Schema is a resolved GridSpec: parsed kinds in column order.
type Schema struct {
	Spec  ir.GridSpec
	Kinds map[string]ir.ValueKind
	Names []string
}

// NewSchema resolves the kinds of spec's columns.
func NewSchema(spec ir.GridSpec) (*Schema, error) {
	s := &Schema{Spec: spec, Kinds: make(map[string]ir.ValueKind, len(spec.Columns))}
	for _, c := range spec.Columns {
		if c.Name == "" {
			return nil, fmt.Errorf("column name is required")
		}
		if strings.EqualFold(c.Name, "id") {
			return nil, fmt.Errorf("column %q: the name is reserved for the record id", c.Name)
		}
		if _, dup := s.Kinds[c.Name]; dup {
			return nil, fmt.Errorf("column %q is declared twice", c.Name)
		}
		kind, err := ir.ParseValueKind(c.Kind)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		s.Kinds[c.Name] = kind
		s.Names = append(s.Names, c.Name)
	}
	return s, nil
}

// Columns builds the grid columns of spec over records.
func Columns(spec ir.GridSpec) ([]*column.Column[Record], error) {
	s, err := NewSchema(spec)
	if err != nil {
		return nil, err
	}
	return s.Columns()
}

// Columns builds grid columns reading record fields.
func (s *Schema) Columns() ([]*column.Column[Record], error) {
	cols := make([]*column.Column[Record], 0, len(s.Spec.Columns))
	for _, c := range s.Spec.Columns {
		kind := s.Kinds[c.Name]
		var opts []column.Option
		if !c.IsSortable() {
			opts = append(opts, column.Unsortable())
		}
		if !c.IsFilterable() {
			opts = append(opts, column.Unfilterable())
		}
		if len(c.Operators) > 0 {
			ops := make([]ir.Operator, len(c.Operators))
			for i, name := range c.Operators {
				op, err := ir.ParseOperatorFor(kind, name)
				if err != nil {
					return nil, fmt.Errorf("column %q: %w", c.Name, err)
				}
				ops[i] = op
			}
			opts = append(opts, column.WithOperators(ops...))
		}
		switch c.Comparer {
		case "":
		case "natural":
			opts = append(opts, column.WithComparer(order.Natural))
		default:
			return nil, fmt.Errorf("column %q: unknown comparer %q", c.Name, c.Comparer)
		}

		name := c.Name
		cols = append(cols, column.New(name, kind, func(r Record) ir.Value { return r.Fields[name] }, opts...))
	}
	return cols, nil
}

// FromMap converts decoded YAML/JSON fields into a record. Keys must name
// columns; "id" is the identity.
func (s *Schema) FromMap(id string, m map[string]any) (Record, error) {
	r := Record{ID: id, Fields: make(map[string]ir.Value, len(m))}
	for _, key := range slices.Sorted(maps.Keys(m)) {
		if key == "id" {
			r.ID = fmt.Sprint(m[key])
			continue
		}
		kind, ok := s.Kinds[key]
		if !ok {
			return Record{}, fmt.Errorf("record %s: unknown field %q", r.ID, key)
		}
		v, err := ir.FromAny(kind, m[key])
		if err != nil {
			return Record{}, fmt.Errorf("record %s: field %q: %w", r.ID, key, err)
		}
		if v != nil {
			r.Fields[key] = v
		}
	}
	if r.ID == "" {
		return Record{}, fmt.Errorf("record id is required")
	}
	return r, nil
}

// ToMap renders a record with its fields in external text form. Null fields
// are omitted.
func (s *Schema) ToMap(r Record) map[string]any {
	out := map[string]any{"id": r.ID}
	for _, name := range s.Names {
		if v := r.Fields[name]; v != nil {
			out[name] = ir.Format(v)
		}
	}
	return out
}

// Load reads a YAML list of records. Records without an id get their
// 1-based position zero-padded, so id order is file order.
func (s *Schema) Load(r io.Reader) ([]Record, error) {
	var raw []map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return s.FromMaps(raw)
}

// FromMaps converts decoded records, assigning positional ids where absent.
func (s *Schema) FromMaps(raw []map[string]any) ([]Record, error) {
	out := make([]Record, 0, len(raw))
	for i, m := range raw {
		rec, err := s.FromMap(PositionalID(i), m)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// PositionalID is the id given to the i-th (0-based) record without one.
func PositionalID(i int) string {
	return fmt.Sprintf("%06d", i+1)
}
