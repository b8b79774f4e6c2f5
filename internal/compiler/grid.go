// Package compiler turns grid schemas written in CUE into ir.GridSpec.
//
// A schema declares one grid per field under the top-level "grid" struct:
//
//	grid: people: {
//		options: {multi_selection: true, rows_per_page: 20}
//		columns: {
//			name:   string
//			age:    number
//			status: "open" | "closed"
//			note: {kind: "string", sortable: false, filterable: false}
//			code: {kind: "string", comparer: "natural", operators: ["eq", "starts with"]}
//		}
//	}
//
// A column is either a CUE type (string, int, float, number, bool, or a
// disjunction of string literals for an enum) or a struct naming its kind
// explicitly. Column order is declaration order.
package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/gridq/internal/ir"
)

// CompileGrid parses a CUE value into a GridSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the grid struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`grid: people: { columns: { name: string } }`)
//	spec, err := CompileGrid(v.LookupPath(cue.ParsePath("grid.people")))
func CompileGrid(v cue.Value) (*ir.GridSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.GridSpec{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	colsVal := v.LookupPath(cue.ParsePath("columns"))
	if !colsVal.Exists() {
		return nil, &CompileError{Field: "columns", Message: "columns are required", Pos: v.Pos()}
	}
	cols, err := parseColumns(colsVal)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, &CompileError{Field: "columns", Message: "at least one column is required", Pos: colsVal.Pos()}
	}
	spec.Columns = cols

	if optVal := v.LookupPath(cue.ParsePath("options")); optVal.Exists() {
		spec.Options, err = parseOptions(optVal)
		if err != nil {
			return nil, err
		}
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		switch iter.Label() {
		case "columns", "options":
		default:
			return nil, &CompileError{
				Field:   iter.Label(),
				Message: "unknown grid field",
				Pos:     iter.Value().Pos(),
			}
		}
	}

	return spec, nil
}

// parseColumns extracts column declarations in declaration order.
func parseColumns(v cue.Value) ([]ir.ColumnSpec, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var cols []ir.ColumnSpec
	for iter.Next() {
		name := iter.Label()
		if strings.EqualFold(name, "id") {
			return nil, &CompileError{
				Field:   "columns." + name,
				Message: "the name is reserved for the record id",
				Pos:     iter.Value().Pos(),
			}
		}
		col, err := parseColumn(name, iter.Value())
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func parseColumn(name string, v cue.Value) (ir.ColumnSpec, error) {
	field := "columns." + name
	col := ir.ColumnSpec{Name: name}

	if v.IncompleteKind() != cue.StructKind {
		kind, members, err := inferKind(field, v)
		if err != nil {
			return col, err
		}
		col.Kind = kind
		col.Members = members
		return col, nil
	}

	iter, err := v.Fields()
	if err != nil {
		return col, formatCUEError(err)
	}
	for iter.Next() {
		fv := iter.Value()
		key := iter.Label()
		switch key {
		case "kind":
			if col.Kind, err = fv.String(); err != nil {
				return col, formatCUEError(err)
			}
		case "sortable":
			b, err := fv.Bool()
			if err != nil {
				return col, formatCUEError(err)
			}
			col.Sortable = &b
		case "filterable":
			b, err := fv.Bool()
			if err != nil {
				return col, formatCUEError(err)
			}
			col.Filterable = &b
		case "comparer":
			if col.Comparer, err = fv.String(); err != nil {
				return col, formatCUEError(err)
			}
		case "operators":
			if col.Operators, err = stringList(fv); err != nil {
				return col, err
			}
		case "members":
			if col.Members, err = stringList(fv); err != nil {
				return col, err
			}
		default:
			return col, &CompileError{Field: field + "." + key, Message: "unknown column field", Pos: fv.Pos()}
		}
	}

	if col.Kind == "" {
		return col, &CompileError{Field: field + ".kind", Message: "column kind is required", Pos: v.Pos()}
	}
	if err := checkColumn(field, col, v); err != nil {
		return col, err
	}
	return col, nil
}

// inferKind maps a CUE type onto a value kind. A disjunction of string
// literals is an enum whose members are the literals.
func inferKind(field string, v cue.Value) (string, []string, error) {
	if op, args := v.Expr(); op == cue.OrOp {
		members := make([]string, 0, len(args))
		for _, a := range args {
			s, err := a.String()
			if err != nil {
				return "", nil, &CompileError{Field: field, Message: "disjunctions must list string literals", Pos: a.Pos()}
			}
			members = append(members, s)
		}
		return ir.KindEnum.String(), members, nil
	}

	switch v.IncompleteKind() {
	case cue.StringKind:
		return ir.KindString.String(), nil, nil
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		return ir.KindNumber.String(), nil, nil
	case cue.BoolKind:
		return ir.KindBool.String(), nil, nil
	default:
		return "", nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unsupported type kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// checkColumn validates the kind, operators and comparer of an explicit
// column declaration.
func checkColumn(field string, col ir.ColumnSpec, v cue.Value) error {
	kind, err := ir.ParseValueKind(col.Kind)
	if err != nil {
		return &CompileError{Field: field + ".kind", Message: err.Error(), Pos: v.LookupPath(cue.ParsePath("kind")).Pos()}
	}
	for _, name := range col.Operators {
		if _, err := ir.ParseOperatorFor(kind, name); err != nil {
			return &CompileError{Field: field + ".operators", Message: err.Error(), Pos: v.LookupPath(cue.ParsePath("operators")).Pos()}
		}
	}
	switch col.Comparer {
	case "", "natural":
	default:
		return &CompileError{
			Field:   field + ".comparer",
			Message: fmt.Sprintf("unknown comparer %q (want \"natural\")", col.Comparer),
			Pos:     v.LookupPath(cue.ParsePath("comparer")).Pos(),
		}
	}
	if len(col.Members) > 0 && kind != ir.KindEnum {
		return &CompileError{Field: field + ".members", Message: "members are only allowed on enum columns", Pos: v.Pos()}
	}
	return nil
}

// parseOptions reads the grid options. rows_per_page takes a size or "all".
func parseOptions(v cue.Value) (ir.GridOptions, error) {
	var opts ir.GridOptions
	iter, err := v.Fields()
	if err != nil {
		return opts, formatCUEError(err)
	}
	for iter.Next() {
		fv := iter.Value()
		key := iter.Label()
		var err error
		switch key {
		case "multi_selection":
			opts.MultiSelection, err = fv.Bool()
		case "expand_single_row":
			opts.ExpandSingleRow, err = fv.Bool()
		case "allow_unsorted_state":
			opts.AllowUnsortedState, err = fv.Bool()
		case "rows_per_page":
			opts.RowsPerPage, err = rowsPerPage(fv)
		default:
			return opts, &CompileError{Field: "options." + key, Message: "unknown option", Pos: fv.Pos()}
		}
		if err != nil {
			return opts, formatCUEError(err)
		}
	}
	return opts, nil
}

func rowsPerPage(v cue.Value) (int, error) {
	if s, err := v.String(); err == nil {
		if s == "all" {
			return -1, nil
		}
		return 0, &CompileError{Field: "options.rows_per_page", Message: fmt.Sprintf("want a size or \"all\", got %q", s), Pos: v.Pos()}
	}
	n, err := v.Int64()
	if err != nil {
		return 0, err
	}
	if n < -1 {
		return 0, &CompileError{Field: "options.rows_per_page", Message: "size must be positive, 0 for the default, or -1 for all", Pos: v.Pos()}
	}
	return int(n), nil
}

func stringList(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	var ce *CompileError
	if errors.As(err, &ce) {
		return err
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

// CompileAll compiles every grid declared under the top-level "grid" field
// of v, in declaration order.
func CompileAll(v cue.Value) ([]ir.GridSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	gridsVal := v.LookupPath(cue.ParsePath("grid"))
	if !gridsVal.Exists() {
		return nil, &CompileError{Field: "grid", Message: "no grids declared", Pos: v.Pos()}
	}
	iter, err := gridsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var specs []ir.GridSpec
	for iter.Next() {
		spec, err := CompileGrid(iter.Value())
		if err != nil {
			return nil, err
		}
		specs = append(specs, *spec)
	}
	return specs, nil
}
