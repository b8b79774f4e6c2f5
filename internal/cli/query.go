package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/gridq/internal/filter"
	"github.com/roach88/gridq/internal/grid"
	"github.com/roach88/gridq/internal/ir"
	"github.com/roach88/gridq/internal/order"
	"github.com/roach88/gridq/internal/page"
	"github.com/roach88/gridq/internal/record"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Grid     string
	Filters  []string // field:op[:value]
	Sorts    []string // field[:asc|desc]
	Page     int      // 1-based
	Rows     int      // 0: configured default, -1: all
	DB       string
	Postgres string
	Insens   bool
}

// QueryResult is the page a query shows.
type QueryResult struct {
	Grid        string           `json:"grid"`
	Page        int              `json:"page"` // 1-based
	Pages       int              `json:"pages"`
	RowsPerPage int              `json:"rows_per_page"`
	Total       int              `json:"total"`
	Items       []map[string]any `json:"items"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <grid.cue> [items.yaml]",
		Short: "Filter, sort and page items through a grid",
		Long: `Run one grid query and print the page it shows.

Items come from a YAML file, or from a database loaded with "gridq load"
when --db or --postgres is given.

Examples:
  gridq query people.cue people.yaml --filter "age:gt:30" --sort name
  gridq query people.cue people.yaml --filter "name:contains:al" -i --rows all
  gridq query people.cue --db people.db --sort age:desc --page 2`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			items := ""
			if len(args) == 2 {
				items = args[1]
			}
			return runQuery(cmd.Context(), opts, args[0], items, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Grid, "grid", "", "grid to use when the schema declares several")
	cmd.Flags().StringArrayVar(&opts.Filters, "filter", nil, "filter as field:op[:value] (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Sorts, "sort", nil, "sort as field[:asc|desc] (repeatable, in priority order)")
	cmd.Flags().BoolVarP(&opts.Insens, "ignore-case", "i", false, "string filters ignore letter case")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page to show, from 1")
	cmd.Flags().Var(newRowsValue(&opts.Rows), "rows", `rows per page, or "all"`)
	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database written by load")
	cmd.Flags().StringVar(&opts.Postgres, "postgres", "", "PostgreSQL connection string")

	return cmd
}

func runQuery(ctx context.Context, opts *QueryOptions, schemaPath, itemsPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(opts.Config.Timeout)*time.Second)
	defer cancel()

	schema, err := loadSchema(schemaPath, opts.Grid)
	if err != nil {
		return loadErrorExit(formatter, err)
	}
	cols, err := schema.Columns()
	if err != nil {
		return loadErrorExit(formatter, &LoadError{Code: ErrCodeInvalidColumn, Message: err.Error()})
	}

	rows := opts.Rows
	if rows == 0 {
		rows = schema.Spec.Options.RowsPerPage
	}
	if rows == 0 {
		rows = opts.Config.RowsPerPage
	}
	cfg := grid.Config[record.Record]{
		Columns:            cols,
		MultiSelection:     schema.Spec.Options.MultiSelection,
		SelectionComparer:  record.Equal,
		ExpandSingleRow:    schema.Spec.Options.ExpandSingleRow,
		AllowUnsortedState: schema.Spec.Options.AllowUnsortedState,
		RowsPerPage:        rows,
		Logger:             opts.Logger,
	}

	db := dbTarget{SQLite: firstNonEmpty(opts.DB, opts.Config.DB), Postgres: firstNonEmpty(opts.Postgres, opts.Config.Postgres)}
	switch {
	case itemsPath != "":
		recs, err := loadItems(itemsPath, schema)
		if err != nil {
			return loadErrorExit(formatter, err)
		}
		formatter.VerboseLog("Loaded %d item(s) from %s", len(recs), itemsPath)
		cfg.Items = recs
	case db.set():
		st, tbl, closeDB, err := db.open(ctx, schema, opts.Logger)
		if err != nil {
			return loadErrorExit(formatter, err)
		}
		defer closeDB()
		formatter.VerboseLog("Querying table %s in %s", tbl.Name, db)
		cfg.ServerData = st.Fetch(tbl)
	default:
		return loadErrorExit(formatter, &LoadError{Code: ErrCodeNotFound, Message: "give an items file, --db or --postgres"})
	}

	g, err := grid.New(cfg)
	if err != nil {
		return loadErrorExit(formatter, &LoadError{Code: ErrCodeInvalidQuery, Message: err.Error()})
	}
	if err := applySorts(g, opts.Sorts); err != nil {
		return loadErrorExit(formatter, err)
	}
	if err := applyFilters(g, schema, opts.Filters, opts.Insens, opts); err != nil {
		return loadErrorExit(formatter, err)
	}

	if err := g.ReloadServerData(ctx); err != nil {
		return loadErrorExit(formatter, dbError("query", err))
	}
	g.SetCurrentPage(opts.Page - 1)
	if err := g.Wait(ctx); err != nil {
		return loadErrorExit(formatter, dbError("query", err))
	}
	if err := g.LastError(); err != nil {
		return loadErrorExit(formatter, dbError("query", err))
	}

	result := QueryResult{
		Grid:        schema.Spec.Name,
		Page:        g.CurrentPage() + 1,
		Pages:       g.PageCount(),
		RowsPerPage: g.RowsPerPage(),
		Total:       g.TotalCount(),
	}
	for _, r := range g.PageItems() {
		result.Items = append(result.Items, schema.ToMap(r))
	}
	if result.Items == nil {
		result.Items = []map[string]any{}
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	headers := append([]string{"id"}, schema.Names...)
	table := make([][]string, 0, len(result.Items))
	for _, r := range g.PageItems() {
		row := make([]string, 0, len(headers))
		row = append(row, r.ID)
		for _, name := range schema.Names {
			row = append(row, ir.Format(r.Get(name)))
		}
		table = append(table, row)
	}
	formatter.Table(headers, table)
	fmt.Fprintf(formatter.Writer, "page %d of %d, %d item(s)\n", result.Page, result.Pages, result.Total)
	return nil
}

// applySorts installs field[:asc|desc] sort keys in priority order.
func applySorts(g *grid.Grid[record.Record], sorts []string) error {
	for _, s := range sorts {
		field, dirText, _ := strings.Cut(s, ":")
		dir := order.Ascending
		if dirText != "" {
			var ok bool
			if dir, ok = order.ParseDirection(dirText); !ok || dir == order.None {
				return &LoadError{Code: ErrCodeInvalidQuery, Message: fmt.Sprintf("sort %q: want asc or desc", s)}
			}
		}
		if err := g.AddSort(field, dir, nil); err != nil {
			return &LoadError{Code: ErrCodeInvalidQuery, Message: fmt.Sprintf("sort %q: %v", s, err)}
		}
	}
	return nil
}

// applyFilters adds field:op[:value] filters. A value that does not read
// in the column's kind is kept as text and logged; the filter then follows
// the grid's rules for uncoercible values.
func applyFilters(g *grid.Grid[record.Record], schema *record.Schema, filters []string, insensitive bool, opts *QueryOptions) error {
	c := filter.CaseDefault
	if insensitive {
		c = filter.CaseInsensitive
	}
	for _, f := range filters {
		parts := strings.SplitN(f, ":", 3)
		if len(parts) < 2 {
			return &LoadError{Code: ErrCodeInvalidQuery, Message: fmt.Sprintf("filter %q: want field:op[:value]", f)}
		}
		field := parts[0]
		kind, ok := schema.Kinds[field]
		if !ok {
			return &LoadError{Code: ErrCodeInvalidQuery, Message: fmt.Sprintf("filter %q: unknown column %q", f, field)}
		}
		op, err := ir.ParseOperatorFor(kind, parts[1])
		if err != nil {
			return &LoadError{Code: ErrCodeInvalidQuery, Message: fmt.Sprintf("filter %q: %v", f, err)}
		}
		var value ir.Value
		if len(parts) == 3 {
			value, err = ir.FromAny(kind, parts[2])
			if err != nil {
				opts.Logger.Warn("filter value does not match the column kind",
					"filter", f, "kind", kind.String(), "error", err)
				value = ir.String(parts[2])
			}
		}
		if _, err := g.AddFilterDefinition(field, op, value, c); err != nil {
			return &LoadError{Code: ErrCodeInvalidQuery, Message: fmt.Sprintf("filter %q: %v", f, err)}
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// rowsValue is a page size flag accepting a number or "all".
type rowsValue struct{ n *int }

func newRowsValue(n *int) *rowsValue { return &rowsValue{n: n} }

func (v *rowsValue) String() string {
	if v.n == nil || *v.n == 0 {
		return ""
	}
	if *v.n == page.All {
		return "all"
	}
	return fmt.Sprint(*v.n)
}

func (v *rowsValue) Set(s string) error {
	if strings.EqualFold(s, "all") {
		*v.n = page.All
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("want a positive number or \"all\", got %q", s)
	}
	*v.n = n
	return nil
}

func (v *rowsValue) Type() string { return "rows" }
