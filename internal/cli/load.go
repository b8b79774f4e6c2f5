package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	Grid     string
	DB       string
	Postgres string
	Replace  bool
}

// LoadResult reports what load wrote.
type LoadResult struct {
	Table    string `json:"table"`
	Database string `json:"database"`
	Items    int    `json:"items"`
	Replaced bool   `json:"replaced"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <grid.cue> <items.yaml>",
		Short: "Store items in a database table for remote queries",
		Long: `Create the grid's table in a SQLite or PostgreSQL database and upsert
the items of a YAML file into it. Items keep their ids, so loading the
same file twice is idempotent.

Examples:
  gridq load people.cue people.yaml --db people.db
  gridq load people.cue people.yaml --postgres "$DATABASE_URL" --replace`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd.Context(), opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Grid, "grid", "", "grid to use when the schema declares several")
	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database file")
	cmd.Flags().StringVar(&opts.Postgres, "postgres", "", "PostgreSQL connection string")
	cmd.Flags().BoolVar(&opts.Replace, "replace", false, "drop the table before loading")

	return cmd
}

func runLoad(ctx context.Context, opts *LoadOptions, schemaPath, itemsPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(opts.Config.Timeout)*time.Second)
	defer cancel()

	db := dbTarget{SQLite: firstNonEmpty(opts.DB, opts.Config.DB), Postgres: firstNonEmpty(opts.Postgres, opts.Config.Postgres)}
	if !db.set() {
		return loadErrorExit(formatter, &LoadError{Code: ErrCodeNotFound, Message: "--db or --postgres is required"})
	}

	schema, err := loadSchema(schemaPath, opts.Grid)
	if err != nil {
		return loadErrorExit(formatter, err)
	}
	recs, err := loadItems(itemsPath, schema)
	if err != nil {
		return loadErrorExit(formatter, err)
	}

	st, tbl, closeDB, err := db.open(ctx, schema, opts.Logger)
	if err != nil {
		return loadErrorExit(formatter, err)
	}
	defer closeDB()

	if opts.Replace {
		formatter.VerboseLog("Dropping table %s", tbl.Name)
		if err := st.Drop(ctx, tbl); err != nil {
			return loadErrorExit(formatter, dbError("drop table", err))
		}
	}
	if err := st.Create(ctx, tbl); err != nil {
		return loadErrorExit(formatter, dbError("create table", err))
	}
	if err := st.Put(ctx, tbl, recs); err != nil {
		return loadErrorExit(formatter, &LoadError{Code: ErrCodeWriteFailed, Message: err.Error()})
	}
	opts.Logger.Info("items loaded", "table", tbl.Name, "items", len(recs))

	result := LoadResult{Table: tbl.Name, Database: db.String(), Items: len(recs), Replaced: opts.Replace}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "%s loaded %d item(s) into %s (%s)\n", passStyle.Render("✓"), result.Items, result.Table, result.Database)
	return nil
}
