package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/gridq/internal/datasource"
	"github.com/roach88/gridq/internal/querysql"
	"github.com/roach88/gridq/internal/record"
	"github.com/roach88/gridq/internal/store"
	"github.com/roach88/gridq/internal/store/pgstore"
)

// itemStore is a database that holds one table per grid.
type itemStore interface {
	Create(ctx context.Context, t *store.Table) error
	Drop(ctx context.Context, t *store.Table) error
	Put(ctx context.Context, t *store.Table, recs []record.Record) error
	Fetch(t *store.Table) datasource.Func[record.Record]
}

// dbTarget names the database a command reads or writes. Postgres wins
// when both are set.
type dbTarget struct {
	SQLite   string
	Postgres string
}

func (d dbTarget) set() bool { return d.SQLite != "" || d.Postgres != "" }

func (d dbTarget) String() string {
	if d.Postgres != "" {
		return "postgres"
	}
	return d.SQLite
}

// open connects to the target and returns the store, schema's table in it
// and a function that closes the connection.
func (d dbTarget) open(ctx context.Context, schema *record.Schema, logger *slog.Logger) (itemStore, *store.Table, func(), error) {
	if d.Postgres != "" {
		st, err := pgstore.Open(ctx, d.Postgres, logger)
		if err != nil {
			return nil, nil, nil, &LoadError{Code: ErrCodeDatabase, Message: err.Error()}
		}
		tbl, err := pgstore.NewTable(schema)
		if err != nil {
			st.Close()
			return nil, nil, nil, &LoadError{Code: ErrCodeNoGrid, Message: err.Error()}
		}
		return st, tbl, st.Close, nil
	}

	st, err := store.Open(d.SQLite, store.WithLogger(logger))
	if err != nil {
		return nil, nil, nil, &LoadError{Code: ErrCodeDatabase, Message: err.Error()}
	}
	tbl, err := store.NewTable(schema, querysql.SQLite)
	if err != nil {
		st.Close()
		return nil, nil, nil, &LoadError{Code: ErrCodeNoGrid, Message: err.Error()}
	}
	closer := func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close database", "path", d.SQLite, "error", err)
		}
	}
	return st, tbl, closer, nil
}

func dbError(op string, err error) error {
	return &LoadError{Code: ErrCodeDatabase, Message: fmt.Sprintf("%s: %v", op, err)}
}
