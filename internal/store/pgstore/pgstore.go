// Package pgstore serves record tables from PostgreSQL.
//
// It shares store.Table with the SQLite store: the same schema, statements
// and row decoding, compiled for the Postgres dialect.
package pgstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roach88/gridq/internal/datasource"
	"github.com/roach88/gridq/internal/ir"
	"github.com/roach88/gridq/internal/querysql"
	"github.com/roach88/gridq/internal/record"
	"github.com/roach88/gridq/internal/store"
)

// Store wraps a pgx connection pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open connects to the database at dsn, a URL or key=value connection
// string, and pings it.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}
	cfg.MaxConns = 5
	cfg.MinConns = 1
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Close closes the pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Pool returns the underlying pool.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// NewTable returns the Postgres table for schema.
func NewTable(schema *record.Schema) (*store.Table, error) {
	return store.NewTable(schema, querysql.Postgres)
}

// Create creates t if it does not exist.
func (s *Store) Create(ctx context.Context, t *store.Table) error {
	if _, err := s.pool.Exec(ctx, t.CreateSQL()); err != nil {
		return fmt.Errorf("create table %s: %w", t.Name, err)
	}
	return nil
}

// Drop removes t and its rows.
func (s *Store) Drop(ctx context.Context, t *store.Table) error {
	if _, err := s.pool.Exec(ctx, t.DropSQL()); err != nil {
		return fmt.Errorf("drop table %s: %w", t.Name, err)
	}
	return nil
}

// Put inserts or replaces records in one batch inside a transaction.
func (s *Store) Put(ctx context.Context, t *store.Table, recs []record.Record) error {
	upsert := t.UpsertSQL()
	batch := &pgx.Batch{}
	for _, r := range recs {
		args, err := t.UpsertArgs(r)
		if err != nil {
			return err
		}
		batch.Queue(upsert, args...)
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("store records in %s: %w", t.Name, err)
	}
	s.logger.Debug("records stored", "table", t.Name, "count", len(recs))
	return nil
}

// Query returns the window of rows q selects and the number of rows
// matching q's filters.
func (s *Store) Query(ctx context.Context, t *store.Table, q ir.QuerySpec) (datasource.Page[record.Record], error) {
	var page datasource.Page[record.Record]
	rows, count, err := t.Queries(q)
	if err != nil {
		return page, err
	}
	s.logger.Debug("query", "table", t.Name, "sql", rows.SQL, "args", len(rows.Args))

	if err := s.pool.QueryRow(ctx, count.SQL, count.Args...).Scan(&page.Total); err != nil {
		return page, fmt.Errorf("count %s: %w", t.Name, err)
	}

	res, err := s.pool.Query(ctx, rows.SQL, rows.Args...)
	if err != nil {
		return page, fmt.Errorf("query %s: %w", t.Name, err)
	}
	page.Items, err = pgx.CollectRows(res, func(row pgx.CollectableRow) (record.Record, error) {
		values, err := row.Values()
		if err != nil {
			return record.Record{}, err
		}
		return t.Decode(values)
	})
	if err != nil {
		return page, fmt.Errorf("read %s: %w", t.Name, err)
	}
	return page, nil
}

// Fetch returns a grid data source reading t.
func (s *Store) Fetch(t *store.Table) datasource.Func[record.Record] {
	return func(ctx context.Context, req datasource.Request[record.Record]) (datasource.Page[record.Record], error) {
		return s.Query(ctx, t, req.Query)
	}
}
