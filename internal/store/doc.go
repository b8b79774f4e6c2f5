// Package store persists grid records in SQL tables and serves them back as
// a remote grid data source.
//
// A Table binds a record schema to a SQL dialect: it renders the DDL, the
// upsert statement and, for each grid request, a page query plus a count
// query. Filters and sorts are lowered through queryir and compiled by
// querysql, so the database applies the same null and ordering rules as an
// in-memory grid.
//
// Store is the SQLite implementation; pgstore serves the same tables from
// PostgreSQL.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// # Row Order
//
// Every page query ends its ORDER BY with the record id, so rows that tie on
// every sort key come back in id order. Records loaded from a file get
// zero-padded positional ids, which makes id order equal file order.
package store
