package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/gridq/internal/ir"
	"github.com/roach88/gridq/internal/querysql"
	"github.com/roach88/gridq/internal/record"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testSchema(t *testing.T) *record.Schema {
	t.Helper()
	s, err := record.NewSchema(ir.GridSpec{
		Name: "people",
		Columns: []ir.ColumnSpec{
			{Name: "name", Kind: "string"},
			{Name: "age", Kind: "number"},
			{Name: "active", Kind: "bool"},
			{Name: "born", Kind: "date"},
			{Name: "seen", Kind: "datetime"},
		},
	})
	require.NoError(t, err)
	return s
}

const testRecords = `
- name: Alice
  age: 34
  active: true
  born: 1990-03-01
  seen: 2024-01-02T10:00:00Z
- name: bob
  age: 27
  active: false
  born: 1997-11-20
- name: Carol
  active: true
  seen: 2024-01-01T09:30:00Z
- name: alicia
  age: 27
  born: 1997-11-20
- age: 61
  active: false
- name: ""
  age: 45
  active: true
  seen: 2023-12-31T23:59:59.5Z
- name: Dave
  age: 27
  active: true
  born: 2001-07-04
`

func testRows(t *testing.T, s *record.Schema) []record.Record {
	t.Helper()
	recs, err := s.Load(strings.NewReader(testRecords))
	require.NoError(t, err)
	return recs
}

// populatedTable creates the people table in st and stores the test rows.
func populatedTable(t *testing.T, st *Store) (*Table, []record.Record) {
	t.Helper()
	schema := testSchema(t)
	tbl, err := NewTable(schema, querysql.SQLite)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, st.Create(ctx, tbl))
	recs := testRows(t, schema)
	require.NoError(t, st.Put(ctx, tbl, recs))
	return tbl, recs
}
