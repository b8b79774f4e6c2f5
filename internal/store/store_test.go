package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gridq/internal/datasource"
	"github.com/roach88/gridq/internal/filter"
	"github.com/roach88/gridq/internal/grid"
	"github.com/roach88/gridq/internal/ir"
	"github.com/roach88/gridq/internal/order"
	"github.com/roach88/gridq/internal/querysql"
	"github.com/roach88/gridq/internal/record"
)

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)
	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := t.TempDir() + "/twice.db"
	a, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, a.Close())
	b, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, b.Close())
}

func TestPut_RoundTrip(t *testing.T) {
	st := createTestStore(t)
	tbl, recs := populatedTable(t, st)

	page, err := st.Query(context.Background(), tbl, ir.QuerySpec{})
	require.NoError(t, err)
	assert.Equal(t, len(recs), page.Total)
	require.Len(t, page.Items, len(recs))

	got := page.Items[0]
	assert.Equal(t, "000001", got.ID)
	assert.Equal(t, ir.String("Alice"), got.Get("name"))
	assert.Equal(t, ir.Number(34), got.Get("age"))
	assert.Equal(t, ir.Bool(true), got.Get("active"))
	assert.Equal(t, ir.DateOnly{Year: 1990, Month: time.March, Day: 1}, got.Get("born"))
	seen, ok := got.Get("seen").(ir.DateTime)
	require.True(t, ok)
	assert.True(t, seen.Time().Equal(time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)))

	assert.Nil(t, page.Items[2].Get("age"))
	assert.Nil(t, page.Items[4].Get("name"))
	assert.Equal(t, ir.String(""), page.Items[5].Get("name"))
}

func TestPut_Upserts(t *testing.T) {
	st := createTestStore(t)
	tbl, recs := populatedTable(t, st)
	ctx := context.Background()

	changed := record.Record{ID: recs[0].ID, Fields: map[string]ir.Value{"name": ir.String("Alma")}}
	require.NoError(t, st.Put(ctx, tbl, []record.Record{changed}))

	page, err := st.Query(ctx, tbl, ir.QuerySpec{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, len(recs), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, ir.String("Alma"), page.Items[0].Get("name"))
	assert.Nil(t, page.Items[0].Get("age"))
}

func TestQuery_FilterSortAndWindow(t *testing.T) {
	st := createTestStore(t)
	tbl, _ := populatedTable(t, st)

	page, err := st.Query(context.Background(), tbl, ir.QuerySpec{
		Filters: []ir.FilterSpec{{Field: "age", Kind: ir.KindNumber, Operator: ir.OpLessThan, Value: ir.Number(40)}},
		Sorts:   []ir.SortSpec{{Field: "name", Descending: true}},
		Offset:  1,
		Limit:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, []string{"000004", "000007"}, ids(page.Items))
}

func TestQuery_FoldsASCIIOnly(t *testing.T) {
	st := createTestStore(t)
	tbl, err := NewTable(testSchema(t), querysql.SQLite)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, st.Create(ctx, tbl))
	require.NoError(t, st.Put(ctx, tbl, []record.Record{
		{ID: "000001", Fields: map[string]ir.Value{"name": ir.String("ÉCOLE")}},
		{ID: "000002", Fields: map[string]ir.Value{"name": ir.String("Ecole")}},
	}))

	contains := func(needle string) []string {
		t.Helper()
		page, err := st.Query(ctx, tbl, ir.QuerySpec{Filters: []ir.FilterSpec{{
			Field: "name", Kind: ir.KindString, Operator: ir.OpContains,
			Value: ir.String(needle), CaseInsensitive: true,
		}}})
		require.NoError(t, err)
		return ids(page.Items)
	}

	// lower() leaves É alone on both sides of the comparison.
	assert.Equal(t, []string{"000001"}, contains("ÉCO"))
	assert.Equal(t, []string{"000001", "000002"}, contains("COLE"))
	assert.Equal(t, []string{"000002"}, contains("ECO"))
}

func TestQuery_Rejections(t *testing.T) {
	st := createTestStore(t)
	tbl, _ := populatedTable(t, st)
	ctx := context.Background()

	_, err := st.Query(ctx, tbl, ir.QuerySpec{Sorts: []ir.SortSpec{{Field: "salary"}}})
	assert.Error(t, err)

	_, err = st.Query(ctx, tbl, ir.QuerySpec{Filters: []ir.FilterSpec{{Kind: ir.KindString, Operator: ir.OpEqual, Value: ir.String("x")}}})
	assert.Error(t, err)
}

func TestDrop(t *testing.T) {
	st := createTestStore(t)
	tbl, _ := populatedTable(t, st)
	ctx := context.Background()

	require.NoError(t, st.Drop(ctx, tbl))
	_, err := st.Query(ctx, tbl, ir.QuerySpec{})
	assert.Error(t, err)
	require.NoError(t, st.Create(ctx, tbl))
	page, err := st.Query(ctx, tbl, ir.QuerySpec{})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Items)
}

func ids(recs []record.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

type gridFilter struct {
	field string
	op    ir.Operator
	value ir.Value
	fold  filter.Case
}

type gridSort struct {
	field string
	dir   order.Direction
}

// TestFetch_MatchesLocalGrid drives one grid over the records in memory and
// another over the table, and expects identical pages.
func TestFetch_MatchesLocalGrid(t *testing.T) {
	st := createTestStore(t)
	tbl, recs := populatedTable(t, st)
	cols, err := tbl.Schema.Columns()
	require.NoError(t, err)

	tests := []struct {
		name    string
		filters []gridFilter
		sorts   []gridSort
		size    int
		page    int
	}{
		{name: "everything"},
		{name: "contains folded", filters: []gridFilter{{"name", ir.OpContains, ir.String("ALI"), filter.CaseInsensitive}}},
		{name: "contains exact", filters: []gridFilter{{"name", ir.OpContains, ir.String("li"), filter.CaseDefault}}},
		{name: "not contains keeps nulls", filters: []gridFilter{{"name", ir.OpNotContains, ir.String("a"), filter.CaseDefault}}},
		{name: "starts with", filters: []gridFilter{{"name", ir.OpStartsWith, ir.String("a"), filter.CaseInsensitive}}},
		{name: "ends with", filters: []gridFilter{{"name", ir.OpEndsWith, ir.String("e"), filter.CaseDefault}}},
		{name: "is empty", filters: []gridFilter{{"name", ir.OpEmpty, nil, filter.CaseDefault}}},
		{name: "is not empty", filters: []gridFilter{{"name", ir.OpNotEmpty, nil, filter.CaseDefault}}},
		{name: "number not equal keeps nulls", filters: []gridFilter{{"age", ir.OpNumNotEqual, ir.Number(27), filter.CaseDefault}}},
		{name: "number range", filters: []gridFilter{
			{"age", ir.OpGreaterThanOrEqual, ir.Number(27), filter.CaseDefault},
			{"age", ir.OpLessThan, ir.Number(45), filter.CaseDefault},
		}},
		{name: "bool is not", filters: []gridFilter{{"active", ir.OpIsNot, ir.Bool(true), filter.CaseDefault}}},
		{name: "date on or after", filters: []gridFilter{{"born", ir.OpOnOrAfter, ir.DateOnly{Year: 1997, Month: time.November, Day: 20}, filter.CaseDefault}}},
		{name: "instant before", filters: []gridFilter{{"seen", ir.OpBefore, ir.DateTime(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)), filter.CaseDefault}}},
		{name: "uncoercible value", filters: []gridFilter{{"age", ir.OpNumEqual, ir.String("many"), filter.CaseDefault}}},
		{name: "sort by age then name", sorts: []gridSort{{"age", order.Ascending}, {"name", order.Descending}}},
		{name: "sort descending nulls last", sorts: []gridSort{{"seen", order.Descending}}},
		{name: "sort bool", sorts: []gridSort{{"active", order.Ascending}}},
		{name: "paged", sorts: []gridSort{{"born", order.Ascending}}, size: 3, page: 1},
		{name: "last partial page", sorts: []gridSort{{"name", order.Ascending}}, size: 3, page: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			size := tt.size
			if size == 0 {
				size = 50
			}
			local, err := grid.New(grid.Config[record.Record]{Columns: cols, Items: recs, SelectionComparer: record.Equal, RowsPerPage: size})
			require.NoError(t, err)
			remote, err := grid.New(grid.Config[record.Record]{Columns: cols, ServerData: st.Fetch(tbl), SelectionComparer: record.Equal, RowsPerPage: size})
			require.NoError(t, err)

			for _, g := range []*grid.Grid[record.Record]{local, remote} {
				for _, f := range tt.filters {
					_, err := g.AddFilterDefinition(f.field, f.op, f.value, f.fold)
					require.NoError(t, err)
				}
				for _, s := range tt.sorts {
					require.NoError(t, g.AddSort(s.field, s.dir, nil))
				}
			}
			require.NoError(t, remote.ReloadServerData(ctx))
			require.NoError(t, remote.LastError())

			local.SetCurrentPage(tt.page)
			remote.SetCurrentPage(tt.page)
			require.NoError(t, remote.Wait(ctx))
			require.NoError(t, remote.LastError())

			assert.Equal(t, local.TotalCount(), remote.TotalCount())
			assert.Equal(t, local.CurrentPage(), remote.CurrentPage())
			assert.Equal(t, ids(local.PageItems()), ids(remote.PageItems()))
		})
	}
}

func TestFetch_ObservesCancellation(t *testing.T) {
	st := createTestStore(t)
	tbl, _ := populatedTable(t, st)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := st.Fetch(tbl)(ctx, datasource.Request[record.Record]{Mode: datasource.Paged})
	assert.ErrorIs(t, err, context.Canceled)
}
