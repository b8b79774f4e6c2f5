package record

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gridq/internal/filter"
	"github.com/roach88/gridq/internal/ir"
	"github.com/roach88/gridq/internal/order"
)

func falsePtr() *bool { b := false; return &b }

func testSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema(ir.GridSpec{
		Name: "people",
		Columns: []ir.ColumnSpec{
			{Name: "name", Kind: "string", Comparer: "natural"},
			{Name: "age", Kind: "number", Operators: []string{"gt", "lt"}},
			{Name: "born", Kind: "dateonly"},
			{Name: "note", Kind: "string", Sortable: falsePtr(), Filterable: falsePtr()},
		},
	})
	require.NoError(t, err)
	return s
}

func TestNewSchema_Errors(t *testing.T) {
	tests := []struct {
		name string
		cols []ir.ColumnSpec
		want string
	}{
		{"reserved id", []ir.ColumnSpec{{Name: "ID", Kind: "string"}}, "reserved"},
		{"duplicate", []ir.ColumnSpec{{Name: "a", Kind: "string"}, {Name: "a", Kind: "number"}}, "declared twice"},
		{"unknown kind", []ir.ColumnSpec{{Name: "a", Kind: "blob"}}, "column \"a\""},
		{"missing name", []ir.ColumnSpec{{Kind: "string"}}, "name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(ir.GridSpec{Columns: tt.cols})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestColumns(t *testing.T) {
	s := testSchema(t)
	cols, err := s.Columns()
	require.NoError(t, err)
	require.Len(t, cols, 4)

	assert.Equal(t, ir.KindString, cols[0].Kind)
	assert.NotNil(t, cols[0].Comparer)
	assert.Equal(t, []ir.Operator{ir.OpGreaterThan, ir.OpLessThan}, cols[1].AllowedOperators())
	assert.Equal(t, ir.KindDateOnly, cols[2].Kind)
	assert.False(t, cols[3].Sortable)
	assert.False(t, cols[3].Filterable)

	r := Record{ID: "1", Fields: map[string]ir.Value{"age": ir.Number(30)}}
	assert.Equal(t, ir.Number(30), cols[1].Value(r))
	assert.Nil(t, cols[0].Value(r))
}

func TestColumns_BadOperator(t *testing.T) {
	_, err := Columns(ir.GridSpec{Columns: []ir.ColumnSpec{{Name: "a", Kind: "bool", Operators: []string{"contains"}}}})
	assert.Error(t, err)

	_, err = Columns(ir.GridSpec{Columns: []ir.ColumnSpec{{Name: "id", Kind: "string"}}})
	assert.ErrorContains(t, err, "reserved")
}

func TestLoad(t *testing.T) {
	s := testSchema(t)
	recs, err := s.Load(strings.NewReader(`
- name: Alice
  age: 30
  born: 1994-05-01
- id: x7
  name: Bob
  age: "41"
`))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "000001", recs[0].ID)
	assert.Equal(t, ir.String("Alice"), recs[0].Get("name"))
	assert.Equal(t, ir.Number(30), recs[0].Get("age"))
	assert.Equal(t, ir.DateOnly{Year: 1994, Month: time.May, Day: 1}, recs[0].Get("born"))

	assert.Equal(t, "x7", recs[1].ID)
	assert.Equal(t, ir.Number(41), recs[1].Get("age"))
	assert.Nil(t, recs[1].Get("born"))

	assert.Equal(t, map[string]any{"id": "x7", "name": "Bob", "age": "41"}, s.ToMap(recs[1]))
}

func TestLoad_UnknownField(t *testing.T) {
	_, err := testSchema(t).Load(strings.NewReader("- colour: red\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")
}

func TestLoad_Empty(t *testing.T) {
	recs, err := testSchema(t).Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecordsThroughFiltersAndSorts(t *testing.T) {
	s := testSchema(t)
	cols, err := s.Columns()
	require.NoError(t, err)
	recs, err := s.FromMaps([]map[string]any{
		{"name": "item10", "age": 5},
		{"name": "item9", "age": 50},
		{"name": "item100"},
	})
	require.NoError(t, err)

	pred := filter.Compile(&filter.Definition[Record]{Column: cols[1], Operator: ir.OpLessThan, Value: ir.Number(10)})
	assert.Equal(t, []Record{recs[0]}, filter.Apply(recs, pred))

	byName := order.Compile([]*order.Definition[Record]{{
		Field: "name", Direction: order.Ascending, Key: cols[0].Value, Comparer: cols[0].Comparer,
	}})
	sorted := order.Sort(recs, byName)
	assert.Equal(t, []string{"000002", "000001", "000003"}, []string{sorted[0].ID, sorted[1].ID, sorted[2].ID})

	assert.True(t, Equal(recs[0], Record{ID: "000001"}))
}
