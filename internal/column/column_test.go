package column

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gridq/internal/ir"
)

type person struct {
	Name     string
	Nickname *string
	Age      int
	Active   bool
	Role     string
	Born     *time.Time
	ID       uuid.UUID
}

func TestTypedConstructors(t *testing.T) {
	born := time.Date(1990, 5, 17, 13, 45, 0, 0, time.UTC)
	nick := "ally"
	p := person{Name: "Alice", Nickname: &nick, Age: 34, Active: true, Role: "admin", Born: &born, ID: uuid.MustParse("6f9619ff-8b86-d011-b42d-00cf4fc964ff")}

	tests := []struct {
		name string
		col  *Column[person]
		kind ir.ValueKind
		want ir.Value
	}{
		{"string", String("Name", func(p person) string { return p.Name }), ir.KindString, ir.String("Alice")},
		{"nullable string", NullableString("Nick", func(p person) *string { return p.Nickname }), ir.KindString, ir.String("ally")},
		{"number", Number("Age", func(p person) int { return p.Age }), ir.KindNumber, ir.Number(34)},
		{"bool", Bool("Active", func(p person) bool { return p.Active }), ir.KindBool, ir.Bool(true)},
		{"enum", Enum("Role", func(p person) string { return p.Role }), ir.KindEnum, ir.Enum("admin")},
		{"datetime", DateTime("Born", func(p person) *time.Time { return p.Born }), ir.KindDateTime, ir.DateTime(born)},
		{"date", DateOnly("BornOn", func(p person) *time.Time { return p.Born }), ir.KindDateOnly, ir.DateOnly{Year: 1990, Month: time.May, Day: 17}},
		{"guid", Guid("ID", func(p person) uuid.UUID { return p.ID }), ir.KindGuid, ir.Guid(p.ID)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.col.Kind)
			assert.True(t, tt.col.Sortable)
			assert.True(t, tt.col.Filterable)
			assert.Equal(t, tt.want, tt.col.Value(p))
			require.NoError(t, tt.col.Validate())
		})
	}
}

func TestNullAccessors(t *testing.T) {
	var p person

	assert.Nil(t, NullableString("Nick", func(p person) *string { return p.Nickname }).Value(p))
	assert.Nil(t, DateTime("Born", func(p person) *time.Time { return p.Born }).Value(p))
	assert.Nil(t, Enum("Role", func(p person) string { return p.Role }).Value(p))
	assert.Nil(t, Guid("ID", func(p person) uuid.UUID { return p.ID }).Value(p))
	// Plain strings are never null; the empty string is a value.
	assert.Equal(t, ir.String(""), String("Name", func(p person) string { return p.Name }).Value(p))
}

func TestOperators(t *testing.T) {
	name := String("Name", func(p person) string { return p.Name })
	assert.Equal(t, ir.OpContains, name.DefaultOperator())
	assert.True(t, name.Allows(ir.OpEmpty))
	assert.True(t, name.Allows(ir.OpNone))
	assert.False(t, name.Allows(ir.OpGreaterThan))

	age := Number("Age", func(p person) int { return p.Age }, WithOperators(ir.OpGreaterThan, ir.OpLessThan))
	assert.Equal(t, ir.OpGreaterThan, age.DefaultOperator())
	assert.Equal(t, []ir.Operator{ir.OpGreaterThan, ir.OpLessThan}, age.AllowedOperators())
	assert.False(t, age.Allows(ir.OpNumEqual))

	hidden := String("Secret", func(p person) string { return p.Name }, Unfilterable())
	assert.False(t, hidden.Filterable)
	assert.Empty(t, hidden.AllowedOperators())
	assert.Equal(t, ir.OpNone, hidden.DefaultOperator())

	other := New("Blob", ir.KindOther, func(person) ir.Value { return nil })
	assert.False(t, other.Filterable)
	assert.True(t, other.Sortable)
}

func TestValidate(t *testing.T) {
	bad := Number("Age", func(p person) int { return p.Age }, WithOperators(ir.OpContains))
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not defined for number")

	assert.Error(t, (&Column[person]{Name: "x"}).Validate())
	assert.Error(t, (&Column[person]{Value: func(person) ir.Value { return nil }}).Validate())
}

func TestSet(t *testing.T) {
	name := String("Name", func(p person) string { return p.Name })
	age := Number("Age", func(p person) int { return p.Age }, Unsortable())

	s, err := NewSet(name, age)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Age"}, s.Names())

	err = s.Add(String("Name", func(p person) string { return p.Role }))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))

	got, ok := s.Lookup("Age")
	require.True(t, ok)
	assert.False(t, got.Sortable)

	assert.True(t, s.Remove("Name"))
	assert.False(t, s.Remove("Name"))
	assert.Equal(t, 1, s.Len())

	// Replace is remove + add.
	require.NoError(t, s.Add(String("Name", func(p person) string { return p.Role })))
	assert.Equal(t, []string{"Age", "Name"}, s.Names())
}
