package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gridq/internal/ir"
)

func TestValidate_KnownFields(t *testing.T) {
	sel := Select{
		From:   "items",
		Fields: []string{"id", "name"},
		Filter: And{Predicates: []Predicate{
			Match{Field: "name", Value: "a"},
			Or{Predicates: []Predicate{IsNull{Field: "age"}, Not{Predicate: Compare{Field: "age", Value: ir.Number(3)}}}},
		}},
		Order: []OrderKey{{Field: "age"}},
	}

	result := Validate(sel, []string{"name", "age"})
	assert.True(t, result.Valid)
	assert.Empty(t, result.Problems)
	assert.NoError(t, result.Err())

	assert.True(t, Validate(&sel, []string{"name", "age"}).Valid, "pointer forms are accepted")
}

func TestValidate_UnknownField(t *testing.T) {
	sel := Select{
		From:   "items",
		Filter: Compare{Field: `name"; DROP TABLE items; --`, Value: ir.String("x")},
	}

	result := Validate(sel, []string{"name"})
	assert.False(t, result.Valid)
	require.Len(t, result.Problems, 1)
	assert.Contains(t, result.Problems[0], "unknown field")
	assert.Error(t, result.Err())
}

func TestValidate_Problems(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"nil query", nil, "nil query"},
		{"missing table", Count{}, "table name is required"},
		{"null comparison", Select{From: "t", Filter: Compare{Field: "a"}}, "compared to null"},
		{"empty negation", Select{From: "t", Filter: Not{}}, "negation without operand"},
		{"unknown order field", Select{From: "t", Order: []OrderKey{{Field: "zzz"}}}, "unknown field"},
		{"negative offset", Select{From: "t", Offset: -1}, "negative offset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.query, []string{"a"})
			require.False(t, result.Valid)
			assert.Contains(t, result.Problems[0], tt.want)
		})
	}
}
