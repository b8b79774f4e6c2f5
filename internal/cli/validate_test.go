package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	out, err := execute(t, "validate", "testdata/people.cue")
	require.NoError(t, err)
	assert.Contains(t, out, "people: name string, age number, status enum")
	assert.Contains(t, out, "1 grid(s) valid")
}

func TestValidate_JSON(t *testing.T) {
	out, err := execute(t, "validate", "testdata/people.cue", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Grids, 1)
	assert.Equal(t, "people", resp.Data.Grids[0].Name)
	assert.Equal(t, 2, resp.Data.Grids[0].Options.RowsPerPage)
	assert.Equal(t, []string{"open", "closed"}, resp.Data.Grids[0].Columns[2].Members)
}

func TestValidate_InvalidColumn(t *testing.T) {
	out, err := execute(t, "validate", "testdata/bad.cue")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E102]")
	assert.Contains(t, out, "bad.cue:2:")
}

func TestValidate_MissingFile(t *testing.T) {
	out, err := execute(t, "validate", "testdata/nope.cue", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := map[string]string{
		"grid":                  ErrCodeNoGrid,
		"cue":                   ErrCodeBuildFailed,
		"columns":               ErrCodeInvalidColumn,
		"columns.name.kind":     ErrCodeInvalidColumn,
		"options.rows_per_page": ErrCodeInvalidOption,
		"extra":                 ErrCodeGeneric,
	}
	for field, want := range tests {
		assert.Equal(t, want, MapFieldToErrorCode(field), field)
	}
}
