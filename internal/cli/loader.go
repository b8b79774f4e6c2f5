package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/gridq/internal/compiler"
	"github.com/roach88/gridq/internal/ir"
	"github.com/roach88/gridq/internal/record"
)

// LoadError represents an error that occurred while loading a schema or an
// item file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // Database write error

	// Grid schema errors
	ErrCodeNoGrid        = "E101" // Grid missing or ambiguous
	ErrCodeInvalidColumn = "E102" // Malformed column declaration
	ErrCodeInvalidOption = "E103" // Malformed grid option

	// Query errors
	ErrCodeInvalidItems = "E201" // Item file does not match the schema
	ErrCodeInvalidQuery = "E202" // Bad --filter or --sort
	ErrCodeDatabase     = "E203" // Database unreachable or query failed
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "grid":
		return ErrCodeNoGrid
	case field == "cue":
		return ErrCodeBuildFailed
	case field == "columns", strings.HasPrefix(field, "columns."):
		return ErrCodeInvalidColumn
	case strings.HasPrefix(field, "options."):
		return ErrCodeInvalidOption
	default:
		return ErrCodeGeneric
	}
}

// loadGrids compiles every grid of a CUE schema file.
func loadGrids(path string) ([]ir.GridSpec, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema not found: %s", path)}
	}
	specs, err := compiler.LoadFile(path)
	if err != nil {
		return nil, convertCompileError(err)
	}
	return specs, nil
}

// loadSchema compiles one grid of a schema file into a record schema.
func loadSchema(path, name string) (*record.Schema, error) {
	specs, err := loadGrids(path)
	if err != nil {
		return nil, err
	}
	spec, err := compiler.Pick(specs, name)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNoGrid, Message: err.Error()}
	}
	schema, err := record.NewSchema(spec)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidColumn, Message: err.Error()}
	}
	return schema, nil
}

// loadItems reads a YAML item file against schema.
func loadItems(path string, schema *record.Schema) ([]record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("items not found: %s", path)}
	}
	defer f.Close()

	recs, err := schema.Load(f)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidItems, Message: fmt.Sprintf("%s: %v", path, err)}
	}
	return recs, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeBuildFailed, Message: err.Error()}
}

// loadErrorExit reports err through f and returns the matching exit error.
func loadErrorExit(f *OutputFormatter, err error) error {
	var le *LoadError
	if !errors.As(err, &le) {
		le = &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}
	var details any
	if le.Pos.IsValid() {
		details = map[string]any{"file": le.Pos.Filename(), "line": le.Pos.Line(), "column": le.Pos.Column()}
	}
	if outErr := f.Error(le.Code, le.Error(), details); outErr != nil {
		return outErr
	}
	code := ExitFailure
	if le.Code == ErrCodeNotFound || le.Code == ErrCodeDatabase {
		code = ExitCommandError
	}
	return NewExitError(code, le.Message)
}
