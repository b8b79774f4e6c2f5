package grid

import (
	"errors"
	"fmt"
)

// ConfigError reports a programming mistake in how a grid is configured or
// driven: conflicting data sources, an operator a column does not allow, a
// reference to a column that does not exist.
//
// Configuration errors are returned synchronously from New and from the
// mutating call that introduced them; the grid state is left unchanged.
// Recoverable data errors (a failing fetch, an uncoercible filter value) are
// never ConfigErrors.
type ConfigError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Field names the column or option involved, when there is one.
	Field string
}

// ErrorCode categorizes configuration errors.
type ErrorCode string

const (
	// ErrCodeConflictingSources indicates more than one of local items, a
	// paged fetch and a streaming fetch was supplied.
	ErrCodeConflictingSources ErrorCode = "CONFLICTING_SOURCES"

	// ErrCodeQuickFilterRemote indicates a quick filter combined with a
	// remote data source.
	ErrCodeQuickFilterRemote ErrorCode = "QUICK_FILTER_REMOTE"

	// ErrCodeUnsupportedOperator indicates an operator outside a column's
	// allowed set.
	ErrCodeUnsupportedOperator ErrorCode = "UNSUPPORTED_OPERATOR"

	// ErrCodeUnknownColumn indicates a reference to a column that is not
	// mounted.
	ErrCodeUnknownColumn ErrorCode = "UNKNOWN_COLUMN"

	// ErrCodeDuplicateColumn indicates two columns with the same name.
	ErrCodeDuplicateColumn ErrorCode = "DUPLICATE_COLUMN"

	// ErrCodeUnsortableColumn indicates a sort on a column marked unsortable.
	ErrCodeUnsortableColumn ErrorCode = "UNSORTABLE_COLUMN"

	// ErrCodeUnfilterableColumn indicates a filter on a column marked
	// unfilterable.
	ErrCodeUnfilterableColumn ErrorCode = "UNFILTERABLE_COLUMN"

	// ErrCodeInvalidColumn indicates a malformed column declaration.
	ErrCodeInvalidColumn ErrorCode = "INVALID_COLUMN"

	// ErrCodeUnknownFilter indicates a filter ID that does not exist.
	ErrCodeUnknownFilter ErrorCode = "UNKNOWN_FILTER"
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigError returns true if err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsCode returns true if err is or wraps a ConfigError with the given code.
// Uses errors.As to handle wrapped errors.
func IsCode(err error, code ErrorCode) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

func newConfigError(code ErrorCode, field, format string, args ...any) *ConfigError {
	return &ConfigError{Code: code, Field: field, Message: fmt.Sprintf(format, args...)}
}

// NewConflictingSourcesError creates a ConfigError for mutually exclusive
// data sources supplied together.
func NewConflictingSourcesError(supplied ...string) *ConfigError {
	return newConfigError(ErrCodeConflictingSources, "",
		"items, server data and virtualized server data are mutually exclusive; got %v", supplied)
}

// NewUnknownColumnError creates a ConfigError for a missing column.
func NewUnknownColumnError(field string) *ConfigError {
	return newConfigError(ErrCodeUnknownColumn, field, "no column named %q", field)
}

// NewUnknownFilterError creates a ConfigError for a missing filter ID.
func NewUnknownFilterError(id string) *ConfigError {
	return newConfigError(ErrCodeUnknownFilter, "", "no filter with id %q", id)
}
