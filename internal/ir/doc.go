// Package ir provides the value model shared by every gridq package.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal. This keeps the
// value model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Value is a sealed union; a nil Value is the null value
//   - Every Value reports its ValueKind, resolved once when a column is declared
//   - The operator table per kind is closed and exhaustive (OperatorsFor)
//   - Filter values arriving as text are coerced with Coerce, never parsed ad hoc
//   - Request descriptors hash through RFC 8785 canonical JSON (QueryKey)
package ir
