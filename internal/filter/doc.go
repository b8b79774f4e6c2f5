// Package filter compiles filter definitions into predicates over items.
//
// A Definition names a column, an operator and an optional value. Compile
// resolves the column's value kind once and returns a closure; evaluating the
// closure never allocates a new matcher or inspects the item type.
//
// Null semantics:
//   - no operator: matches everything (a filter still being composed)
//   - null filter value: matches everything, except for "is empty" and
//     "is not empty", which ignore the value
//   - null field value: fails positive tests, satisfies negated ones
//   - a value that cannot be read in the column's kind: positive tests match
//     nothing, negated tests match everything
package filter
