// Package order compiles sort definitions into a composite comparator.
//
// Definitions apply by ascending Priority; ties in priority keep the order in
// which they were given. Each definition picks its own direction and may bring
// its own comparer; otherwise the column kind's natural ordering is used, with
// nulls first when ascending. Sorting is stable: items whose keys are all
// equal keep their source order.
package order
