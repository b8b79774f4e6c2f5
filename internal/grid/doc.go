// Package grid is the state facade of an interactive data grid.
//
// A Grid owns the columns, filters, sorts, pagination, selection, hierarchy
// and data source of one widget instance. The presentation layer forwards
// user gestures as method calls and reads the resulting state back through
// accessors; Subscribe delivers one Event per distinct state transition.
//
// All methods are safe for concurrent use. Mutations are serialised and run
// to completion in call order. Events are dispatched after the grid's lock is
// released, so a subscriber may call back into the grid (two-way binding).
package grid
