// Package query turns the current item source, filters and sorts into the
// visible item sequence.
//
// The Pipeline memoizes its result keyed by three versions (source, filters,
// sorts). Setters bump the matching version; the sequence is recomputed
// lazily on the next read. Remote grids do not run the pipeline over items:
// they Describe the same state as a datasource request instead.
package query
