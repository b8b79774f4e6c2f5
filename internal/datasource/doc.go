// Package datasource abstracts where a grid's items come from.
//
// A grid is sourced from exactly one of: a local collection held in memory,
// a paged remote function (page index and size in, items and a total out),
// or a streaming remote function (offset and count in, items and an optional
// total out). The remote modes share one Adapter, which keeps at most one
// request in flight: issuing a request cancels the previous one, and a
// superseded request's late result is discarded.
package datasource
