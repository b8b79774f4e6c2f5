package datasource

import (
	"context"

	"github.com/roach88/gridq/internal/filter"
	"github.com/roach88/gridq/internal/order"
)

// Serve answers a request from an in-memory collection: filters, stable
// sort, then the request's window. The total is the filtered count.
func Serve[T any](items []T, req Request[T]) Page[T] {
	out := filter.Apply(items, filter.CompileAll(req.Filters))
	out = order.Sort(out, order.Compile(req.Sorts))
	total := len(out)

	from := min(max(req.Offset, 0), total)
	to := total
	if req.Count > 0 {
		to = min(from+req.Count, total)
	}
	return Page[T]{Items: out[from:to:to], Total: total}
}

// FromSlice returns a Func serving items in memory. It is a remote source in
// shape only, useful for tests and for hosts that simulate a server.
func FromSlice[T any](items []T) Func[T] {
	return func(ctx context.Context, req Request[T]) (Page[T], error) {
		if err := ctx.Err(); err != nil {
			return Page[T]{}, err
		}
		return Serve(items, req), nil
	}
}
