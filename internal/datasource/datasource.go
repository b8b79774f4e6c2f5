package datasource

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/gridq/internal/filter"
	"github.com/roach88/gridq/internal/ir"
	"github.com/roach88/gridq/internal/order"
)

// Mode is the sourcing strategy of a grid.
type Mode int

const (
	// Local filters, sorts and pages an in-memory collection.
	Local Mode = iota
	// Paged asks the server for one page by index and size.
	Paged
	// Streaming asks the server for a window by offset and count.
	Streaming
)

func (m Mode) String() string {
	switch m {
	case Paged:
		return "paged"
	case Streaming:
		return "streaming"
	default:
		return "local"
	}
}

// Remote reports whether the mode fetches through an Adapter.
func (m Mode) Remote() bool { return m != Local }

// ErrSuperseded is returned to waiters of a request that a newer request
// replaced before it completed.
var ErrSuperseded = errors.New("request superseded")

// UnknownTotal marks a Page whose source does not know the total count.
const UnknownTotal = -1

// Request describes what a remote source must return. Filters and sorts are
// given both as typed definitions, for Go sources that evaluate them in
// memory, and as the serialisable Query, for sources that translate them.
type Request[T any] struct {
	// Token is a unique, time-ordered identifier for logs and traces.
	Token string
	// Seq orders requests issued by one adapter.
	Seq int64

	Mode    Mode
	Filters []*filter.Definition[T]
	Sorts   []*order.Definition[T]
	Query   ir.QuerySpec

	// Paged requests.
	PageIndex int
	PageSize  int

	// Window of items wanted. Count <= 0 means everything from Offset.
	Offset int
	Count  int
}

// Key returns the content key of the request's query, independent of Token
// and Seq.
func (r Request[T]) Key() (string, error) {
	return ir.QueryKey(r.Query)
}

// Page is one answer from a remote source.
type Page[T any] struct {
	Items []T
	// Total is the number of items matching the filters, or UnknownTotal.
	Total int
}

// Func fetches one page. It should observe ctx cancellation; a result
// returned after cancellation is discarded anyway.
type Func[T any] func(ctx context.Context, req Request[T]) (Page[T], error)

// Result is the outcome of one request.
type Result[T any] struct {
	Request Request[T]
	Page    Page[T]
	Err     error
}

// call invokes fn and converts a panic into an error.
func call[T any](ctx context.Context, fn Func[T], req Request[T]) (page Page[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			page = Page[T]{}
			err = fmt.Errorf("fetch panicked: %v", r)
		}
	}()
	return fn(ctx, req)
}
