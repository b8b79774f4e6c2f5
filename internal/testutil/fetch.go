package testutil

import (
	"context"
	"sync"

	"github.com/roach88/gridq/internal/datasource"
)

// GatedFetch is a remote source whose requests block until the test releases
// them, so a test can finish requests in any order it likes.
//
// Requests are identified by their sequence number. Answer computes the page
// for a released request; Fail, when set, turns a request into an error.
type GatedFetch[T any] struct {
	Answer func(req datasource.Request[T]) datasource.Page[T]
	Fail   func(req datasource.Request[T]) error
	// IgnoreCancel keeps a cancelled request blocked until released, which
	// models a server that answers late.
	IgnoreCancel bool

	mu       sync.Mutex
	gates    map[int64]chan struct{}
	requests []datasource.Request[T]
	arrived  chan int64
}

// NewGatedFetch returns a fetch answering with answer.
func NewGatedFetch[T any](answer func(req datasource.Request[T]) datasource.Page[T]) *GatedFetch[T] {
	return &GatedFetch[T]{
		Answer:  answer,
		gates:   make(map[int64]chan struct{}),
		arrived: make(chan int64, 1024),
	}
}

func (f *GatedFetch[T]) gate(seq int64) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.gates[seq]
	if !ok {
		ch = make(chan struct{})
		f.gates[seq] = ch
	}
	return ch
}

// Func returns the datasource.Func to hand to a grid or adapter.
func (f *GatedFetch[T]) Func() datasource.Func[T] {
	return func(ctx context.Context, req datasource.Request[T]) (datasource.Page[T], error) {
		f.mu.Lock()
		f.requests = append(f.requests, req)
		f.mu.Unlock()
		f.arrived <- req.Seq

		gate := f.gate(req.Seq)
		if f.IgnoreCancel {
			<-gate
		} else {
			select {
			case <-gate:
			case <-ctx.Done():
				return datasource.Page[T]{}, ctx.Err()
			}
		}
		if f.Fail != nil {
			if err := f.Fail(req); err != nil {
				return datasource.Page[T]{}, err
			}
		}
		return f.Answer(req), nil
	}
}

// Release lets request seq return.
func (f *GatedFetch[T]) Release(seq int64) {
	close(f.gate(seq))
}

// Arrived blocks until the next request reaches the source and returns its
// sequence number.
func (f *GatedFetch[T]) Arrived(ctx context.Context) (int64, error) {
	select {
	case seq := <-f.arrived:
		return seq, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Requests returns the requests received so far.
func (f *GatedFetch[T]) Requests() []datasource.Request[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]datasource.Request[T](nil), f.requests...)
}
