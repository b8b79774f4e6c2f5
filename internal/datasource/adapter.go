package datasource

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Call is one issued request. Its result becomes available once the fetch
// returns, or ErrSuperseded when a newer request replaced it.
type Call[T any] struct {
	Request Request[T]

	ctx        context.Context
	cancel     context.CancelFunc
	superseded atomic.Bool
	done       chan struct{}
	result     Result[T]
}

// Done is closed when the call has a result.
func (c *Call[T]) Done() <-chan struct{} { return c.done }

// Superseded reports whether a newer request, a function swap or Cancel
// retired the call. Its context was cancelled at that moment.
func (c *Call[T]) Superseded() bool { return c.superseded.Load() }

func (c *Call[T]) supersede() {
	c.superseded.Store(true)
	c.cancel()
}

// Result returns the outcome. Valid once Done is closed.
func (c *Call[T]) Result() Result[T] { return c.result }

// Wait blocks until the call completes or ctx is done.
func (c *Call[T]) Wait(ctx context.Context) (Result[T], error) {
	select {
	case <-c.done:
		return c.result, c.result.Err
	case <-ctx.Done():
		return Result[T]{Request: c.Request}, ctx.Err()
	}
}

func (c *Call[T]) complete(r Result[T]) {
	c.result = r
	close(c.done)
}

// Deliver hands a finished result to its consumer and reports whether the
// consumer applied it. Consumers must call Settle inside their own critical
// section and apply the result only when Settle returns true; that makes the
// "still current?" check and the apply one step.
type Deliver[T any] func(c *Call[T], r Result[T]) bool

// Adapter issues remote fetches with latest-wins semantics. At most one call
// is current; Issue cancels the previous call before dispatching the next.
//
// Thread-safety: Adapter is safe for concurrent use. Fetches run on their own
// goroutines.
type Adapter[T any] struct {
	fetch   Func[T]
	tokens  TokenGenerator
	clock   *Clock
	logger  *slog.Logger
	deliver Deliver[T]

	mu      sync.Mutex
	current *Call[T]
}

// Option configures an Adapter.
type Option[T any] func(*Adapter[T])

// WithTokens sets the request token generator.
func WithTokens[T any](g TokenGenerator) Option[T] {
	return func(a *Adapter[T]) { a.tokens = g }
}

// WithLogger sets the logger.
func WithLogger[T any](l *slog.Logger) Option[T] {
	return func(a *Adapter[T]) { a.logger = l }
}

// WithDeliver sets the consumer of finished results.
func WithDeliver[T any](d Deliver[T]) Option[T] {
	return func(a *Adapter[T]) { a.deliver = d }
}

// NewAdapter returns an adapter over fetch.
func NewAdapter[T any](fetch Func[T], opts ...Option[T]) *Adapter[T] {
	a := &Adapter[T]{
		fetch:  fetch,
		tokens: UUIDv7Generator{},
		clock:  NewClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetFunc replaces the fetch function. The current call, if any, is
// cancelled; the caller is expected to issue a fresh request.
func (a *Adapter[T]) SetFunc(fetch Func[T]) {
	a.mu.Lock()
	a.fetch = fetch
	prev := a.current
	a.current = nil
	a.mu.Unlock()
	if prev != nil {
		prev.supersede()
	}
}

// Issue stamps req with a token and sequence number, cancels the current
// call and dispatches req. It never blocks on the fetch.
func (a *Adapter[T]) Issue(ctx context.Context, req Request[T]) *Call[T] {
	req.Token = a.tokens.Generate()
	req.Seq = a.clock.Next()

	cctx, cancel := context.WithCancel(ctx)
	c := &Call[T]{Request: req, ctx: cctx, cancel: cancel, done: make(chan struct{})}

	a.mu.Lock()
	prev := a.current
	a.current = c
	fetch := a.fetch
	a.mu.Unlock()

	if prev != nil {
		prev.supersede()
		a.logger.Debug("request superseded",
			"token", prev.Request.Token,
			"seq", prev.Request.Seq,
			"by", req.Seq)
	}
	a.logger.Debug("request issued",
		"token", req.Token,
		"seq", req.Seq,
		"mode", req.Mode.String(),
		"offset", req.Offset,
		"count", req.Count)

	go a.run(c, fetch)
	return c
}

func (a *Adapter[T]) run(c *Call[T], fetch Func[T]) {
	defer c.cancel()

	page, err := call(c.ctx, fetch, c.Request)
	res := Result[T]{Request: c.Request, Page: page, Err: err}
	if err != nil {
		res.Page = Page[T]{}
	}

	var accepted bool
	if a.deliver != nil {
		accepted = a.deliver(c, res)
	} else {
		accepted = a.Settle(c)
	}

	if !accepted {
		a.logger.Debug("late result discarded",
			"token", c.Request.Token,
			"seq", c.Request.Seq)
		c.complete(Result[T]{Request: c.Request, Err: ErrSuperseded})
		return
	}
	if err != nil {
		a.logger.Warn("fetch failed",
			"token", c.Request.Token,
			"seq", c.Request.Seq,
			"error", err)
	}
	c.complete(res)
}

// Settle retires c if it is still the current call and reports whether it
// was. A call that was superseded, or whose function was replaced, does not
// settle.
func (a *Adapter[T]) Settle(c *Call[T]) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != c {
		return false
	}
	a.current = nil
	return true
}

// Current returns the call in flight, or nil.
func (a *Adapter[T]) Current() *Call[T] {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Pending reports whether a call is in flight.
func (a *Adapter[T]) Pending() bool { return a.Current() != nil }

// Cancel cancels the call in flight, if any. Its result will be discarded.
func (a *Adapter[T]) Cancel() {
	a.mu.Lock()
	prev := a.current
	a.current = nil
	a.mu.Unlock()
	if prev != nil {
		prev.supersede()
	}
}

// Fetch issues req and waits for its result.
func (a *Adapter[T]) Fetch(ctx context.Context, req Request[T]) (Page[T], error) {
	res, err := a.Issue(ctx, req).Wait(ctx)
	return res.Page, err
}
