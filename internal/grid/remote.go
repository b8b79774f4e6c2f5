package grid

import (
	"context"
	"errors"

	"github.com/roach88/gridq/internal/datasource"
)

// refresh fetches the current query from the server unless an identical
// query is already loaded or in flight; the caller holds the lock. Local
// grids recompute lazily and need nothing here.
func (g *Grid[T]) refresh() { g.issue(false) }

func (g *Grid[T]) issue(force bool) *datasource.Call[T] {
	if !g.mode.Remote() {
		return nil
	}
	req := g.pipeline.Describe(g.mode, g.page, g.viewport.offset, g.viewport.count)
	key, err := req.Key()
	if err != nil {
		g.logger.Warn("query key unavailable", "error", err)
		key = ""
	}
	if !force && key != "" && key == g.lastKey {
		return g.call
	}
	g.lastKey = key

	c := g.adapter.Issue(context.Background(), req)
	g.call = c
	g.last = c
	if !g.loading {
		g.loading = true
		g.emitToken(LoadingChanged, c.Request.Token)
	}
	return c
}

// deliver applies a finished fetch. It runs on the fetch goroutine and
// settles the call under the grid's lock, so a result that lost the race to
// a newer request is never applied.
func (g *Grid[T]) deliver(c *datasource.Call[T], r datasource.Result[T]) bool {
	var accepted bool
	_ = g.update(func() error {
		if !g.adapter.Settle(c) {
			return nil
		}
		accepted = true
		token := r.Request.Token
		g.call = nil
		g.loading = false

		if r.Err != nil {
			g.lastErr = r.Err
			// Let the same query be retried.
			g.lastKey = ""
			g.emitToken(ServerDataFailed, token)
			g.emitToken(LoadingChanged, token)
			return nil
		}

		g.lastErr = nil
		g.server = r.Page
		g.emitToken(ServerDataLoaded, token)
		g.emitToken(LoadingChanged, token)

		if g.mode == datasource.Paged && r.Page.Total >= 0 {
			st := g.page.WithTotal(r.Page.Total)
			moved := st.Index != g.page.Index
			g.page = st
			if moved {
				g.emit(PageChanged)
				g.refresh()
			}
		}
		return nil
	})
	return accepted
}

// SetServerData replaces the remote fetch function of a paged or streaming
// grid and fetches again. Any request in flight is discarded. Local grids
// reject it.
func (g *Grid[T]) SetServerData(fetch datasource.Func[T]) error {
	return g.update(func() error {
		if !g.mode.Remote() {
			return NewConflictingSourcesError("items", "server data")
		}
		g.adapter.SetFunc(fetch)
		g.call = nil
		g.last = nil
		g.lastKey = ""
		g.issue(true)
		return nil
	})
}

// ReloadServerData refetches the current query and waits for it. A fetch
// error is reported through LastError, not returned; the returned error is
// datasource.ErrSuperseded when a newer request replaced this one, or ctx's
// error. Local grids recompute and return immediately.
func (g *Grid[T]) ReloadServerData(ctx context.Context) error {
	var c *datasource.Call[T]
	_ = g.update(func() error {
		if !g.mode.Remote() {
			g.pipeline.Invalidate()
			return nil
		}
		c = g.issue(true)
		return nil
	})
	if c == nil {
		return nil
	}
	_, err := c.Wait(ctx)
	if errors.Is(err, datasource.ErrSuperseded) || ctx.Err() != nil {
		return err
	}
	return nil
}

// Wait blocks until no request is in flight, following superseding requests,
// or until ctx is done. When it returns, the notifications of the last
// settled request have been delivered.
func (g *Grid[T]) Wait(ctx context.Context) error {
	for {
		var cur, last *datasource.Call[T]
		g.read(func() { cur, last = g.call, g.last })
		wait := cur
		if wait == nil {
			wait = last
		}
		if wait == nil {
			return nil
		}
		select {
		case <-wait.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
		if cur == nil {
			return nil
		}
	}
}

// Cancel abandons the request in flight. The displayed data is kept.
func (g *Grid[T]) Cancel() {
	_ = g.update(func() error {
		if g.call == nil {
			return nil
		}
		token := g.call.Request.Token
		g.adapter.Cancel()
		g.call = nil
		g.last = nil
		g.lastKey = ""
		if g.loading {
			g.loading = false
			g.emitToken(LoadingChanged, token)
		}
		return nil
	})
}

// IsLoading reports whether a server request is in flight.
func (g *Grid[T]) IsLoading() bool {
	var b bool
	g.read(func() { b = g.loading })
	return b
}

// LastError returns the error of the most recent settled request, or nil
// when it succeeded.
func (g *Grid[T]) LastError() error {
	var err error
	g.read(func() { err = g.lastErr })
	return err
}

// SetViewport records the window a virtualized grid shows and fetches it.
// Other modes ignore it.
func (g *Grid[T]) SetViewport(offset, count int) {
	_ = g.update(func() error {
		if g.mode != datasource.Streaming {
			return nil
		}
		offset, count = max(offset, 0), max(count, 0)
		if g.viewport.offset == offset && g.viewport.count == count {
			return nil
		}
		g.viewport.offset, g.viewport.count = offset, count
		g.refresh()
		return nil
	})
}
