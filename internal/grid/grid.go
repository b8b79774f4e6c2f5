package grid

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/gridq/internal/column"
	"github.com/roach88/gridq/internal/datasource"
	"github.com/roach88/gridq/internal/filter"
	"github.com/roach88/gridq/internal/ir"
	"github.com/roach88/gridq/internal/order"
	"github.com/roach88/gridq/internal/page"
	"github.com/roach88/gridq/internal/query"
	"github.com/roach88/gridq/internal/selection"
)

// Config is the configuration surface accepted once at setup.
//
// At most one of Items, ServerData and VirtualizeServerData may be set; with
// none set the grid is local and empty. QuickFilter requires local items.
type Config[T any] struct {
	Columns []*column.Column[T]

	// Items is a local collection. Non-nil selects local mode.
	Items []T
	// ServerData fetches one page by index and size.
	ServerData datasource.Func[T]
	// VirtualizeServerData fetches a window by offset and count.
	VirtualizeServerData datasource.Func[T]

	// QuickFilter is an ad-hoc predicate applied after the filter
	// definitions. Local mode only.
	QuickFilter filter.Predicate[T]

	MultiSelection bool
	// SelectionComparer decides item identity for selection and hierarchy.
	// Nil uses == for comparable types and structural equality otherwise.
	SelectionComparer selection.Equal[T]
	// Selectable reports whether an item may be selected. Nil allows all.
	Selectable func(T) bool

	ExpandSingleRow    bool
	AllowUnsortedState bool

	// RowsPerPage is the initial page size: 0 for the default, page.All
	// (or any negative value) for everything on one page.
	RowsPerPage int

	Logger *slog.Logger
	// Tokens generates server request tokens. Defaults to UUIDv7.
	Tokens datasource.TokenGenerator
	// NewID generates filter IDs. Defaults to random UUIDs.
	NewID func() string
}

// Grid is the aggregate root of one grid instance.
type Grid[T any] struct {
	logger             *slog.Logger
	newID              func() string
	mode               datasource.Mode
	allowUnsortedState bool

	mu       sync.Mutex
	cols     *column.Set[T]
	filters  []*filter.Definition[T]
	sorts    []*order.Definition[T]
	pipeline *query.Pipeline[T]
	page     page.State
	viewport struct{ offset, count int }
	sel      *selection.Manager[T]
	hier     *selection.Hierarchy[T]

	adapter *datasource.Adapter[T]
	server  datasource.Page[T]
	call    *datasource.Call[T]
	last    *datasource.Call[T]
	lastKey string
	loading bool
	lastErr error

	subs    map[int]func(Event)
	nextSub int
	pending []Event
}

// New validates cfg and returns a grid. Configuration mistakes are returned
// as *ConfigError.
func New[T any](cfg Config[T]) (*Grid[T], error) {
	mode, err := resolveMode(cfg)
	if err != nil {
		return nil, err
	}

	g := &Grid[T]{
		logger:             cfg.Logger,
		newID:              cfg.NewID,
		mode:               mode,
		allowUnsortedState: cfg.AllowUnsortedState,
		cols:               &column.Set[T]{},
		pipeline:           query.New(cfg.Items),
		page:               page.New(cfg.RowsPerPage),
		subs:               make(map[int]func(Event)),
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.newID == nil {
		g.newID = uuid.NewString
	}
	for _, c := range cfg.Columns {
		if err := g.addColumn(c); err != nil {
			return nil, err
		}
	}
	if cfg.QuickFilter != nil {
		g.pipeline.SetQuickFilter(cfg.QuickFilter)
	}

	selMode := selection.Single
	if cfg.MultiSelection {
		selMode = selection.Multi
	}
	g.sel = selection.NewManager(selMode, cfg.SelectionComparer, cfg.Selectable)
	g.hier = selection.NewHierarchy(cfg.ExpandSingleRow, cfg.SelectionComparer)

	if mode.Remote() {
		fetch := cfg.ServerData
		if mode == datasource.Streaming {
			fetch = cfg.VirtualizeServerData
		}
		opts := []datasource.Option[T]{
			datasource.WithLogger[T](g.logger),
			datasource.WithDeliver[T](g.deliver),
		}
		if cfg.Tokens != nil {
			opts = append(opts, datasource.WithTokens[T](cfg.Tokens))
		}
		g.adapter = datasource.NewAdapter(fetch, opts...)
		g.server.Total = datasource.UnknownTotal
	}

	g.logger.Debug("grid configured",
		"mode", mode.String(),
		"columns", g.cols.Len(),
		"multi_selection", cfg.MultiSelection,
		"rows_per_page", g.page.Size)
	return g, nil
}

func resolveMode[T any](cfg Config[T]) (datasource.Mode, error) {
	var supplied []string
	mode := datasource.Local
	if cfg.Items != nil {
		supplied = append(supplied, "items")
	}
	if cfg.ServerData != nil {
		supplied = append(supplied, "server data")
		mode = datasource.Paged
	}
	if cfg.VirtualizeServerData != nil {
		supplied = append(supplied, "virtualized server data")
		mode = datasource.Streaming
	}
	if len(supplied) > 1 {
		return datasource.Local, NewConflictingSourcesError(supplied...)
	}
	if mode.Remote() && cfg.QuickFilter != nil {
		return datasource.Local, newConfigError(ErrCodeQuickFilterRemote, "",
			"a quick filter cannot be combined with %s mode; filtering happens on the server", mode)
	}
	return mode, nil
}

// Mode returns the data source mode.
func (g *Grid[T]) Mode() datasource.Mode { return g.mode }

// Subscribe registers fn for change notifications and returns a function
// that removes it. Notifications for one mutation arrive in order, after the
// mutation completed.
func (g *Grid[T]) Subscribe(fn func(Event)) (unsubscribe func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextSub
	g.nextSub++
	g.subs[id] = fn
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.subs, id)
	}
}

// update runs fn under the lock and dispatches the events it emitted once
// the lock is released.
func (g *Grid[T]) update(fn func() error) error {
	g.mu.Lock()
	err := fn()
	events := g.pending
	g.pending = nil
	subs := make([]func(Event), 0, len(g.subs))
	for i := 0; i < g.nextSub; i++ {
		if s, ok := g.subs[i]; ok {
			subs = append(subs, s)
		}
	}
	g.mu.Unlock()

	for _, e := range events {
		for _, s := range subs {
			s(e)
		}
	}
	return err
}

// emit queues an event; the caller holds the lock.
func (g *Grid[T]) emit(kind EventKind) {
	g.pending = append(g.pending, Event{Kind: kind})
}

func (g *Grid[T]) emitToken(kind EventKind, token string) {
	g.pending = append(g.pending, Event{Kind: kind, Token: token})
}

// read runs fn under the lock.
func (g *Grid[T]) read(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn()
}

// Columns returns the mounted columns in declaration order.
func (g *Grid[T]) Columns() []*column.Column[T] {
	var out []*column.Column[T]
	g.read(func() { out = g.cols.All() })
	return out
}

// AddColumn mounts a column. Names are unique within a grid.
func (g *Grid[T]) AddColumn(c *column.Column[T]) error {
	return g.update(func() error {
		if err := g.addColumn(c); err != nil {
			return err
		}
		g.emit(ColumnsChanged)
		return nil
	})
}

func (g *Grid[T]) addColumn(c *column.Column[T]) error {
	if c == nil {
		return newConfigError(ErrCodeInvalidColumn, "", "column is nil")
	}
	for _, op := range c.Operators {
		if !ir.Supports(c.Kind, op) {
			return newConfigError(ErrCodeUnsupportedOperator, c.Name,
				"operator %q is not defined for %s values", op, c.Kind)
		}
	}
	if err := g.cols.Add(c); err != nil {
		if errors.Is(err, column.ErrDuplicate) {
			return newConfigError(ErrCodeDuplicateColumn, c.Name, "column %q is declared twice", c.Name)
		}
		return newConfigError(ErrCodeInvalidColumn, c.Name, "%v", err)
	}
	return nil
}

// RemoveColumn unmounts a column. Filters and sorts on it are dropped.
// Replacing a column is RemoveColumn followed by AddColumn.
func (g *Grid[T]) RemoveColumn(name string) error {
	return g.update(func() error {
		if !g.cols.Remove(name) {
			return NewUnknownColumnError(name)
		}
		g.emit(ColumnsChanged)

		kept := g.filters[:0:0]
		for _, d := range g.filters {
			if d.Field() != name {
				kept = append(kept, d)
			}
		}
		if len(kept) != len(g.filters) {
			g.setFilters(kept)
		}

		sorts := g.sorts[:0:0]
		for _, d := range g.sorts {
			if d.Field != name {
				sorts = append(sorts, d)
			}
		}
		if len(sorts) != len(g.sorts) {
			g.setSorts(sorts)
		}
		return nil
	})
}

// SetItems replaces the local collection. Remote grids reject it.
func (g *Grid[T]) SetItems(items []T) error {
	return g.update(func() error {
		if g.mode.Remote() {
			return NewConflictingSourcesError("items", g.mode.String()+" server data")
		}
		g.pipeline.SetItems(items)
		g.emit(ItemsChanged)
		g.clampPage()
		return nil
	})
}

// SetQuickFilter replaces the ad-hoc predicate. Remote grids reject it.
func (g *Grid[T]) SetQuickFilter(pred filter.Predicate[T]) error {
	return g.update(func() error {
		if g.mode.Remote() {
			return newConfigError(ErrCodeQuickFilterRemote, "",
				"a quick filter cannot be combined with %s mode", g.mode)
		}
		g.pipeline.SetQuickFilter(pred)
		g.filtersChanged()
		return nil
	})
}

// VisibleItems returns the items under the active filters and sorts, before
// pagination. For remote grids this is the last page the server returned.
func (g *Grid[T]) VisibleItems() []T {
	var out []T
	g.read(func() { out = append([]T(nil), g.visible()...) })
	return out
}

func (g *Grid[T]) visible() []T {
	if g.mode.Remote() {
		return g.server.Items
	}
	return g.pipeline.Visible()
}

// Recomputations counts local pipeline recomputations.
func (g *Grid[T]) Recomputations() int {
	var n int
	g.read(func() { n = g.pipeline.Recomputations() })
	return n
}
