package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/gridq/internal/compiler"
	"github.com/roach88/gridq/internal/grid"
	"github.com/roach88/gridq/internal/ir"
	"github.com/roach88/gridq/internal/querysql"
	"github.com/roach88/gridq/internal/record"
	"github.com/roach88/gridq/internal/store"
	"github.com/roach88/gridq/internal/testutil"
)

// stepTimeout bounds the wait for server requests after each gesture.
const stepTimeout = 10 * time.Second

// Harness is the test execution engine.
// It runs scenarios with a deterministic clock, filter ids and request
// tokens, so traces are identical across runs.
type Harness struct {
	ctx    context.Context
	grid   *grid.Grid[record.Record]
	schema *record.Schema
	items  map[string]record.Record
	clock  *testutil.DeterministicClock
	logger *slog.Logger

	mu      sync.Mutex
	result  *Result
	filters int
}

// Run executes a test scenario and returns the result.
//
// Each sqlite scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Resolve the grid schema and convert the items
// 2. Build the grid over local items or a SQLite table
// 3. Execute flow steps, waiting for server requests after each
// 4. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	spec, err := resolveGrid(scenario)
	if err != nil {
		return nil, err
	}
	schema, err := record.NewSchema(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid grid: %w", err)
	}
	cols, err := schema.Columns()
	if err != nil {
		return nil, fmt.Errorf("invalid grid: %w", err)
	}
	recs, err := schema.FromMaps(scenario.Items)
	if err != nil {
		return nil, fmt.Errorf("invalid items: %w", err)
	}

	h := &Harness{
		ctx:    ctx,
		schema: schema,
		clock:  testutil.NewDeterministicClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
		result: NewResult(),
	}
	h.index(recs)

	cfg := grid.Config[record.Record]{
		Columns:            cols,
		MultiSelection:     spec.Options.MultiSelection,
		SelectionComparer:  record.Equal,
		ExpandSingleRow:    spec.Options.ExpandSingleRow,
		AllowUnsortedState: spec.Options.AllowUnsortedState,
		RowsPerPage:        spec.Options.RowsPerPage,
		Logger:             h.logger,
		Tokens:             testutil.NewSequentialTokens("req"),
		NewID:              h.nextFilterID,
	}

	switch scenario.Source {
	case SourceSQLite:
		st, err := store.Open(":memory:", store.WithLogger(h.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		defer st.Close()
		tbl, err := store.NewTable(schema, querysql.SQLite)
		if err != nil {
			return nil, err
		}
		if err := st.Create(ctx, tbl); err != nil {
			return nil, err
		}
		if err := st.Put(ctx, tbl, recs); err != nil {
			return nil, err
		}
		cfg.ServerData = st.Fetch(tbl)
	default:
		cfg.Items = recs
	}

	g, err := grid.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build grid: %w", err)
	}
	h.grid = g
	unsubscribe := g.Subscribe(h.observe)
	defer unsubscribe()

	if g.Mode().Remote() {
		if err := h.settle(g.ReloadServerData); err != nil {
			return nil, fmt.Errorf("initial load: %w", err)
		}
	}

	if err := h.executeFlow(scenario.Flow); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions, g) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

// resolveGrid returns the scenario's grid: compiled from its CUE schema, or
// declared inline.
func resolveGrid(s *Scenario) (ir.GridSpec, error) {
	if s.Schema == "" {
		name := s.Grid
		if name == "" {
			name = s.Name
		}
		return ir.GridSpec{Name: name, Columns: s.Columns, Options: s.Options}, nil
	}
	specs, err := compiler.LoadFile(s.Schema)
	if err != nil {
		return ir.GridSpec{}, fmt.Errorf("compile schema: %w", err)
	}
	return compiler.Pick(specs, s.Grid)
}

// executeFlow runs all flow steps and validates expect clauses.
//
// Each step:
// 1. Records the gesture in the trace
// 2. Invokes it on the grid
// 3. Waits for any server request it caused
// 4. Compares the outcome with the expect clause
func (h *Harness) executeFlow(flow []FlowStep) error {
	for i, step := range flow {
		do := gestures[step.Invoke]

		h.mu.Lock()
		h.result.AddInvokeTrace(step.Invoke, step.Args, h.clock.Next())
		entry := len(h.result.Trace) - 1
		h.mu.Unlock()

		var out any
		err := h.settle(func(context.Context) error {
			var err error
			out, err = do(h, args(step.Args))
			return err
		})
		var bad *argError
		if errors.As(err, &bad) {
			return fmt.Errorf("flow step %d (%s): %w", i, step.Invoke, err)
		}
		if err != nil {
			h.mu.Lock()
			h.result.Trace[entry].Error = errorCode(err)
			h.mu.Unlock()
		}

		if msg := checkExpect(step.Expect, out, err); msg != "" {
			h.result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Invoke, msg))
		}

		h.logger.Info("flow step completed",
			"step", i,
			"action", step.Invoke,
			"error", err,
		)
	}
	return nil
}

// settle runs fn, then waits until the grid has no request in flight.
func (h *Harness) settle(fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(h.ctx, stepTimeout)
	defer cancel()
	err := fn(ctx)
	if werr := h.grid.Wait(ctx); werr != nil {
		return fmt.Errorf("waiting for server data: %w", werr)
	}
	return err
}

// checkExpect compares a gesture's outcome with its expect clause and
// returns a failure message, or "".
func checkExpect(expect *ExpectClause, out any, err error) string {
	want := ""
	if expect != nil {
		want = expect.Error
	}
	switch {
	case want == "" && err != nil:
		return fmt.Sprintf("unexpected error: %v", err)
	case want != "" && err == nil:
		return fmt.Sprintf("expected error %s, got none", want)
	case want != "" && want != "any" && !grid.IsCode(err, grid.ErrorCode(want)):
		return fmt.Sprintf("expected error %s, got %v", want, err)
	}
	if expect != nil && expect.Result != nil && !valuesEqual(out, expect.Result) {
		return fmt.Sprintf("expected result %v, got %v", expect.Result, out)
	}
	return ""
}

func errorCode(err error) string {
	var ce *grid.ConfigError
	if errors.As(err, &ce) {
		return string(ce.Code)
	}
	return "ERROR"
}

// observe records one grid notification.
func (h *Harness) observe(e grid.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.result.AddEventTrace(e.Kind.String(), e.Token, h.clock.Next())
}

func (h *Harness) nextFilterID() string {
	h.filters++
	return fmt.Sprintf("f%d", h.filters)
}

// index makes recs addressable by id from flow steps.
func (h *Harness) index(recs []record.Record) {
	if h.items == nil {
		h.items = make(map[string]record.Record, len(recs))
	}
	for _, r := range recs {
		h.items[r.ID] = r
	}
}
