package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/gridq/internal/grid"
	"github.com/roach88/gridq/internal/ir"
	"github.com/roach88/gridq/internal/page"
	"github.com/roach88/gridq/internal/record"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, entry := range e.Trace {
			switch entry.Type {
			case EntryInvoke:
				fmt.Fprintf(&buf, "  [%d] %s %v", i+1, entry.Action, entry.Args)
				if entry.Error != "" {
					fmt.Fprintf(&buf, " -> %s", entry.Error)
				}
				buf.WriteByte('\n')
			case EntryEvent:
				fmt.Fprintf(&buf, "  [%d]   %s %s\n", i+1, entry.Event, entry.Token)
			}
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the grid and the trace
// and returns one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion, g *grid.Grid[record.Record]) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(result.Trace, a, g); err != nil {
			failures = append(failures, fmt.Sprintf("assertion[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(trace []TraceEvent, a Assertion, g *grid.Grid[record.Record]) error {
	switch a.Type {
	case AssertVisible:
		return assertIDs(a, g.VisibleItems(), trace)
	case AssertPageItems:
		return assertIDs(a, g.PageItems(), trace)
	case AssertSelected:
		return assertIDs(a, g.Selected(), trace)
	case AssertExpanded:
		return assertIDs(a, g.Expanded(), trace)
	case AssertTotal:
		if n := g.TotalCount(); n != a.Count {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprint(a.Count), Actual: fmt.Sprint(n), Trace: trace}
		}
	case AssertPage:
		return assertPage(a, g, trace)
	case AssertCanNavigate:
		action, err := page.ParseAction(a.Action)
		if err != nil {
			return err
		}
		if ok := g.CanNavigate(action); ok != a.Allowed {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s allowed=%t", a.Action, a.Allowed),
				Actual:   fmt.Sprintf("allowed=%t", ok),
				Trace:    trace,
			}
		}
	case AssertSelectAllState:
		if s := g.SelectAllState().String(); s != a.State {
			return &AssertionError{Type: a.Type, Expected: a.State, Actual: s, Trace: trace}
		}
	case AssertFilters:
		return assertFilters(a, g, trace)
	case AssertError:
		return assertServerError(a, g.LastError(), trace)
	case AssertTraceContains:
		return assertTraceContains(trace, a)
	case AssertTraceOrder:
		return assertTraceOrder(trace, a)
	case AssertTraceCount:
		return assertTraceCount(trace, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func assertIDs(a Assertion, items []record.Record, trace []TraceEvent) error {
	got := make([]string, len(items))
	for i, r := range items {
		got[i] = r.ID
	}
	want := a.IDs
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(got, want) {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprint(want), Actual: fmt.Sprint(got), Trace: trace}
	}
	return nil
}

func assertPage(a Assertion, g *grid.Grid[record.Record], trace []TraceEvent) error {
	cur, count := g.CurrentPage(), g.PageCount()
	if cur != a.Page || (a.Pages != 0 && count != a.Pages) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("page %d of %d", a.Page, a.Pages),
			Actual:   fmt.Sprintf("page %d of %d", cur, count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFilters compares the filter definitions in order. Expected fields
// left out are not checked.
func assertFilters(a Assertion, g *grid.Grid[record.Record], trace []TraceEvent) error {
	got := g.Filters()
	if len(got) != len(a.Filters) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d filters", len(a.Filters)),
			Actual:   fmt.Sprintf("%d filters: %s", len(got), describeFilters(got)),
			Trace:    trace,
		}
	}
	for i, want := range a.Filters {
		f := got[i]
		mismatch := f.Field != want.Field
		if want.Operator != "" {
			op, err := ir.ParseOperator(want.Operator)
			mismatch = mismatch || err != nil || !sameOperator(op, f.Operator)
		}
		if want.Value != nil {
			mismatch = mismatch || ir.Format(f.Value) != fmt.Sprint(want.Value)
		}
		if want.Committed != nil {
			mismatch = mismatch || f.Committed != *want.Committed
		}
		if mismatch {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("filters[%d] = %s %s %v", i, want.Field, want.Operator, want.Value),
				Actual:   describeFilters(got),
				Trace:    trace,
			}
		}
	}
	return nil
}

// sameOperator treats the string and numeric spellings of equality as one.
func sameOperator(a, b ir.Operator) bool {
	norm := func(op ir.Operator) ir.Operator {
		switch op {
		case ir.OpNumEqual:
			return ir.OpEqual
		case ir.OpNumNotEqual:
			return ir.OpNotEqual
		}
		return op
	}
	return norm(a) == norm(b)
}

func describeFilters(fs []grid.FilterView) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = fmt.Sprintf("%s:%s %q %q committed=%t", f.ID, f.Field, f.Operator, ir.Format(f.Value), f.Committed)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func assertServerError(a Assertion, err error, trace []TraceEvent) error {
	switch {
	case a.Message == "" && err != nil:
		return &AssertionError{Type: a.Type, Expected: "no server error", Actual: err.Error(), Trace: trace}
	case a.Message != "" && err == nil:
		return &AssertionError{Type: a.Type, Expected: a.Message, Actual: "no server error", Trace: trace}
	case a.Message != "" && !strings.Contains(err.Error(), a.Message):
		return &AssertionError{Type: a.Type, Expected: a.Message, Actual: err.Error(), Trace: trace}
	}
	return nil
}

// assertTraceContains checks that the grid emitted the notification.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, entry := range trace {
		if entry.Type == EntryEvent && entry.Event == a.Event {
			return nil
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("event %s", a.Event),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the notifications appear in the given order.
// They need not be consecutive; each is matched after the previous one.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, entry := range trace {
		if next == len(a.Events) {
			break
		}
		if entry.Type == EntryEvent && entry.Event == a.Events[next] {
			next++
		}
	}
	if next < len(a.Events) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("events in order: %v", a.Events),
			Actual:   fmt.Sprintf("%s not found after %v", a.Events[next], a.Events[:next]),
			Trace:    trace,
		}
	}
	return nil
}

// assertTraceCount checks that the notification was emitted exactly Count
// times.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, entry := range trace {
		if entry.Type == EntryEvent && entry.Event == a.Event {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Event),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// valuesEqual compares a gesture result with its YAML expectation.
func valuesEqual(got, want any) bool {
	return fmt.Sprint(got) == fmt.Sprint(want)
}
