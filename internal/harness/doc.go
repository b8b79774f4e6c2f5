// Package harness runs grid conformance scenarios.
//
// A scenario declares a grid, loads items into it, drives it through a flow
// of user gestures and checks the resulting state and notification trace.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: filter_then_page
//	description: "Filtering returns to the first page"
//	schema: ../grids/people.cue   # or inline columns/options
//	grid: people
//	source: local                 # or sqlite
//	items:
//	  - {name: Alice, age: 34}
//	  - {name: Bob, age: 27}
//	flow:
//	  - invoke: add_filter
//	    args: {field: age, op: ">", value: 30}
//	  - invoke: remove_filter
//	    args: {id: f9}
//	    expect: {error: UNKNOWN_FILTER}
//	assertions:
//	  - type: visible
//	    ids: ["000001"]
//	  - type: trace_order
//	    events: [filters_changed, page_changed]
//
// Items without an id get their zero-padded position ("000001"). Filters
// get the ids f1, f2 and so on in creation order.
//
// # Gestures
//
// Filters: open_filter, add_filter, set_filter_column, set_filter_operator,
// set_filter_value, set_filter_case, remove_filter, close_filters,
// clear_filters. Sorting: set_sort, add_sort, toggle_sort, remove_sort,
// clear_sorts. Paging: navigate, set_page, set_rows_per_page. Selection:
// select, select_all, set_selected_items, toggle_hierarchy, expand_all,
// collapse_all. Data: set_items, reload.
//
// # Assertion Types
//
//   - visible, page_items, selected, expanded: item ids in order
//   - total: the matching item count
//   - page: the current page and, optionally, the page count
//   - can_navigate: whether a navigation gesture would move
//   - select_all_state: checked, unchecked or indeterminate
//   - filters: the filter definitions in order
//   - error: the last server error, by substring
//   - trace_contains, trace_order, trace_count: grid notifications
//
// # Deterministic Testing
//
// Traces are reproducible: sequence numbers come from
// testutil.DeterministicClock, request tokens are req-1, req-2 and so on,
// and every sqlite scenario gets its own in-memory database. The harness
// waits for server requests to settle after each gesture, so remote
// notifications land in the trace after the gesture that caused them.
package harness
