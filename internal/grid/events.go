package grid

import "fmt"

// EventKind names one kind of state transition.
type EventKind int

const (
	// FiltersChanged: a filter was added, removed or edited, or the quick
	// filter was replaced.
	FiltersChanged EventKind = iota + 1
	// SortsChanged: the sort keys or their directions changed.
	SortsChanged
	// SelectionChanged: the selected set changed.
	SelectionChanged
	// HierarchyChanged: a detail row was expanded or collapsed.
	HierarchyChanged
	// PageChanged: the page on screen moved.
	PageChanged
	// RowsPerPageChanged: the page size changed.
	RowsPerPageChanged
	// ItemsChanged: the local collection was replaced.
	ItemsChanged
	// ColumnsChanged: a column was added or removed.
	ColumnsChanged
	// LoadingChanged: a server request started, or the last one settled.
	// Read IsLoading for the new state.
	LoadingChanged
	// ServerDataLoaded: a server request returned a page.
	ServerDataLoaded
	// ServerDataFailed: a server request failed. Read LastError.
	ServerDataFailed
)

var eventNames = map[EventKind]string{
	FiltersChanged:     "filters_changed",
	SortsChanged:       "sorts_changed",
	SelectionChanged:   "selection_changed",
	HierarchyChanged:   "hierarchy_changed",
	PageChanged:        "page_changed",
	RowsPerPageChanged: "rows_per_page_changed",
	ItemsChanged:       "items_changed",
	ColumnsChanged:     "columns_changed",
	LoadingChanged:     "loading_changed",
	ServerDataLoaded:   "server_data_loaded",
	ServerDataFailed:   "server_data_failed",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is a change notification. Subscribers read the new state through the
// grid's accessors; the event only says what changed.
type Event struct {
	Kind EventKind

	// Token identifies the server request for LoadingChanged,
	// ServerDataLoaded and ServerDataFailed.
	Token string
}

func (e Event) String() string {
	if e.Token != "" {
		return e.Kind.String() + "(" + e.Token + ")"
	}
	return e.Kind.String()
}
