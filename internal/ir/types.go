package ir

// GridSpec is a compiled grid schema: the columns of a dynamic record type
// plus the grid options. Produced by the CUE compiler and by scenario files.
type GridSpec struct {
	Name    string       `json:"name" yaml:"name"`
	Columns []ColumnSpec `json:"columns" yaml:"columns"`
	Options GridOptions  `json:"options" yaml:"options"`
}

// ColumnSpec declares one column of a GridSpec.
type ColumnSpec struct {
	Name       string   `json:"name" yaml:"name"`
	Kind       string   `json:"kind" yaml:"kind"`                                 // see ParseValueKind
	Sortable   *bool    `json:"sortable,omitempty" yaml:"sortable,omitempty"`     // default true
	Filterable *bool    `json:"filterable,omitempty" yaml:"filterable,omitempty"` // default true
	Operators  []string `json:"operators,omitempty" yaml:"operators,omitempty"`   // default: the kind's table
	Comparer   string   `json:"comparer,omitempty" yaml:"comparer,omitempty"`     // "" or "natural"
	Members    []string `json:"members,omitempty" yaml:"members,omitempty"`       // enum members, informational
}

// GridOptions mirrors the configuration surface accepted by a grid.
type GridOptions struct {
	MultiSelection     bool `json:"multi_selection" yaml:"multi_selection"`
	ExpandSingleRow    bool `json:"expand_single_row" yaml:"expand_single_row"`
	AllowUnsortedState bool `json:"allow_unsorted_state" yaml:"allow_unsorted_state"`
	RowsPerPage        int  `json:"rows_per_page" yaml:"rows_per_page"` // 0 = default, -1 = all
}

// IsSortable reports the effective sortable flag (default true).
func (c ColumnSpec) IsSortable() bool {
	return c.Sortable == nil || *c.Sortable
}

// IsFilterable reports the effective filterable flag (default true).
func (c ColumnSpec) IsFilterable() bool {
	return c.Filterable == nil || *c.Filterable
}

// FilterSpec is the serialisable form of one filter definition, as shipped
// to a remote data source inside a QuerySpec.
type FilterSpec struct {
	Field           string    `json:"field"`
	Kind            ValueKind `json:"kind"`
	Operator        Operator  `json:"operator"`
	Value           Value     `json:"-"`
	CaseInsensitive bool      `json:"case_insensitive,omitempty"`
}

// SortSpec is the serialisable form of one sort definition, in priority order.
type SortSpec struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending,omitempty"`
}

// QuerySpec describes what a remote data source must return: the items
// matching every filter, ordered by the sorts, windowed by Offset/Limit.
// Limit <= 0 means no limit.
type QuerySpec struct {
	Filters []FilterSpec `json:"filters"`
	Sorts   []SortSpec   `json:"sorts"`
	Offset  int          `json:"offset"`
	Limit   int          `json:"limit"`
}
