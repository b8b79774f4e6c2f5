package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/gridq/internal/ir"
)

// Source names where a scenario's grid reads its items.
const (
	SourceLocal  = "local"
	SourceSQLite = "sqlite"
)

// Scenario defines a conformance test scenario: a grid, its items, a flow of
// gestures and assertions on the resulting state and notification trace.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is a CUE file declaring the grid. Relative to the scenario
	// file when loaded with LoadScenarioWithBasePath.
	Schema string `yaml:"schema,omitempty"`

	// Grid selects a grid from Schema when it declares several.
	Grid string `yaml:"grid,omitempty"`

	// Columns and Options declare the grid inline instead of Schema.
	Columns []ir.ColumnSpec `yaml:"columns,omitempty"`
	Options ir.GridOptions  `yaml:"options,omitempty"`

	// Source is "local" (default) or "sqlite": the items are stored in an
	// in-memory SQLite table and served to a paged grid.
	Source string `yaml:"source,omitempty"`

	// Items are the records, keyed by column name. Records without an id
	// get their zero-padded 1-based position ("000001").
	Items []map[string]any `yaml:"items"`

	// Flow contains the gestures, run in order.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final state and trace.
	Assertions []Assertion `yaml:"assertions"`
}

// FlowStep is one gesture.
type FlowStep struct {
	// Invoke names the gesture (e.g., "add_filter", "navigate").
	Invoke string `yaml:"invoke"`

	// Args contains the gesture arguments.
	Args map[string]any `yaml:"args,omitempty"`

	// Expect validates the gesture's outcome. If nil, the gesture must
	// succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of one gesture.
type ExpectClause struct {
	// Error is the expected grid error code (e.g., "UNKNOWN_COLUMN"), or
	// "any".
	Error string `yaml:"error,omitempty"`

	// Result is the expected return value of gestures that have one:
	// toggle_hierarchy returns whether the row is now expanded.
	Result any `yaml:"result,omitempty"`
}

// Assertion validates final state or the trace.
type Assertion struct {
	// Type specifies the assertion type; see the package documentation.
	Type string `yaml:"type"`

	// IDs are the expected item ids, in order (visible, page_items,
	// selected, expanded).
	IDs []string `yaml:"ids,omitempty"`

	// Count is the expected number (total, trace_count).
	Count int `yaml:"count,omitempty"`

	// Page is the expected zero-based page index; Pages, when non-zero,
	// the expected page count (page).
	Page  int `yaml:"page,omitempty"`
	Pages int `yaml:"pages,omitempty"`

	// Action and Allowed check one navigation gesture (can_navigate).
	Action  string `yaml:"action,omitempty"`
	Allowed bool   `yaml:"allowed,omitempty"`

	// State is "checked", "unchecked" or "indeterminate" (select_all_state).
	State string `yaml:"state,omitempty"`

	// Filters are the expected filter definitions in order (filters).
	Filters []FilterExpect `yaml:"filters,omitempty"`

	// Message is a substring of the expected server error; empty expects
	// no error (error).
	Message string `yaml:"message,omitempty"`

	// Event and Events name notification kinds (trace_contains,
	// trace_count, trace_order).
	Event  string   `yaml:"event,omitempty"`
	Events []string `yaml:"events,omitempty"`
}

// FilterExpect describes one expected filter definition.
type FilterExpect struct {
	Field     string `yaml:"field"`
	Operator  string `yaml:"op,omitempty"`
	Value     any    `yaml:"value,omitempty"`
	Committed *bool  `yaml:"committed,omitempty"`
}

// Assertion type constants.
const (
	AssertVisible        = "visible"
	AssertPageItems      = "page_items"
	AssertSelected       = "selected"
	AssertExpanded       = "expanded"
	AssertTotal          = "total"
	AssertPage           = "page"
	AssertCanNavigate    = "can_navigate"
	AssertSelectAllState = "select_all_state"
	AssertFilters        = "filters"
	AssertError          = "error"
	AssertTraceContains  = "trace_contains"
	AssertTraceOrder     = "trace_order"
	AssertTraceCount     = "trace_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, "")
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the schema path relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) && basePath != "" {
		scenario.Schema = filepath.Join(basePath, scenario.Schema)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Schema == "" && len(s.Columns) == 0:
		return fmt.Errorf("schema or columns is required")
	case s.Schema != "" && len(s.Columns) > 0:
		return fmt.Errorf("schema and columns are mutually exclusive")
	case s.Schema != "" && s.Options != (ir.GridOptions{}):
		return fmt.Errorf("options come from the schema when one is given")
	}
	if s.Schema != "" {
		if _, err := os.Stat(s.Schema); os.IsNotExist(err) {
			return fmt.Errorf("schema file not found: %s", s.Schema)
		}
	}

	switch s.Source {
	case "", SourceLocal, SourceSQLite:
	default:
		return fmt.Errorf("unknown source %q (want %q or %q)", s.Source, SourceLocal, SourceSQLite)
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if step.Invoke == "" {
			return fmt.Errorf("flow[%d]: invoke is required", i)
		}
		if _, ok := gestures[step.Invoke]; !ok {
			return fmt.Errorf("flow[%d]: unknown gesture %q", i, step.Invoke)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertVisible, AssertPageItems, AssertSelected, AssertExpanded,
		AssertTotal, AssertPage, AssertFilters, AssertError:
	case AssertCanNavigate:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for can_navigate", index)
		}
	case AssertSelectAllState:
		if a.State == "" {
			return fmt.Errorf("assertions[%d]: state is required for select_all_state", index)
		}
	case AssertTraceContains:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
