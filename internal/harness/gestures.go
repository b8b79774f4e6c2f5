package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/gridq/internal/filter"
	"github.com/roach88/gridq/internal/ir"
	"github.com/roach88/gridq/internal/order"
	"github.com/roach88/gridq/internal/page"
	"github.com/roach88/gridq/internal/record"
)

// gesture performs one flow step against the harness grid. It returns the
// gesture's result, if it has one.
type gesture func(h *Harness, args args) (any, error)

// argError reports a malformed flow step. It fails the scenario run, not
// just the step.
type argError struct{ msg string }

func (e *argError) Error() string { return e.msg }

func badArg(format string, a ...any) error {
	return &argError{msg: fmt.Sprintf(format, a...)}
}

var gestures = map[string]gesture{
	"open_filter": func(h *Harness, _ args) (any, error) {
		return h.grid.AddFilter(), nil
	},
	"add_filter": func(h *Harness, a args) (any, error) {
		field, err := a.str("field")
		if err != nil {
			return nil, err
		}
		kind := h.kindOf(field)
		op, err := a.operator(kind)
		if err != nil {
			return nil, err
		}
		c, err := a.caseMode()
		if err != nil {
			return nil, err
		}
		return h.grid.AddFilterDefinition(field, op, a.value(kind), c)
	},
	"set_filter_column": func(h *Harness, a args) (any, error) {
		id, err := a.str("id")
		if err != nil {
			return nil, err
		}
		field, err := a.str("field")
		if err != nil {
			return nil, err
		}
		return nil, h.grid.SetFilterColumn(id, field)
	},
	"set_filter_operator": func(h *Harness, a args) (any, error) {
		id, err := a.str("id")
		if err != nil {
			return nil, err
		}
		op, err := a.operator(h.filterKind(id))
		if err != nil {
			return nil, err
		}
		return nil, h.grid.SetFilterOperator(id, op)
	},
	"set_filter_value": func(h *Harness, a args) (any, error) {
		id, err := a.str("id")
		if err != nil {
			return nil, err
		}
		return nil, h.grid.SetFilterValue(id, a.value(h.filterKind(id)))
	},
	"set_filter_case": func(h *Harness, a args) (any, error) {
		id, err := a.str("id")
		if err != nil {
			return nil, err
		}
		c, err := a.caseMode()
		if err != nil {
			return nil, err
		}
		return nil, h.grid.SetFilterCase(id, c)
	},
	"remove_filter": func(h *Harness, a args) (any, error) {
		id, err := a.str("id")
		if err != nil {
			return nil, err
		}
		return nil, h.grid.RemoveFilter(id)
	},
	"close_filters": func(h *Harness, _ args) (any, error) {
		h.grid.CloseFilters()
		return nil, nil
	},
	"clear_filters": func(h *Harness, _ args) (any, error) {
		h.grid.ClearFilters()
		return nil, nil
	},

	"set_sort": func(h *Harness, a args) (any, error) {
		field, dir, err := a.sort()
		if err != nil {
			return nil, err
		}
		return nil, h.grid.SetSort(field, dir, nil)
	},
	"add_sort": func(h *Harness, a args) (any, error) {
		field, dir, err := a.sort()
		if err != nil {
			return nil, err
		}
		return nil, h.grid.AddSort(field, dir, nil)
	},
	"toggle_sort": func(h *Harness, a args) (any, error) {
		field, err := a.str("field")
		if err != nil {
			return nil, err
		}
		return nil, h.grid.ToggleSort(field)
	},
	"remove_sort": func(h *Harness, a args) (any, error) {
		field, err := a.str("field")
		if err != nil {
			return nil, err
		}
		return nil, h.grid.RemoveSort(field)
	},
	"clear_sorts": func(h *Harness, _ args) (any, error) {
		h.grid.ClearSorts()
		return nil, nil
	},

	"navigate": func(h *Harness, a args) (any, error) {
		s, err := a.str("to")
		if err != nil {
			return nil, err
		}
		action, err := page.ParseAction(s)
		if err != nil {
			return nil, badArg("%v", err)
		}
		h.grid.NavigateTo(action)
		return nil, nil
	},
	"set_page": func(h *Harness, a args) (any, error) {
		n, err := a.integer("page")
		if err != nil {
			return nil, err
		}
		h.grid.SetCurrentPage(n)
		return nil, nil
	},
	"set_rows_per_page": func(h *Harness, a args) (any, error) {
		if s, ok := a["rows"].(string); ok && strings.EqualFold(s, "all") {
			h.grid.SetRowsPerPage(page.All)
			return nil, nil
		}
		n, err := a.integer("rows")
		if err != nil {
			return nil, err
		}
		h.grid.SetRowsPerPage(n)
		return nil, nil
	},

	"select": func(h *Harness, a args) (any, error) {
		item, err := h.item(a)
		if err != nil {
			return nil, err
		}
		selected, err := a.boolean("selected", true)
		if err != nil {
			return nil, err
		}
		h.grid.SetSelected(item, selected)
		return nil, nil
	},
	"select_all": func(h *Harness, a args) (any, error) {
		selected, err := a.boolean("selected", true)
		if err != nil {
			return nil, err
		}
		h.grid.SetSelectAll(selected)
		return nil, nil
	},
	"set_selected_items": func(h *Harness, a args) (any, error) {
		items, err := h.itemList(a)
		if err != nil {
			return nil, err
		}
		h.grid.SetSelectedItems(items)
		return nil, nil
	},
	"toggle_hierarchy": func(h *Harness, a args) (any, error) {
		item, err := h.item(a)
		if err != nil {
			return nil, err
		}
		return h.grid.ToggleHierarchy(item), nil
	},
	"expand_all": func(h *Harness, _ args) (any, error) {
		h.grid.ExpandAll()
		return nil, nil
	},
	"collapse_all": func(h *Harness, _ args) (any, error) {
		h.grid.CollapseAll()
		return nil, nil
	},

	"set_items": func(h *Harness, a args) (any, error) {
		raw, ok := a["items"].([]any)
		if !ok {
			return nil, badArg("items must be a list")
		}
		maps := make([]map[string]any, len(raw))
		for i, r := range raw {
			m, ok := r.(map[string]any)
			if !ok {
				return nil, badArg("items[%d] must be a mapping", i)
			}
			maps[i] = m
		}
		recs, err := h.schema.FromMaps(maps)
		if err != nil {
			return nil, badArg("%v", err)
		}
		h.index(recs)
		return nil, h.grid.SetItems(recs)
	},
	"reload": func(h *Harness, _ args) (any, error) {
		return nil, h.grid.ReloadServerData(h.ctx)
	},
}

// args are a flow step's arguments as decoded from YAML.
type args map[string]any

func (a args) str(key string) (string, error) {
	v, ok := a[key]
	if !ok {
		return "", badArg("%s is required", key)
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Sprint(v), nil
	}
	return s, nil
}

func (a args) integer(key string) (int, error) {
	switch v := a[key].(type) {
	case int:
		return v, nil
	case nil:
		return 0, badArg("%s is required", key)
	default:
		return 0, badArg("%s must be an integer, got %v", key, v)
	}
}

func (a args) boolean(key string, def bool) (bool, error) {
	switch v := a[key].(type) {
	case nil:
		return def, nil
	case bool:
		return v, nil
	default:
		return false, badArg("%s must be a boolean, got %v", key, v)
	}
}

// operator reads "op" for a column of kind. A missing op means none.
func (a args) operator(kind ir.ValueKind) (ir.Operator, error) {
	s, ok := a["op"].(string)
	if !ok {
		return ir.OpNone, nil
	}
	op, err := ir.ParseOperatorFor(kind, s)
	if err != nil {
		// Let the grid judge operators the kind does not define.
		if parsed, perr := ir.ParseOperator(s); perr == nil {
			return parsed, nil
		}
		return ir.OpNone, badArg("%v", err)
	}
	return op, nil
}

func (a args) caseMode() (filter.Case, error) {
	switch v := a["case"].(type) {
	case nil:
		return filter.CaseDefault, nil
	case string:
		switch strings.ToLower(v) {
		case "default", "sensitive":
			return filter.CaseDefault, nil
		case "insensitive":
			return filter.CaseInsensitive, nil
		}
	}
	return filter.CaseDefault, badArg("case must be \"default\" or \"insensitive\", got %v", a["case"])
}

// value reads "value" in kind. Text that does not read as kind is passed
// through as a string, so scenarios can exercise uncoercible filter values.
func (a args) value(kind ir.ValueKind) ir.Value {
	raw, ok := a["value"]
	if !ok || raw == nil {
		return nil
	}
	v, err := ir.FromAny(kind, raw)
	if err != nil {
		return ir.String(fmt.Sprint(raw))
	}
	return v
}

func (a args) sort() (string, order.Direction, error) {
	field, err := a.str("field")
	if err != nil {
		return "", order.None, err
	}
	s, _ := a["dir"].(string)
	dir, ok := order.ParseDirection(s)
	if !ok {
		return "", order.None, badArg("unknown sort direction %q", s)
	}
	return field, dir, nil
}

func (h *Harness) kindOf(field string) ir.ValueKind {
	if k, ok := h.schema.Kinds[field]; ok {
		return k
	}
	return ir.KindString
}

func (h *Harness) filterKind(id string) ir.ValueKind {
	for _, f := range h.grid.Filters() {
		if f.ID == id {
			return h.kindOf(f.Field)
		}
	}
	return ir.KindString
}

func (h *Harness) item(a args) (record.Record, error) {
	id, err := a.str("id")
	if err != nil {
		return record.Record{}, err
	}
	r, ok := h.items[id]
	if !ok {
		return record.Record{}, badArg("unknown item %q", id)
	}
	return r, nil
}

func (h *Harness) itemList(a args) ([]record.Record, error) {
	raw, ok := a["ids"].([]any)
	if !ok {
		return nil, badArg("ids must be a list")
	}
	out := make([]record.Record, 0, len(raw))
	for _, v := range raw {
		id := fmt.Sprint(v)
		r, ok := h.items[id]
		if !ok {
			return nil, badArg("unknown item %q", id)
		}
		out = append(out, r)
	}
	return out, nil
}
