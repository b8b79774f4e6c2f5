package querysql

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/gridq/internal/ir"
)

// Dialect selects the SQL flavour a Compiler emits.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// ParseDialect resolves a dialect by name.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	}
	return SQLite, fmt.Errorf("unknown SQL dialect %q", s)
}

// placeholder returns the n-th (1-based) parameter marker.
func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// sqliteInstant is a fixed-width UTC layout, so stored instants compare
// chronologically as text.
const sqliteInstant = "2006-01-02T15:04:05.000000000Z"

// ColumnType returns the column type that stores values of kind.
func (d Dialect) ColumnType(kind ir.ValueKind) string {
	if d == Postgres {
		switch kind {
		case ir.KindNumber:
			return "DOUBLE PRECISION"
		case ir.KindBool:
			return "BOOLEAN"
		case ir.KindDateTime:
			return "TIMESTAMPTZ"
		case ir.KindDateOnly:
			return "DATE"
		case ir.KindGuid:
			return "UUID"
		default:
			return `TEXT COLLATE "C"`
		}
	}
	switch kind {
	case ir.KindNumber:
		return "REAL"
	case ir.KindBool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// Param converts a value into a driver parameter. Null converts to nil.
func (d Dialect) Param(v ir.Value) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case ir.String:
		return string(val), nil
	case ir.Enum:
		return string(val), nil
	case ir.Number:
		return float64(val), nil
	case ir.Bool:
		return bool(val), nil
	case ir.DateTime:
		if d == Postgres {
			return val.Time().UTC(), nil
		}
		return val.Time().UTC().Format(sqliteInstant), nil
	case ir.DateOnly:
		if d == Postgres {
			return time.Date(val.Year, val.Month, val.Day, 0, 0, 0, 0, time.UTC), nil
		}
		return val.String(), nil
	case ir.Guid:
		return val.String(), nil
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}

// Scan converts a value read from a column of kind back into a grid value.
// It accepts what the sqlite3 and pgx drivers return for the column types
// above.
func (d Dialect) Scan(kind ir.ValueKind, raw any) (ir.Value, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []byte:
		return d.Scan(kind, string(v))
	case int64:
		if kind == ir.KindBool {
			return ir.Bool(v != 0), nil
		}
		return ir.FromAny(kind, v)
	case [16]byte:
		return ir.Guid(v), nil
	case time.Time:
		if kind == ir.KindDateOnly {
			return ir.DateOnly{Year: v.Year(), Month: v.Month(), Day: v.Day()}, nil
		}
		return ir.DateTime(v.UTC()), nil
	}
	return ir.FromAny(kind, raw)
}

// quote returns a quoted identifier. Both dialects use double quotes.
func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
