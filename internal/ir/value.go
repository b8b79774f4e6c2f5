package ir

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Value is a sealed interface representing one field or filter value.
// Only String, Number, Bool, Enum, DateTime, DateOnly and Guid implement it.
//
// A nil Value is the null value: a missing field, or a filter whose value
// has not been entered yet.
type Value interface {
	Kind() ValueKind
	value() // Sealed - only these types implement it
}

// String is a text value.
type String string

func (String) Kind() ValueKind { return KindString }
func (String) value()          {}

// Number is a numeric value. All numeric columns compare as float64.
type Number float64

func (Number) Kind() ValueKind { return KindNumber }
func (Number) value()          {}

// Bool is a boolean value.
type Bool bool

func (Bool) Kind() ValueKind { return KindBool }
func (Bool) value()          {}

// Enum is the name of an enumeration member.
type Enum string

func (Enum) Kind() ValueKind { return KindEnum }
func (Enum) value()          {}

// DateTime is an instant. Two DateTimes are equal when they denote the same
// instant, regardless of location.
type DateTime time.Time

func (DateTime) Kind() ValueKind { return KindDateTime }
func (DateTime) value()          {}

// Time returns the underlying time.Time.
func (d DateTime) Time() time.Time { return time.Time(d) }

// DateOnly is a calendar date without a time of day or location.
type DateOnly struct {
	Year  int
	Month time.Month
	Day   int
}

func (DateOnly) Kind() ValueKind { return KindDateOnly }
func (DateOnly) value()          {}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) DateOnly {
	y, m, d := t.Date()
	return DateOnly{Year: y, Month: m, Day: d}
}

// String formats the date as 2006-01-02.
func (d DateOnly) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Compare orders two dates chronologically.
func (d DateOnly) Compare(o DateOnly) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

// Guid is an identifier value.
type Guid uuid.UUID

func (Guid) Kind() ValueKind { return KindGuid }
func (Guid) value()          {}

// String returns the canonical hyphenated form.
func (g Guid) String() string { return uuid.UUID(g).String() }

// Format renders a value in its external text form. Null renders as "".
func Format(v Value) string {
	switch val := v.(type) {
	case nil:
		return ""
	case String:
		return string(val)
	case Number:
		return strconv.FormatFloat(float64(val), 'f', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(val))
	case Enum:
		return string(val)
	case DateTime:
		return val.Time().UTC().Format(time.RFC3339Nano)
	case DateOnly:
		return val.String()
	case Guid:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// IsNull reports whether v is the null value.
func IsNull(v Value) bool {
	return v == nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
