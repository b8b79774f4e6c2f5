package ir

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// dateLayout is the external text form of DateOnly values.
const dateLayout = "2006-01-02"

// Coerce converts v to a value of the given kind.
//
// Values already of that kind pass through. Text is parsed in the kind's
// external representation (decimal numbers, "true"/"false", RFC 3339 instants,
// 2006-01-02 dates, hyphenated UUIDs). DateTime and DateOnly convert into each
// other. Null coerces to null.
//
// ok is false when v cannot be represented in the kind. Callers decide the
// fallback; coercion never panics.
func Coerce(kind ValueKind, v Value) (out Value, ok bool) {
	if v == nil {
		return nil, true
	}
	if v.Kind() == kind {
		return v, true
	}

	switch kind {
	case KindString:
		return String(Format(v)), true
	case KindEnum:
		if s, isText := v.(String); isText {
			return Enum(strings.TrimSpace(string(s))), true
		}
	case KindNumber:
		if s, isText := v.(String); isText {
			f, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
			if err == nil {
				return Number(f), true
			}
		}
	case KindBool:
		if s, isText := v.(String); isText {
			b, err := strconv.ParseBool(strings.TrimSpace(string(s)))
			if err == nil {
				return Bool(b), true
			}
		}
	case KindDateTime:
		switch val := v.(type) {
		case String:
			t, err := parseInstant(string(val))
			if err == nil {
				return DateTime(t), true
			}
		case DateOnly:
			return DateTime(time.Date(val.Year, val.Month, val.Day, 0, 0, 0, 0, time.UTC)), true
		}
	case KindDateOnly:
		switch val := v.(type) {
		case String:
			t, err := parseInstant(string(val))
			if err == nil {
				return DateOf(t), true
			}
		case DateTime:
			return DateOf(val.Time()), true
		}
	case KindGuid:
		if s, isText := v.(String); isText {
			id, err := uuid.Parse(strings.TrimSpace(string(s)))
			if err == nil {
				return Guid(id), true
			}
		}
	}
	return nil, false
}

// parseInstant accepts RFC 3339 timestamps and bare dates (read as UTC midnight).
func parseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(dateLayout, s)
}

// Parse reads the external text form of a value of the given kind.
// The empty string parses to null for every kind except String.
func Parse(kind ValueKind, text string) (Value, error) {
	if kind == KindString {
		return String(text), nil
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	v, ok := Coerce(kind, String(text))
	if !ok {
		return nil, fmt.Errorf("cannot read %q as %s", text, kind)
	}
	return v, nil
}

// FromAny converts a decoded YAML/JSON scalar into a value of the given kind.
// Accepts nil, string, bool, the Go integer and float types, time.Time and
// any Value. Used by loaders of item files and scenarios.
func FromAny(kind ValueKind, v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case Value:
		out, ok := Coerce(kind, val)
		if !ok {
			return nil, fmt.Errorf("cannot convert %s value to %s", val.Kind(), kind)
		}
		return out, nil
	case string:
		if kind == KindString {
			return String(val), nil
		}
		return Parse(kind, val)
	case bool:
		return FromAny(kind, Bool(val))
	case int:
		return fromNumber(kind, float64(val))
	case int64:
		return fromNumber(kind, float64(val))
	case uint64:
		return fromNumber(kind, float64(val))
	case float64:
		return fromNumber(kind, val)
	case float32:
		return fromNumber(kind, float64(val))
	case time.Time:
		return FromAny(kind, DateTime(val))
	default:
		return nil, fmt.Errorf("unsupported %s input type: %T", kind, v)
	}
}

func fromNumber(kind ValueKind, f float64) (Value, error) {
	switch kind {
	case KindNumber:
		return Number(f), nil
	case KindString:
		return String(Format(Number(f))), nil
	case KindEnum:
		return Enum(Format(Number(f))), nil
	default:
		return nil, fmt.Errorf("cannot convert number %v to %s", f, kind)
	}
}
