package order

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/gridq/internal/ir"
)

// Natural orders text alphanumerically: runs of digits compare by numeric
// value, so "item2" sorts before "item10". Letters compare case-insensitively
// first and ordinally on a tie. Nulls sort first; non-text values fall back to
// CompareValues.
func Natural(a, b ir.Value) int {
	if a == nil || b == nil {
		return CompareValues(a, b)
	}
	as, aok := text(a)
	bs, bok := text(b)
	if !aok || !bok {
		return CompareValues(a, b)
	}
	if c := NaturalStrings(as, bs); c != 0 {
		return c
	}
	return strings.Compare(as, bs)
}

func text(v ir.Value) (string, bool) {
	switch val := v.(type) {
	case ir.String:
		return string(val), true
	case ir.Enum:
		return string(val), true
	}
	return "", false
}

// NaturalStrings compares two strings chunk by chunk. Digit chunks compare by
// value (leading zeros ignored, then shorter run first); other chunks compare
// case-insensitively.
func NaturalStrings(a, b string) int {
	for a != "" && b != "" {
		ra, _ := utf8.DecodeRuneInString(a)
		rb, _ := utf8.DecodeRuneInString(b)

		if unicode.IsDigit(ra) && unicode.IsDigit(rb) {
			da, restA := digitRun(a)
			db, restB := digitRun(b)
			if c := compareDigits(da, db); c != 0 {
				return c
			}
			a, b = restA, restB
			continue
		}

		la, lb := unicode.ToLower(ra), unicode.ToLower(rb)
		if la != lb {
			if la < lb {
				return -1
			}
			return 1
		}
		a = a[utf8.RuneLen(ra):]
		b = b[utf8.RuneLen(rb):]
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

func digitRun(s string) (run, rest string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		// Non-ASCII digit: treat the single rune as its own run.
		_, n := utf8.DecodeRuneInString(s)
		i = n
	}
	return s[:i], s[i:]
}

func compareDigits(a, b string) int {
	ta := strings.TrimLeft(a, "0")
	tb := strings.TrimLeft(b, "0")
	if len(ta) != len(tb) {
		if len(ta) < len(tb) {
			return -1
		}
		return 1
	}
	if c := strings.Compare(ta, tb); c != 0 {
		return c
	}
	// Equal value: fewer leading zeros first.
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
