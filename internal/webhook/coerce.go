package webhook

import (
	"encoding/json"
	"strconv"
	"strings"
)

// The upstream API emits duration_minutes and messages_count sometimes as
// JSON numbers and sometimes as numeric strings. These helpers accept both
// so a batch never fails on representation alone.

// CoerceNumber converts a number-or-numeric-string value to a number.
// Strings are parsed as base-10 integers; unparseable strings and values
// of any other type coerce to 0, never to NaN.
func CoerceNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return float64(i)
	default:
		return 0
	}
}

// CoerceDuration normalizes an evaluation duration field, defaulting
// absent values to 0.
func CoerceDuration(v any) float64 {
	if v == nil {
		return 0
	}
	return CoerceNumber(v)
}

// CoerceMessageCount normalizes an evaluation message count, falling back
// to the length of the transcript when the field is absent.
func CoerceMessageCount(v any, messages []any) float64 {
	if v == nil {
		return float64(len(messages))
	}
	return CoerceNumber(v)
}
