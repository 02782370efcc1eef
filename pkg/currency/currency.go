// Package currency extracts decimal amounts from the free-form money cells
// found in registration spreadsheets ("$1,234.50", "USD 300", plain numbers).
package currency

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse extracts a numeric amount from an arbitrary cell value. It accepts
// numbers, numeric strings and decorated strings with currency symbols or
// thousands separators. It returns nil when no finite number can be extracted;
// malformed input is a normal outcome, never an error.
func Parse(v interface{}) *float64 {
	switch value := v.(type) {
	case nil:
		return nil
	case float64:
		return finite(value)
	case float32:
		return finite(float64(value))
	case int:
		return finite(float64(value))
	case int64:
		return finite(float64(value))
	case string:
		return ParseString(value)
	default:
		return ParseString(fmt.Sprint(value))
	}
}

// ParseString strips every character that is not a digit, a decimal point or a
// leading minus sign and parses what remains. Surrounding whitespace does not
// count against the sign position.
func ParseString(s string) *float64 {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && i == 0:
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return finite(parsed)
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
