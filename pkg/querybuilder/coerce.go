package querybuilder

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/leaptable/pkg/core"
)

// Coerce converts user-entered text to a Go value matching the column kind.
// Text that does not parse is returned unchanged so the database decides
// whether it is acceptable. Dates and times are always passed as text.
func Coerce(col core.Column, raw string) any {
	s := strings.TrimSpace(raw)
	switch col.Kind {
	case core.KindInteger:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case core.KindFloat:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case core.KindBool:
		switch strings.ToLower(s) {
		case "yes", "y", "on":
			return true
		case "no", "n", "off":
			return false
		}
		if v, err := strconv.ParseBool(s); err == nil {
			return v
		}
	}
	return raw
}

func coerceAny(col core.Column, v any) any {
	switch val := v.(type) {
	case string:
		return Coerce(col, val)
	case []byte:
		// Keys read back from drivers that return text as bytes.
		return Coerce(col, string(val))
	default:
		return v
	}
}
