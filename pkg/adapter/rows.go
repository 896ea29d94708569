package adapter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/leaptable/pkg/core"
)

// NullDisplay is how SQL NULL is shown in the grid.
const NullDisplay = "NULL"

// CollectResultSet drains rows into a ResultSet of display strings.
// The raw values of keyColumns are kept on each row as its key; rows get no
// key when a key column is missing from the result. rows is closed before
// returning.
func CollectResultSet(rows *core.Rows, keyColumns ...string) (*core.ResultSet, error) {
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	keyIdx := keyPositions(columns, keyColumns)

	rs := &core.ResultSet{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := core.Row{Values: make([]string, len(columns))}
		for i, v := range values {
			row.Values[i] = FormatValue(v)
		}
		if keyIdx != nil {
			row.Key = make([]any, len(keyIdx))
			for i, idx := range keyIdx {
				row.Key[i] = values[idx]
			}
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return rs, nil
}

// keyPositions finds each key column in columns, or returns nil when one
// is missing.
func keyPositions(columns, keyColumns []string) []int {
	if len(keyColumns) == 0 {
		return nil
	}
	pos := make([]int, 0, len(keyColumns))
	for _, k := range keyColumns {
		idx := -1
		for i, c := range columns {
			if strings.EqualFold(c, k) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil
		}
		pos = append(pos, idx)
	}
	return pos
}

// FormatValue renders a scanned value for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return NullDisplay
	case []byte:
		return string(val)
	case string:
		return val
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(time.DateOnly)
		}
		return val.Format(time.DateTime)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
