package store

import (
	"fmt"
	"strconv"
)

// Tuple is one result row of a multi-column projection, addressed by
// column name (the alias when one was given) or position.
type Tuple struct {
	columns []string
	values  []any
}

func newTuple(columns []string, values []any) Tuple {
	for i, v := range values {
		// Drivers return TEXT as []byte in some paths.
		if b, ok := v.([]byte); ok {
			values[i] = string(b)
		}
	}
	return Tuple{columns: columns, values: values}
}

// Len returns the number of columns.
func (t Tuple) Len() int {
	return len(t.values)
}

// Columns returns the column names in projection order.
func (t Tuple) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Get returns the value at position i.
func (t Tuple) Get(i int) any {
	return t.values[i]
}

// Lookup returns the value of the named column.
func (t Tuple) Lookup(column string) (any, bool) {
	for i, c := range t.columns {
		if c == column {
			return t.values[i], true
		}
	}
	return nil, false
}

// String returns the named column as a string. NULL yields "".
func (t Tuple) String(column string) (string, error) {
	v, ok := t.Lookup(column)
	if !ok {
		return "", fmt.Errorf("no column %q", column)
	}
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	default:
		return fmt.Sprint(val), nil
	}
}

// Int64 returns the named column as an integer. NULL yields 0.
func (t Tuple) Int64(column string) (int64, error) {
	v, ok := t.Lookup(column)
	if !ok {
		return 0, fmt.Errorf("no column %q", column)
	}
	switch val := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return val, nil
	case int32:
		return int64(val), nil
	case int:
		return int64(val), nil
	case float64:
		return int64(val), nil
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("column %q: %w", column, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("column %q: cannot convert %T to int64", column, v)
	}
}

// Float64 returns the named column as a float, for aggregates such as AVG.
// NULL yields 0.
func (t Tuple) Float64(column string) (float64, error) {
	v, ok := t.Lookup(column)
	if !ok {
		return 0, fmt.Errorf("no column %q", column)
	}
	switch val := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return val, nil
	case int64:
		return float64(val), nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("column %q: %w", column, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("column %q: cannot convert %T to float64", column, v)
	}
}
