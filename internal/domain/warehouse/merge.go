package warehouse

import (
	"math"
	"time"
)

// Merge applies the table's merge rules of incoming onto stored and reports
// whether any non-Touch column changed. stored is not modified.
func Merge(t Table, stored, incoming Row) (Row, bool) {
	out := make(Row, len(t.Columns))
	changed := false
	for _, c := range t.Columns {
		old := stored[c.Name]
		next, ok := incoming[c.Name]
		if !ok {
			out[c.Name] = old
			continue
		}

		var v any
		switch {
		case t.IsKey(c.Name) || c.Merge == InsertOnly:
			v = old
		case c.Merge == Coalesce:
			v = old
			if next != nil {
				v = next
			}
		case c.Merge == ForwardOnly:
			v = old
			if rank(c.Order, next) >= rank(c.Order, old) {
				v = next
			}
		default:
			v = next
		}

		out[c.Name] = v
		if c.Merge != Touch && !ValuesEqual(old, v) {
			changed = true
		}
	}

	if !changed {
		for _, c := range t.Columns {
			if c.Merge == Touch {
				out[c.Name] = stored[c.Name]
			}
		}
	}
	return out, changed
}

// Dedupe folds rows with the same key into one, in input order, applying the
// merge rules so a later NULL does not erase an earlier value.
func Dedupe(t Table, rows []Row) []Row {
	if len(rows) < 2 {
		return rows
	}
	index := make(map[string]int, len(rows))
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		key := t.KeyOf(row)
		if i, ok := index[key]; ok {
			merged, _ := Merge(t, out[i], row)
			for _, c := range t.Columns {
				if c.Merge == Touch {
					merged[c.Name] = row[c.Name]
				}
			}
			out[i] = merged
			continue
		}
		index[key] = len(out)
		out = append(out, row)
	}
	return out
}

// rank is the 1-based position of v in order, 0 when absent or NULL.
func rank(order []string, v any) int {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	for i, o := range order {
		if o == s {
			return i + 1
		}
	}
	return 0
}

// ValuesEqual compares two column values. Times compare by instant and
// floats within 1e-9.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	case float64:
		y, ok := toFloat(b)
		return ok && math.Abs(x-y) < 1e-9
	case int64:
		if y, ok := toFloat(b); ok {
			return float64(x) == y
		}
	case int:
		if y, ok := toFloat(b); ok {
			return float64(x) == y
		}
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
