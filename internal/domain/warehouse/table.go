package warehouse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MergeRule decides what an upsert writes into a column of an existing row.
type MergeRule int

const (
	// Overwrite replaces the stored value with the incoming one, NULL included.
	Overwrite MergeRule = iota
	// InsertOnly is written on insert and never updated.
	InsertOnly
	// Coalesce keeps the stored value when the incoming value is NULL.
	Coalesce
	// ForwardOnly only moves along Column.Order; an earlier value keeps the stored one.
	ForwardOnly
	// Touch is written only when some other column changes.
	Touch
)

func (r MergeRule) String() string {
	switch r {
	case Overwrite:
		return "overwrite"
	case InsertOnly:
		return "insert_only"
	case Coalesce:
		return "coalesce"
	case ForwardOnly:
		return "forward_only"
	case Touch:
		return "touch"
	default:
		return "merge_rule(" + strconv.Itoa(int(r)) + ")"
	}
}

type Column struct {
	Name  string
	Merge MergeRule
	// Order lists the allowed values of a ForwardOnly column, earliest first.
	Order []string
}

// Reference is a foreign key from Column to the single-column key of Table.
type Reference struct {
	Column string
	Table  string
}

// Table describes a warehouse table for the upsert contract. Key columns are
// part of Columns with the InsertOnly rule.
type Table struct {
	Name       string
	Key        []string
	Columns    []Column
	References []Reference
}

// Row is one record keyed by column name. A nil value is NULL.
type Row map[string]any

// Record is implemented by canonical entities that map onto a table row.
type Record interface {
	Row() Row
}

func (t Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

func (t Table) IsKey(column string) bool {
	for _, k := range t.Key {
		if k == column {
			return true
		}
	}
	return false
}

// Mutable lists the columns an update may change, excluding Touch columns.
func (t Table) Mutable() []Column {
	out := make([]Column, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c.Merge == InsertOnly || c.Merge == Touch || t.IsKey(c.Name) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// KeyOf renders the key of row as a string, joining composite keys with '|'.
func (t Table) KeyOf(row Row) string {
	if len(t.Key) == 1 {
		return KeyString(row[t.Key[0]])
	}
	parts := make([]string, len(t.Key))
	for i, k := range t.Key {
		parts[i] = KeyString(row[k])
	}
	return strings.Join(parts, "|")
}

// Validate checks that row carries every column of the table and a non-NULL key.
func (t Table) Validate(row Row) error {
	for _, c := range t.Columns {
		v, ok := row[c.Name]
		if !ok {
			return fmt.Errorf("%s: row is missing column %s", t.Name, c.Name)
		}
		if v == nil && t.IsKey(c.Name) {
			return fmt.Errorf("%s: key column %s is NULL", t.Name, c.Name)
		}
	}
	return nil
}

// KeyString renders a key value the same way for every backend.
func KeyString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}
