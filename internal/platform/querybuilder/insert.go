package querybuilder

import (
	"fmt"
	"strings"
)

// Assignment is one "column = expression" pair of an ON CONFLICT DO UPDATE.
type Assignment struct {
	Column string
	Expr   string
}

type conflict struct {
	target  []string
	sets    []Assignment
	where   string
	nothing bool
}

type InsertBuilder struct {
	table     string
	alias     string
	columns   []string
	rows      [][]any
	conflict  *conflict
	returning []string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

// As aliases the target table so conflict expressions can refer to the
// existing row.
func (b *InsertBuilder) As(alias string) *InsertBuilder {
	b.alias = alias
	return b
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

func (b *InsertBuilder) OnConflictDoNothing(target ...string) *InsertBuilder {
	b.conflict = &conflict{target: target, nothing: true}
	return b
}

// OnConflictDoUpdate sets the assignments applied to a conflicting row. A
// non-empty where restricts which conflicting rows are updated.
func (b *InsertBuilder) OnConflictDoUpdate(target []string, sets []Assignment, where string) *InsertBuilder {
	b.conflict = &conflict{target: target, sets: sets, where: strings.TrimSpace(where)}
	return b
}

func (b *InsertBuilder) Returning(exprs ...string) *InsertBuilder {
	b.returning = append([]string(nil), exprs...)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	var w writer
	w.args = make([]any, 0, len(b.rows)*len(b.columns))
	w.buf.WriteString("INSERT INTO ")
	w.buf.WriteString(b.table)
	if b.alias != "" {
		w.buf.WriteString(" AS ")
		w.buf.WriteString(b.alias)
	}
	w.buf.WriteString(" (")
	w.list(b.columns)
	w.buf.WriteString(") VALUES ")

	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", i, len(row), len(b.columns))
		}
		if i > 0 {
			w.buf.WriteString(", ")
		}
		w.buf.WriteString("(")
		for j, v := range row {
			if j > 0 {
				w.buf.WriteString(", ")
			}
			w.bind(v)
		}
		w.buf.WriteString(")")
	}

	if c := b.conflict; c != nil {
		if len(c.target) == 0 {
			return "", nil, fmt.Errorf("conflict target is required")
		}
		w.buf.WriteString(" ON CONFLICT (")
		w.list(c.target)
		w.buf.WriteString(")")
		switch {
		case c.nothing || len(c.sets) == 0:
			w.buf.WriteString(" DO NOTHING")
		default:
			w.buf.WriteString(" DO UPDATE SET ")
			for i, s := range c.sets {
				if i > 0 {
					w.buf.WriteString(", ")
				}
				w.buf.WriteString(s.Column)
				w.buf.WriteString(" = ")
				w.buf.WriteString(s.Expr)
			}
			if c.where != "" {
				w.buf.WriteString(" WHERE ")
				w.buf.WriteString(c.where)
			}
		}
	}

	if len(b.returning) > 0 {
		w.buf.WriteString(" RETURNING ")
		w.list(b.returning)
	}

	return w.buf.String(), w.args, nil
}
