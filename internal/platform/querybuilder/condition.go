package querybuilder

import (
	"strconv"
	"strings"
)

// writer accumulates SQL text with postgres ordinal placeholders.
type writer struct {
	buf  strings.Builder
	args []any
}

func (w *writer) bind(v any) {
	w.args = append(w.args, v)
	w.buf.WriteString("$")
	w.buf.WriteString(strconv.Itoa(len(w.args)))
}

// expr writes raw SQL, binding each '?' to the next argument in order.
func (w *writer) expr(sql string, args []any) {
	next := 0
	for i := 0; i < len(sql); i++ {
		if sql[i] == '?' && next < len(args) {
			w.bind(args[next])
			next++
			continue
		}
		w.buf.WriteByte(sql[i])
	}
}

func (w *writer) list(items []string) {
	w.buf.WriteString(strings.Join(items, ", "))
}

type Condition interface {
	writeTo(w *writer)
}

type condFunc func(w *writer)

func (f condFunc) writeTo(w *writer) { f(w) }

func compare(column, op string, value any) Condition {
	return condFunc(func(w *writer) {
		w.buf.WriteString(column)
		w.buf.WriteString(op)
		w.bind(value)
	})
}

func Eq(column string, value any) Condition { return compare(column, " = ", value) }

func In(column string, values []any) Condition {
	return condFunc(func(w *writer) {
		if len(values) == 0 {
			w.buf.WriteString("1=0")
			return
		}
		w.buf.WriteString(column)
		w.buf.WriteString(" IN (")
		for i, v := range values {
			if i > 0 {
				w.buf.WriteString(", ")
			}
			w.bind(v)
		}
		w.buf.WriteString(")")
	})
}

// Expr is a raw predicate; '?' marks bind positions.
func Expr(sql string, args ...any) Condition {
	return condFunc(func(w *writer) { w.expr(sql, args) })
}

func (w *writer) where(conds []Condition) {
	if len(conds) == 0 {
		return
	}
	w.buf.WriteString(" WHERE ")
	for i, c := range conds {
		if i > 0 {
			w.buf.WriteString(" AND ")
		}
		c.writeTo(w)
	}
}
