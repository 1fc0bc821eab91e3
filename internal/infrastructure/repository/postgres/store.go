package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/warehouse"
	qb "github.com/riskibarqy/nhl-warehouse/internal/platform/querybuilder"
)

// upsertChunkRows keeps one statement well below the 65535 bind parameters
// postgres accepts.
const upsertChunkRows = 500

const foreignKeyViolation = "23503"

var fkDetailRegex = regexp.MustCompile(`Key \(([^)]+)\)=\(([^)]*)\) is not present in table "([^"]+)"`)

// Store is the postgres warehouse. Every UpsertBatch runs in one transaction.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) UpsertBatch(ctx context.Context, table warehouse.Table, rows []warehouse.Row) (warehouse.UpsertResult, error) {
	var result warehouse.UpsertResult
	if len(rows) == 0 {
		return result, nil
	}
	for _, row := range rows {
		if err := table.Validate(row); err != nil {
			return warehouse.UpsertResult{}, &warehouse.LoadError{Table: table.Name, Rows: len(rows), Err: err}
		}
	}
	rows = warehouse.Dedupe(table, rows)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return warehouse.UpsertResult{}, fmt.Errorf("begin tx upsert %s: %w", table.Name, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for start := 0; start < len(rows); start += upsertChunkRows {
		end := start + upsertChunkRows
		if end > len(rows) {
			end = len(rows)
		}
		chunk, err := upsertChunk(ctx, tx, table, rows[start:end])
		if err != nil {
			return warehouse.UpsertResult{}, &warehouse.LoadError{Table: table.Name, Rows: len(rows), Err: classifyUpsertError(table, err)}
		}
		result.Add(chunk)
	}

	if err := tx.Commit(); err != nil {
		return warehouse.UpsertResult{}, &warehouse.LoadError{Table: table.Name, Rows: len(rows), Err: fmt.Errorf("commit upsert tx: %w", err)}
	}
	return result, nil
}

func upsertChunk(ctx context.Context, tx *sqlx.Tx, table warehouse.Table, rows []warehouse.Row) (warehouse.UpsertResult, error) {
	query, args, err := upsertStatement(table, rows)
	if err != nil {
		return warehouse.UpsertResult{}, fmt.Errorf("build upsert %s query: %w", table.Name, err)
	}

	res, err := tx.QueryxContext(ctx, query, args...)
	if err != nil {
		return warehouse.UpsertResult{}, err
	}
	defer res.Close()

	var out warehouse.UpsertResult
	returned := 0
	dest := make([]any, 1+len(table.Key))
	keys := make([]string, len(table.Key))
	var inserted bool
	dest[0] = &inserted
	for i := range keys {
		dest[i+1] = &keys[i]
	}
	for res.Next() {
		if err := res.Scan(dest...); err != nil {
			return warehouse.UpsertResult{}, fmt.Errorf("scan upsert %s result: %w", table.Name, err)
		}
		returned++
		if inserted {
			out.Inserted++
		} else {
			out.Updated++
		}
		out.Changed = append(out.Changed, strings.Join(keys, "|"))
	}
	if err := res.Err(); err != nil {
		return warehouse.UpsertResult{}, err
	}
	out.Unchanged = len(rows) - returned
	out.Accepted = make([]string, len(rows))
	for i, row := range rows {
		out.Accepted[i] = table.KeyOf(row)
	}
	return out, nil
}

// upsertStatement renders one multi-row INSERT ... ON CONFLICT for table.
// The update only fires when a mutable column would change, so RETURNING
// lists exactly the inserted and updated keys.
func upsertStatement(table warehouse.Table, rows []warehouse.Row) (string, []any, error) {
	columns := table.ColumnNames()
	insert := qb.InsertInto(table.Name).As("t").Columns(columns...)
	for _, row := range rows {
		values := make([]any, len(columns))
		for i, c := range columns {
			values[i] = row[c]
		}
		insert.Values(values...)
	}

	mutable := table.Mutable()
	if len(mutable) == 0 {
		insert.OnConflictDoNothing(table.Key...)
	} else {
		sets := make([]qb.Assignment, 0, len(table.Columns))
		current := make([]string, 0, len(mutable))
		next := make([]string, 0, len(mutable))
		for _, c := range table.Columns {
			if table.IsKey(c.Name) || c.Merge == warehouse.InsertOnly {
				continue
			}
			expr := mergeExpr(c)
			sets = append(sets, qb.Assignment{Column: c.Name, Expr: expr})
			if c.Merge != warehouse.Touch {
				current = append(current, "t."+c.Name)
				next = append(next, expr)
			}
		}
		where := fmt.Sprintf("ROW(%s) IS DISTINCT FROM ROW(%s)", strings.Join(current, ", "), strings.Join(next, ", "))
		insert.OnConflictDoUpdate(table.Key, sets, where)
	}

	returning := make([]string, 0, 1+len(table.Key))
	returning = append(returning, "(xmax = 0) AS inserted")
	for _, k := range table.Key {
		returning = append(returning, "t."+k+"::text")
	}
	return insert.Returning(returning...).ToSQL()
}

func mergeExpr(c warehouse.Column) string {
	incoming := "EXCLUDED." + c.Name
	switch c.Merge {
	case warehouse.Coalesce:
		return fmt.Sprintf("COALESCE(%s, t.%s)", incoming, c.Name)
	case warehouse.ForwardOnly:
		quoted := make([]string, len(c.Order))
		for i, v := range c.Order {
			quoted[i] = quoteLiteral(v)
		}
		order := "ARRAY[" + strings.Join(quoted, ", ") + "]::text[]"
		return fmt.Sprintf(
			"CASE WHEN COALESCE(array_position(%[1]s, %[2]s::text), 0) >= COALESCE(array_position(%[1]s, t.%[3]s::text), 0) THEN %[2]s ELSE t.%[3]s END",
			order, incoming, c.Name,
		)
	default:
		return incoming
	}
}

// classifyUpsertError turns a foreign key violation into a
// *warehouse.ReferentialIntegrityError.
func classifyUpsertError(table warehouse.Table, err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != foreignKeyViolation {
		return err
	}
	ri := &warehouse.ReferentialIntegrityError{Table: table.Name}
	if m := fkDetailRegex.FindStringSubmatch(pqErr.Detail); m != nil {
		ri.Column, ri.Key, ri.RefTable = m[1], m[2], m[3]
	}
	return ri
}

func (s *Store) ExistingKeys(ctx context.Context, table warehouse.Table, keys []any) (map[string]bool, error) {
	out := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	if len(table.Key) != 1 {
		return nil, fmt.Errorf("%s: existing keys needs a single-column key", table.Name)
	}
	column := table.Key[0]

	query, args, err := qb.Select(column + "::text").
		From(table.Name).
		Where(qb.Expr(column+" = ANY(?)", keyArray(keys))).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build existing %s keys query: %w", table.Name, err)
	}

	var found []string
	if err := s.db.SelectContext(ctx, &found, query, args...); err != nil {
		return nil, fmt.Errorf("select existing %s keys: %w", table.Name, err)
	}
	for _, k := range found {
		out[k] = true
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, table warehouse.Table) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table.Name); err != nil {
		return 0, fmt.Errorf("count %s: %w", table.Name, err)
	}
	return n, nil
}

// keyArray binds integer keys as bigint[] and everything else as text[].
func keyArray(keys []any) any {
	ints := make([]int64, 0, len(keys))
	for _, k := range keys {
		switch v := k.(type) {
		case int64:
			ints = append(ints, v)
		case int:
			ints = append(ints, int64(v))
		default:
			texts := make([]string, len(keys))
			for i, k := range keys {
				texts[i] = warehouse.KeyString(k)
			}
			return pq.Array(texts)
		}
	}
	return pq.Array(ints)
}
