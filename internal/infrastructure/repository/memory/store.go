package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/warehouse"
)

// Store is an in-process warehouse. UpsertBatch stages every change on copies
// and swaps them in only when the whole batch succeeds.
type Store struct {
	mu     sync.RWMutex
	tables map[string]map[string]warehouse.Row
}

func NewStore() *Store {
	tables := make(map[string]map[string]warehouse.Row)
	for _, t := range warehouse.Tables() {
		tables[t.Name] = make(map[string]warehouse.Row)
	}
	return &Store{tables: tables}
}

func (s *Store) UpsertBatch(_ context.Context, table warehouse.Table, rows []warehouse.Row) (warehouse.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tables[table.Name]
	if !ok {
		return warehouse.UpsertResult{}, &warehouse.LoadError{Table: table.Name, Rows: len(rows), Err: fmt.Errorf("unknown table")}
	}

	var result warehouse.UpsertResult
	staged := make(map[string]warehouse.Row, len(rows))
	for _, row := range warehouse.Dedupe(table, rows) {
		if err := table.Validate(row); err != nil {
			return warehouse.UpsertResult{}, &warehouse.LoadError{Table: table.Name, Rows: len(rows), Err: err}
		}
		if err := s.checkReferences(table, row); err != nil {
			return warehouse.UpsertResult{}, &warehouse.LoadError{Table: table.Name, Rows: len(rows), Err: err}
		}

		key := table.KeyOf(row)
		result.Accepted = append(result.Accepted, key)
		stored, exists := staged[key]
		if !exists {
			stored, exists = current[key]
		}
		if !exists {
			staged[key] = project(table, row)
			result.Inserted++
			result.Changed = append(result.Changed, key)
			continue
		}

		merged, changed := warehouse.Merge(table, stored, row)
		if !changed {
			result.Unchanged++
			continue
		}
		// Columns outside the descriptor, such as rolling averages, survive.
		for col, v := range stored {
			if _, ok := merged[col]; !ok {
				merged[col] = v
			}
		}
		staged[key] = merged
		result.Updated++
		result.Changed = append(result.Changed, key)
	}

	next := make(map[string]warehouse.Row, len(current)+len(staged))
	for k, v := range current {
		next[k] = v
	}
	for k, v := range staged {
		next[k] = v
	}
	s.tables[table.Name] = next
	return result, nil
}

func (s *Store) ExistingKeys(_ context.Context, table warehouse.Table, keys []any) (map[string]bool, error) {
	if len(table.Key) != 1 {
		return nil, fmt.Errorf("%s: existing keys needs a single-column key", table.Name)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.tables[table.Name]
	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		key := warehouse.KeyString(k)
		if _, ok := rows[key]; ok {
			out[key] = true
		}
	}
	return out, nil
}

func (s *Store) Count(_ context.Context, table warehouse.Table) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table.Name]), nil
}

// Rows returns copies of every row of table ordered by key.
func (s *Store) Rows(table warehouse.Table) []warehouse.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.tables[table.Name]
	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]warehouse.Row, 0, len(keys))
	for _, k := range keys {
		out = append(out, copyRow(rows[k]))
	}
	return out
}

// Row returns a copy of the row stored under key.
func (s *Store) Row(table warehouse.Table, key string) (warehouse.Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.tables[table.Name][key]
	if !ok {
		return nil, false
	}
	return copyRow(row), true
}

func (s *Store) checkReferences(table warehouse.Table, row warehouse.Row) error {
	for _, ref := range table.References {
		v := row[ref.Column]
		if v == nil {
			continue
		}
		key := warehouse.KeyString(v)
		if _, ok := s.tables[ref.Table][key]; !ok {
			return &warehouse.ReferentialIntegrityError{Table: table.Name, Column: ref.Column, Key: key, RefTable: ref.Table}
		}
	}
	return nil
}

func project(table warehouse.Table, row warehouse.Row) warehouse.Row {
	out := make(warehouse.Row, len(table.Columns))
	for _, c := range table.Columns {
		out[c.Name] = row[c.Name]
	}
	return out
}

func copyRow(row warehouse.Row) warehouse.Row {
	out := make(warehouse.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
