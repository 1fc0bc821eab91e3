package cache

import (
	"context"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/warehouse"
	basecache "github.com/riskibarqy/nhl-warehouse/internal/platform/cache"
)

// Store caches ExistingKeys hits for reference tables in front of another
// warehouse.Store. Only present keys are cached, so a parent inserted later
// is always seen.
type Store struct {
	next   warehouse.Store
	cache  *basecache.Store[bool]
	tables map[string]struct{}
}

// NewStore caches lookups for the named tables, dim_team and dim_season when
// none are given.
func NewStore(next warehouse.Store, cache *basecache.Store[bool], tables ...string) *Store {
	if len(tables) == 0 {
		tables = []string{warehouse.DimTeam.Name, warehouse.DimSeason.Name}
	}
	set := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		set[t] = struct{}{}
	}
	return &Store{next: next, cache: cache, tables: set}
}

func (s *Store) UpsertBatch(ctx context.Context, table warehouse.Table, rows []warehouse.Row) (warehouse.UpsertResult, error) {
	res, err := s.next.UpsertBatch(ctx, table, rows)
	if s.cached(table) {
		s.cache.DeletePrefix(keyPrefix(table))
	}
	return res, err
}

func (s *Store) ExistingKeys(ctx context.Context, table warehouse.Table, keys []any) (map[string]bool, error) {
	if !s.cached(table) {
		return s.next.ExistingKeys(ctx, table, keys)
	}

	out := make(map[string]bool, len(keys))
	misses := make([]any, 0, len(keys))
	for _, k := range keys {
		key := warehouse.KeyString(k)
		if _, ok := s.cache.Get(keyPrefix(table) + key); ok {
			out[key] = true
			continue
		}
		misses = append(misses, k)
	}
	if len(misses) == 0 {
		return out, nil
	}

	found, err := s.next.ExistingKeys(ctx, table, misses)
	if err != nil {
		return nil, err
	}
	for key, ok := range found {
		if !ok {
			continue
		}
		out[key] = true
		s.cache.Set(keyPrefix(table)+key, true)
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, table warehouse.Table) (int, error) {
	return s.next.Count(ctx, table)
}

func (s *Store) cached(table warehouse.Table) bool {
	_, ok := s.tables[table.Name]
	return ok
}

func keyPrefix(table warehouse.Table) string {
	return "exists:" + table.Name + ":"
}
