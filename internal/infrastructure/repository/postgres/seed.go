package postgres

import (
	"context"
	"fmt"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/team"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/warehouse"
)

// BootstrapSeed loads the franchise dimension into an empty warehouse so the
// first run does not reject every game for missing teams.
func BootstrapSeed(ctx context.Context, store *Store) error {
	count, err := store.Count(ctx, warehouse.DimTeam)
	if err != nil {
		return fmt.Errorf("count teams for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	teams := team.Seed()
	rows := make([]warehouse.Row, len(teams))
	for i, t := range teams {
		rows[i] = t.Row()
	}
	if _, err := store.UpsertBatch(ctx, warehouse.DimTeam, rows); err != nil {
		return fmt.Errorf("seed teams: %w", err)
	}
	return nil
}
