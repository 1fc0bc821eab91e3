package memory

import (
	"context"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/season"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/team"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/warehouse"
)

// NewSeededStore returns a store holding the 32 franchises and the given
// seasons, which is what every fresh memory run needs before games load.
func NewSeededStore(seasons ...season.Season) *Store {
	s := NewStore()
	ctx := context.Background()

	teams := team.Seed()
	teamRows := make([]warehouse.Row, len(teams))
	for i, t := range teams {
		teamRows[i] = t.Row()
	}
	if _, err := s.UpsertBatch(ctx, warehouse.DimTeam, teamRows); err != nil {
		panic(err)
	}

	seasonRows := make([]warehouse.Row, len(seasons))
	for i, item := range seasons {
		seasonRows[i] = item.Row()
	}
	if len(seasonRows) > 0 {
		if _, err := s.UpsertBatch(ctx, warehouse.DimSeason, seasonRows); err != nil {
			panic(err)
		}
	}
	return s
}
