package gamestats

import (
	"context"
	"time"
)

type Kind string

const (
	KindSkater Kind = "skater"
	KindGoalie Kind = "goalie"
)

// RollingSpec names the fact table and the stat columns that carry a
// trailing average in a "<stat>_rolling_10" column.
type RollingSpec struct {
	Kind  Kind
	Table string
	Stats []string
}

var (
	SkaterRolling = RollingSpec{
		Kind:  KindSkater,
		Table: "fact_game_skater_stats",
		Stats: []string{"goals", "assists", "points", "shots", "toi_seconds"},
	}
	GoalieRolling = RollingSpec{
		Kind:  KindGoalie,
		Table: "fact_game_goalie_stats",
		Stats: []string{"save_pct", "goals_against"},
	}
)

func SpecFor(kind Kind) RollingSpec {
	if kind == KindGoalie {
		return GoalieRolling
	}
	return SkaterRolling
}

// RollingColumn is the column holding the trailing average of stat.
func RollingColumn(stat string) string {
	return stat + "_rolling_10"
}

// HistoryRow is one persisted game of a player with its current rolling values.
type HistoryRow struct {
	GameID   int64
	GameDate time.Time
	Values   map[string]*float64
	Rolling  map[string]*float64
}

// RollingUpdate carries the recomputed rolling values for one fact row.
type RollingUpdate struct {
	GameID int64
	Values map[string]*float64
}

// RecomputeFunc turns a player's ordered history into the updates to write.
type RecomputeFunc func(history []HistoryRow) []RollingUpdate

// Repository reads per-player history and writes rolling values. Recompute
// runs fn and the writes it returns under one per-player serialization scope.
type Repository interface {
	Recompute(ctx context.Context, spec RollingSpec, playerID int64, fn RecomputeFunc) (int, error)
}
