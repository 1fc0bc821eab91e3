package memory

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/gamestats"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/pipelinerun"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/season"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/warehouse"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	s, err := season.FromID("20242025")
	if err != nil {
		t.Fatalf("season: %v", err)
	}
	return NewSeededStore(s)
}

func gameRow(id int64, state string) warehouse.Row {
	return warehouse.Row{
		"game_id":        id,
		"season_id":      "20242025",
		"game_type":      int64(2),
		"game_date":      time.Date(2024, 10, 8, 0, 0, 0, 0, time.UTC),
		"home_team":      "EDM",
		"away_team":      "CGY",
		"home_score":     int64(4),
		"away_score":     int64(1),
		"venue":          nil,
		"start_time_utc": nil,
		"game_state":     state,
	}
}

func TestStore_UpsertIsIdempotent(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	ctx := t.Context()

	first, err := store.UpsertBatch(ctx, warehouse.DimGame, []warehouse.Row{gameRow(2024020001, "OFF")})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if first.Inserted != 1 || len(first.Changed) != 1 {
		t.Fatalf("unexpected first result: %+v", first)
	}

	second, err := store.UpsertBatch(ctx, warehouse.DimGame, []warehouse.Row{gameRow(2024020001, "OFF")})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.Unchanged != 1 || second.Written() != 0 {
		t.Fatalf("rerun must be a no-op, got %+v", second)
	}
	if len(second.Accepted) != 1 || second.Accepted[0] != "2024020001" {
		t.Fatalf("unchanged rows are still accepted, got %+v", second.Accepted)
	}

	third, err := store.UpsertBatch(ctx, warehouse.DimGame, []warehouse.Row{gameRow(2024020001, "LIVE")})
	if err != nil {
		t.Fatalf("third upsert: %v", err)
	}
	row, _ := store.Row(warehouse.DimGame, "2024020001")
	if third.Written() != 0 || row["game_state"] != "OFF" {
		t.Fatalf("game state regressed: %+v %v", third, row["game_state"])
	}
}

func TestStore_OrphanAbortsWholeBatch(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	orphan := gameRow(2024020002, "FUT")
	orphan["home_team"] = "XXX"

	_, err := store.UpsertBatch(t.Context(), warehouse.DimGame, []warehouse.Row{gameRow(2024020001, "FUT"), orphan})
	var loadErr *warehouse.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected load error, got %v", err)
	}
	var ri *warehouse.ReferentialIntegrityError
	if !errors.As(err, &ri) || ri.Key != "XXX" || ri.RefTable != "dim_team" {
		t.Fatalf("expected referential integrity cause, got %v", err)
	}
	if n, _ := store.Count(t.Context(), warehouse.DimGame); n != 0 {
		t.Fatalf("batch must roll back, found %d games", n)
	}
}

func TestGameStatsRepository_RecomputeKeepsRollingAcrossUpserts(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	ctx := t.Context()
	if _, err := store.UpsertBatch(ctx, warehouse.DimGame, []warehouse.Row{gameRow(2024020001, "FINAL")}); err != nil {
		t.Fatalf("game: %v", err)
	}
	if _, err := store.UpsertBatch(ctx, warehouse.DimPlayer, []warehouse.Row{{
		"player_id": int64(8478402), "first_name": "Connor", "last_name": "McDavid", "full_name": "Connor McDavid",
		"position": "C", "team_abbrev": "EDM", "jersey_number": int64(97), "shoots_catches": "L", "birth_date": nil,
		"updated_at": time.Now().UTC(),
	}}); err != nil {
		t.Fatalf("player: %v", err)
	}
	fact := gamestats.SkaterLine{PlayerID: 8478402, GameID: 2024020001, TeamAbbrev: "EDM", Goals: 1, Assists: 2, Points: 3, Shots: 4, TOISeconds: 1200}
	if _, err := store.UpsertBatch(ctx, warehouse.FactSkater, []warehouse.Row{fact.Row()}); err != nil {
		t.Fatalf("fact: %v", err)
	}

	repo := NewGameStatsRepository(store)
	n, err := repo.Recompute(ctx, gamestats.SkaterRolling, 8478402, func(history []gamestats.HistoryRow) []gamestats.RollingUpdate {
		if len(history) != 1 || *history[0].Values["points"] != 3 {
			t.Errorf("unexpected history: %+v", history)
		}
		v := 3.0
		return []gamestats.RollingUpdate{{GameID: 2024020001, Values: map[string]*float64{"points": &v}}}
	})
	if err != nil || n != 1 {
		t.Fatalf("recompute: n=%d err=%v", n, err)
	}

	fact.Hits = 2
	if _, err := store.UpsertBatch(ctx, warehouse.FactSkater, []warehouse.Row{fact.Row()}); err != nil {
		t.Fatalf("fact update: %v", err)
	}
	row, _ := store.Row(warehouse.FactSkater, "8478402|2024020001")
	if row["points_rolling_10"] != 3.0 || row["hits"] != int64(2) {
		t.Fatalf("rolling column lost on update: %v", row)
	}
}

func TestPipelineRunRepository_StateMachine(t *testing.T) {
	t.Parallel()

	repo := NewPipelineRunRepository()
	ctx := t.Context()
	day := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	run, err := repo.Start(ctx, pipelinerun.Run{RunDate: day, StartedAt: day})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, ok, _ := repo.LastSuccessful(ctx); ok {
		t.Fatalf("running run must not count as successful")
	}
	if err := repo.Finish(ctx, run.ID, pipelinerun.Outcome{Status: pipelinerun.StatusSuccess, CompletedAt: day}); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := repo.Finish(ctx, run.ID, pipelinerun.Outcome{Status: pipelinerun.StatusFailed, CompletedAt: day}); !errors.Is(err, pipelinerun.ErrAlreadyFinished) {
		t.Fatalf("expected ErrAlreadyFinished, got %v", err)
	}
	if err := repo.Finish(ctx, 99, pipelinerun.Outcome{Status: pipelinerun.StatusSuccess}); !errors.Is(err, pipelinerun.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}

	last, ok, err := repo.LastSuccessful(ctx)
	if err != nil || !ok || last.ID != run.ID || last.Status != pipelinerun.StatusSuccess {
		t.Fatalf("unexpected last successful: %+v ok=%v err=%v", last, ok, err)
	}
}
