//go:build integration

package postgres

import (
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/gamestats"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/pipelinerun"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/rolling"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/season"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/warehouse"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("could not resolve caller path")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "db", "migrations"))
}

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := t.Context()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("warehouse"),
		tcpostgres.WithUsername("etl"),
		tcpostgres.WithPassword("etl"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(t.Context())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	m, err := migrate.New("file://"+filepath.ToSlash(migrationsDir(t)), dsn)
	if err != nil {
		t.Fatalf("create migrator: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("migrate up: %v", err)
	}
	_, _ = m.Close()

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func gameRow(id int64, state string, homeScore any) warehouse.Row {
	return warehouse.Row{
		"game_id":        id,
		"season_id":      "20242025",
		"game_type":      int64(2),
		"game_date":      time.Date(2024, 10, 8, 0, 0, 0, 0, time.UTC),
		"home_team":      "EDM",
		"away_team":      "CGY",
		"home_score":     homeScore,
		"away_score":     int64(1),
		"venue":          "Rogers Place",
		"start_time_utc": nil,
		"game_state":     state,
	}
}

func TestIntegration_StoreUpsertContract(t *testing.T) {
	db := setupDB(t)
	ctx := t.Context()
	store := NewStore(db)

	if err := BootstrapSeed(ctx, store); err != nil {
		t.Fatalf("bootstrap seed: %v", err)
	}
	if n, err := store.Count(ctx, warehouse.DimTeam); err != nil || n != 32 {
		t.Fatalf("expected 32 teams, got %d err=%v", n, err)
	}
	s, _ := season.FromID("20242025")
	if _, err := store.UpsertBatch(ctx, warehouse.DimSeason, []warehouse.Row{s.Row()}); err != nil {
		t.Fatalf("season: %v", err)
	}

	first, err := store.UpsertBatch(ctx, warehouse.DimGame, []warehouse.Row{gameRow(2024020001, "LIVE", int64(2))})
	if err != nil || first.Inserted != 1 {
		t.Fatalf("insert game: %+v err=%v", first, err)
	}
	again, err := store.UpsertBatch(ctx, warehouse.DimGame, []warehouse.Row{gameRow(2024020001, "LIVE", int64(2))})
	if err != nil || again.Unchanged != 1 || again.Written() != 0 {
		t.Fatalf("rerun must be unchanged: %+v err=%v", again, err)
	}
	moved, err := store.UpsertBatch(ctx, warehouse.DimGame, []warehouse.Row{gameRow(2024020001, "FUT", nil)})
	if err != nil || moved.Written() != 0 {
		t.Fatalf("regressed state with NULL score must not update: %+v err=%v", moved, err)
	}
	final, err := store.UpsertBatch(ctx, warehouse.DimGame, []warehouse.Row{gameRow(2024020001, "FINAL", int64(4))})
	if err != nil || final.Updated != 1 || len(final.Changed) != 1 || final.Changed[0] != "2024020001" {
		t.Fatalf("forward state must update: %+v err=%v", final, err)
	}

	var state string
	var score int
	if err := db.QueryRowxContext(ctx, "SELECT game_state, home_score FROM dim_game WHERE game_id = $1", 2024020001).Scan(&state, &score); err != nil {
		t.Fatalf("read game: %v", err)
	}
	if state != "FINAL" || score != 4 {
		t.Fatalf("unexpected stored game: state=%s score=%d", state, score)
	}

	orphan := gameRow(2024020002, "FUT", nil)
	orphan["home_team"] = "XXX"
	_, err = store.UpsertBatch(ctx, warehouse.DimGame, []warehouse.Row{gameRow(2024020003, "FUT", nil), orphan})
	var ri *warehouse.ReferentialIntegrityError
	if !errors.As(err, &ri) || ri.Column != "home_team" || ri.RefTable != "dim_team" {
		t.Fatalf("expected referential integrity error, got %v", err)
	}
	if n, _ := store.Count(ctx, warehouse.DimGame); n != 1 {
		t.Fatalf("failed batch must roll back, found %d games", n)
	}

	existing, err := store.ExistingKeys(ctx, warehouse.DimTeam, []any{"EDM", "XXX"})
	if err != nil || !existing["EDM"] || existing["XXX"] {
		t.Fatalf("unexpected existing keys: %v err=%v", existing, err)
	}
}

func TestIntegration_RollingAndRuns(t *testing.T) {
	db := setupDB(t)
	ctx := t.Context()
	store := NewStore(db)
	if err := BootstrapSeed(ctx, store); err != nil {
		t.Fatalf("bootstrap seed: %v", err)
	}
	s, _ := season.FromID("20242025")
	if _, err := store.UpsertBatch(ctx, warehouse.DimSeason, []warehouse.Row{s.Row()}); err != nil {
		t.Fatalf("season: %v", err)
	}
	second := gameRow(2024020030, "OFF", int64(3))
	second["game_date"] = time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if _, err := store.UpsertBatch(ctx, warehouse.DimGame, []warehouse.Row{gameRow(2024020001, "OFF", int64(4)), second}); err != nil {
		t.Fatalf("games: %v", err)
	}
	if _, err := store.UpsertBatch(ctx, warehouse.DimPlayer, []warehouse.Row{{
		"player_id": int64(8478402), "first_name": "Connor", "last_name": "McDavid", "full_name": "Connor McDavid",
		"position": "C", "team_abbrev": "EDM", "jersey_number": int64(97), "shoots_catches": "L", "birth_date": nil,
		"updated_at": time.Now().UTC(),
	}}); err != nil {
		t.Fatalf("player: %v", err)
	}
	facts := []warehouse.Row{
		gamestats.SkaterLine{PlayerID: 8478402, GameID: 2024020001, TeamAbbrev: "EDM", Goals: 1, Assists: 2, Points: 3, Shots: 4, TOISeconds: 1200}.Row(),
		gamestats.SkaterLine{PlayerID: 8478402, GameID: 2024020030, TeamAbbrev: "EDM", Points: 1, Assists: 1, Shots: 2, TOISeconds: 1100}.Row(),
	}
	if _, err := store.UpsertBatch(ctx, warehouse.FactSkater, facts); err != nil {
		t.Fatalf("facts: %v", err)
	}

	calc := rolling.NewCalculator(10)
	repo := NewGameStatsRepository(db)
	n, err := repo.Recompute(ctx, gamestats.SkaterRolling, 8478402, func(history []gamestats.HistoryRow) []gamestats.RollingUpdate {
		return calc.Plan(gamestats.SkaterRolling, history, map[int64]struct{}{2024020001: {}, 2024020030: {}})
	})
	if err != nil || n == 0 {
		t.Fatalf("recompute: n=%d err=%v", n, err)
	}

	var pointsRolling float64
	if err := db.GetContext(ctx, &pointsRolling, "SELECT points_rolling_10 FROM fact_game_skater_stats WHERE player_id = $1 AND game_id = $2", 8478402, 2024020030); err != nil {
		t.Fatalf("read rolling: %v", err)
	}
	if pointsRolling != 2 {
		t.Fatalf("expected points rolling 2, got %v", pointsRolling)
	}

	runs := NewPipelineRunRepository(db)
	day := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	run, err := runs.Start(ctx, pipelinerun.Run{InvocationID: "inv-1", RunDate: day, WindowStart: day, StartedAt: time.Now().UTC()})
	if err != nil || run.ID == 0 {
		t.Fatalf("start run: %+v err=%v", run, err)
	}
	var status string
	if err := db.GetContext(ctx, &status, "SELECT status FROM pipeline_runs WHERE run_id = $1", run.ID); err != nil || status != "running" {
		t.Fatalf("run must be keyed by run_id: status=%q err=%v", status, err)
	}
	if err := runs.Finish(ctx, run.ID, pipelinerun.Outcome{Status: pipelinerun.StatusSuccess, CompletedAt: time.Now().UTC(), RowsLoaded: 4}); err != nil {
		t.Fatalf("finish run: %v", err)
	}
	if err := runs.Finish(ctx, run.ID, pipelinerun.Outcome{Status: pipelinerun.StatusFailed, CompletedAt: time.Now().UTC()}); !errors.Is(err, pipelinerun.ErrAlreadyFinished) {
		t.Fatalf("expected ErrAlreadyFinished, got %v", err)
	}
	if err := runs.Finish(ctx, 9999, pipelinerun.Outcome{Status: pipelinerun.StatusFailed, CompletedAt: time.Now().UTC()}); !errors.Is(err, pipelinerun.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	last, ok, err := runs.LastSuccessful(ctx)
	if err != nil || !ok || last.ID != run.ID || last.RowsLoaded != 4 || !last.RunDate.Equal(day) {
		t.Fatalf("unexpected last successful run: %+v ok=%v err=%v", last, ok, err)
	}
}
