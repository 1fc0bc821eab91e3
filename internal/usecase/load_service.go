package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/gamestats"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/season"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/team"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/warehouse"
	"github.com/riskibarqy/nhl-warehouse/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// LoadResult reports the upsert outcome of one canonical batch.
type LoadResult struct {
	Seasons    warehouse.UpsertResult
	Players    warehouse.UpsertResult
	Games      warehouse.UpsertResult
	Skaters    warehouse.UpsertResult
	Goalies    warehouse.UpsertResult
	Rejections []Rejection
}

// RowsLoaded counts the game and fact rows the batch accepted.
func (r LoadResult) RowsLoaded() int {
	return r.Games.Total() + r.Skaters.Total() + r.Goalies.Total()
}

// Touched groups every fact row the batch accepted by player, as player id to
// the set of game ids. Unchanged rows count: a rerun must repair rolling
// values a failed run left behind.
func (r LoadResult) Touched(kind gamestats.Kind) map[int64]map[int64]struct{} {
	accepted := r.Skaters.Accepted
	if kind == gamestats.KindGoalie {
		accepted = r.Goalies.Accepted
	}
	out := make(map[int64]map[int64]struct{})
	for _, key := range accepted {
		rawPlayer, rawGame, ok := strings.Cut(key, "|")
		if !ok {
			continue
		}
		playerID, err1 := strconv.ParseInt(rawPlayer, 10, 64)
		gameID, err2 := strconv.ParseInt(rawGame, 10, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		if out[playerID] == nil {
			out[playerID] = make(map[int64]struct{})
		}
		out[playerID][gameID] = struct{}{}
	}
	return out
}

// LoadService upserts canonical rows in dependency order and rejects rows
// whose parents are missing before the store sees them.
type LoadService struct {
	store    warehouse.Store
	now      func() time.Time
	observer PipelineObserver
	logger   *logging.Logger
}

func NewLoadService(store warehouse.Store, observer PipelineObserver, logger *logging.Logger) *LoadService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LoadService{
		store:    store,
		now:      time.Now,
		observer: observerOrNop(observer),
		logger:   logger,
	}
}

// Load writes seasons, players, games, then skater and goalie facts. A
// *warehouse.LoadError from any table stops the load; earlier tables stay
// committed.
func (s *LoadService) Load(ctx context.Context, batch CanonicalBatch) (LoadResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LoadService.Load", attribute.String("date", batch.Date.Format(apiDateLayout)))
	defer span.End()

	var result LoadResult
	now := s.now().UTC()

	steps := []struct {
		table warehouse.Table
		rows  []warehouse.Row
		out   *warehouse.UpsertResult
	}{
		{warehouse.DimSeason, rowsOf(batch.Seasons), &result.Seasons},
		{warehouse.DimPlayer, playerRows(batch, now), &result.Players},
		{warehouse.DimGame, rowsOf(batch.Games), &result.Games},
		{warehouse.FactSkater, rowsOf(batch.Skaters), &result.Skaters},
		{warehouse.FactGoalie, rowsOf(batch.Goalies), &result.Goalies},
	}
	for _, step := range steps {
		res, rejections, err := s.loadTable(ctx, step.table, step.rows)
		result.Rejections = append(result.Rejections, rejections...)
		if err != nil {
			return result, err
		}
		*step.out = res
	}

	s.observer.AddRows("inserted", result.Games.Inserted+result.Skaters.Inserted+result.Goalies.Inserted)
	s.observer.AddRows("updated", result.Games.Updated+result.Skaters.Updated+result.Goalies.Updated)
	s.observer.AddRows("unchanged", result.Games.Unchanged+result.Skaters.Unchanged+result.Goalies.Unchanged)
	s.observer.AddRows("rejected", len(result.Rejections))

	s.logger.InfoContext(ctx, "batch loaded",
		"date", batch.Date.Format(apiDateLayout),
		"seasons_written", result.Seasons.Written(),
		"players_written", result.Players.Written(),
		"games_written", result.Games.Written(),
		"skaters_written", result.Skaters.Written(),
		"goalies_written", result.Goalies.Written(),
		"rows_loaded", result.RowsLoaded(),
		"rows_rejected", len(result.Rejections),
	)
	return result, nil
}

// LoadTeams upserts dim_team rows.
func (s *LoadService) LoadTeams(ctx context.Context, teams []team.Team) (warehouse.UpsertResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LoadService.LoadTeams")
	defer span.End()

	res, _, err := s.loadTable(ctx, warehouse.DimTeam, rowsOf(teams))
	return res, err
}

// EnsureSeasons inserts seasons that are not stored yet.
func (s *LoadService) EnsureSeasons(ctx context.Context, seasons []season.Season) (warehouse.UpsertResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LoadService.EnsureSeasons")
	defer span.End()

	res, _, err := s.loadTable(ctx, warehouse.DimSeason, rowsOf(seasons))
	return res, err
}

func (s *LoadService) loadTable(ctx context.Context, table warehouse.Table, rows []warehouse.Row) (warehouse.UpsertResult, []Rejection, error) {
	if len(rows) == 0 {
		return warehouse.UpsertResult{}, nil, nil
	}
	rows = warehouse.Dedupe(table, rows)

	accepted, rejections, err := s.checkReferences(ctx, table, rows)
	if err != nil {
		return warehouse.UpsertResult{}, nil, &warehouse.LoadError{Table: table.Name, Rows: len(rows), Err: err}
	}
	if len(accepted) == 0 {
		return warehouse.UpsertResult{}, rejections, nil
	}

	res, err := s.store.UpsertBatch(ctx, table, accepted)
	if err != nil {
		var loadErr *warehouse.LoadError
		if !errors.As(err, &loadErr) {
			err = &warehouse.LoadError{Table: table.Name, Rows: len(accepted), Err: err}
		}
		s.logger.ErrorContext(ctx, "batch upsert failed", "table", table.Name, "rows", len(accepted), "error", err)
		return warehouse.UpsertResult{}, rejections, err
	}
	return res, rejections, nil
}

// checkReferences splits rows into those whose every non-NULL foreign key is
// present in its parent table and rejections for the rest.
func (s *LoadService) checkReferences(ctx context.Context, table warehouse.Table, rows []warehouse.Row) ([]warehouse.Row, []Rejection, error) {
	if len(table.References) == 0 {
		return rows, nil, nil
	}

	present := make(map[string]map[string]bool, len(table.References))
	for _, ref := range table.References {
		parent, ok := warehouse.TableByName(ref.Table)
		if !ok {
			return nil, nil, errors.New("unknown referenced table " + ref.Table)
		}
		seen := make(map[string]struct{})
		keys := make([]any, 0, len(rows))
		for _, row := range rows {
			v := row[ref.Column]
			if v == nil {
				continue
			}
			k := warehouse.KeyString(v)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, v)
		}
		existing, err := s.store.ExistingKeys(ctx, parent, keys)
		if err != nil {
			return nil, nil, err
		}
		present[ref.Column] = existing
	}

	accepted := make([]warehouse.Row, 0, len(rows))
	var rejections []Rejection
	for _, row := range rows {
		var missing *warehouse.ReferentialIntegrityError
		for _, ref := range table.References {
			v := row[ref.Column]
			if v == nil || present[ref.Column][warehouse.KeyString(v)] {
				continue
			}
			missing = &warehouse.ReferentialIntegrityError{
				Table:    table.Name,
				Column:   ref.Column,
				Key:      warehouse.KeyString(v),
				RefTable: ref.Table,
			}
			break
		}
		if missing == nil {
			accepted = append(accepted, row)
			continue
		}
		rejection := Rejection{Table: table.Name, Key: table.KeyOf(row), Reason: missing.Error()}
		rejections = append(rejections, rejection)
		s.logger.InfoContext(ctx, "row rejected", "table", table.Name, "key", rejection.Key, "reason", rejection.Reason)
	}
	return accepted, rejections, nil
}

func rowsOf[T warehouse.Record](items []T) []warehouse.Row {
	out := make([]warehouse.Row, len(items))
	for i, item := range items {
		out[i] = item.Row()
	}
	return out
}

func playerRows(batch CanonicalBatch, now time.Time) []warehouse.Row {
	out := make([]warehouse.Row, len(batch.Players))
	for i, p := range batch.Players {
		p.UpdatedAt = now
		out[i] = p.Row()
	}
	return out
}
