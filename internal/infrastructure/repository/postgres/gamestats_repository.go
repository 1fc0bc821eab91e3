package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/gamestats"
	qb "github.com/riskibarqy/nhl-warehouse/internal/platform/querybuilder"
)

// GameStatsRepository recomputes rolling columns inside one transaction per
// player, serialized across processes by a transaction-scoped advisory lock.
type GameStatsRepository struct {
	db *sqlx.DB
}

func NewGameStatsRepository(db *sqlx.DB) *GameStatsRepository {
	return &GameStatsRepository{db: db}
}

func (r *GameStatsRepository) Recompute(ctx context.Context, spec gamestats.RollingSpec, playerID int64, fn gamestats.RecomputeFunc) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx recompute rolling player_id=%d: %w", playerID, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1, $2)", lockClass(spec.Kind), int32(playerID)); err != nil {
		return 0, fmt.Errorf("lock rolling player_id=%d: %w", playerID, err)
	}

	history, err := r.history(ctx, tx, spec, playerID)
	if err != nil {
		return 0, err
	}
	updates := fn(history)

	for _, u := range updates {
		update := qb.Update(spec.Table)
		set := 0
		for _, stat := range spec.Stats {
			v, ok := u.Values[stat]
			if !ok {
				continue
			}
			var value any
			if v != nil {
				value = *v
			}
			update.Set(gamestats.RollingColumn(stat), value)
			set++
		}
		if set == 0 {
			continue
		}
		query, args, err := update.Where(qb.Eq("player_id", playerID), qb.Eq("game_id", u.GameID)).ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build rolling update query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("update rolling player_id=%d game_id=%d: %w", playerID, u.GameID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit rolling player_id=%d: %w", playerID, err)
	}
	return len(updates), nil
}

func (r *GameStatsRepository) history(ctx context.Context, tx *sqlx.Tx, spec gamestats.RollingSpec, playerID int64) ([]gamestats.HistoryRow, error) {
	columns := make([]string, 0, 2+2*len(spec.Stats))
	columns = append(columns, "f.game_id", "g.game_date")
	for _, stat := range spec.Stats {
		columns = append(columns, "f."+stat)
	}
	for _, stat := range spec.Stats {
		columns = append(columns, "f."+gamestats.RollingColumn(stat))
	}

	query, args, err := qb.Select(columns...).
		From(spec.Table+" f JOIN dim_game g ON g.game_id = f.game_id").
		Where(qb.Eq("f.player_id", playerID)).
		OrderBy("g.game_date", "f.game_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build rolling history query: %w", err)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select rolling history player_id=%d: %w", playerID, err)
	}
	defer rows.Close()

	var out []gamestats.HistoryRow
	for rows.Next() {
		var gameID int64
		var gameDate time.Time
		values := make([]sql.NullFloat64, len(spec.Stats))
		rolling := make([]sql.NullFloat64, len(spec.Stats))
		dest := make([]any, 0, len(columns))
		dest = append(dest, &gameID, &gameDate)
		for i := range values {
			dest = append(dest, &values[i])
		}
		for i := range rolling {
			dest = append(dest, &rolling[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan rolling history: %w", err)
		}

		h := gamestats.HistoryRow{
			GameID:   gameID,
			GameDate: gameDate.UTC(),
			Values:   make(map[string]*float64, len(spec.Stats)),
			Rolling:  make(map[string]*float64, len(spec.Stats)),
		}
		for i, stat := range spec.Stats {
			h.Values[stat] = nullFloatPtr(values[i])
			h.Rolling[stat] = nullFloatPtr(rolling[i])
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rolling history: %w", err)
	}
	return out, nil
}

func lockClass(kind gamestats.Kind) int32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte("rolling:" + string(kind)))
	return int32(h.Sum32())
}
