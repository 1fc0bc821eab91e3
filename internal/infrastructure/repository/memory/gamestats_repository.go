package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/gamestats"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/warehouse"
)

// GameStatsRepository reads and writes rolling columns on a Store's fact
// tables. Recompute holds the store lock, which serializes every player.
type GameStatsRepository struct {
	store *Store
}

func NewGameStatsRepository(store *Store) *GameStatsRepository {
	return &GameStatsRepository{store: store}
}

func (r *GameStatsRepository) Recompute(_ context.Context, spec gamestats.RollingSpec, playerID int64, fn gamestats.RecomputeFunc) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	facts, ok := r.store.tables[spec.Table]
	if !ok {
		return 0, fmt.Errorf("unknown fact table %s", spec.Table)
	}
	games := r.store.tables[warehouse.DimGame.Name]

	keys := make(map[int64]string)
	var history []gamestats.HistoryRow
	for key, row := range facts {
		if id, _ := row["player_id"].(int64); id != playerID {
			continue
		}
		gameID, _ := row["game_id"].(int64)
		h := gamestats.HistoryRow{
			GameID:  gameID,
			Values:  make(map[string]*float64, len(spec.Stats)),
			Rolling: make(map[string]*float64, len(spec.Stats)),
		}
		if g, ok := games[warehouse.KeyString(gameID)]; ok {
			h.GameDate, _ = g["game_date"].(time.Time)
		}
		for _, stat := range spec.Stats {
			h.Values[stat] = floatPtr(row[stat])
			h.Rolling[stat] = floatPtr(row[gamestats.RollingColumn(stat)])
		}
		keys[gameID] = key
		history = append(history, h)
	}

	updates := fn(history)
	if len(updates) == 0 {
		return 0, nil
	}
	next := make(map[string]warehouse.Row, len(facts))
	for k, v := range facts {
		next[k] = v
	}
	for _, u := range updates {
		key, ok := keys[u.GameID]
		if !ok {
			return 0, fmt.Errorf("rolling update for unknown game %d of player %d", u.GameID, playerID)
		}
		row := copyRow(next[key])
		for stat, v := range u.Values {
			if v == nil {
				row[gamestats.RollingColumn(stat)] = nil
				continue
			}
			row[gamestats.RollingColumn(stat)] = *v
		}
		next[key] = row
	}
	r.store.tables[spec.Table] = next
	return len(updates), nil
}

func floatPtr(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int64:
		f = float64(x)
	case int:
		f = float64(x)
	default:
		return nil
	}
	return &f
}
