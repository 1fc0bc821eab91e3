package gamestats

import "github.com/riskibarqy/nhl-warehouse/internal/domain/warehouse"

// SkaterLine is one skater's box score in one game.
type SkaterLine struct {
	PlayerID         int64    `json:"player_id" db:"player_id" validate:"required,gt=0"`
	GameID           int64    `json:"game_id" db:"game_id" validate:"required,gt=0"`
	TeamAbbrev       string   `json:"team_abbrev" db:"team_abbrev" validate:"required,team"`
	Goals            int      `json:"goals" db:"goals" validate:"gte=0"`
	Assists          int      `json:"assists" db:"assists" validate:"gte=0"`
	Points           int      `json:"points" db:"points" validate:"gte=0"`
	Shots            int      `json:"shots" db:"shots" validate:"gte=0"`
	Hits             int      `json:"hits" db:"hits" validate:"gte=0"`
	BlockedShots     int      `json:"blocked_shots" db:"blocked_shots" validate:"gte=0"`
	PIM              int      `json:"pim" db:"pim" validate:"gte=0"`
	TOISeconds       int      `json:"toi_seconds" db:"toi_seconds" validate:"gte=0"`
	TOIMinutes       float64  `json:"toi_minutes" db:"toi_minutes" validate:"gte=0"`
	PointsPer60      float64  `json:"points_per_60" db:"points_per_60" validate:"gte=0"`
	PlusMinus        int      `json:"plus_minus" db:"plus_minus"`
	PowerPlayGoals   int      `json:"power_play_goals" db:"power_play_goals" validate:"gte=0,ltefield=Goals"`
	PowerPlayPoints  int      `json:"power_play_points" db:"power_play_points" validate:"gte=0,ltefield=Points"`
	ShorthandedGoals int      `json:"shorthanded_goals" db:"shorthanded_goals" validate:"gte=0,ltefield=Goals"`
	FaceoffPct       *float64 `json:"faceoff_pct,omitempty" db:"faceoff_pct" validate:"omitempty,gte=0,lte=1"`
}

func (s SkaterLine) Row() warehouse.Row {
	return warehouse.Row{
		"player_id":         s.PlayerID,
		"game_id":           s.GameID,
		"team_abbrev":       s.TeamAbbrev,
		"goals":             int64(s.Goals),
		"assists":           int64(s.Assists),
		"points":            int64(s.Points),
		"shots":             int64(s.Shots),
		"hits":              int64(s.Hits),
		"blocked_shots":     int64(s.BlockedShots),
		"pim":               int64(s.PIM),
		"toi_seconds":       int64(s.TOISeconds),
		"toi_minutes":       s.TOIMinutes,
		"points_per_60":     s.PointsPer60,
		"plus_minus":        int64(s.PlusMinus),
		"power_play_goals":  int64(s.PowerPlayGoals),
		"power_play_points": int64(s.PowerPlayPoints),
		"shorthanded_goals": int64(s.ShorthandedGoals),
		"faceoff_pct":       nullableFloat(s.FaceoffPct),
	}
}

// GoalieLine is one goalie's box score in one game.
type GoalieLine struct {
	PlayerID          int64    `json:"player_id" db:"player_id" validate:"required,gt=0"`
	GameID            int64    `json:"game_id" db:"game_id" validate:"required,gt=0"`
	TeamAbbrev        string   `json:"team_abbrev" db:"team_abbrev" validate:"required,team"`
	Decision          *string  `json:"decision,omitempty" db:"decision" validate:"omitempty,oneof=W L O"`
	ShotsAgainst      int      `json:"shots_against" db:"shots_against" validate:"gte=0"`
	Saves             int      `json:"saves" db:"saves" validate:"gte=0,ltefield=ShotsAgainst"`
	GoalsAgainst      int      `json:"goals_against" db:"goals_against" validate:"gte=0"`
	TOISeconds        int      `json:"toi_seconds" db:"toi_seconds" validate:"gte=0"`
	SavePct           *float64 `json:"save_pct,omitempty" db:"save_pct" validate:"omitempty,gte=0,lte=1"`
	PowerPlaySaves    int      `json:"power_play_saves" db:"power_play_saves" validate:"gte=0"`
	ShorthandedSaves  int      `json:"shorthanded_saves" db:"shorthanded_saves" validate:"gte=0"`
	EvenStrengthSaves int      `json:"even_strength_saves" db:"even_strength_saves" validate:"gte=0"`
}

func (g GoalieLine) Row() warehouse.Row {
	row := warehouse.Row{
		"player_id":           g.PlayerID,
		"game_id":             g.GameID,
		"team_abbrev":         g.TeamAbbrev,
		"decision":            nil,
		"shots_against":       int64(g.ShotsAgainst),
		"saves":               int64(g.Saves),
		"goals_against":       int64(g.GoalsAgainst),
		"toi_seconds":         int64(g.TOISeconds),
		"save_pct":            nullableFloat(g.SavePct),
		"power_play_saves":    int64(g.PowerPlaySaves),
		"shorthanded_saves":   int64(g.ShorthandedSaves),
		"even_strength_saves": int64(g.EvenStrengthSaves),
	}
	if g.Decision != nil {
		row["decision"] = *g.Decision
	}
	return row
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
