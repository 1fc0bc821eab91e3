package game

import (
	"strings"
	"time"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/warehouse"
)

type State string

const (
	StateFuture State = "FUT"
	StateLive   State = "LIVE"
	StateOff    State = "OFF"
	StateFinal  State = "FINAL"
)

const (
	TypeRegular  = 2
	TypePlayoffs = 3
)

var upstreamStates = map[string]State{
	"FUT":   StateFuture,
	"PRE":   StateFuture,
	"LIVE":  StateLive,
	"CRIT":  StateLive,
	"OFF":   StateOff,
	"FINAL": StateFinal,
}

// NormalizeState maps an API gameState onto the warehouse lifecycle.
func NormalizeState(raw string) (State, bool) {
	s, ok := upstreamStates[strings.ToUpper(strings.TrimSpace(raw))]
	return s, ok
}

// Completed reports whether box score facts for the game are final.
func (s State) Completed() bool {
	return s == StateOff || s == StateFinal
}

// TrackedType reports whether games of this type are loaded.
func TrackedType(gameType int) bool {
	return gameType == TypeRegular || gameType == TypePlayoffs
}

type Game struct {
	ID           int64      `json:"game_id" db:"game_id" validate:"required,gt=0"`
	SeasonID     string     `json:"season_id" db:"season_id" validate:"required,season_id"`
	GameType     int        `json:"game_type" db:"game_type" validate:"oneof=2 3"`
	GameDate     time.Time  `json:"game_date" db:"game_date" validate:"required"`
	HomeTeam     string     `json:"home_team" db:"home_team" validate:"required,team"`
	AwayTeam     string     `json:"away_team" db:"away_team" validate:"required,team,nefield=HomeTeam"`
	HomeScore    *int       `json:"home_score,omitempty" db:"home_score" validate:"omitempty,gte=0"`
	AwayScore    *int       `json:"away_score,omitempty" db:"away_score" validate:"omitempty,gte=0"`
	Venue        *string    `json:"venue,omitempty" db:"venue"`
	StartTimeUTC *time.Time `json:"start_time_utc,omitempty" db:"start_time_utc"`
	State        State      `json:"game_state" db:"game_state" validate:"oneof=FUT LIVE OFF FINAL"`
}

func (g Game) Row() warehouse.Row {
	row := warehouse.Row{
		"game_id":        g.ID,
		"season_id":      g.SeasonID,
		"game_type":      int64(g.GameType),
		"game_date":      g.GameDate.UTC(),
		"home_team":      g.HomeTeam,
		"away_team":      g.AwayTeam,
		"home_score":     nil,
		"away_score":     nil,
		"venue":          nil,
		"start_time_utc": nil,
		"game_state":     string(g.State),
	}
	if g.HomeScore != nil {
		row["home_score"] = int64(*g.HomeScore)
	}
	if g.AwayScore != nil {
		row["away_score"] = int64(*g.AwayScore)
	}
	if g.Venue != nil {
		row["venue"] = *g.Venue
	}
	if g.StartTimeUTC != nil {
		row["start_time_utc"] = g.StartTimeUTC.UTC()
	}
	return row
}
