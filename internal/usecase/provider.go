package usecase

import (
	"context"
	"time"
)

// NHLProvider is the upstream statistics source. Implementations return
// *TransientFetchError or *FatalFetchError.
type NHLProvider interface {
	FetchScores(ctx context.Context, date time.Time) ([]ExternalGame, error)
	FetchBoxscore(ctx context.Context, gameID int64) (ExternalBoxscore, error)
	FetchPlayerLanding(ctx context.Context, playerID int64) (ExternalPlayerDetail, error)
	FetchStandings(ctx context.Context, date time.Time) ([]ExternalStanding, error)
}

type ExternalGame struct {
	ID           int64  `json:"id"`
	Season       string `json:"season"`
	GameType     int    `json:"game_type"`
	GameDate     string `json:"game_date"`
	HomeAbbrev   string `json:"home_abbrev"`
	AwayAbbrev   string `json:"away_abbrev"`
	HomeScore    *int   `json:"home_score,omitempty"`
	AwayScore    *int   `json:"away_score,omitempty"`
	Venue        string `json:"venue,omitempty"`
	StartTimeUTC string `json:"start_time_utc,omitempty"`
	State        string `json:"game_state"`
}

type ExternalBoxscore struct {
	GameID  int64                `json:"game_id"`
	Skaters []ExternalSkaterLine `json:"skaters"`
	Goalies []ExternalGoalieLine `json:"goalies"`
}

// ExternalPlayerRef is the player identity carried on every box score line.
type ExternalPlayerRef struct {
	PlayerID      int64  `json:"player_id"`
	Name          string `json:"name"`
	Position      string `json:"position"`
	TeamAbbrev    string `json:"team_abbrev"`
	SweaterNumber *int   `json:"sweater_number,omitempty"`
}

type ExternalSkaterLine struct {
	Player             ExternalPlayerRef `json:"player"`
	Goals              int               `json:"goals"`
	Assists            int               `json:"assists"`
	Points             int               `json:"points"`
	Shots              int               `json:"shots"`
	Hits               int               `json:"hits"`
	BlockedShots       int               `json:"blocked_shots"`
	PIM                int               `json:"pim"`
	TOI                string            `json:"toi"`
	PlusMinus          int               `json:"plus_minus"`
	PowerPlayGoals     int               `json:"power_play_goals"`
	PowerPlayPoints    int               `json:"power_play_points"`
	ShorthandedGoals   int               `json:"shorthanded_goals"`
	FaceoffWinningPctg *float64          `json:"faceoff_winning_pctg,omitempty"`
}

type ExternalGoalieLine struct {
	Player            ExternalPlayerRef `json:"player"`
	Decision          string            `json:"decision,omitempty"`
	ShotsAgainst      int               `json:"shots_against"`
	Saves             int               `json:"saves"`
	GoalsAgainst      int               `json:"goals_against"`
	TOI               string            `json:"toi"`
	PowerPlaySaves    int               `json:"power_play_saves"`
	ShorthandedSaves  int               `json:"shorthanded_saves"`
	EvenStrengthSaves int               `json:"even_strength_saves"`
}

// ExternalPlayerDetail is the enrichment from a player's landing page.
type ExternalPlayerDetail struct {
	PlayerID      int64  `json:"player_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Position      string `json:"position"`
	TeamAbbrev    string `json:"team_abbrev,omitempty"`
	SweaterNumber *int   `json:"sweater_number,omitempty"`
	ShootsCatches string `json:"shoots_catches,omitempty"`
	BirthDate     string `json:"birth_date,omitempty"`
}

type ExternalStanding struct {
	TeamAbbrev string `json:"team_abbrev"`
	TeamName   string `json:"team_name"`
	Division   string `json:"division"`
	Conference string `json:"conference"`
}
