package usecase

import (
	"time"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/game"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/gamestats"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/player"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/season"
)

// RawBatch is everything extracted for one game date.
type RawBatch struct {
	Date      time.Time                      `json:"date"`
	Games     []ExternalGame                 `json:"games"`
	Boxscores []ExternalBoxscore             `json:"boxscores"`
	Details   map[int64]ExternalPlayerDetail `json:"details,omitempty"`
	Failures  []FetchFailure                 `json:"failures,omitempty"`
}

// RowsExtracted counts games, box score lines and unique players.
func (b RawBatch) RowsExtracted() int {
	n := len(b.Games)
	players := make(map[int64]struct{})
	for _, box := range b.Boxscores {
		n += len(box.Skaters) + len(box.Goalies)
		for _, line := range box.Skaters {
			players[line.Player.PlayerID] = struct{}{}
		}
		for _, line := range box.Goalies {
			players[line.Player.PlayerID] = struct{}{}
		}
	}
	return n + len(players)
}

// FetchFailure records one entity that could not be extracted.
type FetchFailure struct {
	Entity  string `json:"entity"`
	Key     string `json:"key"`
	Message string `json:"message"`
}

// CanonicalBatch holds the validated rows of one date, ready to load.
type CanonicalBatch struct {
	Date       time.Time              `json:"date"`
	Seasons    []season.Season        `json:"seasons"`
	Players    []player.Player        `json:"players"`
	Games      []game.Game            `json:"games"`
	Skaters    []gamestats.SkaterLine `json:"skaters"`
	Goalies    []gamestats.GoalieLine `json:"goalies"`
	Rejections []Rejection            `json:"rejections,omitempty"`
	Failures   []FetchFailure         `json:"failures,omitempty"`
}

// Rejection is a row dropped by validation or referential integrity.
type Rejection struct {
	Table  string `json:"table"`
	Key    string `json:"key"`
	Reason string `json:"reason"`
}
