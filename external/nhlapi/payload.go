package nhlapi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/game"
	"github.com/riskibarqy/nhl-warehouse/internal/usecase"
)

var errMissingField = errors.New("missing required field")

// localized is the {"default": "..."} wrapper the API uses for names.
type localized struct {
	Default string `json:"default"`
}

type scoreEnvelope struct {
	Games []scoreGame `json:"games"`
}

type scoreGame struct {
	ID           int64      `json:"id"`
	Season       int64      `json:"season"`
	GameType     int        `json:"gameType"`
	GameDate     string     `json:"gameDate"`
	Venue        *localized `json:"venue"`
	StartTimeUTC string     `json:"startTimeUTC"`
	GameState    string     `json:"gameState"`
	HomeTeam     scoreTeam  `json:"homeTeam"`
	AwayTeam     scoreTeam  `json:"awayTeam"`
}

type scoreTeam struct {
	Abbrev string `json:"abbrev"`
	Score  *int   `json:"score"`
}

func (e scoreEnvelope) games() ([]usecase.ExternalGame, error) {
	out := make([]usecase.ExternalGame, 0, len(e.Games))
	for i, g := range e.Games {
		switch {
		case g.ID <= 0:
			return nil, fmt.Errorf("%w: games[%d].id", errMissingField, i)
		case g.GameDate == "":
			return nil, fmt.Errorf("%w: games[%d].gameDate", errMissingField, i)
		case g.HomeTeam.Abbrev == "" || g.AwayTeam.Abbrev == "":
			return nil, fmt.Errorf("%w: games[%d] team abbrev", errMissingField, i)
		}
		if !game.TrackedType(g.GameType) {
			continue
		}

		item := usecase.ExternalGame{
			ID:           g.ID,
			GameType:     g.GameType,
			GameDate:     g.GameDate,
			HomeAbbrev:   g.HomeTeam.Abbrev,
			AwayAbbrev:   g.AwayTeam.Abbrev,
			HomeScore:    g.HomeTeam.Score,
			AwayScore:    g.AwayTeam.Score,
			StartTimeUTC: g.StartTimeUTC,
			State:        g.GameState,
		}
		if g.Season > 0 {
			item.Season = strconv.FormatInt(g.Season, 10)
		}
		if g.Venue != nil {
			item.Venue = g.Venue.Default
		}
		out = append(out, item)
	}
	return out, nil
}

type boxscoreEnvelope struct {
	ID                int64             `json:"id"`
	HomeTeam          scoreTeam         `json:"homeTeam"`
	AwayTeam          scoreTeam         `json:"awayTeam"`
	PlayerByGameStats playerByGameStats `json:"playerByGameStats"`
}

type playerByGameStats struct {
	HomeTeam teamPlayerStats `json:"homeTeam"`
	AwayTeam teamPlayerStats `json:"awayTeam"`
}

type teamPlayerStats struct {
	Forwards []skaterStats `json:"forwards"`
	Defense  []skaterStats `json:"defense"`
	Goalies  []goalieStats `json:"goalies"`
}

type skaterStats struct {
	PlayerID           int64     `json:"playerId"`
	SweaterNumber      *int      `json:"sweaterNumber"`
	Name               localized `json:"name"`
	Position           string    `json:"position"`
	Goals              int       `json:"goals"`
	Assists            int       `json:"assists"`
	Points             int       `json:"points"`
	PlusMinus          int       `json:"plusMinus"`
	PIM                int       `json:"pim"`
	Hits               int       `json:"hits"`
	BlockedShots       int       `json:"blockedShots"`
	PowerPlayGoals     int       `json:"powerPlayGoals"`
	PowerPlayPoints    int       `json:"powerPlayPoints"`
	ShorthandedGoals   int       `json:"shorthandedGoals"`
	SOG                int       `json:"sog"`
	FaceoffWinningPctg *float64  `json:"faceoffWinningPctg"`
	TOI                string    `json:"toi"`
}

type goalieStats struct {
	PlayerID          int64     `json:"playerId"`
	SweaterNumber     *int      `json:"sweaterNumber"`
	Name              localized `json:"name"`
	Position          string    `json:"position"`
	Decision          string    `json:"decision"`
	ShotsAgainst      int       `json:"shotsAgainst"`
	Saves             int       `json:"saves"`
	GoalsAgainst      int       `json:"goalsAgainst"`
	PowerPlaySaves    int       `json:"powerPlaySaves"`
	ShorthandedSaves  int       `json:"shorthandedSaves"`
	EvenStrengthSaves int       `json:"evenStrengthSaves"`
	TOI               string    `json:"toi"`
}

func (e boxscoreEnvelope) boxscore(gameID int64) (usecase.ExternalBoxscore, error) {
	if e.ID > 0 && e.ID != gameID {
		return usecase.ExternalBoxscore{}, fmt.Errorf("boxscore id %d does not match requested game", e.ID)
	}
	if e.HomeTeam.Abbrev == "" || e.AwayTeam.Abbrev == "" {
		return usecase.ExternalBoxscore{}, fmt.Errorf("%w: team abbrev", errMissingField)
	}

	out := usecase.ExternalBoxscore{GameID: gameID}
	sides := []struct {
		abbrev string
		stats  teamPlayerStats
	}{
		{e.HomeTeam.Abbrev, e.PlayerByGameStats.HomeTeam},
		{e.AwayTeam.Abbrev, e.PlayerByGameStats.AwayTeam},
	}
	for _, side := range sides {
		skaters := make([]skaterStats, 0, len(side.stats.Forwards)+len(side.stats.Defense))
		skaters = append(skaters, side.stats.Forwards...)
		skaters = append(skaters, side.stats.Defense...)
		for _, s := range skaters {
			if s.PlayerID <= 0 {
				return usecase.ExternalBoxscore{}, fmt.Errorf("%w: skater playerId", errMissingField)
			}
			out.Skaters = append(out.Skaters, usecase.ExternalSkaterLine{
				Player:             playerRef(s.PlayerID, s.Name, s.Position, side.abbrev, s.SweaterNumber),
				Goals:              s.Goals,
				Assists:            s.Assists,
				Points:             s.Points,
				Shots:              s.SOG,
				Hits:               s.Hits,
				BlockedShots:       s.BlockedShots,
				PIM:                s.PIM,
				TOI:                s.TOI,
				PlusMinus:          s.PlusMinus,
				PowerPlayGoals:     s.PowerPlayGoals,
				PowerPlayPoints:    s.PowerPlayPoints,
				ShorthandedGoals:   s.ShorthandedGoals,
				FaceoffWinningPctg: s.FaceoffWinningPctg,
			})
		}
		for _, g := range side.stats.Goalies {
			if g.PlayerID <= 0 {
				return usecase.ExternalBoxscore{}, fmt.Errorf("%w: goalie playerId", errMissingField)
			}
			position := g.Position
			if position == "" {
				position = "G"
			}
			out.Goalies = append(out.Goalies, usecase.ExternalGoalieLine{
				Player:            playerRef(g.PlayerID, g.Name, position, side.abbrev, g.SweaterNumber),
				Decision:          g.Decision,
				ShotsAgainst:      g.ShotsAgainst,
				Saves:             g.Saves,
				GoalsAgainst:      g.GoalsAgainst,
				TOI:               g.TOI,
				PowerPlaySaves:    g.PowerPlaySaves,
				ShorthandedSaves:  g.ShorthandedSaves,
				EvenStrengthSaves: g.EvenStrengthSaves,
			})
		}
	}
	return out, nil
}

func playerRef(id int64, name localized, position, team string, sweater *int) usecase.ExternalPlayerRef {
	return usecase.ExternalPlayerRef{
		PlayerID:      id,
		Name:          name.Default,
		Position:      position,
		TeamAbbrev:    team,
		SweaterNumber: sweater,
	}
}

type landingEnvelope struct {
	PlayerID          int64     `json:"playerId"`
	FirstName         localized `json:"firstName"`
	LastName          localized `json:"lastName"`
	Position          string    `json:"position"`
	CurrentTeamAbbrev string    `json:"currentTeamAbbrev"`
	SweaterNumber     *int      `json:"sweaterNumber"`
	ShootsCatches     string    `json:"shootsCatches"`
	BirthDate         string    `json:"birthDate"`
}

func (e landingEnvelope) detail(playerID int64) usecase.ExternalPlayerDetail {
	return usecase.ExternalPlayerDetail{
		PlayerID:      playerID,
		FirstName:     strings.TrimSpace(e.FirstName.Default),
		LastName:      strings.TrimSpace(e.LastName.Default),
		Position:      e.Position,
		TeamAbbrev:    e.CurrentTeamAbbrev,
		SweaterNumber: e.SweaterNumber,
		ShootsCatches: e.ShootsCatches,
		BirthDate:     e.BirthDate,
	}
}

type standingsEnvelope struct {
	Standings []standingRow `json:"standings"`
}

type standingRow struct {
	TeamAbbrev     localized `json:"teamAbbrev"`
	TeamName       localized `json:"teamName"`
	DivisionName   string    `json:"divisionName"`
	ConferenceName string    `json:"conferenceName"`
}

func (e standingsEnvelope) standings() ([]usecase.ExternalStanding, error) {
	out := make([]usecase.ExternalStanding, 0, len(e.Standings))
	for i, row := range e.Standings {
		if row.TeamAbbrev.Default == "" {
			return nil, fmt.Errorf("%w: standings[%d].teamAbbrev", errMissingField, i)
		}
		out = append(out, usecase.ExternalStanding{
			TeamAbbrev: row.TeamAbbrev.Default,
			TeamName:   row.TeamName.Default,
			Division:   row.DivisionName,
			Conference: row.ConferenceName,
		})
	}
	return out, nil
}
