package usecase

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/game"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/gamestats"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/player"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/season"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/team"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/warehouse"
	"github.com/riskibarqy/nhl-warehouse/internal/platform/logging"
)

const apiDateLayout = "2006-01-02"

// Transformer turns raw upstream records into canonical warehouse rows. Every
// method is pure apart from logging.
type Transformer struct {
	validate *validator.Validate
	logger   *logging.Logger
}

func NewTransformer(logger *logging.Logger) *Transformer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Transformer{validate: newValidator(), logger: logger}
}

func (t *Transformer) TransformGame(raw ExternalGame) (game.Game, error) {
	key := strconv.FormatInt(raw.ID, 10)
	reject := func(field, constraint string, value any) (game.Game, error) {
		return game.Game{}, &ValidationError{Entity: warehouse.DimGame.Name, Key: key, Field: field, Constraint: constraint, Value: value}
	}

	state, ok := game.NormalizeState(raw.State)
	if !ok {
		return reject("game_state", "oneof", raw.State)
	}
	home, ok := team.Canonical(raw.HomeAbbrev)
	if !ok {
		return reject("home_team", "team", raw.HomeAbbrev)
	}
	away, ok := team.Canonical(raw.AwayAbbrev)
	if !ok {
		return reject("away_team", "team", raw.AwayAbbrev)
	}
	gameDate, err := time.Parse(apiDateLayout, strings.TrimSpace(raw.GameDate))
	if err != nil {
		return reject("game_date", "date", raw.GameDate)
	}

	out := game.Game{
		ID:        raw.ID,
		SeasonID:  strings.TrimSpace(raw.Season),
		GameType:  raw.GameType,
		GameDate:  gameDate,
		HomeTeam:  home,
		AwayTeam:  away,
		HomeScore: raw.HomeScore,
		AwayScore: raw.AwayScore,
		State:     state,
	}
	if venue := strings.Join(strings.Fields(raw.Venue), " "); venue != "" {
		out.Venue = &venue
	}
	if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(raw.StartTimeUTC)); err == nil {
		ts = ts.UTC()
		out.StartTimeUTC = &ts
	}

	if err := t.validate.Struct(out); err != nil {
		return game.Game{}, validationError(warehouse.DimGame.Name, key, err)
	}
	return out, nil
}

func (t *Transformer) TransformSkater(gameID int64, raw ExternalSkaterLine) (gamestats.SkaterLine, error) {
	key := factKey(raw.Player.PlayerID, gameID)
	abbrev, ok := team.Canonical(raw.Player.TeamAbbrev)
	if !ok {
		return gamestats.SkaterLine{}, &ValidationError{
			Entity: warehouse.FactSkater.Name, Key: key, Field: "team_abbrev", Constraint: "team", Value: raw.Player.TeamAbbrev,
		}
	}

	toi := gamestats.ParseTOI(raw.TOI)
	points := raw.Goals + raw.Assists
	out := gamestats.SkaterLine{
		PlayerID:         raw.Player.PlayerID,
		GameID:           gameID,
		TeamAbbrev:       abbrev,
		Goals:            raw.Goals,
		Assists:          raw.Assists,
		Points:           points,
		Shots:            raw.Shots,
		Hits:             raw.Hits,
		BlockedShots:     raw.BlockedShots,
		PIM:              raw.PIM,
		TOISeconds:       toi,
		TOIMinutes:       gamestats.TOIMinutes(toi),
		PointsPer60:      gamestats.PointsPer60(points, toi),
		PlusMinus:        raw.PlusMinus,
		PowerPlayGoals:   raw.PowerPlayGoals,
		PowerPlayPoints:  raw.PowerPlayPoints,
		ShorthandedGoals: raw.ShorthandedGoals,
		FaceoffPct:       gamestats.FaceoffPct(raw.FaceoffWinningPctg),
	}
	if err := t.validate.Struct(out); err != nil {
		return gamestats.SkaterLine{}, validationError(warehouse.FactSkater.Name, key, err)
	}
	return out, nil
}

func (t *Transformer) TransformGoalie(gameID int64, raw ExternalGoalieLine) (gamestats.GoalieLine, error) {
	key := factKey(raw.Player.PlayerID, gameID)
	abbrev, ok := team.Canonical(raw.Player.TeamAbbrev)
	if !ok {
		return gamestats.GoalieLine{}, &ValidationError{
			Entity: warehouse.FactGoalie.Name, Key: key, Field: "team_abbrev", Constraint: "team", Value: raw.Player.TeamAbbrev,
		}
	}

	out := gamestats.GoalieLine{
		PlayerID:          raw.Player.PlayerID,
		GameID:            gameID,
		TeamAbbrev:        abbrev,
		ShotsAgainst:      raw.ShotsAgainst,
		Saves:             raw.Saves,
		GoalsAgainst:      raw.GoalsAgainst,
		TOISeconds:        gamestats.ParseTOI(raw.TOI),
		SavePct:           gamestats.SavePct(raw.Saves, raw.ShotsAgainst),
		PowerPlaySaves:    raw.PowerPlaySaves,
		ShorthandedSaves:  raw.ShorthandedSaves,
		EvenStrengthSaves: raw.EvenStrengthSaves,
	}
	if decision := strings.ToUpper(strings.TrimSpace(raw.Decision)); decision != "" {
		out.Decision = &decision
	}
	if err := t.validate.Struct(out); err != nil {
		return gamestats.GoalieLine{}, validationError(warehouse.FactGoalie.Name, key, err)
	}
	return out, nil
}

// TransformPlayer builds a dim_player row from a box score line, preferring
// landing-page values when detail is present.
func (t *Transformer) TransformPlayer(ref ExternalPlayerRef, detail *ExternalPlayerDetail) (player.Player, error) {
	key := strconv.FormatInt(ref.PlayerID, 10)
	reject := func(field, constraint string, value any) (player.Player, error) {
		return player.Player{}, &ValidationError{Entity: warehouse.DimPlayer.Name, Key: key, Field: field, Constraint: constraint, Value: value}
	}

	rawName, rawPosition, rawTeam, jersey := ref.Name, ref.Position, ref.TeamAbbrev, ref.SweaterNumber
	var shoots *string
	var birth *time.Time
	if detail != nil {
		if full := strings.TrimSpace(detail.FirstName + " " + detail.LastName); full != "" {
			rawName = full
		}
		if strings.TrimSpace(detail.Position) != "" {
			rawPosition = detail.Position
		}
		if _, ok := team.Canonical(detail.TeamAbbrev); ok {
			rawTeam = detail.TeamAbbrev
		}
		if detail.SweaterNumber != nil {
			jersey = detail.SweaterNumber
		}
		if hand := strings.ToUpper(strings.TrimSpace(detail.ShootsCatches)); hand != "" {
			shoots = &hand
		}
		if d, err := time.Parse(apiDateLayout, strings.TrimSpace(detail.BirthDate)); err == nil {
			birth = &d
		}
	}

	full := player.NormalizeName(rawName)
	if full == "" {
		return reject("full_name", "required", rawName)
	}
	position, ok := player.NormalizePosition(rawPosition)
	if !ok {
		return reject("position", "oneof", rawPosition)
	}
	abbrev, ok := team.Canonical(rawTeam)
	if !ok {
		return reject("team_abbrev", "team", rawTeam)
	}

	first, last := player.SplitName(full)
	out := player.Player{
		ID:            ref.PlayerID,
		FirstName:     first,
		LastName:      last,
		FullName:      full,
		Position:      position,
		TeamAbbrev:    abbrev,
		JerseyNumber:  jersey,
		ShootsCatches: shoots,
		BirthDate:     birth,
	}
	if err := t.validate.Struct(out); err != nil {
		return player.Player{}, validationError(warehouse.DimPlayer.Name, key, err)
	}
	return out, nil
}

// TransformTeam maps a standings row onto dim_team.
func (t *Transformer) TransformTeam(raw ExternalStanding) (team.Team, error) {
	abbrev, ok := team.Canonical(raw.TeamAbbrev)
	if !ok {
		return team.Team{}, &ValidationError{Entity: warehouse.DimTeam.Name, Key: raw.TeamAbbrev, Field: "team_abbrev", Constraint: "team", Value: raw.TeamAbbrev}
	}
	out := team.Team{
		Abbrev:     abbrev,
		FullName:   strings.Join(strings.Fields(raw.TeamName), " "),
		Division:   strings.TrimSpace(raw.Division),
		Conference: strings.TrimSpace(raw.Conference),
	}
	if err := t.validate.Struct(out); err != nil {
		return team.Team{}, validationError(warehouse.DimTeam.Name, abbrev, err)
	}
	return out, nil
}

// TransformBatch normalizes a whole date. Invalid rows become rejections and
// never stop the batch.
func (t *Transformer) TransformBatch(ctx context.Context, raw RawBatch) CanonicalBatch {
	ctx, span := startUsecaseSpan(ctx, "usecase.Transformer.TransformBatch")
	defer span.End()

	out := CanonicalBatch{Date: raw.Date, Failures: raw.Failures}
	reject := func(err error) {
		rejection := rejectionFromError(err)
		out.Rejections = append(out.Rejections, rejection)
		t.logger.DebugContext(ctx, "row rejected", "table", rejection.Table, "key", rejection.Key, "reason", rejection.Reason)
	}

	seasons := make(map[string]struct{})
	for _, rawGame := range raw.Games {
		g, err := t.TransformGame(rawGame)
		if err != nil {
			reject(err)
			continue
		}
		out.Games = append(out.Games, g)
		if _, ok := seasons[g.SeasonID]; ok {
			continue
		}
		seasons[g.SeasonID] = struct{}{}
		s, err := season.FromID(g.SeasonID)
		if err != nil {
			reject(&ValidationError{Entity: warehouse.DimSeason.Name, Key: g.SeasonID, Field: "season_id", Constraint: "season_id", Value: g.SeasonID})
			continue
		}
		out.Seasons = append(out.Seasons, s)
	}

	playerIndex := make(map[int64]int)
	addPlayer := func(ref ExternalPlayerRef) {
		var detail *ExternalPlayerDetail
		if d, ok := raw.Details[ref.PlayerID]; ok {
			detail = &d
		}
		p, err := t.TransformPlayer(ref, detail)
		if err != nil {
			reject(err)
			return
		}
		if i, ok := playerIndex[p.ID]; ok {
			out.Players[i] = p
			return
		}
		playerIndex[p.ID] = len(out.Players)
		out.Players = append(out.Players, p)
	}

	for _, box := range raw.Boxscores {
		for _, line := range box.Skaters {
			addPlayer(line.Player)
			s, err := t.TransformSkater(box.GameID, line)
			if err != nil {
				reject(err)
				continue
			}
			out.Skaters = append(out.Skaters, s)
		}
		for _, line := range box.Goalies {
			addPlayer(line.Player)
			g, err := t.TransformGoalie(box.GameID, line)
			if err != nil {
				reject(err)
				continue
			}
			out.Goalies = append(out.Goalies, g)
		}
	}

	sort.SliceStable(out.Seasons, func(i, j int) bool { return out.Seasons[i].ID < out.Seasons[j].ID })
	return out
}

func rejectionFromError(err error) Rejection {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return Rejection{Table: ve.Entity, Key: ve.Key, Reason: ve.Error()}
	}
	var ri *warehouse.ReferentialIntegrityError
	if errors.As(err, &ri) {
		return Rejection{Table: ri.Table, Key: ri.Key, Reason: ri.Error()}
	}
	return Rejection{Reason: err.Error()}
}

func factKey(playerID, gameID int64) string {
	return strconv.FormatInt(playerID, 10) + "|" + strconv.FormatInt(gameID, 10)
}
