package player

import (
	"time"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/warehouse"
)

type Position string

const (
	PositionCenter    Position = "C"
	PositionLeftWing  Position = "LW"
	PositionRightWing Position = "RW"
	PositionDefense   Position = "D"
	PositionGoalie    Position = "G"
)

var upstreamPositions = map[string]Position{
	"C":  PositionCenter,
	"L":  PositionLeftWing,
	"LW": PositionLeftWing,
	"R":  PositionRightWing,
	"RW": PositionRightWing,
	"D":  PositionDefense,
	"G":  PositionGoalie,
}

// NormalizePosition maps the API's C/L/R/D/G codes onto canonical positions.
func NormalizePosition(raw string) (Position, bool) {
	p, ok := upstreamPositions[upper(raw)]
	return p, ok
}

// Player is a type-1 slowly changing dimension: a trade overwrites TeamAbbrev.
type Player struct {
	ID            int64      `json:"player_id" db:"player_id" validate:"required,gt=0"`
	FirstName     string     `json:"first_name" db:"first_name" validate:"required"`
	LastName      string     `json:"last_name" db:"last_name" validate:"required"`
	FullName      string     `json:"full_name" db:"full_name" validate:"required"`
	Position      Position   `json:"position" db:"position" validate:"oneof=C LW RW D G"`
	TeamAbbrev    string     `json:"team_abbrev" db:"team_abbrev" validate:"required,team"`
	JerseyNumber  *int       `json:"jersey_number,omitempty" db:"jersey_number" validate:"omitempty,gte=0,lte=99"`
	ShootsCatches *string    `json:"shoots_catches,omitempty" db:"shoots_catches" validate:"omitempty,oneof=L R"`
	BirthDate     *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// Row maps the player onto dim_player. UpdatedAt is set by the loader.
func (p Player) Row() warehouse.Row {
	row := warehouse.Row{
		"player_id":      p.ID,
		"first_name":     p.FirstName,
		"last_name":      p.LastName,
		"full_name":      p.FullName,
		"position":       string(p.Position),
		"team_abbrev":    p.TeamAbbrev,
		"jersey_number":  nil,
		"shoots_catches": nil,
		"birth_date":     nil,
		"updated_at":     p.UpdatedAt,
	}
	if p.JerseyNumber != nil {
		row["jersey_number"] = int64(*p.JerseyNumber)
	}
	if p.ShootsCatches != nil {
		row["shoots_catches"] = *p.ShootsCatches
	}
	if p.BirthDate != nil {
		row["birth_date"] = p.BirthDate.UTC()
	}
	return row
}
