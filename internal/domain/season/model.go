package season

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/warehouse"
)

const (
	TypeRegular  = "regular"
	TypePlayoffs = "playoffs"
)

var idPattern = regexp.MustCompile(`^\d{8}$`)

// Season is an NHL season such as 20242025. Rows are immutable once inserted.
type Season struct {
	ID        string `json:"season_id" db:"season_id" validate:"required,season_id"`
	StartYear int    `json:"start_year" db:"start_year" validate:"gte=1917"`
	EndYear   int    `json:"end_year" db:"end_year" validate:"gtfield=StartYear"`
	Type      string `json:"season_type" db:"season_type" validate:"oneof=regular playoffs"`
}

// ValidID reports whether id is eight digits whose second year follows the first.
func ValidID(id string) bool {
	_, _, err := splitID(id)
	return err == nil
}

// FromID derives a regular season from its eight-digit id.
func FromID(id string) (Season, error) {
	start, end, err := splitID(id)
	if err != nil {
		return Season{}, err
	}
	return Season{ID: id, StartYear: start, EndYear: end, Type: TypeRegular}, nil
}

// ForDate returns the season a date falls in; seasons roll over in September.
func ForDate(year int, month int) Season {
	start := year
	if month < 9 {
		start = year - 1
	}
	id := fmt.Sprintf("%d%d", start, start+1)
	return Season{ID: id, StartYear: start, EndYear: start + 1, Type: TypeRegular}
}

func splitID(id string) (int, int, error) {
	if !idPattern.MatchString(id) {
		return 0, 0, fmt.Errorf("season id %q must be 8 digits", id)
	}
	start, _ := strconv.Atoi(id[:4])
	end, _ := strconv.Atoi(id[4:])
	if end != start+1 {
		return 0, 0, fmt.Errorf("season id %q: end year must follow start year", id)
	}
	return start, end, nil
}

func (s Season) Row() warehouse.Row {
	return warehouse.Row{
		"season_id":   s.ID,
		"start_year":  s.StartYear,
		"end_year":    s.EndYear,
		"season_type": s.Type,
	}
}
