package team

import (
	"strings"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/warehouse"
)

// Team is an NHL franchise keyed by its canonical abbreviation.
type Team struct {
	Abbrev     string `json:"team_abbrev" db:"team_abbrev" validate:"required,team"`
	FullName   string `json:"full_name" db:"full_name" validate:"required"`
	Division   string `json:"division" db:"division" validate:"required"`
	Conference string `json:"conference" db:"conference" validate:"required,oneof=Eastern Western"`
}

func (t Team) Row() warehouse.Row {
	return warehouse.Row{
		"team_abbrev": t.Abbrev,
		"full_name":   t.FullName,
		"division":    t.Division,
		"conference":  t.Conference,
	}
}

// alternates maps relocated and legacy abbreviations onto canonical ones.
var alternates = map[string]string{
	"ARI": "UTA",
	"MON": "MTL",
	"NAS": "NSH",
	"SJ":  "SJS",
	"TB":  "TBL",
	"LA":  "LAK",
	"NJ":  "NJD",
	"WAS": "WSH",
	"VEG": "VGK",
	"CLB": "CBJ",
	"CAL": "CGY",
}

var canonical = func() map[string]Team {
	out := make(map[string]Team, len(seed))
	for _, t := range seed {
		out[t.Abbrev] = t
	}
	return out
}()

// Canonical resolves an abbreviation case-insensitively.
func Canonical(abbrev string) (string, bool) {
	key := strings.ToUpper(strings.TrimSpace(abbrev))
	if alt, ok := alternates[key]; ok {
		key = alt
	}
	if _, ok := canonical[key]; !ok {
		return "", false
	}
	return key, true
}

// Seed returns the 32 current franchises.
func Seed() []Team {
	return append([]Team(nil), seed...)
}

var seed = []Team{
	{"BOS", "Boston Bruins", "Atlantic", "Eastern"},
	{"BUF", "Buffalo Sabres", "Atlantic", "Eastern"},
	{"DET", "Detroit Red Wings", "Atlantic", "Eastern"},
	{"FLA", "Florida Panthers", "Atlantic", "Eastern"},
	{"MTL", "Montréal Canadiens", "Atlantic", "Eastern"},
	{"OTT", "Ottawa Senators", "Atlantic", "Eastern"},
	{"TBL", "Tampa Bay Lightning", "Atlantic", "Eastern"},
	{"TOR", "Toronto Maple Leafs", "Atlantic", "Eastern"},
	{"CAR", "Carolina Hurricanes", "Metropolitan", "Eastern"},
	{"CBJ", "Columbus Blue Jackets", "Metropolitan", "Eastern"},
	{"NJD", "New Jersey Devils", "Metropolitan", "Eastern"},
	{"NYI", "New York Islanders", "Metropolitan", "Eastern"},
	{"NYR", "New York Rangers", "Metropolitan", "Eastern"},
	{"PHI", "Philadelphia Flyers", "Metropolitan", "Eastern"},
	{"PIT", "Pittsburgh Penguins", "Metropolitan", "Eastern"},
	{"WSH", "Washington Capitals", "Metropolitan", "Eastern"},
	{"CHI", "Chicago Blackhawks", "Central", "Western"},
	{"COL", "Colorado Avalanche", "Central", "Western"},
	{"DAL", "Dallas Stars", "Central", "Western"},
	{"MIN", "Minnesota Wild", "Central", "Western"},
	{"NSH", "Nashville Predators", "Central", "Western"},
	{"STL", "St. Louis Blues", "Central", "Western"},
	{"UTA", "Utah Hockey Club", "Central", "Western"},
	{"WPG", "Winnipeg Jets", "Central", "Western"},
	{"ANA", "Anaheim Ducks", "Pacific", "Western"},
	{"CGY", "Calgary Flames", "Pacific", "Western"},
	{"EDM", "Edmonton Oilers", "Pacific", "Western"},
	{"LAK", "Los Angeles Kings", "Pacific", "Western"},
	{"SJS", "San Jose Sharks", "Pacific", "Western"},
	{"SEA", "Seattle Kraken", "Pacific", "Western"},
	{"VAN", "Vancouver Canucks", "Pacific", "Western"},
	{"VGK", "Vegas Golden Knights", "Pacific", "Western"},
}
