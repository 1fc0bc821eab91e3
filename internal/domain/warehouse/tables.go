package warehouse

// GameStateOrder is the lifecycle of dim_game.game_state.
var GameStateOrder = []string{"FUT", "LIVE", "OFF", "FINAL"}

var DimSeason = Table{
	Name: "dim_season",
	Key:  []string{"season_id"},
	Columns: []Column{
		{Name: "season_id", Merge: InsertOnly},
		{Name: "start_year", Merge: InsertOnly},
		{Name: "end_year", Merge: InsertOnly},
		{Name: "season_type", Merge: InsertOnly},
	},
}

var DimTeam = Table{
	Name: "dim_team",
	Key:  []string{"team_abbrev"},
	Columns: []Column{
		{Name: "team_abbrev", Merge: InsertOnly},
		{Name: "full_name"},
		{Name: "division"},
		{Name: "conference"},
	},
}

var DimPlayer = Table{
	Name: "dim_player",
	Key:  []string{"player_id"},
	Columns: []Column{
		{Name: "player_id", Merge: InsertOnly},
		{Name: "first_name"},
		{Name: "last_name"},
		{Name: "full_name"},
		{Name: "position"},
		{Name: "team_abbrev"},
		{Name: "jersey_number", Merge: Coalesce},
		{Name: "shoots_catches", Merge: Coalesce},
		{Name: "birth_date", Merge: Coalesce},
		{Name: "updated_at", Merge: Touch},
	},
	References: []Reference{
		{Column: "team_abbrev", Table: "dim_team"},
	},
}

var DimGame = Table{
	Name: "dim_game",
	Key:  []string{"game_id"},
	Columns: []Column{
		{Name: "game_id", Merge: InsertOnly},
		{Name: "season_id"},
		{Name: "game_type"},
		{Name: "game_date"},
		{Name: "home_team"},
		{Name: "away_team"},
		{Name: "home_score", Merge: Coalesce},
		{Name: "away_score", Merge: Coalesce},
		{Name: "venue", Merge: Coalesce},
		{Name: "start_time_utc", Merge: Coalesce},
		{Name: "game_state", Merge: ForwardOnly, Order: GameStateOrder},
	},
	References: []Reference{
		{Column: "season_id", Table: "dim_season"},
		{Column: "home_team", Table: "dim_team"},
		{Column: "away_team", Table: "dim_team"},
	},
}

var FactSkater = Table{
	Name: "fact_game_skater_stats",
	Key:  []string{"player_id", "game_id"},
	Columns: []Column{
		{Name: "player_id", Merge: InsertOnly},
		{Name: "game_id", Merge: InsertOnly},
		{Name: "team_abbrev"},
		{Name: "goals"},
		{Name: "assists"},
		{Name: "points"},
		{Name: "shots"},
		{Name: "hits"},
		{Name: "blocked_shots"},
		{Name: "pim"},
		{Name: "toi_seconds"},
		{Name: "toi_minutes"},
		{Name: "points_per_60"},
		{Name: "plus_minus"},
		{Name: "power_play_goals"},
		{Name: "power_play_points"},
		{Name: "shorthanded_goals"},
		{Name: "faceoff_pct"},
	},
	References: factReferences,
}

var FactGoalie = Table{
	Name: "fact_game_goalie_stats",
	Key:  []string{"player_id", "game_id"},
	Columns: []Column{
		{Name: "player_id", Merge: InsertOnly},
		{Name: "game_id", Merge: InsertOnly},
		{Name: "team_abbrev"},
		{Name: "decision"},
		{Name: "shots_against"},
		{Name: "saves"},
		{Name: "goals_against"},
		{Name: "toi_seconds"},
		{Name: "save_pct"},
		{Name: "power_play_saves"},
		{Name: "shorthanded_saves"},
		{Name: "even_strength_saves"},
	},
	References: factReferences,
}

var factReferences = []Reference{
	{Column: "player_id", Table: "dim_player"},
	{Column: "game_id", Table: "dim_game"},
	{Column: "team_abbrev", Table: "dim_team"},
}

// Tables lists every upsert target, parents before children.
func Tables() []Table {
	return []Table{DimSeason, DimTeam, DimPlayer, DimGame, FactSkater, FactGoalie}
}

func TableByName(name string) (Table, bool) {
	for _, t := range Tables() {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}
