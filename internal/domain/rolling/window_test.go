package rolling

import (
	"testing"
	"time"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/gamestats"
)

func f(v float64) *float64 { return &v }

func TestTrailing_PrefixAndWindow(t *testing.T) {
	values := make([]*float64, 12)
	for i := range values {
		values[i] = f(float64(i + 1))
	}
	out := Trailing(values, 10)

	if *out[0] != 1 {
		t.Fatalf("first game average is the game itself, got %v", *out[0])
	}
	if *out[4] != 3 {
		t.Fatalf("prefix window of 5 should average 1..5, got %v", *out[4])
	}
	// G12 = mean(G3..G12)
	if *out[11] != 7.5 {
		t.Fatalf("expected mean(3..12)=7.5, got %v", *out[11])
	}
}

func TestTrailing_SkipsNulls(t *testing.T) {
	out := Trailing([]*float64{nil, f(0.9), nil, f(0.8)}, 2)
	if out[0] != nil {
		t.Fatalf("window without values is NULL")
	}
	if *out[1] != 0.9 || *out[2] != 0.9 {
		t.Fatalf("NULLs are skipped in the mean: %v %v", *out[1], *out[2])
	}
	if *out[3] != 0.8 {
		t.Fatalf("expected only the last value in window, got %v", *out[3])
	}
}

func TestTrailing_KeepsExactMean(t *testing.T) {
	out := Trailing([]*float64{f(1), f(0), f(0)}, 10)
	if *out[2] != 1.0/3 {
		t.Fatalf("expected the unrounded mean 1/3, got %v", *out[2])
	}
	if *out[1] != 0.5 {
		t.Fatalf("expected 0.5, got %v", *out[1])
	}
}

func history(n int) []gamestats.HistoryRow {
	day := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]gamestats.HistoryRow, n)
	for i := range rows {
		rows[i] = gamestats.HistoryRow{
			GameID:   int64(100 + i),
			GameDate: day.AddDate(0, 0, i),
			Values:   map[string]*float64{"goals_against": f(float64(i % 3)), "save_pct": f(0.9)},
			Rolling:  map[string]*float64{},
		}
	}
	return rows
}

func TestCalculator_RecomputesFromEarliestTouched(t *testing.T) {
	rows := history(5)
	calc := NewCalculator(3)

	all := calc.Plan(gamestats.GoalieRolling, rows, nil)
	if len(all) != 5 {
		t.Fatalf("expected every row to be written on first pass, got %d", len(all))
	}
	for i, u := range all {
		rows[i].Rolling = u.Values
	}

	if again := calc.Plan(gamestats.GoalieRolling, rows, nil); len(again) != 0 {
		t.Fatalf("unchanged history must produce no writes, got %d", len(again))
	}

	rows[3].Values["goals_against"] = f(6)
	updates := calc.Plan(gamestats.GoalieRolling, rows, map[int64]struct{}{103: {}})
	if len(updates) != 2 || updates[0].GameID != 103 || updates[1].GameID != 104 {
		t.Fatalf("expected rows 103 and 104 to change, got %+v", updates)
	}
}

func TestCalculator_OrdersByDateThenGameID(t *testing.T) {
	day := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	rows := []gamestats.HistoryRow{
		{GameID: 3, GameDate: day, Values: map[string]*float64{"goals_against": f(4)}},
		{GameID: 1, GameDate: day.AddDate(0, 0, 1), Values: map[string]*float64{"goals_against": f(2)}},
		{GameID: 2, GameDate: day, Values: map[string]*float64{"goals_against": f(0)}},
	}
	updates := NewCalculator(10).Plan(gamestats.GoalieRolling, rows, nil)
	if len(updates) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(updates))
	}
	if updates[0].GameID != 2 || updates[1].GameID != 3 || updates[2].GameID != 1 {
		t.Fatalf("unexpected order: %d %d %d", updates[0].GameID, updates[1].GameID, updates[2].GameID)
	}
	if got := *updates[1].Values["goals_against"]; got != 2 {
		t.Fatalf("expected mean(0,4)=2, got %v", got)
	}
	if updates[0].Values["save_pct"] != nil {
		t.Fatalf("missing stat yields NULL")
	}
}
