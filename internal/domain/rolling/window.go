// Package rolling computes trailing per-player averages over ordered game
// history.
package rolling

import (
	"math"
	"sort"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/gamestats"
)

const DefaultWindow = 10

// Trailing returns, for each index i, the mean of the non-NULL values in
// values[max(0,i-n+1)..i]. A window with no values yields NULL. Means are
// not rounded.
func Trailing(values []*float64, n int) []*float64 {
	if n <= 0 {
		n = DefaultWindow
	}
	out := make([]*float64, len(values))
	for i := range values {
		var sum float64
		var count int
		for _, v := range values[max(0, i-n+1) : i+1] {
			if v != nil {
				sum += *v
				count++
			}
		}
		if count > 0 {
			mean := sum / float64(count)
			out[i] = &mean
		}
	}
	return out
}

// SortHistory orders rows by game date, then game id.
func SortHistory(rows []gamestats.HistoryRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].GameDate.Equal(rows[j].GameDate) {
			return rows[i].GameDate.Before(rows[j].GameDate)
		}
		return rows[i].GameID < rows[j].GameID
	})
}

// Calculator recomputes rolling columns from the earliest touched game forward.
type Calculator struct {
	Window int
}

func NewCalculator(window int) Calculator {
	if window <= 0 {
		window = DefaultWindow
	}
	return Calculator{Window: window}
}

// Plan returns updates for rows at or after the earliest game in touched whose
// stored rolling values differ from the recomputed ones. A nil touched set
// recomputes the whole history.
func (c Calculator) Plan(spec gamestats.RollingSpec, history []gamestats.HistoryRow, touched map[int64]struct{}) []gamestats.RollingUpdate {
	if len(history) == 0 {
		return nil
	}
	rows := append([]gamestats.HistoryRow(nil), history...)
	SortHistory(rows)

	from := 0
	if touched != nil {
		from = -1
		for i, r := range rows {
			if _, ok := touched[r.GameID]; ok {
				from = i
				break
			}
		}
		if from < 0 {
			return nil
		}
	}

	computed := make(map[string][]*float64, len(spec.Stats))
	for _, stat := range spec.Stats {
		series := make([]*float64, len(rows))
		for i, r := range rows {
			series[i] = r.Values[stat]
		}
		computed[stat] = Trailing(series, c.Window)
	}

	var out []gamestats.RollingUpdate
	for i := from; i < len(rows); i++ {
		values := make(map[string]*float64, len(spec.Stats))
		dirty := false
		for _, stat := range spec.Stats {
			next := computed[stat][i]
			values[stat] = next
			if !sameValue(rows[i].Rolling[stat], next) {
				dirty = true
			}
		}
		if dirty {
			out = append(out, gamestats.RollingUpdate{GameID: rows[i].GameID, Values: values})
		}
	}
	return out
}

func sameValue(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return math.Abs(*a-*b) < 1e-9
}
