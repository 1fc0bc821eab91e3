package gamestats

import (
	"math"
	"strconv"
	"strings"
)

// ParseTOI converts an "MM:SS" time-on-ice string to seconds. Anything that
// does not parse is 0.
func ParseTOI(raw string) int {
	mm, ss, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return 0
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 {
		return 0
	}
	s, err := strconv.Atoi(ss)
	if err != nil || s < 0 || s > 59 {
		return 0
	}
	return m*60 + s
}

func TOIMinutes(seconds int) float64 {
	return round2(float64(seconds) / 60)
}

// PointsPer60 is 0 when the player logged no ice time.
func PointsPer60(points, toiSeconds int) float64 {
	if toiSeconds <= 0 {
		return 0
	}
	return round2(float64(points) * 3600 / float64(toiSeconds))
}

// SavePct is NULL when the goalie faced no shots.
func SavePct(saves, shotsAgainst int) *float64 {
	if shotsAgainst <= 0 {
		return nil
	}
	v := math.Round(float64(saves)/float64(shotsAgainst)*10000) / 10000
	return &v
}

// FaceoffPct maps the API's faceoffWinningPctg; a missing or non-positive
// value means no faceoffs were taken.
func FaceoffPct(raw *float64) *float64 {
	if raw == nil || *raw <= 0 || math.IsNaN(*raw) {
		return nil
	}
	v := *raw
	if v > 1 {
		v /= 100
	}
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
