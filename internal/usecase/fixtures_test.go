package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/gamestats"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/pipelinerun"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/season"
	"github.com/riskibarqy/nhl-warehouse/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/nhl-warehouse/internal/platform/id"
	"github.com/riskibarqy/nhl-warehouse/internal/platform/logging"
)

type fakeProvider struct {
	mu        sync.Mutex
	scores    map[string][]ExternalGame
	boxscores map[int64]ExternalBoxscore
	boxErrs   map[int64]error
	details   map[int64]ExternalPlayerDetail
	standings []ExternalStanding
	boxCalls  int
}

func (f *fakeProvider) FetchScores(_ context.Context, date time.Time) ([]ExternalGame, error) {
	return f.scores[date.Format(apiDateLayout)], nil
}

func (f *fakeProvider) FetchBoxscore(_ context.Context, gameID int64) (ExternalBoxscore, error) {
	f.mu.Lock()
	f.boxCalls++
	f.mu.Unlock()
	if err := f.boxErrs[gameID]; err != nil {
		return ExternalBoxscore{}, err
	}
	return f.boxscores[gameID], nil
}

func (f *fakeProvider) FetchPlayerLanding(_ context.Context, playerID int64) (ExternalPlayerDetail, error) {
	d, ok := f.details[playerID]
	if !ok {
		return ExternalPlayerDetail{}, &FatalFetchError{Entity: "player_landing", Err: ErrNotFound}
	}
	return d, nil
}

func (f *fakeProvider) FetchStandings(context.Context, time.Time) ([]ExternalStanding, error) {
	return f.standings, nil
}

func intPtr(v int) *int { return &v }

func day(s string) time.Time {
	t, err := time.Parse(apiDateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

const (
	gameOpener int64 = 2024020001
	secondGame int64 = 2024020030
	mcDavid    int64 = 8478402
	huberdeau  int64 = 8476456
	skinner    int64 = 8479973
)

const (
	openerDate = "2024-10-08"
	secondDate = "2024-10-10"
)

func openerGame() ExternalGame {
	return ExternalGame{
		ID:           gameOpener,
		Season:       "20242025",
		GameType:     2,
		GameDate:     openerDate,
		HomeAbbrev:   "EDM",
		AwayAbbrev:   "CGY",
		HomeScore:    intPtr(4),
		AwayScore:    intPtr(1),
		Venue:        "Rogers  Place",
		StartTimeUTC: "2024-10-09T02:00:00Z",
		State:        "OFF",
	}
}

func openerBoxscore() ExternalBoxscore {
	pct := 0.55
	return ExternalBoxscore{
		GameID: gameOpener,
		Skaters: []ExternalSkaterLine{
			{
				Player:             ExternalPlayerRef{PlayerID: mcDavid, Name: "Connor McDavid", Position: "C", TeamAbbrev: "EDM", SweaterNumber: intPtr(97)},
				Goals:              1,
				Assists:            2,
				Points:             99,
				Shots:              5,
				TOI:                "20:00",
				FaceoffWinningPctg: &pct,
			},
			{
				Player: ExternalPlayerRef{PlayerID: huberdeau, Name: "Jonathan Huberdeau", Position: "L", TeamAbbrev: "cgy"},
				Shots:  2,
				TOI:    "17:30",
			},
		},
		Goalies: []ExternalGoalieLine{
			{
				Player:       ExternalPlayerRef{PlayerID: skinner, Name: "Stuart Skinner", Position: "G", TeamAbbrev: "EDM"},
				Decision:     "W",
				ShotsAgainst: 30,
				Saves:        29,
				GoalsAgainst: 1,
				TOI:          "60:00",
			},
		},
	}
}

func openerProvider() *fakeProvider {
	return &fakeProvider{
		scores:    map[string][]ExternalGame{openerDate: {openerGame()}},
		boxscores: map[int64]ExternalBoxscore{gameOpener: openerBoxscore()},
		boxErrs:   map[int64]error{},
		details:   map[int64]ExternalPlayerDetail{},
	}
}

type testPipeline struct {
	service *PipelineService
	store   *memory.Store
	runs    *memory.PipelineRunRepository
}

func newTestPipeline(t *testing.T, provider NHLProvider, maxRejectRatio float64) testPipeline {
	t.Helper()
	return newTestPipelineWithStats(t, provider, maxRejectRatio, nil)
}

// newTestPipelineWithStats lets a test wrap the rolling repository.
func newTestPipelineWithStats(t *testing.T, provider NHLProvider, maxRejectRatio float64, wrap func(gamestats.Repository) gamestats.Repository) testPipeline {
	t.Helper()
	s, err := season.FromID("20242025")
	if err != nil {
		t.Fatalf("season: %v", err)
	}
	store := memory.NewSeededStore(s)
	runs := memory.NewPipelineRunRepository()
	logger := logging.NewNop()
	var stats gamestats.Repository = memory.NewGameStatsRepository(store)
	if wrap != nil {
		stats = wrap(stats)
	}

	service := NewPipelineService(
		NewExtractService(provider, ExtractConfig{Workers: 2}, nil, logger),
		NewTransformer(logger),
		NewLoadService(store, nil, logger),
		NewRollingService(stats, RollingConfig{Window: 10, Workers: 2}, logger),
		NewRunTracker(runs, id.Static("inv-1"), RunTrackerConfig{StartDate: day("2024-10-04"), MaxRejectRatio: maxRejectRatio}, logger),
		nil,
		nil,
		logger,
	)
	return testPipeline{service: service, store: store, runs: runs}
}

func window(start, end string) *pipelinerun.Window {
	return &pipelinerun.Window{Start: day(start), End: day(end)}
}
