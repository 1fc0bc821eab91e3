package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/season"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/team"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/warehouse"
	"github.com/riskibarqy/nhl-warehouse/internal/platform/logging"
)

type SeedInput struct {
	// FromStandings refreshes names, divisions and conferences from the
	// standings of Date.
	FromStandings bool
	Date          time.Time
}

type SeedResult struct {
	Teams   warehouse.UpsertResult
	Seasons warehouse.UpsertResult
}

// SeedService loads the reference dimensions games depend on.
type SeedService struct {
	provider    NHLProvider
	transformer *Transformer
	loader      *LoadService
	logger      *logging.Logger
}

func NewSeedService(provider NHLProvider, transformer *Transformer, loader *LoadService, logger *logging.Logger) *SeedService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SeedService{provider: provider, transformer: transformer, loader: loader, logger: logger}
}

func (s *SeedService) Seed(ctx context.Context, input SeedInput) (SeedResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeedService.Seed")
	defer span.End()

	if input.Date.IsZero() {
		input.Date = time.Now().UTC()
	}

	teams := team.Seed()
	if input.FromStandings {
		refreshed, err := s.standingsTeams(ctx, input.Date, teams)
		if err != nil {
			return SeedResult{}, err
		}
		teams = refreshed
	}

	var result SeedResult
	var err error
	result.Teams, err = s.loader.LoadTeams(ctx, teams)
	if err != nil {
		return result, fmt.Errorf("seed teams: %w", err)
	}

	current := season.ForDate(input.Date.Year(), int(input.Date.Month()))
	result.Seasons, err = s.loader.EnsureSeasons(ctx, []season.Season{current})
	if err != nil {
		return result, fmt.Errorf("seed season %s: %w", current.ID, err)
	}

	s.logger.InfoContext(ctx, "reference data seeded",
		"teams_written", result.Teams.Written(),
		"season_id", current.ID,
		"seasons_written", result.Seasons.Written(),
	)
	return result, nil
}

// standingsTeams overlays standings values onto base. Teams absent from the
// standings keep their seed values.
func (s *SeedService) standingsTeams(ctx context.Context, date time.Time, base []team.Team) ([]team.Team, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("%w: nhl provider is not configured", ErrDependencyUnavailable)
	}
	standings, err := s.provider.FetchStandings(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("fetch standings %s: %w", date.Format(apiDateLayout), err)
	}

	index := make(map[string]int, len(base))
	for i, t := range base {
		index[t.Abbrev] = i
	}
	for _, row := range standings {
		t, err := s.transformer.TransformTeam(row)
		if err != nil {
			s.logger.WarnContext(ctx, "skip standings row", "team_abbrev", row.TeamAbbrev, "error", err)
			continue
		}
		if i, ok := index[t.Abbrev]; ok {
			base[i] = t
		}
	}
	return base, nil
}
