package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/game"
	"github.com/riskibarqy/nhl-warehouse/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	entityScores    = "scores"
	entityBoxscore  = "boxscore"
	entityLanding   = "player_landing"
	entityStandings = "standings"

	defaultFetchWorkers = 4
)

type ExtractConfig struct {
	Workers       int
	PlayerDetails bool
}

type ExtractService struct {
	provider NHLProvider
	cfg      ExtractConfig
	observer PipelineObserver
	logger   *logging.Logger
}

func NewExtractService(provider NHLProvider, cfg ExtractConfig, observer PipelineObserver, logger *logging.Logger) *ExtractService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultFetchWorkers
	}
	return &ExtractService{
		provider: provider,
		cfg:      cfg,
		observer: observerOrNop(observer),
		logger:   logger,
	}
}

// ExtractDate fetches the games of one date and the box scores of the
// completed ones. A failed box score is recorded on the batch and does not
// stop its siblings.
func (s *ExtractService) ExtractDate(ctx context.Context, date time.Time) (RawBatch, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ExtractService.ExtractDate", attribute.String("date", date.Format(apiDateLayout)))
	defer span.End()

	if s.provider == nil {
		return RawBatch{}, fmt.Errorf("%w: nhl provider is not configured", ErrDependencyUnavailable)
	}

	batch := RawBatch{Date: date}
	games, err := s.provider.FetchScores(ctx, date)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return batch, ctxErr
		}
		s.recordFailure(ctx, &batch, entityScores, date.Format(apiDateLayout), err)
		return batch, nil
	}

	completed := make([]int64, 0, len(games))
	for _, g := range games {
		if !game.TrackedType(g.GameType) {
			continue
		}
		batch.Games = append(batch.Games, g)
		if state, ok := game.NormalizeState(g.State); ok && state.Completed() {
			completed = append(completed, g.ID)
		}
	}

	var mu sync.Mutex
	err = s.fanOut(len(completed), func(i int) {
		gameID := completed[i]
		box, err := s.provider.FetchBoxscore(ctx, gameID)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			s.recordFailure(ctx, &batch, entityBoxscore, strconv.FormatInt(gameID, 10), err)
			return
		}
		batch.Boxscores = append(batch.Boxscores, box)
		s.logger.DebugContext(ctx, "boxscore fetched",
			"game_id", gameID,
			"skaters", len(box.Skaters),
			"goalies", len(box.Goalies),
		)
	})
	if err != nil {
		return batch, err
	}
	sort.Slice(batch.Boxscores, func(i, j int) bool { return batch.Boxscores[i].GameID < batch.Boxscores[j].GameID })

	if s.cfg.PlayerDetails {
		if err := s.enrichPlayers(ctx, &batch); err != nil {
			return batch, err
		}
	}
	if err := ctx.Err(); err != nil {
		return batch, err
	}

	s.logger.InfoContext(ctx, "date extracted",
		"date", date.Format(apiDateLayout),
		"games", len(batch.Games),
		"boxscores", len(batch.Boxscores),
		"failures", len(batch.Failures),
		"rows_extracted", batch.RowsExtracted(),
	)
	return batch, nil
}

// enrichPlayers attaches landing-page details. A missing landing page only
// costs the enrichment fields.
func (s *ExtractService) enrichPlayers(ctx context.Context, batch *RawBatch) error {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, box := range batch.Boxscores {
		for _, line := range box.Skaters {
			if _, ok := seen[line.Player.PlayerID]; !ok {
				seen[line.Player.PlayerID] = struct{}{}
				ids = append(ids, line.Player.PlayerID)
			}
		}
		for _, line := range box.Goalies {
			if _, ok := seen[line.Player.PlayerID]; !ok {
				seen[line.Player.PlayerID] = struct{}{}
				ids = append(ids, line.Player.PlayerID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	details := make(map[int64]ExternalPlayerDetail, len(ids))
	var mu sync.Mutex
	err := s.fanOut(len(ids), func(i int) {
		detail, err := s.provider.FetchPlayerLanding(ctx, ids[i])
		if err != nil {
			s.observer.FetchFailed(entityLanding, fetchErrorKind(err))
			s.logger.WarnContext(ctx, "player landing fetch failed", "player_id", ids[i], "error", err)
			return
		}
		mu.Lock()
		details[ids[i]] = detail
		mu.Unlock()
	})
	if err != nil {
		return err
	}
	batch.Details = details
	return nil
}

// fanOut runs task for every index on a bounded ants pool and waits.
func (s *ExtractService) fanOut(n int, task func(i int)) error {
	if n == 0 {
		return nil
	}
	workers := s.cfg.Workers
	if workers > n {
		workers = n
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return fmt.Errorf("create fetch worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			task(i)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return fmt.Errorf("submit fetch task: %w", err)
		}
	}
	wg.Wait()
	return nil
}

func (s *ExtractService) recordFailure(ctx context.Context, batch *RawBatch, entity, key string, err error) {
	batch.Failures = append(batch.Failures, FetchFailure{Entity: entity, Key: key, Message: err.Error()})
	s.observer.FetchFailed(entity, fetchErrorKind(err))
	s.logger.ErrorContext(ctx, "entity fetch failed", "entity", entity, "key", key, "error", err)
}

func fetchErrorKind(err error) string {
	var fatal *FatalFetchError
	if errors.As(err, &fatal) {
		return "fatal"
	}
	var transient *TransientFetchError
	if errors.As(err, &transient) {
		return "transient"
	}
	if errors.Is(err, ErrDependencyUnavailable) {
		return "unavailable"
	}
	return "unknown"
}
