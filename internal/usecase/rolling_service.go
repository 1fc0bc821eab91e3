package usecase

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/gamestats"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/rolling"
	"github.com/riskibarqy/nhl-warehouse/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const defaultRollingWorkers = 4

type RollingConfig struct {
	Window  int
	Workers int
}

// RollingService recomputes trailing averages for players whose facts were
// loaded. Work for one player is serialized; players run in parallel.
type RollingService struct {
	repo    gamestats.Repository
	calc    rolling.Calculator
	workers int
	locks   *keyedMutex
	logger  *logging.Logger
}

func NewRollingService(repo gamestats.Repository, cfg RollingConfig, logger *logging.Logger) *RollingService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultRollingWorkers
	}
	return &RollingService{
		repo:    repo,
		calc:    rolling.NewCalculator(cfg.Window),
		workers: cfg.Workers,
		locks:   newKeyedMutex(),
		logger:  logger,
	}
}

// Recompute refreshes rolling columns from each player's earliest touched
// game forward and returns the number of fact rows written. A nil game set
// for a player rebuilds that player's whole history.
func (s *RollingService) Recompute(ctx context.Context, kind gamestats.Kind, touched map[int64]map[int64]struct{}) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RollingService.Recompute",
		attribute.String("kind", string(kind)),
		attribute.Int("players", len(touched)),
	)
	defer span.End()

	if len(touched) == 0 {
		return 0, nil
	}
	if s.repo == nil {
		return 0, fmt.Errorf("%w: rolling repository is not configured", ErrDependencyUnavailable)
	}

	spec := gamestats.SpecFor(kind)
	var written atomic.Int64
	p := pool.New().WithMaxGoroutines(s.workers).WithContext(ctx)
	for playerID, games := range touched {
		p.Go(func(ctx context.Context) error {
			unlock := s.locks.lock(string(kind) + ":" + strconv.FormatInt(playerID, 10))
			defer unlock()

			n, err := s.repo.Recompute(ctx, spec, playerID, func(history []gamestats.HistoryRow) []gamestats.RollingUpdate {
				return s.calc.Plan(spec, history, games)
			})
			if err != nil {
				return fmt.Errorf("recompute %s rolling player_id=%d: %w", kind, playerID, err)
			}
			written.Add(int64(n))
			s.logger.DebugContext(ctx, "rolling updated", "kind", kind, "player_id", playerID, "rows", n)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return int(written.Load()), err
	}
	return int(written.Load()), nil
}

// keyedMutex hands out one mutex per key and drops it once nobody holds it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedEntry)}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
