package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nhl-warehouse/external/nhlapi"
	"github.com/riskibarqy/nhl-warehouse/internal/config"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/gamestats"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/pipelinerun"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/season"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/warehouse"
	"github.com/riskibarqy/nhl-warehouse/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/nhl-warehouse/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/nhl-warehouse/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/nhl-warehouse/internal/infrastructure/staging"
	"github.com/riskibarqy/nhl-warehouse/internal/observability"
	basecache "github.com/riskibarqy/nhl-warehouse/internal/platform/cache"
	idgen "github.com/riskibarqy/nhl-warehouse/internal/platform/id"
	"github.com/riskibarqy/nhl-warehouse/internal/platform/logging"
	"github.com/riskibarqy/nhl-warehouse/internal/platform/resilience"
	"github.com/riskibarqy/nhl-warehouse/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Pipeline is the wired ETL: one instance per CLI invocation.
type Pipeline struct {
	Runner  *usecase.PipelineService
	Seeder  *usecase.SeedService
	Runs    *usecase.RunTracker
	Metrics *observability.PipelineMetrics

	db *sqlx.DB
}

type backend struct {
	store warehouse.Store
	stats gamestats.Repository
	runs  pipelinerun.Repository
	db    *sqlx.DB
}

// NewPipeline builds every service against the backend named by
// cfg.DBBackend. The postgres backend is seeded with the franchises on first
// use; the memory backend starts seeded with the teams and current season.
func NewPipeline(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = logging.Default()
	}

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewPipelineMetrics(cfg.PrometheusPushgatewayURL, cfg.PrometheusJobName)
	store := cache.NewStore(b.store, basecache.NewStore[bool](cfg.CacheTTL))

	client := nhlapi.NewClient(nhlapi.ClientConfig{
		HTTPClient: &http.Client{
			Timeout:   cfg.NHLAPITimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		BaseURL:      cfg.NHLAPIBaseURL,
		MaxRetries:   cfg.NHLAPIMaxRetries,
		RetryBackoff: cfg.NHLAPIRetryBackoff,
		RateLimitRPS: cfg.NHLAPIRateLimitRPS,
		Logger:       logger.Named("nhlapi"),
		CircuitBreaker: resilience.BreakerConfig{
			Enabled:          cfg.NHLAPICircuitEnabled,
			FailureThreshold: cfg.NHLAPICircuitFailureCount,
			OpenTimeout:      cfg.NHLAPICircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.NHLAPICircuitHalfOpenMax,
		},
	})

	transformer := usecase.NewTransformer(logger.Named("transform"))
	loader := usecase.NewLoadService(store, metrics, logger.Named("load"))
	extractor := usecase.NewExtractService(client, usecase.ExtractConfig{
		Workers:       cfg.ETLFetchWorkers,
		PlayerDetails: cfg.ETLPlayerDetails,
	}, metrics, logger.Named("extract"))
	rolling := usecase.NewRollingService(b.stats, usecase.RollingConfig{
		Window:  cfg.ETLRollingWindow,
		Workers: cfg.ETLRollingWorkers,
	}, logger.Named("rolling"))
	tracker := usecase.NewRunTracker(b.runs, idgen.NewUUIDGenerator(), usecase.RunTrackerConfig{
		StartDate:      cfg.ETLStartDate,
		MaxRejectRatio: cfg.ETLMaxRejectRatio,
	}, logger.Named("runs"))

	return &Pipeline{
		Runner: usecase.NewPipelineService(
			extractor,
			transformer,
			loader,
			rolling,
			tracker,
			staging.NewFiles(cfg.ETLStagingDir),
			metrics,
			logger.Named("pipeline"),
		),
		Seeder:  usecase.NewSeedService(client, transformer, loader, logger.Named("seed")),
		Runs:    tracker,
		Metrics: metrics,
		db:      b.db,
	}, nil
}

func openBackend(ctx context.Context, cfg config.Config, logger *logging.Logger) (backend, error) {
	switch cfg.DBBackend {
	case config.BackendMemory:
		now := time.Now().UTC()
		store := memory.NewSeededStore(season.ForDate(now.Year(), int(now.Month())))
		logger.Info("using memory warehouse", "reason", "DB_BACKEND=memory")
		return backend{
			store: store,
			stats: memory.NewGameStatsRepository(store),
			runs:  memory.NewPipelineRunRepository(),
		}, nil
	case config.BackendPostgres:
		db, err := OpenDatabase(ctx, cfg)
		if err != nil {
			return backend{}, err
		}
		store := postgres.NewStore(db)
		if err := postgres.BootstrapSeed(ctx, store); err != nil {
			_ = db.Close()
			return backend{}, err
		}
		return backend{
			store: store,
			stats: postgres.NewGameStatsRepository(db),
			runs:  postgres.NewPipelineRunRepository(db),
			db:    db,
		}, nil
	default:
		return backend{}, fmt.Errorf("unsupported warehouse backend %q", cfg.DBBackend)
	}
}

// Close pushes the run metrics and releases the database handle.
func (p *Pipeline) Close(ctx context.Context) error {
	var errs []error
	if err := p.Metrics.Push(ctx); err != nil {
		errs = append(errs, fmt.Errorf("push metrics: %w", err))
	}
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close warehouse db: %w", err))
		}
	}
	return errors.Join(errs...)
}

// InitObservability starts tracing and profiling. The returned shutdown
// flushes both and is safe to call once.
func InitObservability(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}
	stopProfiling, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		_ = shutdownTracing(context.Background())
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}

	return func(ctx context.Context) error {
		return errors.Join(stopProfiling(), shutdownTracing(ctx))
	}, nil
}
