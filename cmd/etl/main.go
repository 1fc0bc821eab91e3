// Command etl loads NHL game statistics into the star schema warehouse.
//
// Usage:
//
//	nhl-etl run
//	nhl-etl run --date 2025-01-10
//	nhl-etl run --date-range 2025-01-01,2025-01-07 --backend memory
//	nhl-etl run --stage extract --date 2025-01-10
//	nhl-etl seed --from-standings
//	nhl-etl runs --limit 20
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/nhl-warehouse/internal/app"
	"github.com/riskibarqy/nhl-warehouse/internal/config"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/pipelinerun"
	"github.com/riskibarqy/nhl-warehouse/internal/platform/logging"
	"github.com/riskibarqy/nhl-warehouse/internal/usecase"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "nhl-etl",
		Short:         "NHL statistics warehouse ETL",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	var backend string
	root.PersistentFlags().StringVar(&backend, "backend", "", "Warehouse backend (postgres|memory); defaults to DB_BACKEND")

	root.AddCommand(runCmd(&backend))
	root.AddCommand(seedCmd(&backend))
	root.AddCommand(runsCmd(&backend))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		logging.Default().Error("etl failed", "error", err)
		_ = logging.Default().Sync()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	_ = logging.Default().Sync()
}

func runCmd(backend *string) *cobra.Command {
	var (
		window windowFlags
		stage  string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract, transform and load the pending game dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedStage, err := usecase.ParseStage(stage)
			if err != nil {
				return err
			}
			explicit, err := window.resolve(time.Now())
			if err != nil {
				return err
			}
			return withPipeline(cmd.Context(), *backend, func(ctx context.Context, p *app.Pipeline, logger *logging.Logger) error {
				report, err := p.Runner.Run(ctx, usecase.RunInput{Window: explicit, Stage: parsedStage, DryRun: dryRun})
				logger.InfoContext(ctx, "run finished",
					"run_id", report.RunID,
					"status", string(report.Status),
					"window_start", report.Window.Start.Format(time.DateOnly),
					"run_date", report.Window.End.Format(time.DateOnly),
					"rows_extracted", report.Counts.Extracted,
					"rows_loaded", report.Counts.Loaded,
					"rows_rejected", report.Counts.Rejected,
					"rolling_updated", report.Rolling,
					"fetch_failures", len(report.Failures),
				)
				for _, path := range report.Staged {
					fmt.Fprintln(cmd.OutOrStdout(), path)
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&window.date, "date", "", "Process a single date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&window.dateRange, "date-range", nil, "Process an inclusive range: START,END")
	cmd.Flags().StringVar(&window.windowStart, "window-start", "", "Override the incremental window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&stage, "stage", string(usecase.StageAll), "Stage to run: extract|transform|load|all")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Extract and transform without loading or tracking")
	return cmd
}

func seedCmd(backend *string) *cobra.Command {
	var (
		fromStandings bool
		date          string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the team and season dimensions",
		RunE: func(cmd *cobra.Command, args []string) error {
			input := usecase.SeedInput{FromStandings: fromStandings}
			if date != "" {
				day, err := config.ParseDate(date)
				if err != nil {
					return fmt.Errorf("%w: --date: %v", usecase.ErrInvalidInput, err)
				}
				input.Date = day
			}
			return withPipeline(cmd.Context(), *backend, func(ctx context.Context, p *app.Pipeline, logger *logging.Logger) error {
				result, err := p.Seeder.Seed(ctx, input)
				if err != nil {
					return err
				}
				logger.InfoContext(ctx, "seed finished",
					"teams_inserted", result.Teams.Inserted,
					"teams_updated", result.Teams.Updated,
					"seasons_inserted", result.Seasons.Inserted,
				)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&fromStandings, "from-standings", false, "Refresh team names, divisions and conferences from the standings")
	cmd.Flags().StringVar(&date, "date", "", "Standings and season date (YYYY-MM-DD); defaults to today")
	return cmd
}

func runsCmd(backend *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(cmd.Context(), *backend, func(ctx context.Context, p *app.Pipeline, _ *logging.Logger) error {
				runs, err := p.Runs.List(ctx, limit)
				if err != nil {
					return err
				}
				return writeRuns(cmd.OutOrStdout(), runs)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of runs to show")
	return cmd
}

// withPipeline loads config, starts observability and tears everything down
// once fn returns, flushing even when the run was interrupted.
func withPipeline(ctx context.Context, backend string, fn func(context.Context, *app.Pipeline, *logging.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if backend != "" {
		if cfg.DBBackend, err = config.ParseBackend(backend); err != nil {
			return err
		}
	}

	logger := logging.NewJSON(cfg.LogLevel)
	if cfg.LogConsole {
		logger = logging.NewConsole(cfg.LogLevel)
	}
	logger = logger.With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logging.SetDefault(logger)

	shutdown, err := app.InitObservability(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if shutdownErr := shutdown(flushCtx); shutdownErr != nil {
			logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	pipeline, err := app.NewPipeline(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if closeErr := pipeline.Close(closeCtx); closeErr != nil {
			logger.Warn("pipeline close failed", "error", closeErr)
		}
	}()

	return fn(ctx, pipeline, logger)
}

func writeRuns(w io.Writer, runs []pipelinerun.Run) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tWINDOW\tSTARTED\tEXTRACTED\tLOADED\tREJECTED\tERROR")
	for _, run := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s..%s\t%s\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.Status,
			run.WindowStart.Format(time.DateOnly),
			run.RunDate.Format(time.DateOnly),
			run.StartedAt.UTC().Format(time.RFC3339),
			run.RowsExtracted,
			run.RowsLoaded,
			run.RowsRejected,
			truncate(run.ErrorMessage, 80),
		)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write runs table: %w", err)
	}
	return nil
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
