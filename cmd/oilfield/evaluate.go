package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/oilfield/internal/adapters/dataset"
	"github.com/alejandrodnm/oilfield/internal/adapters/metrics"
	"github.com/alejandrodnm/oilfield/internal/adapters/notify"
	"github.com/alejandrodnm/oilfield/internal/adapters/regression"
	"github.com/alejandrodnm/oilfield/internal/application/evaluator"
	"github.com/alejandrodnm/oilfield/internal/domain"
	"github.com/spf13/cobra"
)

var (
	parallel bool
	dryRun   bool
	table    bool
	detail   bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate every configured region and recommend one",
	RunE:  runEvaluate,
}

func init() {
	evaluateCmd.Flags().BoolVar(&parallel, "parallel", false, "evaluate regions concurrently (same result as sequential)")
	evaluateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not persist the run")
	evaluateCmd.Flags().BoolVar(&table, "table", true, "print the full table (false: one line per region)")
	evaluateCmd.Flags().BoolVar(&detail, "detail", false, "print break-even analysis per region")
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	evalCfg := evaluator.Config{
		Params:   cfg.Params(),
		Parallel: parallel || cfg.Evaluation.Parallel,
		Workers:  cfg.Evaluation.Workers,
	}

	slog.Info("oilfield starting",
		"config", configPath,
		"regions", len(cfg.Regions),
		"parallel", evalCfg.Parallel,
		"dry_run", dryRun,
		"storage", cfg.Storage.Driver,
	)

	httpSrc := dataset.NewHTTPSource(cfg.Data.RatePerSec, cfg.Data.Burst, cfg.DataTimeout())
	source := dataset.NewSource(httpSrc, cfg.Data.BaseURL)

	ev, err := evaluator.New(evalCfg, source, regression.NewLinear())
	if err != nil {
		return err
	}

	run, runErr := ev.Run(ctx, cfg.RegionSources())
	if runErr != nil && !errors.Is(runErr, domain.ErrNoRegionEvaluated) {
		return runErr
	}

	if err := notify.NewConsole(table, detail).Report(ctx, run); err != nil {
		slog.Warn("reporter error", "err", err)
	}

	if cfg.Metrics.Textfile != "" {
		if err := metrics.NewExporter(cfg.Metrics.Textfile).Export(run); err != nil {
			slog.Warn("metrics export failed", "err", err)
		}
	}

	if !dryRun {
		if err := persist(ctx, run); err != nil {
			return err
		}
	}

	return runErr
}

func persist(ctx context.Context, run domain.Run) error {
	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveRun(ctx, run); err != nil {
		return err
	}
	slog.Info("run saved", "run_id", run.ID, "driver", cfg.Storage.Driver)
	return nil
}
