package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/oilfield/internal/domain"
	"github.com/alejandrodnm/oilfield/internal/ports"
	"github.com/google/uuid"
)

// Config contiene la configuración del driver.
type Config struct {
	Params   domain.Params
	Parallel bool // evaluar regiones en paralelo (mismo resultado que secuencial)
	Workers  int  // goroutines en modo paralelo (0 = una por región)
}

// DefaultConfig devuelve la configuración de referencia (10e9, K=200, 1000 resamples).
func DefaultConfig() Config {
	return Config{Params: domain.DefaultParams()}
}

// Evaluator orquesta el pipeline de cuatro etapas por región.
type Evaluator struct {
	cfg       Config
	source    ports.DatasetSource
	regressor ports.Regressor
	bootstrap Bootstrap
}

// New crea un Evaluator con todas las dependencias inyectadas.
func New(cfg Config, source ports.DatasetSource, regressor ports.Regressor) (*Evaluator, error) {
	if err := cfg.Params.Validate(); err != nil {
		return nil, fmt.Errorf("evaluator.New: %w", err)
	}
	return &Evaluator{
		cfg:       cfg,
		source:    source,
		regressor: regressor,
		bootstrap: NewBootstrap(cfg.Params),
	}, nil
}

// Run evalúa todas las regiones y aplica la política de decisión.
// Los resultados respetan el orden de regions. Devuelve error solo si
// ninguna región pudo evaluarse; en ese caso run igual es válido.
func (e *Evaluator) Run(ctx context.Context, regions []domain.RegionSource) (domain.Run, error) {
	run := domain.Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Params:    e.cfg.Params,
	}

	slog.Info("evaluation starting",
		"run_id", run.ID,
		"regions", len(regions),
		"parallel", e.cfg.Parallel,
		"seed", e.cfg.Params.Seed,
	)

	if e.cfg.Parallel {
		run.Results = evaluateConcurrent(ctx, e, regions, e.cfg.Workers)
	} else {
		run.Results = make([]domain.RegionResult, 0, len(regions))
		for _, r := range regions {
			run.Results = append(run.Results, e.EvaluateRegion(ctx, r))
		}
	}

	run.Decision = domain.SelectRegion(run.Results, e.cfg.Params.LossThreshold)
	run.FinishedAt = time.Now().UTC()

	slog.Info("evaluation complete",
		"run_id", run.ID,
		"failed", run.Failed(),
		"selected", run.Decision.Selected,
		"reason", run.Decision.Reason,
		"elapsed", run.FinishedAt.Sub(run.StartedAt),
	)

	if len(regions) > 0 && run.Failed() == len(regions) {
		return run, fmt.Errorf("evaluator.Run: %w", domain.ErrNoRegionEvaluated)
	}
	return run, nil
}

// EvaluateRegion carga el dataset de la región y lo evalúa.
// Los errores quedan en RegionResult.Err; nunca entra en pánico ni aborta
// las demás regiones.
func (e *Evaluator) EvaluateRegion(ctx context.Context, src domain.RegionSource) domain.RegionResult {
	sites, err := e.source.Load(ctx, src.Location)
	if err != nil {
		slog.Error("region load failed", "region", src.Name, "location", src.Location, "err", err)
		return domain.RegionResult{Region: src.Name, Err: err}
	}

	res, err := e.EvaluateSites(ctx, domain.Region{Name: src.Name, Sites: sites})
	if err != nil {
		slog.Error("region evaluation failed", "region", src.Name, "err", err)
		res.Err = err
	}
	return res
}

// EvaluateSites ejecuta split → fit → predict → profit → bootstrap sobre un
// dataset ya cargado.
func (e *Evaluator) EvaluateSites(ctx context.Context, region domain.Region) (domain.RegionResult, error) {
	p := e.cfg.Params
	model := p.ProfitModel()
	res := domain.RegionResult{Region: region.Name}

	if err := domain.ValidateSites(region.Sites); err != nil {
		return res, fmt.Errorf("evaluator.EvaluateSites %s: %w", region.Name, err)
	}
	if res.Duplicates = domain.CountDuplicates(region.Sites); res.Duplicates > 0 {
		slog.Warn("duplicate rows in dataset", "region", region.Name, "duplicates", res.Duplicates)
	}

	train, valid, err := region.Split(p.ValidSplit, domain.NewStream(p.Seed))
	if err != nil {
		return res, fmt.Errorf("evaluator.EvaluateSites %s: %w", region.Name, err)
	}
	res.TrainSize, res.ValidSize = len(train), len(valid)

	if len(valid) < p.PointsSelected {
		return res, fmt.Errorf("evaluator.EvaluateSites %s: validation has %d sites, need %d: %w",
			region.Name, len(valid), p.PointsSelected, domain.ErrInsufficientSamples)
	}

	predictor, err := e.regressor.Fit(domain.FeatureMatrix(train), domain.Targets(train))
	if err != nil {
		return res, fmt.Errorf("evaluator.EvaluateSites %s: fit: %w", region.Name, err)
	}

	target := domain.Targets(valid)
	predicted, err := predictor.Predict(domain.FeatureMatrix(valid))
	if err != nil {
		return res, fmt.Errorf("evaluator.EvaluateSites %s: predict: %w", region.Name, err)
	}
	if len(predicted) != len(target) {
		return res, fmt.Errorf("evaluator.EvaluateSites %s: %d predictions for %d sites: %w",
			region.Name, len(predicted), len(target), domain.ErrMisaligned)
	}

	if res.RMSE, err = domain.RMSE(target, predicted); err != nil {
		return res, fmt.Errorf("evaluator.EvaluateSites %s: %w", region.Name, err)
	}
	res.MeanProduct = domain.Mean(domain.Targets(region.Sites))
	res.MeanPredicted = domain.Mean(predicted)
	res.BreakEvenVolume = model.BreakEvenVolume()
	res.BreakEvenShare = model.BreakEvenShare(region.Sites)

	if res.Profit, err = model.Profit(target, predicted); err != nil {
		return res, fmt.Errorf("evaluator.EvaluateSites %s: %w", region.Name, err)
	}

	// Stream propio por región: el resultado no depende del orden de evaluación.
	if res.Risk, err = e.bootstrap.Estimate(ctx, target, predicted, domain.NewStream(p.Seed)); err != nil {
		return res, fmt.Errorf("evaluator.EvaluateSites %s: bootstrap: %w", region.Name, err)
	}

	slog.Info("region evaluated",
		"region", region.Name,
		"train", res.TrainSize,
		"valid", res.ValidSize,
		"rmse", res.RMSE,
		"profit", res.Profit,
		"mean_profit", res.Risk.MeanProfit,
		"loss_pct", res.Risk.LossPercent(),
		"ci_lower", res.Risk.Lower,
		"ci_upper", res.Risk.Upper,
	)
	return res, nil
}
