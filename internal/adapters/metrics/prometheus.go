package metrics

// prometheus.go: exporta las métricas de cada ejecución en formato
// Prometheus. Sin servidor HTTP: el archivo lo recoge el textfile collector
// de node_exporter.

import (
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/oilfield/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "oilfield"

// Exporter implementa ports.MetricsExporter con un registry propio.
type Exporter struct {
	registry *prometheus.Registry
	textfile string

	rmse            *prometheus.GaugeVec
	profit          *prometheus.GaugeVec
	meanProfit      *prometheus.GaugeVec
	lossProbability *prometheus.GaugeVec
	ciLower         *prometheus.GaugeVec
	ciUpper         *prometheus.GaugeVec
	selected        *prometheus.GaugeVec
	regionFailed    *prometheus.GaugeVec
	lastRun         prometheus.Gauge
	runDuration     prometheus.Gauge
	runsTotal       *prometheus.CounterVec
}

// NewExporter crea el exporter. Si textfile está vacío las métricas solo
// quedan en el registry.
func NewExporter(textfile string) *Exporter {
	regionGauge := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, []string{"region"})
	}

	e := &Exporter{
		registry:        prometheus.NewRegistry(),
		textfile:        textfile,
		rmse:            regionGauge("region_rmse", "RMSE of the regression model on the validation set"),
		profit:          regionGauge("region_profit", "Profit of the top-K sites on the full validation set"),
		meanProfit:      regionGauge("region_mean_profit", "Mean bootstrap profit"),
		lossProbability: regionGauge("region_loss_probability", "Fraction of bootstrap resamples with negative profit"),
		ciLower:         regionGauge("region_ci_lower", "Lower bound of the bootstrap confidence interval"),
		ciUpper:         regionGauge("region_ci_upper", "Upper bound of the bootstrap confidence interval"),
		selected:        regionGauge("region_selected", "1 if the region was recommended in the last run"),
		regionFailed:    regionGauge("region_failed", "1 if the region could not be evaluated in the last run"),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time when the last run finished",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Runs exported by outcome",
		}, []string{"outcome"}),
	}

	e.registry.MustRegister(
		e.rmse, e.profit, e.meanProfit, e.lossProbability, e.ciLower, e.ciUpper,
		e.selected, e.regionFailed, e.lastRun, e.runDuration, e.runsTotal,
	)
	return e
}

// Registry expone el registry para tests o para montarlo en un handler.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Export actualiza los gauges con la ejecución y, si hay textfile, lo escribe.
func (e *Exporter) Export(run domain.Run) error {
	for _, vec := range []*prometheus.GaugeVec{
		e.rmse, e.profit, e.meanProfit, e.lossProbability, e.ciLower, e.ciUpper, e.selected, e.regionFailed,
	} {
		vec.Reset()
	}

	for _, r := range run.Results {
		if !r.OK() {
			e.regionFailed.WithLabelValues(r.Region).Set(1)
			continue
		}
		e.regionFailed.WithLabelValues(r.Region).Set(0)
		e.rmse.WithLabelValues(r.Region).Set(r.RMSE)
		e.profit.WithLabelValues(r.Region).Set(r.Profit)
		e.meanProfit.WithLabelValues(r.Region).Set(r.Risk.MeanProfit)
		e.lossProbability.WithLabelValues(r.Region).Set(r.Risk.LossProbability)
		e.ciLower.WithLabelValues(r.Region).Set(r.Risk.Lower)
		e.ciUpper.WithLabelValues(r.Region).Set(r.Risk.Upper)

		sel := 0.0
		if run.Decision.Ok && run.Decision.Selected == r.Region {
			sel = 1
		}
		e.selected.WithLabelValues(r.Region).Set(sel)
	}

	if !run.FinishedAt.IsZero() {
		e.lastRun.Set(float64(run.FinishedAt.Unix()))
		e.runDuration.Set(run.FinishedAt.Sub(run.StartedAt).Seconds())
	}
	e.runsTotal.WithLabelValues(outcome(run)).Inc()

	if e.textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(e.textfile, e.registry); err != nil {
		return fmt.Errorf("metrics.Export: write %s: %w", e.textfile, err)
	}
	slog.Debug("metrics written", "path", e.textfile, "run_id", run.ID)
	return nil
}

func outcome(run domain.Run) string {
	switch {
	case len(run.Results) > 0 && run.Failed() == len(run.Results):
		return "failed"
	case run.Decision.Ok:
		return "selected"
	default:
		return "no_decision"
	}
}
