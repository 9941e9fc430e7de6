package domain

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RiskSummary resume la distribución bootstrap del profit de una región.
type RiskSummary struct {
	MeanProfit      float64
	LossProbability float64 // fracción de escenarios con profit < 0, en [0,1]
	Lower           float64 // percentil (1-confidence)/2
	Upper           float64 // percentil 1-(1-confidence)/2
	Samples         int
}

// LossPercent devuelve la probabilidad de pérdida en porcentaje.
func (r RiskSummary) LossPercent() float64 {
	return r.LossProbability * 100
}

// SummarizeRisk agrega los profits de los escenarios. Los percentiles usan
// interpolación lineal entre rangos (posición (n-1)·p), igual en cada
// ejecución para que el resultado sea reproducible bit a bit.
func SummarizeRisk(profits []float64, confidence float64) (RiskSummary, error) {
	if len(profits) == 0 {
		return RiskSummary{}, fmt.Errorf("domain.SummarizeRisk: no scenarios: %w", ErrInsufficientSamples)
	}
	if confidence <= 0 || confidence >= 1 {
		return RiskSummary{}, fmt.Errorf("domain.SummarizeRisk: confidence %.4f outside (0,1)", confidence)
	}

	losses := 0
	for _, p := range profits {
		if p < 0 {
			losses++
		}
	}

	sorted := slices.Clone(profits)
	slices.Sort(sorted)
	alpha := (1 - confidence) / 2

	return RiskSummary{
		MeanProfit:      Round2(stat.Mean(profits, nil)),
		LossProbability: float64(losses) / float64(len(profits)),
		Lower:           Round2(Percentile(sorted, alpha)),
		Upper:           Round2(Percentile(sorted, 1-alpha)),
		Samples:         len(profits),
	}, nil
}

// Percentile devuelve el cuantil p ∈ [0,1] de un slice ya ordenado,
// interpolando linealmente entre los dos rangos vecinos.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo+1 >= n {
		return sorted[lo]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// RMSE es la raíz del error cuadrático medio entre valores reales y predichos.
func RMSE(actual, predicted []float64) (float64, error) {
	if len(actual) != len(predicted) {
		return 0, fmt.Errorf("domain.RMSE: %d actual vs %d predicted: %w", len(actual), len(predicted), ErrMisaligned)
	}
	if len(actual) == 0 {
		return 0, fmt.Errorf("domain.RMSE: empty input: %w", ErrInsufficientSamples)
	}
	return floats.Distance(actual, predicted, 2) / math.Sqrt(float64(len(actual))), nil
}

// Mean es la media aritmética; 0 para un slice vacío.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}
