package evaluator

// bootstrap.go: estimación de riesgo por remuestreo.
//
// Para cada una de las Resamples iteraciones:
//  1. Sortea SampleSize índices del pool de validación con reemplazo,
//     consumiendo el mismo stream (nunca se re-siembra entre iteraciones).
//  2. Arma el escenario con los pares (true, predicted) de esos índices.
//  3. Calcula el profit top-K del escenario.
// El resumen (media, riesgo, intervalo) sale de domain.SummarizeRisk.

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/oilfield/internal/domain"
)

// Bootstrap es el estimador de riesgo por remuestreo.
type Bootstrap struct {
	Resamples  int
	SampleSize int
	Confidence float64
	Model      domain.ProfitModel
}

// NewBootstrap construye el estimador a partir de los parámetros.
func NewBootstrap(p domain.Params) Bootstrap {
	return Bootstrap{
		Resamples:  p.Resamples,
		SampleSize: p.ResampleSize,
		Confidence: p.Confidence,
		Model:      p.ProfitModel(),
	}
}

// Profits devuelve el profit de cada escenario remuestreado, en orden de
// generación. trueValues y predicted deben estar alineados por índice.
func (b Bootstrap) Profits(ctx context.Context, trueValues, predicted []float64, stream *domain.Stream) ([]float64, error) {
	if len(trueValues) != len(predicted) {
		return nil, fmt.Errorf("evaluator.Bootstrap: %d true vs %d predicted: %w",
			len(trueValues), len(predicted), domain.ErrMisaligned)
	}
	if len(predicted) == 0 || b.SampleSize <= 0 || b.Resamples <= 0 {
		return nil, fmt.Errorf("evaluator.Bootstrap: pool=%d sample=%d resamples=%d: %w",
			len(predicted), b.SampleSize, b.Resamples, domain.ErrInsufficientSamples)
	}

	profits := make([]float64, 0, b.Resamples)
	sampleTrue := make([]float64, b.SampleSize)
	samplePred := make([]float64, b.SampleSize)

	for i := 0; i < b.Resamples; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for j, idx := range b.draw(len(predicted), stream) {
			sampleTrue[j] = trueValues[idx]
			samplePred[j] = predicted[idx]
		}

		profit, err := b.Model.Profit(sampleTrue, samplePred)
		if err != nil {
			return nil, fmt.Errorf("evaluator.Bootstrap: resample %d: %w", i, err)
		}
		profits = append(profits, profit)
	}
	return profits, nil
}

// Estimate ejecuta el remuestreo completo y resume la distribución.
func (b Bootstrap) Estimate(ctx context.Context, trueValues, predicted []float64, stream *domain.Stream) (domain.RiskSummary, error) {
	profits, err := b.Profits(ctx, trueValues, predicted, stream)
	if err != nil {
		return domain.RiskSummary{}, err
	}
	return domain.SummarizeRisk(profits, b.Confidence)
}

// draw sortea SampleSize índices en [0, pool) con reemplazo.
func (b Bootstrap) draw(pool int, stream *domain.Stream) []int {
	idx := make([]int, b.SampleSize)
	for j := range idx {
		idx[j] = stream.IntN(pool)
	}
	return idx
}
