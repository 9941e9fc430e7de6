package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ProfitModel convierte volumen seleccionado en dinero, neto del presupuesto.
//
// Fórmula:
//
//	top      = K índices con mayor predicción
//	volume   = Σ true[i] para i ∈ top
//	profit   = round2(volume × PricePerUnit − Budget)
type ProfitModel struct {
	Budget         float64
	PricePerUnit   float64
	PointsSelected int
}

// SelectTopK devuelve los índices de las k predicciones más altas, de mayor a
// menor. Empates: gana el índice original más bajo (sort estable).
// Si k > len(predicted) se devuelven todos los índices.
func SelectTopK(predicted []float64, k int) []int {
	idx := make([]int, len(predicted))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return predicted[idx[a]] > predicted[idx[b]]
	})
	k = max(0, min(k, len(idx)))
	return idx[:k]
}

// SelectedVolume suma los valores reales de los K pozos mejor predichos.
func (m ProfitModel) SelectedVolume(trueValues, predicted []float64) (float64, error) {
	if len(trueValues) != len(predicted) {
		return 0, fmt.Errorf("domain.SelectedVolume: %d true vs %d predicted: %w",
			len(trueValues), len(predicted), ErrMisaligned)
	}
	total := 0.0
	for _, i := range SelectTopK(predicted, m.PointsSelected) {
		total += trueValues[i]
	}
	return total, nil
}

// Profit calcula el profit del escenario. No modifica los inputs.
func (m ProfitModel) Profit(trueValues, predicted []float64) (float64, error) {
	volume, err := m.SelectedVolume(trueValues, predicted)
	if err != nil {
		return 0, err
	}
	return Round2(volume*m.PricePerUnit - m.Budget), nil
}

// BreakEvenVolume es el volumen medio por pozo que cubre el presupuesto
// cuando se perforan K pozos.
func (m ProfitModel) BreakEvenVolume() float64 {
	if m.PricePerUnit <= 0 || m.PointsSelected <= 0 {
		return 0
	}
	return m.Budget / (m.PricePerUnit * float64(m.PointsSelected))
}

// BreakEvenShare devuelve la fracción de pozos con product >= BreakEvenVolume.
func (m ProfitModel) BreakEvenShare(sites []Site) float64 {
	if len(sites) == 0 {
		return 0
	}
	threshold := m.BreakEvenVolume()
	n := 0
	for _, s := range sites {
		if s.Product >= threshold {
			n++
		}
	}
	return float64(n) / float64(len(sites))
}

// Round2 redondea a 2 decimales, mitad lejos de cero sobre la representación
// decimal (5.445 → 5.45).
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
