package regression

// linear.go: regresión lineal por mínimos cuadrados ordinarios.
//
// Modelo: ŷ = b0 + Σ bj·xj
// Se resuelve min ‖Xβ − y‖² con X = [1 | features] vía QR (gonum/mat).

import (
	"fmt"

	"github.com/alejandrodnm/oilfield/internal/domain"
	"github.com/alejandrodnm/oilfield/internal/ports"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Linear implementa ports.Regressor con OLS e intercepto.
type Linear struct{}

// NewLinear crea el regresor de referencia.
func NewLinear() *Linear {
	return &Linear{}
}

// LinearModel es un modelo lineal entrenado.
type LinearModel struct {
	Intercept float64
	Coef      []float64
}

// Fit estima intercepto y coeficientes.
func (Linear) Fit(features [][]float64, target []float64) (ports.Predictor, error) {
	n := len(features)
	if n != len(target) {
		return nil, fmt.Errorf("regression.Fit: %d rows vs %d targets: %w", n, len(target), domain.ErrMisaligned)
	}
	if n == 0 {
		return nil, fmt.Errorf("regression.Fit: no rows: %w", domain.ErrInsufficientSamples)
	}

	p := len(features[0])
	if n < p+1 {
		return nil, fmt.Errorf("regression.Fit: %d rows for %d parameters: %w", n, p+1, domain.ErrInsufficientSamples)
	}

	x := mat.NewDense(n, p+1, nil)
	for i, row := range features {
		if len(row) != p {
			return nil, fmt.Errorf("regression.Fit: row %d has %d features, want %d: %w", i, len(row), p, domain.ErrSchemaMismatch)
		}
		x.Set(i, 0, 1)
		for j, v := range row {
			x.Set(i, j+1, v)
		}
	}
	// NewVecDense usa el slice como backing; copiamos para no aliasar el input.
	y := mat.NewVecDense(n, append([]float64(nil), target...))

	var beta mat.VecDense
	if err := beta.SolveVec(x, y); err != nil {
		return nil, fmt.Errorf("regression.Fit: solve least squares: %w", err)
	}

	coef := make([]float64, p)
	for j := range coef {
		coef[j] = beta.AtVec(j + 1)
	}
	return &LinearModel{Intercept: beta.AtVec(0), Coef: coef}, nil
}

// Predict aplica el modelo fila por fila.
func (m *LinearModel) Predict(features [][]float64) ([]float64, error) {
	out := make([]float64, len(features))
	for i, row := range features {
		if len(row) != len(m.Coef) {
			return nil, fmt.Errorf("regression.Predict: row %d has %d features, want %d: %w",
				i, len(row), len(m.Coef), domain.ErrSchemaMismatch)
		}
		out[i] = m.Intercept + floats.Dot(m.Coef, row)
	}
	return out, nil
}
