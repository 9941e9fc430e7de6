package ports

// Regressor entrena un modelo de predicción puntual.
// Cualquier técnica de regresión que cumpla el contrato es intercambiable
// sin tocar el resto del pipeline.
type Regressor interface {
	// Fit estima los parámetros con una fila de features por muestra y el
	// target alineado por índice.
	Fit(features [][]float64, target []float64) (Predictor, error)
}

// Predictor es un modelo ya entrenado.
type Predictor interface {
	// Predict devuelve una predicción por fila, en el mismo orden y largo.
	Predict(features [][]float64) ([]float64, error)
}
