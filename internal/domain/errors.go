package domain

import "errors"

// Errores terminales para la evaluación de una región. El driver los registra
// en RegionResult.Err y sigue con las demás regiones.
var (
	// ErrDataSourceMissing: el archivo/URL de la región no existe.
	ErrDataSourceMissing = errors.New("data source missing")

	// ErrSchemaMismatch: columnas, cantidad de campos o tipos no coinciden
	// con id,f0,f1,f2,product. Se detecta antes de entrenar el modelo.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrInsufficientSamples: no hay suficientes pozos para entrenar o para
	// seleccionar los K mejores en validación.
	ErrInsufficientSamples = errors.New("insufficient samples")

	// ErrMisaligned: vectores true/predicted de distinto largo.
	ErrMisaligned = errors.New("true and predicted values are not aligned")

	// ErrNoRegionEvaluated: todas las regiones fallaron.
	ErrNoRegionEvaluated = errors.New("no region could be evaluated")
)
