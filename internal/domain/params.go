package domain

import "fmt"

// Params agrupa las constantes económicas y estadísticas de una evaluación.
// Se inyectan en cada componente; no hay globals.
type Params struct {
	Budget         float64 // inversión total por región
	PricePerUnit   float64 // ingreso por unidad de product (mil barriles)
	PointsSelected int     // K: pozos a perforar
	ResampleSize   int     // pozos por muestra bootstrap
	Resamples      int     // cantidad de muestras bootstrap
	LossThreshold  float64 // probabilidad de pérdida máxima aceptable
	Confidence     float64 // nivel del intervalo (0.95)
	ValidSplit     float64 // fracción de validación
	Seed           int64
}

// DefaultParams devuelve los valores de referencia del estudio de regiones.
func DefaultParams() Params {
	return Params{
		Budget:         10_000_000_000,
		PricePerUnit:   450_000,
		PointsSelected: 200,
		ResampleSize:   500,
		Resamples:      1000,
		LossThreshold:  0.025,
		Confidence:     0.95,
		ValidSplit:     0.25,
		Seed:           12345,
	}
}

// Validate rechaza combinaciones que harían sub-muestrear en silencio.
func (p Params) Validate() error {
	switch {
	case p.Budget < 0:
		return fmt.Errorf("budget must be >= 0, got %.2f", p.Budget)
	case p.PricePerUnit <= 0:
		return fmt.Errorf("price_per_unit must be > 0, got %.2f", p.PricePerUnit)
	case p.PointsSelected <= 0:
		return fmt.Errorf("points_selected must be > 0, got %d", p.PointsSelected)
	case p.ResampleSize < p.PointsSelected:
		return fmt.Errorf("resample_size (%d) must be >= points_selected (%d)", p.ResampleSize, p.PointsSelected)
	case p.Resamples <= 0:
		return fmt.Errorf("resamples must be > 0, got %d", p.Resamples)
	case p.LossThreshold <= 0 || p.LossThreshold >= 1:
		return fmt.Errorf("loss_threshold must be in (0,1), got %.4f", p.LossThreshold)
	case p.Confidence <= 0 || p.Confidence >= 1:
		return fmt.Errorf("confidence must be in (0,1), got %.4f", p.Confidence)
	case p.ValidSplit <= 0 || p.ValidSplit >= 1:
		return fmt.Errorf("valid_split must be in (0,1), got %.4f", p.ValidSplit)
	}
	return nil
}

// ProfitModel devuelve el calculador de profit con estos parámetros.
func (p Params) ProfitModel() ProfitModel {
	return ProfitModel{
		Budget:         p.Budget,
		PricePerUnit:   p.PricePerUnit,
		PointsSelected: p.PointsSelected,
	}
}
