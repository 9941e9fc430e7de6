package domain

import (
	"fmt"
	"time"
)

// RegionResult es el resultado de evaluar una región.
// Si Err != nil la región falló y el resto de campos puede estar vacío.
type RegionResult struct {
	Region     string
	TrainSize  int
	ValidSize  int
	Duplicates int

	// --- Modelo ---
	RMSE          float64 // diagnóstico, no se usa para decidir
	MeanProduct   float64 // media real de la región completa
	MeanPredicted float64 // media de las predicciones en validación

	// --- Punto de equilibrio ---
	BreakEvenVolume float64 // product medio por pozo que cubre el presupuesto
	BreakEvenShare  float64 // fracción de pozos de la región que lo alcanzan

	// --- Profit ---
	Profit float64 // top-K sobre la validación completa
	Risk   RiskSummary

	Err error
}

// OK devuelve true si la región se evaluó sin errores.
func (r RegionResult) OK() bool {
	return r.Err == nil
}

// Acceptable devuelve true si la región cumple el umbral de riesgo.
func (r RegionResult) Acceptable(lossThreshold float64) bool {
	return r.OK() && r.Risk.LossProbability < lossThreshold
}

// Decision es la elección de región. Ok == false significa explícitamente
// "ninguna región cumple la política"; Reason explica por qué.
type Decision struct {
	Selected string
	Ok       bool
	Reason   string
}

// Run es una ejecución completa del pipeline sobre todas las regiones.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Params     Params
	Results    []RegionResult
	Decision   Decision
}

// Failed devuelve la cantidad de regiones que no se pudieron evaluar.
func (r Run) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.OK() {
			n++
		}
	}
	return n
}

// SelectRegion aplica la política de decisión: entre las regiones con
// probabilidad de pérdida < lossThreshold elige la de mayor profit medio
// bootstrap. Empate: la primera en orden de configuración.
func SelectRegion(results []RegionResult, lossThreshold float64) Decision {
	best := -1
	evaluated := 0
	for i, r := range results {
		if !r.OK() {
			continue
		}
		evaluated++
		if !r.Acceptable(lossThreshold) {
			continue
		}
		if best < 0 || r.Risk.MeanProfit > results[best].Risk.MeanProfit {
			best = i
		}
	}

	switch {
	case evaluated == 0:
		return Decision{Reason: "no region was evaluated successfully"}
	case best < 0:
		return Decision{Reason: fmt.Sprintf("no region has loss probability below %.2f%%", lossThreshold*100)}
	}

	r := results[best]
	return Decision{
		Selected: r.Region,
		Ok:       true,
		Reason: fmt.Sprintf("highest mean profit %.2f with loss probability %.2f%%",
			r.Risk.MeanProfit, r.Risk.LossPercent()),
	}
}
