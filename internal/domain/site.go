package domain

import (
	"fmt"
	"math"
)

// Site es un punto de muestreo dentro de una región: tres features geológicas
// y el volumen real de reservas en miles de barriles.
type Site struct {
	ID      string
	F0      float64
	F1      float64
	F2      float64
	Product float64
}

// Features devuelve las features en el orden en que se entrena el modelo.
func (s Site) Features() []float64 {
	return []float64{s.F0, s.F1, s.F2}
}

// RegionSource indica de dónde cargar el dataset de una región.
// Location puede ser una ruta local o una URL http(s).
type RegionSource struct {
	Name     string
	Location string
}

// Region es el dataset ordenado de una región.
type Region struct {
	Name  string
	Sites []Site
}

// Split particiona la región en entrenamiento y validación.
// El tamaño de validación es ceil(validRatio × n) y el orden de ambos
// subconjuntos sale de una permutación del stream dado.
// Invariante: train ∪ valid = Sites y train ∩ valid = ∅.
func (r Region) Split(validRatio float64, stream *Stream) (train, valid []Site, err error) {
	if validRatio <= 0 || validRatio >= 1 {
		return nil, nil, fmt.Errorf("domain.Split: ratio %.3f outside (0,1)", validRatio)
	}

	n := len(r.Sites)
	nValid := int(math.Ceil(validRatio * float64(n)))
	if n == 0 || nValid >= n {
		return nil, nil, fmt.Errorf("domain.Split: region %q has %d sites: %w", r.Name, n, ErrInsufficientSamples)
	}

	perm := stream.Perm(n)
	valid = make([]Site, 0, nValid)
	for _, i := range perm[:nValid] {
		valid = append(valid, r.Sites[i])
	}
	train = make([]Site, 0, n-nValid)
	for _, i := range perm[nValid:] {
		train = append(train, r.Sites[i])
	}
	return train, valid, nil
}

// ValidateSites verifica que los registros cargados sean utilizables por el
// modelo: al menos uno, con id y con valores numéricos finitos.
func ValidateSites(sites []Site) error {
	if len(sites) == 0 {
		return fmt.Errorf("domain.ValidateSites: empty dataset: %w", ErrInsufficientSamples)
	}
	for i, s := range sites {
		if s.ID == "" {
			return fmt.Errorf("domain.ValidateSites: row %d has empty id: %w", i, ErrSchemaMismatch)
		}
		for _, v := range []float64{s.F0, s.F1, s.F2, s.Product} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("domain.ValidateSites: row %d (%s) has non-finite value: %w", i, s.ID, ErrSchemaMismatch)
			}
		}
	}
	return nil
}

// CountDuplicates cuenta filas idénticas a otra fila anterior.
func CountDuplicates(sites []Site) int {
	seen := make(map[Site]struct{}, len(sites))
	dups := 0
	for _, s := range sites {
		if _, ok := seen[s]; ok {
			dups++
			continue
		}
		seen[s] = struct{}{}
	}
	return dups
}

// FeatureMatrix devuelve una fila de features por pozo.
func FeatureMatrix(sites []Site) [][]float64 {
	rows := make([][]float64, len(sites))
	for i, s := range sites {
		rows[i] = s.Features()
	}
	return rows
}

// Targets devuelve el volumen real de cada pozo, alineado por índice.
func Targets(sites []Site) []float64 {
	out := make([]float64, len(sites))
	for i, s := range sites {
		out[i] = s.Product
	}
	return out
}
