package domain

import "math/rand/v2"

// Stream es el generador pseudoaleatorio explícito del pipeline.
// Se pasa por puntero: cada consumo avanza el estado, así que el resample #i
// depende de lo que consumieron los resamples anteriores.
type Stream struct {
	rng *rand.Rand
}

// NewStream crea un stream determinista a partir de la semilla.
func NewStream(seed int64) *Stream {
	s := uint64(seed)
	return &Stream{rng: rand.New(rand.NewPCG(s, s))}
}

// IntN devuelve un entero en [0, n).
func (s *Stream) IntN(n int) int {
	return s.rng.IntN(n)
}

// Perm devuelve una permutación de [0, n).
func (s *Stream) Perm(n int) []int {
	return s.rng.Perm(n)
}
