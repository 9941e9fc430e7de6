package evaluator

// concurrent.go: worker pool para evaluar regiones en paralelo.
//
// Cada región crea sus propios streams (split y bootstrap) con la misma
// semilla, así que el resultado es idéntico bit a bit al modo secuencial.

import (
	"context"
	"log/slog"
	"sync"

	"github.com/alejandrodnm/oilfield/internal/domain"
)

// evaluateConcurrent evalúa las regiones con un pool de workers y devuelve
// los resultados en el mismo orden que regions.
// Si workers <= 0 usa un worker por región.
func evaluateConcurrent(
	ctx context.Context,
	e *Evaluator,
	regions []domain.RegionSource,
	workers int,
) []domain.RegionResult {
	if workers <= 0 || workers > len(regions) {
		workers = len(regions)
	}

	results := make([]domain.RegionResult, len(regions))
	workCh := make(chan int, len(regions))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workCh {
				// Cada índice lo escribe un único worker.
				results[idx] = e.EvaluateRegion(ctx, regions[idx])
			}
		}()
	}

	for i := range regions {
		workCh <- i
	}
	close(workCh)
	wg.Wait()

	slog.Debug("concurrent evaluation complete",
		"regions", len(regions),
		"workers", workers,
	)
	return results
}
