package ports

import (
	"context"

	"github.com/alejandrodnm/oilfield/internal/domain"
)

// Reporter presenta el resultado de una ejecución al usuario.
type Reporter interface {
	// Report muestra métricas por región y la decisión final.
	Report(ctx context.Context, run domain.Run) error
}

// MetricsExporter publica las métricas de una ejecución.
type MetricsExporter interface {
	Export(run domain.Run) error
}
