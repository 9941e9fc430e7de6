package ports

import (
	"context"

	"github.com/alejandrodnm/oilfield/internal/domain"
)

// Storage persiste cada ejecución del pipeline con sus resultados por región.
type Storage interface {
	// SaveRun persiste la ejecución y todos sus RegionResult.
	SaveRun(ctx context.Context, run domain.Run) error

	// ListRuns devuelve las últimas limit ejecuciones, la más reciente primero.
	ListRuns(ctx context.Context, limit int) ([]domain.Run, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
