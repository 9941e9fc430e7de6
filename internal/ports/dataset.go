package ports

import (
	"context"

	"github.com/alejandrodnm/oilfield/internal/domain"
)

// DatasetSource carga los pozos de una región.
type DatasetSource interface {
	// Load lee el dataset en location (ruta local o URL) y devuelve los pozos
	// en el orden del archivo. Falla con domain.ErrDataSourceMissing si no
	// existe y con domain.ErrSchemaMismatch si las columnas no coinciden.
	Load(ctx context.Context, location string) ([]domain.Site, error)
}
