package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/alejandrodnm/oilfield/internal/domain"
)

// FileSource implementa ports.DatasetSource para archivos locales.
type FileSource struct{}

// Load abre y parsea el CSV en path.
func (FileSource) Load(ctx context.Context, path string) ([]domain.Site, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("dataset.FileSource.Load %q: %w", path, domain.ErrDataSourceMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset.FileSource.Load %q: %w", path, err)
	}
	defer f.Close()

	sites, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("dataset.FileSource.Load %q: %w", path, err)
	}
	return sites, nil
}

// Source elige el loader según la location: http(s) va por HTTPSource, el
// resto se lee del disco. Si baseURL está configurado, las rutas relativas se
// resuelven contra él en vez de contra el disco.
type Source struct {
	files   FileSource
	http    *HTTPSource
	baseURL string
}

// NewSource crea el router de datasets.
func NewSource(httpSrc *HTTPSource, baseURL string) *Source {
	return &Source{http: httpSrc, baseURL: strings.TrimRight(baseURL, "/")}
}

// Load implementa ports.DatasetSource.
func (s *Source) Load(ctx context.Context, location string) ([]domain.Site, error) {
	resolved := s.Resolve(location)
	if isRemote(resolved) {
		if s.http == nil {
			return nil, fmt.Errorf("dataset.Source.Load %q: no HTTP loader configured", resolved)
		}
		return s.http.Load(ctx, resolved)
	}
	return s.files.Load(ctx, resolved)
}

// Resolve devuelve la location efectiva de un dataset.
func (s *Source) Resolve(location string) string {
	if isRemote(location) || filepath.IsAbs(location) || s.baseURL == "" {
		return location
	}
	u, err := url.JoinPath(s.baseURL, location)
	if err != nil {
		return s.baseURL + "/" + strings.TrimLeft(location, "/")
	}
	return u
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
