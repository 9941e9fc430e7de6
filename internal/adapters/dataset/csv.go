package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/alejandrodnm/oilfield/internal/domain"
)

// columns es el schema esperado de cada dataset regional.
var columns = []string{"id", "f0", "f1", "f2", "product"}

// ParseCSV lee un dataset regional. El header debe contener exactamente las
// columnas id,f0,f1,f2,product (en cualquier orden). Cualquier diferencia de
// columnas, de cantidad de campos o de tipo devuelve domain.ErrSchemaMismatch.
func ParseCSV(r io.Reader) ([]domain.Site, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("dataset.ParseCSV: missing header: %w", domain.ErrSchemaMismatch)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset.ParseCSV: read header: %w", err)
	}

	pos, err := columnPositions(header)
	if err != nil {
		return nil, err
	}

	var sites []domain.Site
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) && errors.Is(perr.Err, csv.ErrFieldCount) {
				return nil, fmt.Errorf("dataset.ParseCSV: line %d: %v: %w", line, err, domain.ErrSchemaMismatch)
			}
			return nil, fmt.Errorf("dataset.ParseCSV: line %d: %w", line, err)
		}

		site, err := parseRecord(record, pos)
		if err != nil {
			return nil, fmt.Errorf("dataset.ParseCSV: line %d: %w", line, err)
		}
		sites = append(sites, site)
	}
	return sites, nil
}

// columnPositions mapea cada columna esperada a su índice en el header.
func columnPositions(header []string) (map[string]int, error) {
	if len(header) != len(columns) {
		return nil, fmt.Errorf("dataset.ParseCSV: header has %d columns, want %d (%s): %w",
			len(header), len(columns), strings.Join(columns, ","), domain.ErrSchemaMismatch)
	}

	pos := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		pos[name] = i
	}
	for _, c := range columns {
		if _, ok := pos[c]; !ok {
			return nil, fmt.Errorf("dataset.ParseCSV: missing column %q: %w", c, domain.ErrSchemaMismatch)
		}
	}
	return pos, nil
}

func parseRecord(record []string, pos map[string]int) (domain.Site, error) {
	var vals [4]float64
	for i, c := range columns[1:] {
		raw := strings.TrimSpace(record[pos[c]])
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.Site{}, fmt.Errorf("column %s: invalid number %q: %w", c, raw, domain.ErrSchemaMismatch)
		}
		vals[i] = v
	}

	id := strings.TrimSpace(record[pos["id"]])
	if id == "" {
		return domain.Site{}, fmt.Errorf("empty id: %w", domain.ErrSchemaMismatch)
	}

	return domain.Site{ID: id, F0: vals[0], F1: vals[1], F2: vals[2], Product: vals[3]}, nil
}
