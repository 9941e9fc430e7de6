package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
regions:
  - name: geo_0
    path: geo_data_0.csv
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	p := cfg.Params()
	assert.Equal(t, 10e9, p.Budget)
	assert.Equal(t, 450000.0, p.PricePerUnit)
	assert.Equal(t, 200, p.PointsSelected)
	assert.Equal(t, 500, p.ResampleSize)
	assert.Equal(t, 1000, p.Resamples)
	assert.Equal(t, 0.025, p.LossThreshold)
	assert.Equal(t, 0.95, p.Confidence)
	assert.Equal(t, 0.25, p.ValidSplit)
	assert.Equal(t, int64(12345), p.Seed)

	assert.False(t, cfg.Evaluation.Parallel)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "oilfield.db", cfg.Storage.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, int64(60), int64(cfg.DataTimeout().Seconds()))
}

func TestParse_RegionsKeepOrder(t *testing.T) {
	cfg, err := Parse([]byte(`
regions:
  - {name: geo_2, path: c.csv}
  - {name: geo_0, path: a.csv}
  - {name: geo_1, path: https://example.com/b.csv}
`))
	require.NoError(t, err)

	sources := cfg.RegionSources()
	require.Len(t, sources, 3)
	assert.Equal(t, "geo_2", sources[0].Name)
	assert.Equal(t, "a.csv", sources[1].Location)
	assert.Equal(t, "https://example.com/b.csv", sources[2].Location)
}

func TestParse_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"no regions": `evaluation: {budget: 100}`,
		"duplicate region": `
regions:
  - {name: a, path: a.csv}
  - {name: a, path: b.csv}`,
		"missing path": `
regions:
  - {name: a}`,
		"resample smaller than K": `
evaluation: {points_selected: 300, resample_size: 100}
regions:
  - {name: a, path: a.csv}`,
		"threshold out of range": `
evaluation: {loss_threshold: 1.5}
regions:
  - {name: a, path: a.csv}`,
		"unknown driver": `
storage: {driver: mysql}
regions:
  - {name: a, path: a.csv}`,
		"postgres without dsn": `
storage: {driver: postgres}
regions:
  - {name: a, path: a.csv}`,
		"bad log format": `
log: {format: xml}
regions:
  - {name: a, path: a.csv}`,
		"broken yaml": `regions: [`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OILFIELD_STORAGE_DRIVER", "postgres")
	t.Setenv("OILFIELD_STORAGE_DSN", "postgres://localhost/oilfield")
	t.Setenv("OILFIELD_DATA_BASE_URL", "https://data.example.com/geo")
	t.Setenv("OILFIELD_RANDOM_SEED", "42")

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/oilfield", cfg.Storage.DSN)
	assert.Equal(t, "https://data.example.com/geo", cfg.Data.BaseURL)
	assert.Equal(t, int64(42), cfg.Params().Seed)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Regions, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_ShippedConfig(t *testing.T) {
	cfg, err := Load("config.yaml")
	require.NoError(t, err)
	assert.Len(t, cfg.Regions, 3)
	assert.Equal(t, cfg.Params().Seed, int64(12345))
}
