package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alejandrodnm/oilfield/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del evaluador.
type Config struct {
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Regions    []RegionConfig   `yaml:"regions"`
	Data       DataConfig       `yaml:"data"`
	Storage    StorageConfig    `yaml:"storage"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Log        LogConfig        `yaml:"log"`
}

// EvaluationConfig contiene los parámetros económicos y estadísticos.
type EvaluationConfig struct {
	Budget         float64 `yaml:"budget"`
	PricePerUnit   float64 `yaml:"price_per_unit"` // por mil barriles
	PointsSelected int     `yaml:"points_selected"`
	ResampleSize   int     `yaml:"resample_size"`
	Resamples      int     `yaml:"resamples"`
	LossThreshold  float64 `yaml:"loss_threshold"`
	Confidence     float64 `yaml:"confidence"`
	ValidSplit     float64 `yaml:"valid_split"`
	RandomSeed     int64   `yaml:"random_seed"` // 0 = default 12345
	Parallel       bool    `yaml:"parallel"`
	Workers        int     `yaml:"workers"` // 0 = una goroutine por región
}

// RegionConfig identifica el dataset de una región.
type RegionConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"` // archivo local, URL, o relativo a data.base_url
}

// DataConfig controla la descarga de datasets remotos.
type DataConfig struct {
	BaseURL        string  `yaml:"base_url"`
	RatePerSec     float64 `yaml:"rate_per_sec"`
	Burst          int     `yaml:"burst"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// StorageConfig controla dónde se persiste el historial.
type StorageConfig struct {
	Driver              string `yaml:"driver"` // sqlite | postgres
	DSN                 string `yaml:"dsn"`    // ruta SQLite, ":memory:", o DSN de Postgres
	QueryTimeoutSeconds int    `yaml:"query_timeout_seconds"`
}

// MetricsConfig controla la exportación Prometheus.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // vacío = no se escribe archivo
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del entorno sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

// Parse decodifica YAML, aplica overrides de entorno, defaults y valida.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Params convierte la sección evaluation en parámetros de dominio.
func (c *Config) Params() domain.Params {
	e := c.Evaluation
	return domain.Params{
		Budget:         e.Budget,
		PricePerUnit:   e.PricePerUnit,
		PointsSelected: e.PointsSelected,
		ResampleSize:   e.ResampleSize,
		Resamples:      e.Resamples,
		LossThreshold:  e.LossThreshold,
		Confidence:     e.Confidence,
		ValidSplit:     e.ValidSplit,
		Seed:           e.RandomSeed,
	}
}

// RegionSources devuelve las regiones en orden de configuración.
func (c *Config) RegionSources() []domain.RegionSource {
	out := make([]domain.RegionSource, len(c.Regions))
	for i, r := range c.Regions {
		out[i] = domain.RegionSource{Name: r.Name, Location: r.Path}
	}
	return out
}

// DataTimeout devuelve el timeout HTTP como time.Duration.
func (c *Config) DataTimeout() time.Duration {
	return time.Duration(c.Data.TimeoutSeconds) * time.Second
}

// QueryTimeout devuelve el timeout de storage como time.Duration.
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Storage.QueryTimeoutSeconds) * time.Second
}

// Validate rechaza configuraciones que no pueden producir una evaluación.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("config.Validate: evaluation: %w", err)
	}
	if c.Evaluation.Workers < 0 {
		return fmt.Errorf("config.Validate: evaluation: workers must be >= 0, got %d", c.Evaluation.Workers)
	}
	if len(c.Regions) == 0 {
		return fmt.Errorf("config.Validate: at least one region is required")
	}

	seen := make(map[string]bool, len(c.Regions))
	for i, r := range c.Regions {
		if r.Name == "" {
			return fmt.Errorf("config.Validate: regions[%d]: name is required", i)
		}
		if r.Path == "" {
			return fmt.Errorf("config.Validate: region %q: path is required", r.Name)
		}
		if seen[r.Name] {
			return fmt.Errorf("config.Validate: region %q is duplicated", r.Name)
		}
		seen[r.Name] = true
	}

	switch c.Storage.Driver {
	case "sqlite":
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("config.Validate: storage.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("config.Validate: storage.driver must be sqlite or postgres, got %q", c.Storage.Driver)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config.Validate: log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("OILFIELD_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("OILFIELD_STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("OILFIELD_DATA_BASE_URL"); v != "" {
		cfg.Data.BaseURL = v
	}
	if v := os.Getenv("OILFIELD_RANDOM_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Evaluation.RandomSeed = seed
		}
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	d := domain.DefaultParams()
	e := &cfg.Evaluation
	if e.Budget <= 0 {
		e.Budget = d.Budget
	}
	if e.PricePerUnit <= 0 {
		e.PricePerUnit = d.PricePerUnit
	}
	if e.PointsSelected <= 0 {
		e.PointsSelected = d.PointsSelected
	}
	if e.ResampleSize <= 0 {
		e.ResampleSize = d.ResampleSize
	}
	if e.Resamples <= 0 {
		e.Resamples = d.Resamples
	}
	if e.LossThreshold <= 0 {
		e.LossThreshold = d.LossThreshold
	}
	if e.Confidence <= 0 {
		e.Confidence = d.Confidence
	}
	if e.ValidSplit <= 0 {
		e.ValidSplit = d.ValidSplit
	}
	if e.RandomSeed == 0 {
		e.RandomSeed = d.Seed
	}

	if cfg.Data.RatePerSec <= 0 {
		cfg.Data.RatePerSec = 2
	}
	if cfg.Data.Burst <= 0 {
		cfg.Data.Burst = 2
	}
	if cfg.Data.TimeoutSeconds <= 0 {
		cfg.Data.TimeoutSeconds = 60
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.DSN == "" && cfg.Storage.Driver == "sqlite" {
		cfg.Storage.DSN = "oilfield.db"
	}
	if cfg.Storage.QueryTimeoutSeconds <= 0 {
		cfg.Storage.QueryTimeoutSeconds = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
