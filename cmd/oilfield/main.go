package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alejandrodnm/oilfield/config"
	"github.com/alejandrodnm/oilfield/internal/adapters/storage"
	"github.com/alejandrodnm/oilfield/internal/ports"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	logFormat  string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "oilfield",
	Short: "Estimate drilling profit and risk per region and pick where to drill",
	Long: `oilfield trains a linear model per region, selects the most productive
sites, estimates the profit distribution with bootstrap resampling and
recommends the region with the highest expected profit under the loss
probability threshold.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			c.Log.Level = "debug"
		}
		if logFormat != "" {
			c.Log.Format = logFormat
		}
		setupLogger(c.Log)
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "set log level to debug")
	rootCmd.PersistentFlags().StringVar(&logFormat, "format", "", "log format: text|json (overrides config)")

	rootCmd.AddCommand(evaluateCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("oilfield exited with error", "err", err)
		os.Exit(1)
	}
}

// openStorage abre el backend configurado.
func openStorage(c *config.Config) (ports.Storage, error) {
	switch c.Storage.Driver {
	case "postgres":
		s, err := storage.NewPostgresStorage(c.Storage.DSN, c.QueryTimeout())
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := storage.NewSQLiteStorage(c.Storage.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Logs a stderr: stdout queda para el reporte.
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
