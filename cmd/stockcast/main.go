// Command stockcast downloads daily prices for one symbol, tests them for
// stationarity, fits an ARIMA model and forecasts the next business days.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sartorproj/stockcast/chart"
	"github.com/sartorproj/stockcast/config"
	"github.com/sartorproj/stockcast/logging"
	"github.com/sartorproj/stockcast/marketdata"
	"github.com/sartorproj/stockcast/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults apply when empty)")
	envPath := flag.String("env", "", "path to .env file")
	flag.Parse()

	if err := config.LoadDotEnv(*envPath); err != nil {
		fmt.Fprintf(os.Stderr, "stockcast: %v\n", err)
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stockcast: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stockcast: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger = logger.With(zap.String("run_id", uuid.NewString()))
	logger.Info("starting stockcast",
		zap.String("config", *configPath),
		zap.String("symbol", cfg.Symbol),
		zap.String("start", cfg.Start.String()),
		zap.String("end", cfg.End.String()),
		zap.String("provider", cfg.Provider.Name),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := marketdata.NewProvider(cfg.Provider, logger)
	if err != nil {
		logger.Fatal("failed to create provider", zap.Error(err))
	}

	p := &pipeline.Pipeline{
		Provider: provider,
		Renderer: renderers(cfg.Plot),
		Out:      os.Stdout,
		Logger:   logger,
		Params:   pipeline.ParamsFromConfig(cfg),
		DataDir:  cfg.Plot.OutputDir,
	}

	if _, err := p.Run(ctx); err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}
	logger.Info("done")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadAndValidate(path)
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func renderers(cfg config.PlotConfig) chart.Renderer {
	var m chart.Multi
	if cfg.TerminalEnabled() {
		m = append(m, chart.NewTerminalRenderer(os.Stdout, cfg.Height, cfg.Width))
	}
	if cfg.OutputDir != "" {
		m = append(m, chart.NewPNGRenderer(cfg.OutputDir))
	}
	if len(m) == 0 {
		return nil
	}
	return m
}
