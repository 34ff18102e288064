package config

import (
	"errors"
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return errors.New("symbol is required")
	}
	if c.Start.IsZero() || c.End.IsZero() {
		return errors.New("start and end are required")
	}
	if !c.End.After(c.Start.Time) {
		return fmt.Errorf("end (%s) must be after start (%s)", c.End, c.Start)
	}

	if err := c.Provider.validate("provider"); err != nil {
		return err
	}

	if len(c.Model.Order) != 3 {
		return fmt.Errorf("model.order must have 3 elements (p, d, q), got %d", len(c.Model.Order))
	}
	for i, v := range c.Model.Order {
		if v < 0 {
			return fmt.Errorf("model.order[%d] must be >= 0, got %d", i, v)
		}
	}

	if c.Forecast.Horizon < 1 {
		return errors.New("forecast.horizon must be >= 1")
	}
	if c.Forecast.Confidence <= 0 || c.Forecast.Confidence >= 1 {
		return fmt.Errorf("forecast.confidence must be between 0 and 1, got %g", c.Forecast.Confidence)
	}

	if c.Stationarity.MaxLag < 0 {
		return errors.New("stationarity.max_lag must be >= 0")
	}
	switch c.Stationarity.AutoLag {
	case "aic", "bic", "none":
	default:
		return fmt.Errorf("stationarity.autolag must be aic, bic or none, got %q", c.Stationarity.AutoLag)
	}

	if c.Plot.Height < 2 {
		return errors.New("plot.height must be >= 2")
	}
	if c.Plot.Width < 10 {
		return errors.New("plot.width must be >= 10")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}

	return nil
}

func (p *ProviderConfig) validate(prefix string) error {
	if p.Timeout < 0 {
		return fmt.Errorf("%s.timeout must be >= 0", prefix)
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("%s.max_retries must be >= 0", prefix)
	}

	switch p.Name {
	case ProviderYahoo:
		if p.BaseURL == "" {
			return fmt.Errorf("%s.base_url is required", prefix)
		}
	case ProviderAlpaca:
		if p.Alpaca.APIKey == "" {
			return fmt.Errorf("%s.alpaca.api_key is required", prefix)
		}
		if p.Alpaca.APISecret == "" {
			return fmt.Errorf("%s.alpaca.api_secret is required", prefix)
		}
	case ProviderCSV:
		if p.CSVPath == "" {
			return fmt.Errorf("%s.csv_path is required", prefix)
		}
	default:
		return fmt.Errorf("%s.name must be yahoo, alpaca or csv, got %q", prefix, p.Name)
	}
	return nil
}
