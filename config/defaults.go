package config

import (
	"os"
	"time"
)

// Provider names.
const (
	ProviderYahoo  = "yahoo"
	ProviderAlpaca = "alpaca"
	ProviderCSV    = "csv"
)

// Default values for optional configuration fields.
const (
	DefaultSymbol       = "AAPL"
	DefaultStart        = "2020-01-01"
	DefaultEnd          = "2024-12-31"
	DefaultProvider     = ProviderYahoo
	DefaultYahooURL     = "https://query1.finance.yahoo.com"
	DefaultTimeout      = 30 * time.Second
	DefaultRetryBackoff = 1 * time.Second
	DefaultAlpacaFeed   = "iex"
	DefaultHorizon      = 30
	DefaultConfidence   = 0.95
	DefaultAutoLag      = "aic"
	DefaultPlotHeight   = 15
	DefaultPlotWidth    = 100
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "json"
	DefaultEnvFile      = ".env"
)

// DefaultOrder is the ARIMA (p, d, q) order.
var DefaultOrder = []int{1, 1, 1}

// Environment variables consulted for Alpaca credentials.
const (
	EnvAlpacaKey    = "ALPACA_KEY"
	EnvAlpacaSecret = "ALPACA_SECRET"
)

func (c *Config) applyDefaults() {
	if c.Symbol == "" {
		c.Symbol = DefaultSymbol
	}
	if c.Start.IsZero() {
		c.Start = mustDate(DefaultStart)
	}
	if c.End.IsZero() {
		c.End = mustDate(DefaultEnd)
	}

	// Provider defaults
	if c.Provider.Name == "" {
		c.Provider.Name = DefaultProvider
	}
	if c.Provider.BaseURL == "" && c.Provider.Name == ProviderYahoo {
		c.Provider.BaseURL = DefaultYahooURL
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = DefaultTimeout
	}
	if c.Provider.RetryBackoff == 0 {
		c.Provider.RetryBackoff = DefaultRetryBackoff
	}
	if c.Provider.Alpaca.APIKey == "" {
		c.Provider.Alpaca.APIKey = os.Getenv(EnvAlpacaKey)
	}
	if c.Provider.Alpaca.APISecret == "" {
		c.Provider.Alpaca.APISecret = os.Getenv(EnvAlpacaSecret)
	}
	if c.Provider.Alpaca.Feed == "" {
		c.Provider.Alpaca.Feed = DefaultAlpacaFeed
	}

	// Model defaults
	if len(c.Model.Order) == 0 {
		c.Model.Order = append([]int(nil), DefaultOrder...)
	}

	// Forecast defaults
	if c.Forecast.Horizon == 0 {
		c.Forecast.Horizon = DefaultHorizon
	}
	if c.Forecast.Confidence == 0 {
		c.Forecast.Confidence = DefaultConfidence
	}

	if c.Stationarity.AutoLag == "" {
		c.Stationarity.AutoLag = DefaultAutoLag
	}

	// Plot defaults
	if c.Plot.Height == 0 {
		c.Plot.Height = DefaultPlotHeight
	}
	if c.Plot.Width == 0 {
		c.Plot.Width = DefaultPlotWidth
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
