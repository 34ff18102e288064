package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sartorproj/stockcast/config"
)

var (
	// ErrNoData is returned when a provider has no bars for the request.
	ErrNoData = errors.New("no price data returned")
	// ErrUnknownProvider is returned by NewProvider for an unsupported name.
	ErrUnknownProvider = errors.New("unknown market data provider")
)

// Provider retrieves daily bars for a symbol over [start, end).
type Provider interface {
	Name() string
	DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error)
}

// NewProvider creates the provider named in cfg.
func NewProvider(cfg config.ProviderConfig, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Name {
	case config.ProviderYahoo:
		return NewYahooProvider(
			WithBaseURL(cfg.BaseURL),
			WithTimeout(cfg.Timeout),
			WithRetries(cfg.MaxRetries, cfg.RetryBackoff),
			WithAdjusted(cfg.IsAdjusted()),
			WithLogger(logger),
		), nil
	case config.ProviderAlpaca:
		return NewAlpacaProvider(AlpacaOptions{
			APIKey:     cfg.Alpaca.APIKey,
			APISecret:  cfg.Alpaca.APISecret,
			BaseURL:    cfg.BaseURL,
			Feed:       cfg.Alpaca.Feed,
			Adjusted:   cfg.IsAdjusted(),
			RetryLimit: cfg.MaxRetries,
			RetryDelay: cfg.RetryBackoff,
			Timeout:    cfg.Timeout,
		}), nil
	case config.ProviderCSV:
		return NewCSVProvider(cfg.CSVPath, cfg.IsAdjusted()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Name)
	}
}

// Fetch retrieves bars from p and reindexes them to business-day frequency.
func Fetch(ctx context.Context, p Provider, symbol string, start, end time.Time) (*Table, error) {
	bars, err := p.DailyBars(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch %s from %s: %w", symbol, p.Name(), err)
	}

	table := Reindex(symbol, bars, start, end)
	if table.Len() == 0 {
		return nil, fmt.Errorf("fetch %s from %s: %w", symbol, p.Name(), ErrNoData)
	}
	return table, nil
}
