package marketdata

import (
	"context"
	"net/http"
	"time"

	alpaca "github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/guregu/null/v6"

	"github.com/sartorproj/stockcast/timeseries"
)

// AlpacaOptions configures an AlpacaProvider.
type AlpacaOptions struct {
	APIKey     string
	APISecret  string
	BaseURL    string // empty uses the Alpaca data API
	Feed       string // iex or sip
	Adjusted   bool
	RetryLimit int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// barsClient is the subset of the Alpaca market data client used here.
type barsClient interface {
	GetBars(symbol string, req alpaca.GetBarsRequest) ([]alpaca.Bar, error)
}

// AlpacaProvider fetches daily bars from the Alpaca market data API.
type AlpacaProvider struct {
	client   barsClient
	feed     alpaca.Feed
	adjusted bool
}

// NewAlpacaProvider creates an Alpaca market data client.
func NewAlpacaProvider(opts AlpacaOptions) *AlpacaProvider {
	feed := alpaca.Feed(opts.Feed)
	if feed == "" {
		feed = alpaca.IEX
	}

	clientOpts := alpaca.ClientOpts{
		APIKey:     opts.APIKey,
		APISecret:  opts.APISecret,
		BaseURL:    opts.BaseURL,
		Feed:       feed,
		RetryLimit: opts.RetryLimit,
		RetryDelay: opts.RetryDelay,
	}
	if opts.Timeout > 0 {
		clientOpts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	return &AlpacaProvider{
		client:   alpaca.NewClient(clientOpts),
		feed:     feed,
		adjusted: opts.Adjusted,
	}
}

// Name implements Provider.
func (p *AlpacaProvider) Name() string {
	return "alpaca"
}

// DailyBars implements Provider. The Alpaca client does not take a context,
// so cancellation is only observed before the request starts.
func (p *AlpacaProvider) DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	adjustment := alpaca.Raw
	if p.adjusted {
		adjustment = alpaca.All
	}

	raw, err := p.client.GetBars(symbol, alpaca.GetBarsRequest{
		TimeFrame:  alpaca.OneDay,
		Adjustment: adjustment,
		Start:      start,
		End:        end,
		Feed:       p.feed,
	})
	if err != nil {
		return nil, err
	}

	bars := make([]Bar, len(raw))
	for i, b := range raw {
		bars[i] = Bar{
			// Daily bars are stamped at midnight New York time, which is the
			// same calendar day in UTC.
			Date:   timeseries.Date(b.Timestamp.UTC()),
			Open:   null.FloatFrom(b.Open),
			High:   null.FloatFrom(b.High),
			Low:    null.FloatFrom(b.Low),
			Close:  null.FloatFrom(b.Close),
			Volume: null.IntFrom(int64(b.Volume)),
		}
	}
	return bars, nil
}
