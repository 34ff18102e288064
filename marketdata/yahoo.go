package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/guregu/null/v6"
	"go.uber.org/zap"

	"github.com/sartorproj/stockcast/timeseries"
)

const (
	yahooChartPath = "/v8/finance/chart/"
	yahooUserAgent = "Mozilla/5.0 (compatible; stockcast/1.0)"
)

// APIError represents an error from a market data HTTP API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("market data api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// YahooProvider fetches daily bars from the Yahoo Finance chart API.
type YahooProvider struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	adjusted   bool

	maxRetries   int
	retryBackoff time.Duration
}

// YahooOption configures a YahooProvider.
type YahooOption func(*YahooProvider)

// NewYahooProvider creates a Yahoo chart API client. Retries are off unless
// WithRetries is given.
func NewYahooProvider(opts ...YahooOption) *YahooProvider {
	p := &YahooProvider{
		baseURL: "https://query1.finance.yahoo.com",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       zap.NewNop(),
		adjusted:     true,
		retryBackoff: time.Second,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WithBaseURL sets the API base URL.
func WithBaseURL(u string) YahooOption {
	return func(p *YahooProvider) {
		if u != "" {
			p.baseURL = u
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) YahooOption {
	return func(p *YahooProvider) {
		if d > 0 {
			p.httpClient.Timeout = d
		}
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) YahooOption {
	return func(p *YahooProvider) {
		p.maxRetries = max
		if backoff > 0 {
			p.retryBackoff = backoff
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) YahooOption {
	return func(p *YahooProvider) {
		p.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) YahooOption {
	return func(p *YahooProvider) {
		p.httpClient = hc
	}
}

// WithAdjusted selects split and dividend adjusted prices.
func WithAdjusted(adjusted bool) YahooOption {
	return func(p *YahooProvider) {
		p.adjusted = adjusted
	}
}

// Name implements Provider.
func (p *YahooProvider) Name() string {
	return "yahoo"
}

// DailyBars implements Provider.
func (p *YahooProvider) DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error) {
	query := url.Values{}
	query.Set("period1", strconv.FormatInt(start.Unix(), 10))
	query.Set("period2", strconv.FormatInt(end.Unix(), 10))
	query.Set("interval", "1d")
	query.Set("events", "div|split")
	query.Set("includeAdjustedClose", "true")

	body, err := p.doWithRetry(ctx, yahooChartPath+url.PathEscape(symbol), query)
	if err != nil {
		return nil, err
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Chart.Error != nil {
		return nil, &APIError{
			StatusCode: http.StatusOK,
			Message:    resp.Chart.Error.String(),
			Body:       body,
		}
	}
	if len(resp.Chart.Result) == 0 {
		return nil, ErrNoData
	}

	bars := resp.Chart.Result[0].bars(p.adjusted)
	p.logger.Debug("yahoo chart decoded",
		zap.String("symbol", symbol),
		zap.Int("bars", len(bars)),
	)
	return bars, nil
}

// doRequest performs a GET request for path.
func (p *YahooProvider) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := p.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", yahooUserAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		msg := http.StatusText(resp.StatusCode)
		var chartErr chartResponse
		if json.Unmarshal(body, &chartErr) == nil && chartErr.Chart.Error != nil {
			msg = chartErr.Chart.Error.String()
		}
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    msg,
			Body:       body,
		}
	}

	return body, nil
}

// doWithRetry performs a request with exponential backoff retry.
func (p *YahooProvider) doWithRetry(ctx context.Context, path string, query url.Values) ([]byte, error) {
	var lastErr error
	backoff := p.retryBackoff

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			// Add jitter: backoff * (0.5 to 1.5)
			jitter := backoff/2 + time.Duration(rand.Int64N(int64(backoff)))
			p.logger.Debug("retrying request",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", jitter),
				zap.String("path", path),
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		body, err := p.doRequest(ctx, path, query)
		if err == nil {
			return body, nil
		}

		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
			return nil, err
		}
	}

	if p.maxRetries == 0 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *chartError) String() string {
	if e.Description == "" {
		return e.Code
	}
	return e.Code + ": " + e.Description
}

type chartResult struct {
	Meta struct {
		Symbol               string `json:"symbol"`
		Currency             string `json:"currency"`
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
		GMTOffset            int    `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote    []chartQuote `json:"quote"`
		AdjClose []struct {
			AdjClose []null.Float `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

type chartQuote struct {
	Open   []null.Float `json:"open"`
	High   []null.Float `json:"high"`
	Low    []null.Float `json:"low"`
	Close  []null.Float `json:"close"`
	Volume []null.Int   `json:"volume"`
}

// bars converts the columnar chart payload to bars dated in the exchange
// time zone. With adjusted set, OHLC are scaled by adjclose/close.
func (r *chartResult) bars(adjusted bool) []Bar {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	q := r.Indicators.Quote[0]

	var adjClose []null.Float
	if len(r.Indicators.AdjClose) > 0 {
		adjClose = r.Indicators.AdjClose[0].AdjClose
	}

	loc := time.FixedZone(r.Meta.ExchangeTimezoneName, r.Meta.GMTOffset)

	bars := make([]Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		bar := Bar{
			Date:   timeseries.Date(time.Unix(ts, 0).In(loc)),
			Open:   floatAt(q.Open, i),
			High:   floatAt(q.High, i),
			Low:    floatAt(q.Low, i),
			Close:  floatAt(q.Close, i),
			Volume: intAt(q.Volume, i),
		}

		if adjusted {
			adj := floatAt(adjClose, i)
			if adj.Valid && bar.Close.Valid && bar.Close.Float64 != 0 {
				ratio := adj.Float64 / bar.Close.Float64
				bar.Open = scale(bar.Open, ratio)
				bar.High = scale(bar.High, ratio)
				bar.Low = scale(bar.Low, ratio)
				bar.Close = adj
			}
		}

		bars = append(bars, bar)
	}
	return bars
}

func floatAt(values []null.Float, i int) null.Float {
	if i >= len(values) {
		return null.Float{}
	}
	return values[i]
}

func intAt(values []null.Int, i int) null.Int {
	if i >= len(values) {
		return null.Int{}
	}
	return values[i]
}

func scale(f null.Float, ratio float64) null.Float {
	if !f.Valid {
		return f
	}
	return null.FloatFrom(f.Float64 * ratio)
}
