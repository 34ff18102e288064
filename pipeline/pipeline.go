package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/sartorproj/stockcast/arima"
	"github.com/sartorproj/stockcast/chart"
	"github.com/sartorproj/stockcast/config"
	"github.com/sartorproj/stockcast/marketdata"
	"github.com/sartorproj/stockcast/stats"
	"github.com/sartorproj/stockcast/timeseries"
)

// ErrSeriesTooShort is returned when a series is too short for the ADF test.
var ErrSeriesTooShort = errors.New("series too short for stationarity test")

// Params are the run parameters.
type Params struct {
	Symbol     string
	Start      time.Time
	End        time.Time // exclusive
	Order      arima.Order
	Horizon    int
	Confidence float64
	ADF        stats.ADFOptions
}

// ParamsFromConfig extracts run parameters from cfg.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Symbol:     cfg.Symbol,
		Start:      cfg.Start.Time,
		End:        cfg.End.Time,
		Order:      arima.Order{P: cfg.Model.P(), D: cfg.Model.D(), Q: cfg.Model.Q()},
		Horizon:    cfg.Forecast.Horizon,
		Confidence: cfg.Forecast.Confidence,
		ADF: stats.ADFOptions{
			MaxLag:  cfg.Stationarity.MaxLag,
			AutoLag: cfg.Stationarity.AutoLag,
		},
	}
}

// Pipeline fetches prices, tests stationarity, fits an ARIMA model and
// forecasts, reporting each step to Out.
type Pipeline struct {
	Provider marketdata.Provider
	Renderer chart.Renderer // nil disables charts
	Out      io.Writer
	Logger   *zap.Logger
	Params   Params

	// DataDir, when set, receives a CSV copy of the fetched table.
	DataDir string
}

// Forecast holds point forecasts, their prediction interval and dates.
type Forecast struct {
	Dates      []time.Time
	Values     []float64
	Lower      []float64
	Upper      []float64
	Confidence float64
}

// Result collects the outputs of every step.
type Result struct {
	Table       *marketdata.Table
	Closes      *timeseries.Series
	Differenced *timeseries.Series
	ADF         *stats.ADFResult
	ADFDiff     *stats.ADFResult
	KPSS        *stats.KPSSResult
	NDiffs      int
	Model       *arima.Model
	Forecast    *Forecast
}

// Run executes the pipeline once.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	out := p.Out
	if out == nil {
		out = io.Discard
	}
	prm := p.Params
	logger = logger.With(zap.String("symbol", prm.Symbol))

	res := &Result{}

	// Fetch
	started := time.Now()
	table, err := marketdata.Fetch(ctx, p.Provider, prm.Symbol, prm.Start, prm.End)
	if err != nil {
		return nil, err
	}
	res.Table = table
	res.Closes = table.Close()
	logger.Info("fetched prices",
		zap.String("step", "fetch"),
		zap.String("provider", p.Provider.Name()),
		zap.Int("rows", table.Len()),
		zap.Int("missing", table.Missing()),
		zap.Duration("elapsed", time.Since(started)),
	)

	if p.DataDir != "" {
		path, err := p.saveTable(table)
		if err != nil {
			return nil, err
		}
		logger.Info("saved prices", zap.String("step", "fetch"), zap.String("path", path))
	}

	writePreview(out, table, 5)

	if err := p.render(chart.Chart{
		Title:  fmt.Sprintf("%s Closing Price (%s to %s)", prm.Symbol, dateString(table.Bars[0].Date), dateString(res.Closes.LastTimestamp())),
		YLabel: "Price (USD)",
		Lines:  []chart.Line{chart.LineFromSeries("Closing Price", res.Closes)},
	}); err != nil {
		return nil, err
	}

	// Stationarity
	started = time.Now()
	clean := res.Closes.DropNA()
	res.ADF = stats.ADFWithOptions(clean, prm.ADF)
	if res.ADF == nil {
		return nil, fmt.Errorf("adf on closing prices (%d observations): %w", clean.Len(), ErrSeriesTooShort)
	}
	res.KPSS = stats.KPSS(clean, "c", 0)
	res.NDiffs = stats.NDiffs(clean, 2, stats.UnitRootADF)
	fmt.Fprintf(out, "\nADF Test p-value (original series): %v\n", res.ADF.PValue)
	writeStationarityNotes(out, res.ADF, res.KPSS, res.NDiffs)
	logger.Info("tested stationarity",
		zap.String("step", "adf"),
		zap.Float64("statistic", res.ADF.Statistic),
		zap.Float64("p_value", res.ADF.PValue),
		zap.Int("lags", res.ADF.Lags),
		zap.Duration("elapsed", time.Since(started)),
	)

	// Differencing
	res.Differenced = res.Closes.Diff().DropNA()
	res.ADFDiff = stats.ADFWithOptions(res.Differenced, prm.ADF)
	if res.ADFDiff == nil {
		return nil, fmt.Errorf("adf on differenced prices (%d observations): %w", res.Differenced.Len(), ErrSeriesTooShort)
	}
	fmt.Fprintf(out, "ADF Test after differencing (p-value): %v\n", res.ADFDiff.PValue)
	logger.Info("differenced series",
		zap.String("step", "difference"),
		zap.Int("length", res.Differenced.Len()),
		zap.Float64("p_value", res.ADFDiff.PValue),
	)

	if err := p.render(chart.Chart{
		Title:  fmt.Sprintf("Differenced %s Closing Price", prm.Symbol),
		YLabel: "Price Change",
		Lines:  []chart.Line{chart.LineFromSeries("Differenced Closing Price", res.Differenced)},
	}); err != nil {
		return nil, err
	}

	// Model
	started = time.Now()
	res.Model = arima.New(prm.Order.P, prm.Order.D, prm.Order.Q)
	if err := res.Model.Fit(clean); err != nil {
		return nil, fmt.Errorf("fit ARIMA%s: %w", prm.Order, err)
	}
	fmt.Fprintf(out, "\nARIMA Model Summary:\n%s", res.Model.Summary())
	logger.Info("fitted model",
		zap.String("step", "fit"),
		zap.String("order", prm.Order.String()),
		zap.Float64s("ar", res.Model.ARCoeffs),
		zap.Float64s("ma", res.Model.MACoeffs),
		zap.Float64("aic", res.Model.AIC),
		zap.Duration("elapsed", time.Since(started)),
	)

	// Forecast
	values, lower, upper, err := res.Model.PredictWithInterval(prm.Horizon, prm.Confidence)
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	last := res.Closes.LastTimestamp()
	res.Forecast = &Forecast{
		Dates:      timeseries.BusinessDayRange(last.AddDate(0, 0, 1), prm.Horizon),
		Values:     values,
		Lower:      lower,
		Upper:      upper,
		Confidence: prm.Confidence,
	}
	writeForecast(out, res.Forecast)
	logger.Info("forecast",
		zap.String("step", "forecast"),
		zap.Int("horizon", prm.Horizon),
		zap.Time("first_date", res.Forecast.Dates[0]),
		zap.Time("last_date", res.Forecast.Dates[len(res.Forecast.Dates)-1]),
	)

	if err := p.render(chart.Chart{
		Title:  fmt.Sprintf("%s Stock Price Forecast (Next %d Business Days)", prm.Symbol, prm.Horizon),
		YLabel: "Price (USD)",
		Lines: []chart.Line{
			chart.LineFromSeries("Historical Closing Price", res.Closes),
			{Name: "Forecasted Price", Timestamps: res.Forecast.Dates, Values: values},
		},
		Band: &chart.Band{
			Name:       fmt.Sprintf("%g%% interval", prm.Confidence*100),
			Timestamps: res.Forecast.Dates,
			Lower:      lower,
			Upper:      upper,
		},
	}); err != nil {
		return nil, err
	}

	return res, nil
}

func (p *Pipeline) render(c chart.Chart) error {
	if p.Renderer == nil {
		return nil
	}
	c.XLabel = "Date"
	if err := p.Renderer.Render(c); err != nil {
		return fmt.Errorf("render %q: %w", c.Title, err)
	}
	return nil
}

func (p *Pipeline) saveTable(table *marketdata.Table) (string, error) {
	if err := os.MkdirAll(p.DataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(p.DataDir, chart.Slug(table.Symbol)+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := marketdata.WriteCSV(f, table); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func dateString(t time.Time) string {
	return t.Format("2006-01-02")
}
