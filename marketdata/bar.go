package marketdata

import (
	"math"
	"slices"
	"time"

	"github.com/guregu/null/v6"

	"github.com/sartorproj/stockcast/timeseries"
)

// Bar is one daily OHLCV observation. Null fields mean no observation.
type Bar struct {
	Date   time.Time
	Open   null.Float
	High   null.Float
	Low    null.Float
	Close  null.Float
	Volume null.Int
}

// IsNA reports whether the bar has no closing price.
func (b Bar) IsNA() bool {
	return !b.Close.Valid
}

// naBar returns a bar with every field null.
func naBar(date time.Time) Bar {
	return Bar{Date: date}
}

// Table is a symbol's daily bars indexed by business day.
type Table struct {
	Symbol string
	Bars   []Bar
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Bars)
}

// Head returns up to the first n rows.
func (t *Table) Head(n int) []Bar {
	n = max(0, min(n, len(t.Bars)))
	return t.Bars[:n]
}

// Missing returns the number of rows without a close.
func (t *Table) Missing() int {
	count := 0
	for _, b := range t.Bars {
		if b.IsNA() {
			count++
		}
	}
	return count
}

// Dates returns the row dates.
func (t *Table) Dates() []time.Time {
	dates := make([]time.Time, len(t.Bars))
	for i, b := range t.Bars {
		dates[i] = b.Date
	}
	return dates
}

// Close returns the closing prices as a series, with NA rows as NaN.
func (t *Table) Close() *timeseries.Series {
	values := make([]float64, len(t.Bars))
	for i, b := range t.Bars {
		if b.IsNA() {
			values[i] = math.NaN()
			continue
		}
		values[i] = b.Close.Float64
	}

	return &timeseries.Series{
		Timestamps: t.Dates(),
		Values:     values,
		Name:       "Close",
	}
}

// Reindex builds a business-day table from raw bars. Bars outside
// [start, end) or on weekends are dropped, the last bar wins for a repeated
// date, and missing business days between the first and last observation
// become NA rows.
func Reindex(symbol string, bars []Bar, start, end time.Time) *Table {
	start, end = timeseries.Date(start), timeseries.Date(end)

	byDate := make(map[time.Time]Bar, len(bars))
	for _, b := range bars {
		d := timeseries.Date(b.Date)
		if d.Before(start) || !d.Before(end) || !timeseries.IsBusinessDay(d) {
			continue
		}
		b.Date = d
		byDate[d] = b
	}

	table := &Table{Symbol: symbol, Bars: []Bar{}}
	if len(byDate) == 0 {
		return table
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

	for _, d := range timeseries.BusinessDaysBetween(dates[0], dates[len(dates)-1]) {
		b, ok := byDate[d]
		if !ok {
			b = naBar(d)
		}
		table.Bars = append(table.Bars, b)
	}
	return table
}
