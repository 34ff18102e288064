package pipeline

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"github.com/sartorproj/stockcast/marketdata"
	"github.com/sartorproj/stockcast/stats"
)

const significance = 0.05

// price formats a value with two decimals, or NaN.
func price(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NaN"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func nullPrice(v null.Float) string {
	if !v.Valid {
		return "NaN"
	}
	return price(v.Float64)
}

func nullVolume(v null.Int) string {
	if !v.Valid {
		return "NaN"
	}
	return fmt.Sprintf("%d", v.Int64)
}

func writePreview(w io.Writer, table *marketdata.Table, n int) {
	fmt.Fprintln(w, "First few rows of the dataset:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Date\tOpen\tHigh\tLow\tClose\tVolume\t")
	for _, b := range table.Head(n) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			dateString(b.Date),
			nullPrice(b.Open), nullPrice(b.High), nullPrice(b.Low), nullPrice(b.Close),
			nullVolume(b.Volume),
		)
	}
	tw.Flush()
}

func writeStationarityNotes(w io.Writer, adf *stats.ADFResult, kpss *stats.KPSSResult, ndiffs int) {
	verdict := "non-stationary"
	if adf.PValue < significance {
		verdict = "stationary"
	}
	fmt.Fprintf(w, "  statistic %.4f, %d lags, %d observations: %s at 5%%\n",
		adf.Statistic, adf.Lags, adf.NObs, verdict)
	if kpss != nil {
		fmt.Fprintf(w, "KPSS Test p-value (original series): %.4f\n", kpss.PValue)
	}
	fmt.Fprintf(w, "Suggested differencing order: %d\n", ndiffs)
}

func writeForecast(w io.Writer, f *Forecast) {
	fmt.Fprintf(w, "\nForecast (%g%% interval):\n", f.Confidence*100)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Date\tForecast\tLower\tUpper\t")
	for i, d := range f.Dates {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", dateString(d), price(f.Values[i]), price(f.Lower[i]), price(f.Upper[i]))
	}
	tw.Flush()
}
