package stats

import (
	"gonum.org/v1/gonum/floats"

	"github.com/sartorproj/stockcast/timeseries"
)

// ACF returns the sample autocorrelations for lags 0 to maxLag, or nil for a
// constant series.
func ACF(series *timeseries.Series, maxLag int) []float64 {
	n := series.Len()
	maxLag = min(maxLag, n-1)
	if maxLag < 0 {
		return nil
	}

	centered := make([]float64, n)
	copy(centered, series.Values)
	floats.AddConst(-series.Mean(), centered)

	denom := floats.Dot(centered, centered)
	if denom == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := range acf {
		acf[k] = floats.Dot(centered[k:], centered[:n-k]) / denom
	}
	return acf
}
