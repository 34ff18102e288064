package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/stockcast/timeseries"
)

// LjungBoxResult represents the result of a Ljung-Box test.
type LjungBoxResult struct {
	Statistic float64
	PValue    float64
	Lags      int
	DOF       int // Degrees of freedom
}

// LjungBox performs the Ljung-Box test for autocorrelation in residuals.
// The null hypothesis is that there is no autocorrelation up to lag h.
// If p-value < 0.05, we reject the null and conclude there is significant autocorrelation.
// fitdf is the number of parameters estimated in the model (p + q for ARIMA);
// it is only subtracted when lags exceeds it.
func LjungBox(series *timeseries.Series, lags, fitdf int) *LjungBoxResult {
	n := series.Len()
	if n < 10 || lags < 1 {
		return nil
	}

	if lags >= n {
		lags = n - 1
	}

	acf := ACF(series, lags)
	if acf == nil {
		return nil
	}

	q := 0.0
	for k := 1; k <= lags; k++ {
		q += (acf[k] * acf[k]) / float64(n-k)
	}
	q *= float64(n * (n + 2))

	dof := lags
	if lags > fitdf {
		dof = lags - fitdf
	}

	return &LjungBoxResult{
		Statistic: q,
		PValue:    distuv.ChiSquared{K: float64(dof)}.Survival(q),
		Lags:      lags,
		DOF:       dof,
	}
}

// JarqueBeraResult represents the result of a Jarque-Bera normality test.
type JarqueBeraResult struct {
	Statistic float64
	PValue    float64
	Skew      float64
	Kurtosis  float64 // Non-excess kurtosis; 3 for a normal distribution
}

// JarqueBera tests whether values have the skewness and kurtosis of a normal
// distribution. NaN values are ignored.
func JarqueBera(values []float64) *JarqueBeraResult {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}

	n := float64(len(clean))
	if n < 3 {
		return nil
	}

	mean := 0.0
	for _, v := range clean {
		mean += v
	}
	mean /= n

	var m2, m3, m4 float64
	for _, v := range clean {
		d := v - mean
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	m2 /= n
	m3 /= n
	m4 /= n
	if m2 == 0 {
		return nil
	}

	skew := m3 / math.Pow(m2, 1.5)
	kurtosis := m4 / (m2 * m2)
	jb := n / 6 * (skew*skew + (kurtosis-3)*(kurtosis-3)/4)

	return &JarqueBeraResult{
		Statistic: jb,
		PValue:    distuv.ChiSquared{K: 2}.Survival(jb),
		Skew:      skew,
		Kurtosis:  kurtosis,
	}
}
