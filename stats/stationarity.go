package stats

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/stockcast/timeseries"
)

// Lag selection methods for ADFWithOptions.
const (
	AutoLagNone = "none"
	AutoLagAIC  = "aic"
	AutoLagBIC  = "bic"
)

// ADFResult represents the result of an Augmented Dickey-Fuller test.
type ADFResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	NObs         int
	CriticalVals map[string]float64 // Critical values at 1%, 5%, 10%
	IsStationary bool
}

// ADFOptions configures the Augmented Dickey-Fuller test.
type ADFOptions struct {
	// MaxLag is the largest number of lagged differences; <= 0 selects
	// ceil(12 * (n/100)^(1/4)).
	MaxLag int
	// AutoLag picks the lag in [0, MaxLag] minimising the criterion.
	// Empty or AutoLagNone uses MaxLag as is.
	AutoLag string
}

// ADF performs the Augmented Dickey-Fuller test for unit root using a fixed lag.
// The null hypothesis is that the series has a unit root (is non-stationary).
// If p-value < 0.05, we reject the null and conclude the series is stationary.
func ADF(series *timeseries.Series, maxLag int) *ADFResult {
	return ADFWithOptions(series, ADFOptions{MaxLag: maxLag, AutoLag: AutoLagNone})
}

// ADFWithOptions performs the Augmented Dickey-Fuller test with constant-only
// regression: Δy_t = α + β·y_{t-1} + Σ γ_i·Δy_{t-i} + ε_t.
// Returns nil when the series is too short or the regression is singular.
func ADFWithOptions(series *timeseries.Series, opts ADFOptions) *ADFResult {
	y := series.Values
	n := len(y)
	if n < 10 {
		return nil
	}

	maxLag := opts.MaxLag
	if maxLag <= 0 {
		maxLag = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}
	// Leave at least half of the sample for estimation.
	maxLag = min(maxLag, n/2-2)
	if maxLag < 0 {
		return nil
	}

	usedLag := maxLag
	switch opts.AutoLag {
	case AutoLagAIC, AutoLagBIC:
		best := math.Inf(1)
		for lag := 0; lag <= maxLag; lag++ {
			fit := adfRegression(y, lag, maxLag)
			if fit == nil {
				continue
			}
			ic := fit.criterion(opts.AutoLag)
			if ic < best {
				best = ic
				usedLag = lag
			}
		}
		if math.IsInf(best, 1) {
			return nil
		}
	}

	fit := adfRegression(y, usedLag, usedLag)
	if fit == nil || fit.stdErrors[1] == 0 {
		return nil
	}

	tStat := fit.coeffs[1] / fit.stdErrors[1]
	pValue := MacKinnonPValue(tStat)

	return &ADFResult{
		Statistic:    tStat,
		PValue:       pValue,
		Lags:         usedLag,
		NObs:         fit.nobs,
		CriticalVals: MacKinnonCriticalValues(fit.nobs),
		IsStationary: pValue < 0.05,
	}
}

// adfRegression fits the ADF regression with lag lagged differences on the
// observations after the first start differences.
func adfRegression(y []float64, lag, start int) *olsFit {
	n := len(y)
	nObs := n - 1 - start
	k := 2 + lag
	if nObs <= k {
		return nil
	}

	dy := make([]float64, n-1)
	for i := range dy {
		dy[i] = y[i+1] - y[i]
	}

	dep := make([]float64, nObs)
	x := make([][]float64, nObs)
	for i := 0; i < nObs; i++ {
		t := start + i
		dep[i] = dy[t]

		row := make([]float64, k)
		row[0] = 1    // constant
		row[1] = y[t] // lagged level
		for j := 1; j <= lag; j++ {
			row[1+j] = dy[t-j] // lagged differences
		}
		x[i] = row
	}

	return ols(x, dep)
}

// MacKinnonPValue returns the MacKinnon (1994) approximate asymptotic p-value
// for a constant-only unit-root t-statistic with one variable.
func MacKinnonPValue(stat float64) float64 {
	const (
		maxStat  = 2.74
		minStat  = -18.83
		starStat = -1.61
	)

	switch {
	case stat > maxStat:
		return 1
	case stat < minStat:
		return 0
	}

	var z float64
	if stat <= starStat {
		z = 2.1659 + 1.4412*stat + 0.038269*stat*stat
	} else {
		z = 1.7339 + 0.93202*stat - 0.12745*stat*stat - 0.010368*stat*stat*stat
	}
	return distuv.UnitNormal.CDF(z)
}

// MacKinnonCriticalValues returns the MacKinnon (2010) finite-sample critical
// values for a constant-only unit-root test with nobs observations.
func MacKinnonCriticalValues(nobs int) map[string]float64 {
	surface := map[string][4]float64{
		"1%":  {-3.43035, -6.5393, -16.786, -79.433},
		"5%":  {-2.86154, -2.8903, -4.234, -40.040},
		"10%": {-2.56677, -1.5384, -2.809, 0},
	}

	inv := 1 / float64(nobs)
	crit := make(map[string]float64, len(surface))
	for level, b := range surface {
		crit[level] = b[0] + b[1]*inv + b[2]*inv*inv + b[3]*inv*inv*inv
	}
	return crit
}

// KPSSResult represents the result of a KPSS test.
type KPSSResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	CriticalVals map[string]float64
	IsStationary bool
}

// KPSS performs the Kwiatkowski-Phillips-Schmidt-Shin test for stationarity.
// The null hypothesis is that the series is stationary; regression is "c"
// (level) or "ct" (trend). If p-value < 0.05 the series is non-stationary.
func KPSS(series *timeseries.Series, regression string, nlags int) *KPSSResult {
	n := series.Len()
	if n < 10 {
		return nil
	}

	if nlags <= 0 {
		nlags = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}
	nlags = min(nlags, n-1)

	residuals := make([]float64, n)
	if regression == "ct" {
		x := make([][]float64, n)
		for i := range x {
			x[i] = []float64{1, float64(i)}
		}
		fit := ols(x, series.Values)
		if fit == nil {
			return nil
		}
		for i, v := range series.Values {
			residuals[i] = v - fit.coeffs[0] - fit.coeffs[1]*float64(i)
		}
	} else {
		mean := series.Mean()
		for i, v := range series.Values {
			residuals[i] = v - mean
		}
	}

	// Long-run variance with Bartlett weights (Newey-West)
	s2 := 0.0
	for _, r := range residuals {
		s2 += r * r
	}
	for l := 1; l <= nlags; l++ {
		cov := 0.0
		for i := l; i < n; i++ {
			cov += residuals[i] * residuals[i-l]
		}
		s2 += 2 * (1 - float64(l)/float64(nlags+1)) * cov
	}
	s2 /= float64(n)
	if s2 <= 0 {
		return nil
	}

	eta := 0.0
	partial := 0.0
	for _, r := range residuals {
		partial += r
		eta += partial * partial
	}
	stat := eta / (float64(n) * float64(n) * s2)

	crit := kpssLevelCrit
	if regression == "ct" {
		crit = kpssTrendCrit
	}
	pValue := kpssPValue(stat, crit)

	return &KPSSResult{
		Statistic: stat,
		PValue:    pValue,
		Lags:      nlags,
		CriticalVals: map[string]float64{
			"10%": crit[0],
			"5%":  crit[1],
			"1%":  crit[3],
		},
		IsStationary: pValue >= 0.05,
	}
}

// KPSS critical values at the 10%, 5%, 2.5% and 1% levels.
var (
	kpssLevelCrit = [4]float64{0.347, 0.463, 0.574, 0.739}
	kpssTrendCrit = [4]float64{0.119, 0.146, 0.176, 0.216}
	kpssLevels    = [4]float64{0.10, 0.05, 0.025, 0.01}
)

// kpssPValue interpolates the p-value from the critical value table; results
// are clipped to [0.01, 0.10].
func kpssPValue(stat float64, crit [4]float64) float64 {
	if stat <= crit[0] {
		return kpssLevels[0]
	}
	if stat >= crit[3] {
		return kpssLevels[3]
	}
	for i := 1; i < len(crit); i++ {
		if stat <= crit[i] {
			frac := (stat - crit[i-1]) / (crit[i] - crit[i-1])
			return kpssLevels[i-1] + frac*(kpssLevels[i]-kpssLevels[i-1])
		}
	}
	return kpssLevels[3]
}

// olsFit holds an ordinary least squares fit.
type olsFit struct {
	coeffs    []float64
	stdErrors []float64
	ssr       float64
	nobs      int
}

// criterion returns the information criterion used for lag selection.
func (f *olsFit) criterion(method string) float64 {
	n := float64(f.nobs)
	k := float64(len(f.coeffs))
	llf := -n / 2 * (math.Log(2*math.Pi) + math.Log(f.ssr/n) + 1)
	if method == AutoLagBIC {
		return -2*llf + k*math.Log(n)
	}
	return -2*llf + 2*k
}

// ols performs ordinary least squares regression of y on the rows of x.
// Returns nil when X'X is singular or there are no residual degrees of freedom.
func ols(x [][]float64, y []float64) *olsFit {
	n := len(y)
	if n == 0 || len(x) != n {
		return nil
	}
	k := len(x[0])
	if n <= k {
		return nil
	}

	X := mat.NewDense(n, k, nil)
	for i, row := range x {
		X.SetRow(i, row)
	}
	Y := mat.NewVecDense(n, y)

	var xtx mat.Dense
	xtx.Mul(X.T(), X)

	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil
	}

	var xty, beta, fitted, resid mat.VecDense
	xty.MulVec(X.T(), Y)
	beta.MulVec(&xtxInv, &xty)
	fitted.MulVec(X, &beta)
	resid.SubVec(Y, &fitted)

	ssr := mat.Dot(&resid, &resid)
	s2 := ssr / float64(n-k)

	coeffs := make([]float64, k)
	stdErrors := make([]float64, k)
	for i := 0; i < k; i++ {
		coeffs[i] = beta.AtVec(i)
		stdErrors[i] = math.Sqrt(s2 * xtxInv.At(i, i))
	}

	return &olsFit{
		coeffs:    coeffs,
		stdErrors: stdErrors,
		ssr:       ssr,
		nobs:      n,
	}
}
