package stats

import (
	"math"

	"github.com/sartorproj/stockcast/timeseries"
)

// Unit-root tests accepted by NDiffs.
const (
	UnitRootADF  = "adf"
	UnitRootKPSS = "kpss"
)

// NDiffs returns the number of first differences after which the series
// passes the stationarity test, up to maxD (default 2).
// testType is UnitRootKPSS (default) or UnitRootADF. NaN and infinite values are
// dropped before each test.
func NDiffs(series *timeseries.Series, maxD int, testType string) int {
	if maxD <= 0 {
		maxD = 2
	}
	if testType == "" {
		testType = UnitRootKPSS
	}

	current := series.DropNA()
	for d := 0; d < maxD; d++ {
		if isStationary(current, testType) {
			return d
		}

		current = current.Diff().DropNA()
		if current.Len() < 10 {
			return d
		}
	}

	return maxD
}

func isStationary(series *timeseries.Series, testType string) bool {
	if testType == UnitRootADF {
		result := ADFWithOptions(series, ADFOptions{AutoLag: AutoLagAIC})
		return result != nil && result.IsStationary
	}
	result := KPSS(series, "c", 0)
	return result != nil && result.IsStationary
}

// InformationCriteria holds likelihood-based model selection criteria.
type InformationCriteria struct {
	AIC    float64
	AICc   float64
	BIC    float64
	LogLik float64
}

// CalculateIC calculates all information criteria.
// logLik is the log-likelihood, nObs is the number of observations,
// nParams is the number of estimated parameters.
func CalculateIC(logLik float64, nObs int, nParams int) *InformationCriteria {
	k := float64(nParams)
	n := float64(nObs)

	aic := -2*logLik + 2*k
	bic := -2*logLik + k*math.Log(n)

	// Corrected AIC for small samples
	aicc := math.Inf(1)
	if n-k-1 > 0 {
		aicc = aic + 2*k*(k+1)/(n-k-1)
	}

	return &InformationCriteria{
		AIC:    aic,
		AICc:   aicc,
		BIC:    bic,
		LogLik: logLik,
	}
}
