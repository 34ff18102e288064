package arima

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/stockcast/stats"
	"github.com/sartorproj/stockcast/timeseries"
)

var (
	ErrInsufficientData = errors.New("insufficient data points for the specified order")
	ErrMissingValues    = errors.New("series contains missing or infinite values")
	ErrNotFitted        = errors.New("model must be fitted before prediction")
	ErrInvalidSteps     = errors.New("steps must be at least 1")
)

// coefficient bound for AR and MA terms
const maxCoeff = 0.999

// Order represents ARIMA model order (p, d, q).
type Order struct {
	P int // AR order (number of autoregressive terms)
	D int // Differencing order
	Q int // MA order (number of moving average terms)
}

func (o Order) String() string {
	return fmt.Sprintf("(%d,%d,%d)", o.P, o.D, o.Q)
}

// Model represents an ARIMA model. A mean is estimated only when D is 0;
// differenced models are fitted without drift.
type Model struct {
	Order     Order
	ARCoeffs  []float64 // AR coefficients (phi)
	MACoeffs  []float64 // MA coefficients (theta)
	Intercept float64   // Mean of the (differenced) series; 0 when D > 0
	Variance  float64   // Residual variance (sigma^2)
	AIC       float64
	AICc      float64 // Corrected AIC for small sample sizes
	BIC       float64
	LogLik    float64

	// StdErrors holds standard errors in parameter order: intercept (D == 0
	// only), AR coefficients, MA coefficients.
	StdErrors []float64

	fitted     bool
	name       string
	nObs       int
	lastLevels []float64 // last value of the series differenced 0..D-1 times
	diffData   []float64
	residuals  []float64
	fittedVals []float64
}

// New creates a new ARIMA model with the specified order.
func New(p, d, q int) *Model {
	return &Model{
		Order:    Order{P: p, D: d, Q: q},
		ARCoeffs: make([]float64, p),
		MACoeffs: make([]float64, q),
	}
}

func (m *Model) includeMean() bool {
	return m.Order.D == 0
}

func (m *Model) nParams() int {
	k := m.Order.P + m.Order.Q
	if m.includeMean() {
		k++
	}
	return k
}

// Fit fits the ARIMA model to the given time series by conditional sum of squares.
// The series must not contain NaN or infinite values.
func (m *Model) Fit(series *timeseries.Series) error {
	if series.Len() < m.Order.P+m.Order.Q+m.Order.D+10 {
		return ErrInsufficientData
	}
	if series.Missing() > 0 {
		return ErrMissingValues
	}

	m.name = series.Name
	m.nObs = series.Len()

	diffSeries := series
	m.lastLevels = make([]float64, m.Order.D)
	for i := 0; i < m.Order.D; i++ {
		m.lastLevels[i] = diffSeries.Values[diffSeries.Len()-1]
		diffSeries = diffSeries.Diff()
	}
	m.diffData = diffSeries.Values

	if err := m.fitCSS(); err != nil {
		return err
	}

	m.calculateIC()
	m.fitted = true
	return nil
}

// fitCSS estimates the parameters by minimising the conditional sum of squares.
func (m *Model) fitCSS() error {
	y := m.diffData
	p, q := m.Order.P, m.Order.Q

	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	init := make([]float64, 0, m.nParams())
	if m.includeMean() {
		init = append(init, mean)
	}

	ar := make([]float64, p)
	if p > 0 {
		acf := stats.ACF(timeseries.New(y), p)
		if acf != nil {
			ar = yuleWalker(acf, p)
		}
	}
	for _, phi := range ar {
		init = append(init, math.Atanh(clamp(phi, 0.95)))
	}
	for i := 0; i < q; i++ {
		init = append(init, math.Atanh(0.1))
	}

	if len(init) > 0 {
		problem := optimize.Problem{
			Func: func(x []float64) float64 {
				mu, ar, ma := m.unpack(x)
				return sumSquares(conditionalResiduals(y, mu, ar, ma))
			},
		}
		settings := &optimize.Settings{
			FuncEvaluations: 4000 * len(init),
			Converger: &optimize.FunctionConverge{
				Absolute:   1e-10,
				Relative:   1e-10,
				Iterations: 200,
			},
		}

		result, err := optimize.Minimize(problem, init, settings, &optimize.NelderMead{})
		if result == nil {
			return fmt.Errorf("optimize css: %w", err)
		}
		init = result.X
	}

	m.Intercept, m.ARCoeffs, m.MACoeffs = m.unpack(init)

	m.residuals = conditionalResiduals(y, m.Intercept, m.ARCoeffs, m.MACoeffs)
	m.fittedVals = make([]float64, len(y))
	for t := range y {
		m.fittedVals[t] = y[t] - m.residuals[t]
	}

	effective := m.residuals[p:]
	m.Variance = sumSquares(effective) / float64(len(effective))
	m.StdErrors = m.standardErrors()
	return nil
}

// unpack maps optimizer parameters to the intercept and the AR/MA coefficients.
// AR and MA terms are optimised through tanh so they stay inside (-1, 1).
func (m *Model) unpack(x []float64) (mu float64, ar, ma []float64) {
	i := 0
	if m.includeMean() {
		mu = x[0]
		i++
	}
	ar = make([]float64, m.Order.P)
	for j := range ar {
		ar[j] = maxCoeff * math.Tanh(x[i])
		i++
	}
	ma = make([]float64, m.Order.Q)
	for j := range ma {
		ma[j] = maxCoeff * math.Tanh(x[i])
		i++
	}
	return mu, ar, ma
}

// params returns the fitted parameters in StdErrors order.
func (m *Model) params() []float64 {
	params := make([]float64, 0, m.nParams())
	if m.includeMean() {
		params = append(params, m.Intercept)
	}
	params = append(params, m.ARCoeffs...)
	return append(params, m.MACoeffs...)
}

// conditionalResiduals computes one-step residuals conditional on zero
// pre-sample errors. The first len(ar) residuals are y - mu.
func conditionalResiduals(y []float64, mu float64, ar, ma []float64) []float64 {
	p := len(ar)
	residuals := make([]float64, len(y))
	for t := range y {
		if t < p {
			residuals[t] = y[t] - mu
			continue
		}

		pred := mu
		for i, phi := range ar {
			pred += phi * (y[t-i-1] - mu)
		}
		for i, theta := range ma {
			if t-i-1 >= p {
				pred += theta * residuals[t-i-1]
			}
		}
		residuals[t] = y[t] - pred
	}
	return residuals
}

func sumSquares(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v * v
	}
	return sum
}

// standardErrors approximates parameter standard errors with the Gauss-Newton
// covariance sigma^2 (J'J)^-1, J being the numeric Jacobian of the residuals.
func (m *Model) standardErrors() []float64 {
	params := m.params()
	k := len(params)
	if k == 0 {
		return nil
	}

	p := m.Order.P
	y := m.diffData
	rows := len(y) - p

	split := func(x []float64) (float64, []float64, []float64) {
		i := 0
		mu := 0.0
		if m.includeMean() {
			mu = x[0]
			i = 1
		}
		return mu, x[i : i+p], x[i+p:]
	}

	jac := mat.NewDense(rows, k, nil)
	for j := 0; j < k; j++ {
		h := 1e-6 * math.Max(1, math.Abs(params[j]))

		up := append([]float64(nil), params...)
		up[j] += h
		down := append([]float64(nil), params...)
		down[j] -= h

		mu, ar, ma := split(up)
		rUp := conditionalResiduals(y, mu, ar, ma)
		mu, ar, ma = split(down)
		rDown := conditionalResiduals(y, mu, ar, ma)

		for i := 0; i < rows; i++ {
			jac.Set(i, j, (rUp[p+i]-rDown[p+i])/(2*h))
		}
	}

	var jtj, cov mat.Dense
	jtj.Mul(jac.T(), jac)

	stdErrors := make([]float64, k)
	if err := cov.Inverse(&jtj); err != nil {
		for i := range stdErrors {
			stdErrors[i] = math.NaN()
		}
		return stdErrors
	}
	for i := range stdErrors {
		stdErrors[i] = math.Sqrt(m.Variance * cov.At(i, i))
	}
	return stdErrors
}

// calculateIC calculates the Gaussian log-likelihood, AIC, AICc, and BIC.
// sigma^2 counts as an estimated parameter.
func (m *Model) calculateIC() {
	n := len(m.diffData) - m.Order.P

	if m.Variance > 0 {
		m.LogLik = -float64(n) / 2 * (math.Log(2*math.Pi*m.Variance) + 1)
	} else {
		m.LogLik = math.Inf(1)
	}

	ic := stats.CalculateIC(m.LogLik, n, m.nParams()+1)
	m.AIC = ic.AIC
	m.AICc = ic.AICc
	m.BIC = ic.BIC
}

// Predict generates point forecasts for the specified number of steps ahead.
func (m *Model) Predict(steps int) ([]float64, error) {
	forecasts, _, _, err := m.PredictWithInterval(steps, 0.95)
	return forecasts, err
}

// PredictWithInterval generates forecasts with prediction intervals at the given
// confidence level (0.95 when out of range). Forecast variance at horizon h is
// sigma^2 times the sum of the first h squared psi-weights of the integrated model.
func (m *Model) PredictWithInterval(steps int, confidence float64) (forecasts, lower, upper []float64, err error) {
	if !m.fitted {
		return nil, nil, nil, ErrNotFitted
	}
	if steps < 1 {
		return nil, nil, nil, ErrInvalidSteps
	}
	if confidence <= 0 || confidence >= 1 {
		confidence = 0.95
	}

	y := m.diffData
	n := len(y)

	extY := make([]float64, n+steps)
	copy(extY, y)
	extResiduals := make([]float64, n+steps)
	copy(extResiduals, m.residuals)

	for h := 0; h < steps; h++ {
		t := n + h
		pred := m.Intercept

		for i, phi := range m.ARCoeffs {
			if t-i-1 >= 0 {
				pred += phi * (extY[t-i-1] - m.Intercept)
			}
		}
		// Future residuals have expectation 0.
		for i, theta := range m.MACoeffs {
			if t-i-1 >= 0 {
				pred += theta * extResiduals[t-i-1]
			}
		}

		extY[t] = pred
	}

	forecasts = m.integrate(extY[n:])

	z := distuv.UnitNormal.Quantile((1 + confidence) / 2)
	psi := m.psiWeights(steps)

	lower = make([]float64, steps)
	upper = make([]float64, steps)
	cum := 0.0
	for h := 0; h < steps; h++ {
		cum += psi[h] * psi[h]
		se := math.Sqrt(m.Variance * cum)
		lower[h] = forecasts[h] - z*se
		upper[h] = forecasts[h] + z*se
	}

	return forecasts, lower, upper, nil
}

// integrate undoes differencing to return forecasts on original scale.
func (m *Model) integrate(diffForecasts []float64) []float64 {
	result := make([]float64, len(diffForecasts))
	copy(result, diffForecasts)

	for level := m.Order.D - 1; level >= 0; level-- {
		prev := m.lastLevels[level]
		for j := range result {
			result[j] += prev
			prev = result[j]
		}
	}

	return result
}

// psiWeights returns the first n MA(infinity) weights of the model with the
// AR polynomial multiplied by (1-B)^d.
func (m *Model) psiWeights(n int) []float64 {
	// Coefficients of phi(B)(1-B)^d, as 1 - sum(a_i B^i)
	poly := make([]float64, m.Order.P+1)
	poly[0] = 1
	for i, phi := range m.ARCoeffs {
		poly[i+1] = -phi
	}
	for i := 0; i < m.Order.D; i++ {
		next := make([]float64, len(poly)+1)
		for j, c := range poly {
			next[j] += c
			next[j+1] -= c
		}
		poly = next
	}

	psi := make([]float64, n)
	psi[0] = 1
	for j := 1; j < n; j++ {
		if j <= m.Order.Q {
			psi[j] = m.MACoeffs[j-1]
		}
		for i := 1; i < len(poly) && i <= j; i++ {
			psi[j] -= poly[i] * psi[j-i]
		}
	}
	return psi
}

// Residuals returns the model residuals on the differenced scale.
func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	result := make([]float64, len(m.residuals))
	copy(result, m.residuals)
	return result
}

// FittedValues returns the fitted values on the differenced scale.
func (m *Model) FittedValues() []float64 {
	if !m.fitted {
		return nil
	}
	result := make([]float64, len(m.fittedVals))
	copy(result, m.fittedVals)
	return result
}

// yuleWalker estimates AR coefficients using Yule-Walker equations.
func yuleWalker(acf []float64, order int) []float64 {
	if order <= 0 || len(acf) <= order {
		return nil
	}

	phi := make([]float64, order)
	phi[0] = acf[1]
	if order == 1 {
		return phi
	}

	// Levinson-Durbin recursion
	v := 1 - phi[0]*phi[0]
	for i := 1; i < order; i++ {
		lambda := acf[i+1]
		for j := 0; j < i; j++ {
			lambda -= phi[j] * acf[i-j]
		}
		lambda /= v

		next := make([]float64, i+1)
		for j := 0; j < i; j++ {
			next[j] = phi[j] - lambda*phi[i-1-j]
		}
		next[i] = lambda
		copy(phi, next)

		v *= 1 - lambda*lambda
		if v <= 0 {
			break
		}
	}

	return phi
}

func clamp(v, bound float64) float64 {
	return math.Max(-bound, math.Min(bound, v))
}
