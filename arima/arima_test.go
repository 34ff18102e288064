package arima

import (
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/sartorproj/stockcast/timeseries"
)

func gaussian(n int, seed uint64) []float64 {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	values := make([]float64, n)
	for i := range values {
		values[i] = r.NormFloat64()
	}
	return values
}

func TestNewARIMA(t *testing.T) {
	model := New(2, 1, 1)

	if model.Order.P != 2 {
		t.Errorf("Expected P=2, got %d", model.Order.P)
	}
	if model.Order.D != 1 {
		t.Errorf("Expected D=1, got %d", model.Order.D)
	}
	if model.Order.Q != 1 {
		t.Errorf("Expected Q=1, got %d", model.Order.Q)
	}
	if got := model.Order.String(); got != "(2,1,1)" {
		t.Errorf("Expected order string (2,1,1), got %s", got)
	}
}

func TestARIMAFitAR1(t *testing.T) {
	n := 500
	phi := 0.7
	noise := gaussian(n, 1)
	values := make([]float64, n)
	values[0] = 100
	for i := 1; i < n; i++ {
		values[i] = phi*(values[i-1]-100) + 100 + noise[i]
	}

	model := New(1, 0, 0)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit AR(1) model: %v", err)
	}

	if len(model.ARCoeffs) != 1 {
		t.Fatalf("Expected 1 AR coefficient, got %d", len(model.ARCoeffs))
	}
	if math.Abs(model.ARCoeffs[0]-phi) > 0.1 {
		t.Errorf("AR coefficient estimate off: true=%f, est=%f", phi, model.ARCoeffs[0])
	}
	if math.Abs(model.Intercept-100) > 1 {
		t.Errorf("Intercept should be near 100, got %f", model.Intercept)
	}
	if math.Abs(model.Variance-1) > 0.25 {
		t.Errorf("Residual variance should be near 1, got %f", model.Variance)
	}

	// const, ar.L1
	if len(model.StdErrors) != 2 {
		t.Fatalf("Expected 2 standard errors, got %d", len(model.StdErrors))
	}
	for i, se := range model.StdErrors {
		if !(se > 0) || math.IsInf(se, 0) {
			t.Errorf("Standard error %d should be positive and finite, got %f", i, se)
		}
	}
	if model.StdErrors[1] > 0.1 {
		t.Errorf("AR standard error too large: %f", model.StdErrors[1])
	}
}

func TestARIMAFitMA1(t *testing.T) {
	n := 500
	theta := 0.5
	innovations := gaussian(n, 2)
	values := make([]float64, n)
	values[0] = 100 + innovations[0]
	for i := 1; i < n; i++ {
		values[i] = 100 + innovations[i] + theta*innovations[i-1]
	}

	model := New(0, 0, 1)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit MA(1) model: %v", err)
	}

	if math.Abs(model.MACoeffs[0]-theta) > 0.15 {
		t.Errorf("MA coefficient estimate off: true=%f, est=%f", theta, model.MACoeffs[0])
	}
}

func TestARIMAFitWithDifferencing(t *testing.T) {
	n := 300
	noise := gaussian(n, 3)
	values := make([]float64, n)
	values[0] = 100
	for i := 1; i < n; i++ {
		values[i] = values[i-1] + noise[i]
	}

	model := New(1, 1, 1)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit ARIMA(1,1,1) model: %v", err)
	}

	if model.Intercept != 0 {
		t.Errorf("Differenced model should have no intercept, got %f", model.Intercept)
	}
	if len(model.StdErrors) != 2 {
		t.Errorf("Expected 2 standard errors (ar, ma), got %d", len(model.StdErrors))
	}
	for _, c := range append(model.ARCoeffs, model.MACoeffs...) {
		if math.Abs(c) >= 1 {
			t.Errorf("Coefficient %f outside (-1, 1)", c)
		}
	}
	if math.IsNaN(model.AIC) || math.IsNaN(model.BIC) {
		t.Errorf("Information criteria should be finite: AIC=%f BIC=%f", model.AIC, model.BIC)
	}
	if model.BIC <= model.AIC {
		t.Errorf("BIC should exceed AIC for n=%d, got AIC=%f BIC=%f", n, model.AIC, model.BIC)
	}
}

func TestARIMAPredict(t *testing.T) {
	n := 100
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = 100 + float64(i)/10 + float64(i%7-3)/2
	}

	model := New(1, 1, 0)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	forecasts, err := model.Predict(5)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}

	if len(forecasts) != 5 {
		t.Errorf("Expected 5 forecasts, got %d", len(forecasts))
	}

	lastValue := values[n-1]
	for i, f := range forecasts {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Errorf("Forecast %d is NaN or Inf", i)
		}
		if math.Abs(f-lastValue) > 10 {
			t.Errorf("Forecast %d too far from last value: %f (last value: %f)", i, f, lastValue)
		}
	}
}

func TestARIMAPredictWithInterval(t *testing.T) {
	n := 300
	noise := gaussian(n, 4)
	values := make([]float64, n)
	values[0] = 50
	for i := 1; i < n; i++ {
		values[i] = values[i-1] + 0.2 + noise[i]
	}

	model := New(1, 1, 1)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	forecasts, lower, upper, err := model.PredictWithInterval(30, 0.95)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}
	if len(forecasts) != 30 || len(lower) != 30 || len(upper) != 30 {
		t.Fatalf("Expected 30 values each, got %d/%d/%d", len(forecasts), len(lower), len(upper))
	}

	prevWidth := 0.0
	for h := range forecasts {
		if !(lower[h] < forecasts[h] && forecasts[h] < upper[h]) {
			t.Errorf("Step %d: forecast %f not inside [%f, %f]", h, forecasts[h], lower[h], upper[h])
		}
		width := upper[h] - lower[h]
		if width < prevWidth {
			t.Errorf("Step %d: interval narrowed from %f to %f", h, prevWidth, width)
		}
		prevWidth = width
	}
}

func TestARIMARandomWalkForecast(t *testing.T) {
	n := 50
	values := make([]float64, n)
	for i := 1; i < n; i++ {
		if i%2 == 0 {
			values[i] = values[i-1] + 1
		} else {
			values[i] = values[i-1] - 1
		}
	}

	model := New(0, 1, 0)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}
	if model.Variance != 1 {
		t.Fatalf("Expected variance 1, got %f", model.Variance)
	}

	forecasts, _, upper, err := model.PredictWithInterval(4, 0.95)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}

	z := 1.959963984540054
	for h, f := range forecasts {
		if f != values[n-1] {
			t.Errorf("Step %d: expected flat forecast %f, got %f", h, values[n-1], f)
		}
		want := z * math.Sqrt(float64(h+1))
		if math.Abs((upper[h]-f)-want) > 1e-6 {
			t.Errorf("Step %d: expected half-width %f, got %f", h, want, upper[h]-f)
		}
	}
}

func TestIntegrateSecondOrder(t *testing.T) {
	model := New(0, 2, 0)
	// y_t = t^2 up to t=29: last level 841, last first difference 57
	model.lastLevels = []float64{841, 57}

	got := model.integrate([]float64{2, 2})
	want := []float64{900, 961}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("integrate[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestPsiWeights(t *testing.T) {
	model := New(1, 1, 1)
	model.ARCoeffs = []float64{0.5}
	model.MACoeffs = []float64{0.3}

	// (1 - 0.5B)(1 - B) = 1 - 1.5B + 0.5B^2
	psi := model.psiWeights(3)
	want := []float64{1, 1.8, 2.2}
	for i := range want {
		if math.Abs(psi[i]-want[i]) > 1e-12 {
			t.Errorf("psi[%d] = %f, want %f", i, psi[i], want[i])
		}
	}
}

func TestARIMASummary(t *testing.T) {
	n := 200
	noise := gaussian(n, 5)
	values := make([]float64, n)
	values[0] = 100
	for i := 1; i < n; i++ {
		values[i] = 0.5*(values[i-1]-100) + 100 + noise[i] + 0.3*noise[i-1]
	}

	series := timeseries.New(values)
	series.Name = "Close"
	model := New(1, 0, 1)

	if model.Summary() != nil {
		t.Error("Summary should be nil before fitting")
	}

	if err := model.Fit(series); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	summary := model.Summary()
	if summary == nil {
		t.Fatal("Summary should not be nil")
	}

	if summary.NObs != n {
		t.Errorf("Expected NObs=%d, got %d", n, summary.NObs)
	}
	if summary.NEff != n-1 {
		t.Errorf("Expected NEff=%d, got %d", n-1, summary.NEff)
	}
	if len(summary.Coefficients) != 3 {
		t.Fatalf("Expected 3 coefficients, got %d", len(summary.Coefficients))
	}
	if summary.LjungBox == nil || summary.LjungBox.Lags != 10 || summary.LjungBox.DOF != 8 {
		t.Errorf("Expected Ljung-Box at lag 10 with 8 dof, got %+v", summary.LjungBox)
	}
	if summary.LjungBox1 == nil || summary.LjungBox1.Lags != 1 {
		t.Errorf("Expected Ljung-Box at lag 1, got %+v", summary.LjungBox1)
	}
	if summary.JarqueBera == nil {
		t.Error("Expected Jarque-Bera result")
	}

	text := summary.String()
	for _, want := range []string{"ARIMA(1,0,1)", "Close", "const", "ar.L1", "ma.L1", "Ljung-Box", "Jarque-Bera"} {
		if !strings.Contains(text, want) {
			t.Errorf("Summary text missing %q:\n%s", want, text)
		}
	}
}

func TestARIMAErrors(t *testing.T) {
	model := New(1, 1, 1)

	if _, err := model.Predict(5); !errors.Is(err, ErrNotFitted) {
		t.Errorf("Expected ErrNotFitted, got %v", err)
	}

	short := timeseries.New([]float64{1, 2, 3})
	if err := New(5, 2, 5).Fit(short); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}

	values := gaussian(50, 6)
	values[10] = math.NaN()
	if err := model.Fit(timeseries.New(values)); !errors.Is(err, ErrMissingValues) {
		t.Errorf("Expected ErrMissingValues, got %v", err)
	}

	values[10] = 0
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}
	if _, err := model.Predict(0); !errors.Is(err, ErrInvalidSteps) {
		t.Errorf("Expected ErrInvalidSteps, got %v", err)
	}
}

func TestARIMAFittedValues(t *testing.T) {
	n := 100
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = float64(i) + float64(i%5-2)/2
	}

	model := New(1, 0, 0)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	fitted := model.FittedValues()
	residuals := model.Residuals()
	if len(fitted) != n || len(residuals) != n {
		t.Fatalf("Expected %d fitted values and residuals, got %d and %d", n, len(fitted), len(residuals))
	}
	for i := range values {
		if math.Abs(fitted[i]+residuals[i]-values[i]) > 1e-9 {
			t.Errorf("fitted + residual != value at %d", i)
		}
	}
}

func TestYuleWalker(t *testing.T) {
	// ACF of an AR(1) process with phi = 0.6
	acf := []float64{1.0, 0.6, 0.36, 0.216, 0.13}

	coeffs := yuleWalker(acf, 2)
	if len(coeffs) != 2 {
		t.Fatalf("Expected 2 coefficients, got %d", len(coeffs))
	}
	if math.Abs(coeffs[0]-0.6) > 1e-9 || math.Abs(coeffs[1]) > 1e-9 {
		t.Errorf("Expected [0.6 0], got %v", coeffs)
	}
}

func TestARIMAWhiteNoise(t *testing.T) {
	n := 200
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = float64(i%7-3) / 3
	}

	series := timeseries.New(values)
	model := New(0, 0, 0) // Just constant model

	if err := model.Fit(series); err != nil {
		t.Fatalf("Failed to fit white noise: %v", err)
	}

	actualMean := series.Mean()
	if math.Abs(model.Intercept-actualMean) > 1e-3 {
		t.Errorf("Intercept should be close to mean: got %f, expected ~%f", model.Intercept, actualMean)
	}
}

func TestARIMAMultipleOrders(t *testing.T) {
	tests := []struct {
		name    string
		p, d, q int
	}{
		{"AR1", 1, 0, 0},
		{"AR2", 2, 0, 0},
		{"MA1", 0, 0, 1},
		{"MA2", 0, 0, 2},
		{"ARMA11", 1, 0, 1},
		{"ARIMA110", 1, 1, 0},
		{"ARIMA011", 0, 1, 1},
		{"ARIMA111", 1, 1, 1},
		{"ARIMA211", 2, 1, 1},
		{"ARIMA212", 2, 1, 2},
	}

	n := 150
	noise := gaussian(n, 7)
	values := make([]float64, n)
	values[0] = 100
	for i := 1; i < n; i++ {
		values[i] = 0.6*(values[i-1]-100) + 100 + noise[i]
	}

	series := timeseries.New(values)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := New(tt.p, tt.d, tt.q)
			if err := model.Fit(series); err != nil {
				t.Fatalf("Model %s failed to fit: %v", tt.name, err)
			}

			if model.Summary() == nil {
				t.Fatal("Summary should not be nil after fitting")
			}

			forecasts, err := model.Predict(3)
			if err != nil {
				t.Fatalf("Prediction failed: %v", err)
			}
			if len(forecasts) != 3 {
				t.Errorf("Expected 3 forecasts, got %d", len(forecasts))
			}
			for _, f := range forecasts {
				if math.IsNaN(f) || math.IsInf(f, 0) {
					t.Errorf("Forecast is not finite: %v", forecasts)
				}
			}
		})
	}
}
