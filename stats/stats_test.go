package stats

import (
	"math"
	"testing"

	"github.com/sartorproj/stockcast/timeseries"
)

func TestACF(t *testing.T) {
	// Create a simple AR(1) process
	n := 100
	phi := 0.8
	values := make([]float64, n)
	values[0] = 0
	for i := 1; i < n; i++ {
		values[i] = phi*values[i-1] + (float64(i%10)-5)/10
	}

	series := timeseries.New(values)
	acf := ACF(series, 10)

	if acf == nil {
		t.Fatal("ACF returned nil")
	}

	// ACF at lag 0 should be 1
	if math.Abs(acf[0]-1.0) > 1e-10 {
		t.Errorf("ACF at lag 0 should be 1, got %f", acf[0])
	}

	// ACF values should decay for AR(1)
	for i := 1; i < len(acf)-1; i++ {
		if math.Abs(acf[i]) > math.Abs(acf[i-1])+0.1 {
			t.Logf("ACF may not be decaying properly at lag %d", i)
		}
	}
}

func TestACFConstant(t *testing.T) {
	if acf := ACF(timeseries.New([]float64{3, 3, 3, 3}), 2); acf != nil {
		t.Errorf("Expected nil ACF for a constant series, got %v", acf)
	}
}

func TestADFStationary(t *testing.T) {
	series := ar1Series(500, 0.5, 100, 7)

	result := ADFWithOptions(series, ADFOptions{AutoLag: AutoLagAIC})
	if result == nil {
		t.Fatal("ADF returned nil for stationary data")
	}

	t.Logf("ADF Statistic: %f, P-Value: %g, Lags: %d", result.Statistic, result.PValue, result.Lags)

	if result.PValue >= 0.05 {
		t.Errorf("Expected p-value < 0.05 for a stationary AR(1), got %f", result.PValue)
	}
	if !result.IsStationary {
		t.Error("Expected IsStationary for a stationary AR(1)")
	}
	if result.Statistic >= result.CriticalVals["1%"] {
		t.Errorf("Statistic %f should be below the 1%% critical value %f", result.Statistic, result.CriticalVals["1%"])
	}
}

func TestADFNonStationary(t *testing.T) {
	series := driftingWalk(500, 0.5, 11)

	result := ADFWithOptions(series, ADFOptions{AutoLag: AutoLagAIC})
	if result == nil {
		t.Fatal("ADF returned nil for non-stationary data")
	}

	t.Logf("ADF Non-Stationary - Statistic: %f, P-Value: %f", result.Statistic, result.PValue)

	if result.PValue <= 0.05 {
		t.Errorf("Expected p-value > 0.05 for a drifting random walk, got %f", result.PValue)
	}

	diff := ADFWithOptions(series.Diff(), ADFOptions{AutoLag: AutoLagAIC})
	if diff == nil {
		t.Fatal("ADF returned nil for the differenced walk")
	}
	if diff.PValue >= 0.05 {
		t.Errorf("Expected p-value < 0.05 after differencing, got %f", diff.PValue)
	}
}

func TestADFLagSelection(t *testing.T) {
	series := ar1Series(300, 0.3, 0, 3)
	n := series.Len()
	defaultMax := int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))

	tests := []struct {
		name string
		opts ADFOptions
	}{
		{"fixed default", ADFOptions{}},
		{"fixed", ADFOptions{MaxLag: 4, AutoLag: AutoLagNone}},
		{"aic", ADFOptions{AutoLag: AutoLagAIC}},
		{"bic", ADFOptions{MaxLag: 8, AutoLag: AutoLagBIC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ADFWithOptions(series, tt.opts)
			if result == nil {
				t.Fatal("ADF returned nil")
			}

			switch {
			case tt.opts.AutoLag == AutoLagNone || tt.opts.AutoLag == "":
				want := tt.opts.MaxLag
				if want <= 0 {
					want = defaultMax
				}
				if result.Lags != want {
					t.Errorf("Expected %d lags, got %d", want, result.Lags)
				}
			case result.Lags < 0 || result.Lags > defaultMax:
				t.Errorf("Selected lag %d outside [0, %d]", result.Lags, defaultMax)
			}

			if result.NObs != n-1-result.Lags {
				t.Errorf("Expected %d observations, got %d", n-1-result.Lags, result.NObs)
			}
		})
	}
}

func TestADFShortSeries(t *testing.T) {
	if result := ADF(timeseries.New([]float64{1, 2, 3, 4, 5}), 0); result != nil {
		t.Errorf("Expected nil for a short series, got %+v", result)
	}
}

func TestMacKinnonPValue(t *testing.T) {
	tests := []struct {
		stat     float64
		expected float64
	}{
		{-3.43, 0.01},
		{-2.86, 0.05},
		{-2.57, 0.10},
	}

	for _, tt := range tests {
		got := MacKinnonPValue(tt.stat)
		if math.Abs(got-tt.expected) > 0.003 {
			t.Errorf("MacKinnonPValue(%.2f) = %f, want ~%f", tt.stat, got, tt.expected)
		}
	}

	if got := MacKinnonPValue(3); got != 1 {
		t.Errorf("Expected p=1 above the maximum statistic, got %f", got)
	}
	if got := MacKinnonPValue(-25); got != 0 {
		t.Errorf("Expected p=0 below the minimum statistic, got %f", got)
	}

	prev := 0.0
	for stat := -6.0; stat <= 2.5; stat += 0.25 {
		p := MacKinnonPValue(stat)
		if p < prev {
			t.Errorf("p-value should be non-decreasing, p(%.2f)=%f < %f", stat, p, prev)
		}
		prev = p
	}
}

func TestMacKinnonCriticalValues(t *testing.T) {
	crit := MacKinnonCriticalValues(1000)

	expected := map[string]float64{"1%": -3.437, "5%": -2.864, "10%": -2.568}
	for level, want := range expected {
		if math.Abs(crit[level]-want) > 0.001 {
			t.Errorf("Critical value %s = %f, want ~%f", level, crit[level], want)
		}
	}
}

func TestKPSS(t *testing.T) {
	noise := timeseries.New(gaussianNoise(300, 5))
	result := KPSS(noise, "c", 0)
	if result == nil {
		t.Fatal("KPSS returned nil")
	}
	t.Logf("KPSS white noise - Statistic: %f, P-Value: %f", result.Statistic, result.PValue)
	if !result.IsStationary {
		t.Errorf("White noise should be level stationary, p=%f", result.PValue)
	}

	trend := make([]float64, 300)
	for i, e := range gaussianNoise(300, 6) {
		trend[i] = 0.2*float64(i) + e
	}
	result = KPSS(timeseries.New(trend), "c", 0)
	if result == nil {
		t.Fatal("KPSS returned nil for trending data")
	}
	if result.IsStationary {
		t.Errorf("Trending series should not be level stationary, stat=%f", result.Statistic)
	}

	result = KPSS(timeseries.New(trend), "ct", 0)
	if result == nil {
		t.Fatal("KPSS returned nil for trend regression")
	}
	t.Logf("KPSS trend regression - Statistic: %f, P-Value: %f", result.Statistic, result.PValue)
}

func TestKPSSPValueInterpolation(t *testing.T) {
	tests := []struct {
		stat     float64
		expected float64
	}{
		{0.1, 0.10},
		{0.463, 0.05},
		{0.574, 0.025},
		{2.0, 0.01},
	}

	for _, tt := range tests {
		got := kpssPValue(tt.stat, kpssLevelCrit)
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("kpssPValue(%f) = %f, want %f", tt.stat, got, tt.expected)
		}
	}
}

func TestNDiffs(t *testing.T) {
	stationary := ar1Series(300, 0.4, 50, 21)
	if d := NDiffs(stationary, 2, UnitRootADF); d != 0 {
		t.Errorf("Stationary series should need 0 differences, got %d", d)
	}

	walk := driftingWalk(300, 0.5, 22)
	if d := NDiffs(walk, 2, UnitRootADF); d != 1 {
		t.Errorf("Random walk should need 1 difference, got %d", d)
	}

	d := NDiffs(walk, 2, "")
	if kpss := NDiffs(walk, 2, UnitRootKPSS); kpss != d {
		t.Errorf("KPSS should be the default test, got %d and %d differences", kpss, d)
	}
	t.Logf("Random walk KPSS ndiffs: %d", d)
	if d < 1 {
		t.Errorf("Random walk should need at least 1 difference with KPSS, got %d", d)
	}
}

func TestCalculateIC(t *testing.T) {
	logLik := -50.0
	nObs := 100
	nParams := 3

	ic := CalculateIC(logLik, nObs, nParams)

	// AIC = -2*logLik + 2*k
	expectedAIC := -2*logLik + 2*float64(nParams)
	if math.Abs(ic.AIC-expectedAIC) > 1e-10 {
		t.Errorf("AIC calculation incorrect: got %f, expected %f", ic.AIC, expectedAIC)
	}

	// BIC = -2*logLik + k*log(n)
	expectedBIC := -2*logLik + float64(nParams)*math.Log(float64(nObs))
	if math.Abs(ic.BIC-expectedBIC) > 1e-10 {
		t.Errorf("BIC calculation incorrect: got %f, expected %f", ic.BIC, expectedBIC)
	}

	k := float64(nParams)
	expectedAICc := expectedAIC + 2*k*(k+1)/(float64(nObs)-k-1)
	if math.Abs(ic.AICc-expectedAICc) > 1e-10 {
		t.Errorf("AICc calculation incorrect: got %f, expected %f", ic.AICc, expectedAICc)
	}

	if small := CalculateIC(logLik, 5, 5); !math.IsInf(small.AICc, 1) {
		t.Errorf("AICc should be +Inf when n-k-1 <= 0, got %f", small.AICc)
	}
}

func TestLjungBox(t *testing.T) {
	series := timeseries.New(gaussianNoise(200, 31))
	result := LjungBox(series, 10, 0)

	if result == nil {
		t.Fatal("LjungBox returned nil")
	}

	t.Logf("Ljung-Box - Q: %f, P-Value: %f, DOF: %d", result.Statistic, result.PValue, result.DOF)

	if result.PValue < 0.01 {
		t.Errorf("White noise should not show autocorrelation, p=%f", result.PValue)
	}

	autocorrelated := ar1Series(200, 0.9, 0, 32)
	result2 := LjungBox(autocorrelated, 10, 0)
	if result2 == nil {
		t.Fatal("LjungBox returned nil for autocorrelated data")
	}
	if result2.PValue > 0.01 {
		t.Errorf("AR(1) with phi=0.9 should show autocorrelation, p=%f", result2.PValue)
	}
}

func TestLjungBoxDegreesOfFreedom(t *testing.T) {
	series := timeseries.New(gaussianNoise(100, 33))

	if result := LjungBox(series, 10, 2); result.DOF != 8 {
		t.Errorf("Expected 8 degrees of freedom, got %d", result.DOF)
	}
	// fitdf is ignored when it would leave no degrees of freedom
	if result := LjungBox(series, 1, 2); result.DOF != 1 {
		t.Errorf("Expected 1 degree of freedom, got %d", result.DOF)
	}
}

func TestJarqueBera(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i + 1)
	}

	result := JarqueBera(values)
	if result == nil {
		t.Fatal("JarqueBera returned nil")
	}

	if math.Abs(result.Skew) > 1e-10 {
		t.Errorf("Expected zero skew for a symmetric sample, got %f", result.Skew)
	}
	// Discrete uniform kurtosis approaches 1.8
	if math.Abs(result.Kurtosis-1.8) > 0.01 {
		t.Errorf("Expected kurtosis ~1.8, got %f", result.Kurtosis)
	}
	if result.Statistic <= 0 || result.PValue <= 0 || result.PValue >= 1 {
		t.Errorf("Unexpected statistic %f / p-value %f", result.Statistic, result.PValue)
	}

	if JarqueBera([]float64{1, 1, 1, 1}) != nil {
		t.Error("Expected nil for a constant sample")
	}
}
