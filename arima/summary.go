package arima

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/stockcast/stats"
	"github.com/sartorproj/stockcast/timeseries"
)

// Coefficient is a single estimated parameter with its z-test.
type Coefficient struct {
	Name   string
	Value  float64
	StdErr float64
	Z      float64
	PValue float64
	Lower  float64 // 95% interval
	Upper  float64
}

// Summary contains model summary statistics.
type Summary struct {
	Name         string
	Order        Order
	ARCoeffs     []float64
	MACoeffs     []float64
	Intercept    float64
	Coefficients []Coefficient
	Variance     float64
	AIC          float64
	AICc         float64 // Corrected AIC
	BIC          float64
	LogLik       float64
	NObs         int // observations before differencing
	NEff         int // residuals entering the likelihood

	LjungBox1  *stats.LjungBoxResult // lag 1
	LjungBox   *stats.LjungBoxResult // lag 10
	JarqueBera *stats.JarqueBeraResult
}

// Summary returns a summary of the fitted model, or nil before Fit.
func (m *Model) Summary() *Summary {
	if !m.fitted {
		return nil
	}

	effective := m.residuals[m.Order.P:]
	residSeries := timeseries.New(effective)
	fitdf := m.Order.P + m.Order.Q

	return &Summary{
		Name:         m.name,
		Order:        m.Order,
		ARCoeffs:     m.ARCoeffs,
		MACoeffs:     m.MACoeffs,
		Intercept:    m.Intercept,
		Coefficients: m.coefficients(),
		Variance:     m.Variance,
		AIC:          m.AIC,
		AICc:         m.AICc,
		BIC:          m.BIC,
		LogLik:       m.LogLik,
		NObs:         m.nObs,
		NEff:         len(effective),
		LjungBox1:    stats.LjungBox(residSeries, 1, 0),
		LjungBox:     stats.LjungBox(residSeries, 10, fitdf),
		JarqueBera:   stats.JarqueBera(effective),
	}
}

func (m *Model) coefficients() []Coefficient {
	var names []string
	if m.includeMean() {
		names = append(names, "const")
	}
	for i := range m.ARCoeffs {
		names = append(names, fmt.Sprintf("ar.L%d", i+1))
	}
	for i := range m.MACoeffs {
		names = append(names, fmt.Sprintf("ma.L%d", i+1))
	}

	z975 := distuv.UnitNormal.Quantile(0.975)
	params := m.params()
	coeffs := make([]Coefficient, len(params))
	for i, v := range params {
		se := math.NaN()
		if i < len(m.StdErrors) {
			se = m.StdErrors[i]
		}
		z := v / se
		coeffs[i] = Coefficient{
			Name:   names[i],
			Value:  v,
			StdErr: se,
			Z:      z,
			PValue: 2 * distuv.UnitNormal.Survival(math.Abs(z)),
			Lower:  v - z975*se,
			Upper:  v + z975*se,
		}
	}
	return coeffs
}

// String renders the summary as a plain-text table.
func (s *Summary) String() string {
	const width = 78
	rule := strings.Repeat("=", width)
	thin := strings.Repeat("-", width)

	name := s.Name
	if name == "" {
		name = "y"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", center("ARIMA Model Results", width))
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "%-20s%18s   %-20s%17d\n", "Dep. Variable:", name, "No. Observations:", s.NObs)
	fmt.Fprintf(&b, "%-20s%18s   %-20s%17.3f\n", "Model:", "ARIMA"+s.Order.String(), "Log Likelihood", s.LogLik)
	fmt.Fprintf(&b, "%-20s%18s   %-20s%17.3f\n", "Method:", "css", "AIC", s.AIC)
	fmt.Fprintf(&b, "%-20s%18d   %-20s%17.3f\n", "Effective Obs.:", s.NEff, "BIC", s.BIC)
	fmt.Fprintf(&b, "%-20s%18.4f   %-20s%17.3f\n", "sigma2:", s.Variance, "AICc", s.AICc)
	fmt.Fprintf(&b, "%s\n", rule)

	fmt.Fprintf(&b, "%-10s %10s %10s %10s %10s %11s %11s\n", "", "coef", "std err", "z", "P>|z|", "[0.025", "0.975]")
	fmt.Fprintf(&b, "%s\n", thin)
	for _, c := range s.Coefficients {
		fmt.Fprintf(&b, "%-10s %10.4f %10.4f %10.3f %10.3f %11.4f %11.4f\n",
			c.Name, c.Value, c.StdErr, c.Z, c.PValue, c.Lower, c.Upper)
	}
	fmt.Fprintf(&b, "%s\n", rule)

	if s.LjungBox1 != nil {
		fmt.Fprintf(&b, "%-28s%10.2f   %-28s%9.2f\n", "Ljung-Box (L1) (Q):", s.LjungBox1.Statistic, "Prob(Q):", s.LjungBox1.PValue)
	}
	if s.LjungBox != nil {
		fmt.Fprintf(&b, "%-28s%10.2f   %-28s%9.2f\n", fmt.Sprintf("Ljung-Box (L%d) (Q):", s.LjungBox.Lags), s.LjungBox.Statistic, "Prob(Q):", s.LjungBox.PValue)
	}
	if s.JarqueBera != nil {
		fmt.Fprintf(&b, "%-28s%10.2f   %-28s%9.2f\n", "Jarque-Bera (JB):", s.JarqueBera.Statistic, "Prob(JB):", s.JarqueBera.PValue)
		fmt.Fprintf(&b, "%-28s%10.2f   %-28s%9.2f\n", "Skew:", s.JarqueBera.Skew, "Kurtosis:", s.JarqueBera.Kurtosis)
	}
	fmt.Fprintf(&b, "%s\n", rule)

	return b.String()
}

func center(s string, width int) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
