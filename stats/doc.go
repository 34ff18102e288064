// Package stats provides statistical tests and analysis functions for time series.
//
// This package includes stationarity tests, autocorrelation functions, and
// diagnostic tests for ARIMA model validation.
//
// # Stationarity Tests
//
// Test whether a time series is stationary:
//
//	// Augmented Dickey-Fuller test, lag chosen by AIC
//	// H0: Series has unit root (non-stationary)
//	adf := stats.ADFWithOptions(series.DropNA(), stats.ADFOptions{AutoLag: stats.AutoLagAIC})
//	fmt.Printf("ADF: stat=%.4f, p=%.4f, lags=%d\n", adf.Statistic, adf.PValue, adf.Lags)
//
//	// KPSS test
//	// H0: Series is stationary
//	kpss := stats.KPSS(series, "c", 0)
//
// p-values for the ADF statistic follow MacKinnon (1994); critical values
// follow the MacKinnon (2010) response surface for the sample size.
//
// # Differencing Analysis
//
//	d := stats.NDiffs(series, 2, stats.UnitRootADF)
//
// # Residual Diagnostics
//
//	lb := stats.LjungBox(residuals, 10, p+q)
//	jb := stats.JarqueBera(residuals.Values)
package stats
