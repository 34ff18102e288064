// Package arima implements AutoRegressive Integrated Moving Average (ARIMA) models.
//
// An ARIMA(p,d,q) model combines:
//   - AR(p): AutoRegressive component with p lags
//   - I(d): Integration (differencing) of order d
//   - MA(q): Moving Average component with q lags
//
// Models are estimated by conditional sum of squares using a Nelder-Mead
// search from Yule-Walker starting values. A mean term is estimated only for
// undifferenced models. Standard errors come from the Gauss-Newton
// approximation to the covariance of the estimates.
//
// # Basic Usage
//
//	model := arima.New(1, 1, 1)
//	if err := model.Fit(series.DropNA()); err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Print(model.Summary())
//
//	// Point forecasts with 95% prediction intervals
//	forecasts, lower, upper, _ := model.PredictWithInterval(30, 0.95)
//
// # Residual Analysis
//
// The summary reports Ljung-Box statistics at lags 1 and 10 and a
// Jarque-Bera normality test on the residuals:
//
//	s := model.Summary()
//	if s.LjungBox.PValue < 0.05 {
//	    // residuals remain autocorrelated
//	}
package arima
