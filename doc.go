// Package stockcast forecasts daily equity closing prices with ARIMA models.
//
// A run fetches daily bars for one symbol, checks the closing prices for a
// unit root with the Augmented Dickey-Fuller test, differences them, fits an
// ARIMA(p,d,q) model and forecasts the next business days with a prediction
// interval. Charts are drawn at each visual step.
//
// # Quick Start
//
//	stockcast -config configs/stockcast.yaml
//
// Without flags the run uses AAPL from 2020-01-01 to 2024-12-31, ARIMA(1,1,1)
// and a 30 business day horizon.
//
// # Packages
//
//   - marketdata: Yahoo, Alpaca and CSV price providers, business-day tables
//   - stats: ADF, KPSS, Ljung-Box, Jarque-Bera, ACF/PACF
//   - arima: conditional sum of squares ARIMA fit, forecasts and summary
//   - timeseries: Series type and business-day calendar
//   - chart: terminal and PNG line charts
//   - pipeline: the end-to-end run
//   - config, logging: YAML configuration and zap loggers
//
// # References
//
//   - Hyndman, R.J., & Athanasopoulos, G. (2021). Forecasting: Principles and Practice
//   - Box, G. E. P., & Jenkins, G. M. (1976). Time Series Analysis: Forecasting and Control
package stockcast
