// Package config loads stockcast run configuration from YAML.
//
// Values of the form ${VAR} are expanded from the environment before parsing,
// and LoadDotEnv can populate the environment from a .env file first. Unset
// fields take the Default* values, which reproduce a run for AAPL daily closes
// from 2020-01-01 to 2024-12-31 with an ARIMA(1,1,1) model and a 30 business
// day horizon.
package config
