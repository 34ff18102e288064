// Package marketdata retrieves daily price bars and indexes them by business day.
//
// Three providers are available: the Yahoo Finance chart API (the default),
// the Alpaca market data API, and Yahoo-style CSV files for offline runs.
//
//	p := marketdata.NewYahooProvider(marketdata.WithRetries(3, time.Second))
//	table, err := marketdata.Fetch(ctx, p, "AAPL", start, end)
//	if err != nil {
//	    return err
//	}
//	closes := table.Close() // NaN on days without a bar
//
// Fetch reindexes the provider's bars to one row per weekday between the first
// and last observation, so gaps appear as NA rows rather than missing dates.
package marketdata
