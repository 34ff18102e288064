// Package timeseries provides the date-indexed Series type and business-day
// calendar helpers.
//
// # Creating a Series
//
//	values := []float64{100, 102, 105, 103, 108, 110}
//	series := timeseries.New(values)
//
//	dates := timeseries.BusinessDayRange(start, len(values))
//	series, err := timeseries.NewWithTimestamps(dates, values)
//
// Missing observations are NaN. Missing counts them and DropNA removes them.
//
// # Transformations
//
//	diff := series.Diff()    // first difference, NaN around gaps
//	diff2 := series.DiffN(2) // lag-2 difference
//	clean := diff.DropNA()
//
// # Business days
//
// BusinessDayRange, BusinessDaysBetween and NextBusinessDay treat Monday to
// Friday as business days. Exchange holidays are not modelled.
package timeseries
