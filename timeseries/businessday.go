package timeseries

import "time"

// IsBusinessDay reports whether t falls on a weekday.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Date truncates t to midnight UTC of its calendar day in t's own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextBusinessDay returns the first business day on or after t, as a date.
func NextBusinessDay(t time.Time) time.Time {
	d := Date(t)
	for !IsBusinessDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// BusinessDayRange returns periods consecutive business days, starting at the
// first business day on or after start.
func BusinessDayRange(start time.Time, periods int) []time.Time {
	if periods <= 0 {
		return []time.Time{}
	}

	dates := make([]time.Time, 0, periods)
	d := NextBusinessDay(start)
	for len(dates) < periods {
		dates = append(dates, d)
		d = NextBusinessDay(d.AddDate(0, 0, 1))
	}
	return dates
}

// BusinessDaysBetween returns every business day in [first, last], inclusive.
func BusinessDaysBetween(first, last time.Time) []time.Time {
	first, last = Date(first), Date(last)
	if last.Before(first) {
		return []time.Time{}
	}

	var dates []time.Time
	for d := NextBusinessDay(first); !d.After(last); d = NextBusinessDay(d.AddDate(0, 0, 1)) {
		dates = append(dates, d)
	}
	return dates
}
