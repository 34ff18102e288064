package timeseries

import (
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Epoch is the first timestamp assigned by New.
var Epoch = time.Date(2000, time.January, 3, 0, 0, 0, 0, time.UTC)

// ErrLengthMismatch is returned when timestamps and values differ in length.
var ErrLengthMismatch = errors.New("timestamps and values must have the same length")

// Series represents a time series with timestamps and values.
// Missing observations are stored as NaN.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
}

// New creates a new time series from values indexed by consecutive business days from Epoch.
func New(values []float64) *Series {
	return &Series{
		Timestamps: BusinessDayRange(Epoch, len(values)),
		Values:     values,
	}
}

// NewWithTimestamps creates a time series with explicit timestamps.
func NewWithTimestamps(timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, ErrLengthMismatch
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}, nil
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Mean returns the arithmetic mean, or 0 for an empty series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Missing returns the number of NaN or infinite values.
func (s *Series) Missing() int {
	count := 0
	for _, v := range s.Values {
		if isMissing(v) {
			count++
		}
	}
	return count
}

// Diff calculates the first difference of the series (d=1).
// A difference touching a NaN is NaN.
func (s *Series) Diff() *Series {
	return s.DiffN(1)
}

// DiffN calculates the lag-n difference of the series.
func (s *Series) DiffN(n int) *Series {
	if n <= 0 || len(s.Values) <= n {
		return &Series{Values: []float64{}, Name: s.Name + "_diff"}
	}

	result := make([]float64, len(s.Values)-n)
	for i := n; i < len(s.Values); i++ {
		result[i-n] = s.Values[i] - s.Values[i-n]
	}

	timestamps := make([]time.Time, len(result))
	if len(s.Timestamps) > n {
		copy(timestamps, s.Timestamps[n:])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     result,
		Name:       s.Name + "_diff",
	}
}

// DropNA returns a copy of the series without NaN and infinite values.
func (s *Series) DropNA() *Series {
	hasTimestamps := len(s.Timestamps) == len(s.Values)

	values := make([]float64, 0, len(s.Values))
	var timestamps []time.Time
	if hasTimestamps {
		timestamps = make([]time.Time, 0, len(s.Values))
	}

	for i, v := range s.Values {
		if isMissing(v) {
			continue
		}
		values = append(values, v)
		if hasTimestamps {
			timestamps = append(timestamps, s.Timestamps[i])
		}
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// LastTimestamp returns the last timestamp, or the zero time for an unindexed series.
func (s *Series) LastTimestamp() time.Time {
	if len(s.Timestamps) == 0 {
		return time.Time{}
	}
	return s.Timestamps[len(s.Timestamps)-1]
}

func isMissing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
