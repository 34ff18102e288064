package chart

import (
	"errors"
	"math"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/sartorproj/stockcast/timeseries"
)

// Line is a named series of points. NaN values are drawn as gaps.
type Line struct {
	Name       string
	Timestamps []time.Time
	Values     []float64
}

// Band is a shaded range between two curves, such as a prediction interval.
type Band struct {
	Name       string
	Timestamps []time.Time
	Lower      []float64
	Upper      []float64
}

// Chart is a time-indexed line chart.
type Chart struct {
	Title  string
	XLabel string
	YLabel string
	Lines  []Line
	Band   *Band
}

// Renderer draws charts.
type Renderer interface {
	Render(c Chart) error
}

// Multi renders a chart with every renderer in turn.
type Multi []Renderer

// Render implements Renderer. All renderers run even if one fails.
func (m Multi) Render(c Chart) error {
	var errs []error
	for _, r := range m {
		if err := r.Render(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LineFromSeries builds a line from a series.
func LineFromSeries(name string, s *timeseries.Series) Line {
	return Line{
		Name:       name,
		Timestamps: s.Timestamps,
		Values:     s.Values,
	}
}

// Slug turns a chart title into a file name stem.
func Slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// align places every line on the sorted union of their timestamps, filling
// absent points with NaN.
func align(lines []Line) ([]time.Time, [][]float64) {
	seen := make(map[time.Time]struct{})
	var axis []time.Time
	for _, l := range lines {
		for _, ts := range l.Timestamps {
			if _, ok := seen[ts]; !ok {
				seen[ts] = struct{}{}
				axis = append(axis, ts)
			}
		}
	}
	slices.SortFunc(axis, func(a, b time.Time) int { return a.Compare(b) })

	index := make(map[time.Time]int, len(axis))
	for i, ts := range axis {
		index[ts] = i
	}

	data := make([][]float64, len(lines))
	for i, l := range lines {
		row := make([]float64, len(axis))
		for j := range row {
			row[j] = math.NaN()
		}
		for j, ts := range l.Timestamps {
			if j < len(l.Values) {
				row[index[ts]] = l.Values[j]
			}
		}
		data[i] = row
	}
	return axis, data
}

// downsample averages values into width buckets. A bucket with no finite
// values is NaN.
func downsample(values []float64, width int) []float64 {
	n := len(values)
	if width <= 0 || n <= width {
		return values
	}

	out := make([]float64, width)
	for i := range out {
		lo, hi := i*n/width, (i+1)*n/width
		sum, count := 0.0, 0
		for _, v := range values[lo:hi] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			sum += v
			count++
		}
		if count == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(count)
	}
	return out
}

// compress fits aligned rows into width columns. When a line starts after
// the others, as a forecast does, the columns from its first point onwards
// keep full resolution (up to half the width) and only the earlier part is
// averaged.
func compress(rows [][]float64, width int) [][]float64 {
	if len(rows) == 0 {
		return rows
	}
	n := len(rows[0])
	if width <= 0 || n <= width {
		return rows
	}

	split := 0
	for _, row := range rows {
		if first := firstFinite(row); first > split {
			split = first
		}
	}
	keep := n - split
	if split == 0 || keep > width/2 {
		keep = 0
	}

	out := make([][]float64, len(rows))
	for i, row := range rows {
		head := downsample(row[:n-keep], width-keep)
		out[i] = append(append(make([]float64, 0, len(head)+keep), head...), row[n-keep:]...)
	}
	return out
}

func firstFinite(values []float64) int {
	for i, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return i
		}
	}
	return len(values)
}

func hasFinite(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
