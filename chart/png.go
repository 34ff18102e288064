package chart

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var bandColor = color.RGBA{R: 255, G: 165, A: 70}

// PNGRenderer saves charts as PNG files named after the chart title.
type PNGRenderer struct {
	dir    string
	width  vg.Length
	height vg.Length
}

// NewPNGRenderer creates a renderer writing into dir.
func NewPNGRenderer(dir string) *PNGRenderer {
	return &PNGRenderer{
		dir:    dir,
		width:  10 * vg.Inch,
		height: 4 * vg.Inch,
	}
}

// Path returns the file a chart with the given title is written to.
func (r *PNGRenderer) Path(title string) string {
	return filepath.Join(r.dir, Slug(title)+".png")
}

// Render implements Renderer.
func (r *PNGRenderer) Render(c Chart) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Add(plotter.NewGrid())

	if c.Band != nil {
		poly, err := bandPolygon(c.Band)
		if err != nil {
			return fmt.Errorf("plot %s: %w", c.Band.Name, err)
		}
		if poly != nil {
			p.Add(poly)
			p.Legend.Add(c.Band.Name, poly)
		}
	}

	for i, l := range c.Lines {
		var first *plotter.Line
		for _, seg := range segments(l) {
			line, err := plotter.NewLine(seg)
			if err != nil {
				return fmt.Errorf("plot %s: %w", l.Name, err)
			}
			line.Color = plotutil.Color(i)
			line.Width = vg.Points(1.2)
			p.Add(line)
			if first == nil {
				first = line
			}
		}
		if first != nil {
			p.Legend.Add(l.Name, first)
		}
	}
	p.Legend.Top = true

	if err := p.Save(r.width, r.height, r.Path(c.Title)); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}

// segments splits a line into NaN-free runs of points.
func segments(l Line) []plotter.XYs {
	var (
		out     []plotter.XYs
		current plotter.XYs
	)
	for i, ts := range l.Timestamps {
		if i >= len(l.Values) {
			break
		}
		v := l.Values[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if len(current) > 0 {
				out = append(out, current)
				current = nil
			}
			continue
		}
		current = append(current, plotter.XY{X: float64(ts.Unix()), Y: v})
	}
	if len(current) > 0 {
		out = append(out, current)
	}
	return out
}

// bandPolygon traces the upper curve forward and the lower curve back.
func bandPolygon(b *Band) (*plotter.Polygon, error) {
	var upper, lower plotter.XYs
	for i, ts := range b.Timestamps {
		if i >= len(b.Lower) || i >= len(b.Upper) {
			break
		}
		lo, hi := b.Lower[i], b.Upper[i]
		if math.IsNaN(lo) || math.IsNaN(hi) {
			continue
		}
		x := float64(ts.Unix())
		upper = append(upper, plotter.XY{X: x, Y: hi})
		lower = append(lower, plotter.XY{X: x, Y: lo})
	}
	if len(upper) < 2 {
		return nil, nil
	}

	ring := make(plotter.XYs, 0, 2*len(upper))
	ring = append(ring, upper...)
	for i := len(lower) - 1; i >= 0; i-- {
		ring = append(ring, lower[i])
	}

	poly, err := plotter.NewPolygon(ring)
	if err != nil {
		return nil, err
	}
	poly.Color = bandColor
	poly.LineStyle.Width = 0
	return poly, nil
}
