package chart

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
)

var terminalColors = []asciigraph.AnsiColor{
	asciigraph.Blue,
	asciigraph.Orange,
	asciigraph.Green,
	asciigraph.Red,
}

// TerminalRenderer draws charts as ASCII line graphs.
type TerminalRenderer struct {
	w      io.Writer
	height int
	width  int
}

// NewTerminalRenderer creates a renderer writing to w. Charts wider than
// width columns are averaged down, keeping a trailing forecast at full
// resolution.
func NewTerminalRenderer(w io.Writer, height, width int) *TerminalRenderer {
	return &TerminalRenderer{w: w, height: height, width: width}
}

// Render implements Renderer. Bands are not drawn.
func (r *TerminalRenderer) Render(c Chart) error {
	axis, aligned := align(c.Lines)

	var (
		data    [][]float64
		legends []string
		colors  []asciigraph.AnsiColor
	)
	for i, values := range compress(aligned, r.width) {
		if !hasFinite(values) {
			continue
		}
		data = append(data, values)
		legends = append(legends, c.Lines[i].Name)
		colors = append(colors, terminalColors[len(colors)%len(terminalColors)])
	}

	if len(data) == 0 {
		_, err := fmt.Fprintf(r.w, "%s\n(no data)\n\n", c.Title)
		return err
	}

	caption := c.Title
	if len(axis) > 0 {
		caption = fmt.Sprintf("%s  %s to %s", c.Title,
			axis[0].Format("2006-01-02"), axis[len(axis)-1].Format("2006-01-02"))
	}
	if c.YLabel != "" {
		caption += "  (" + c.YLabel + ")"
	}

	graph := asciigraph.PlotMany(data,
		asciigraph.Height(r.height),
		asciigraph.Precision(2),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
	)

	_, err := fmt.Fprintf(r.w, "%s\n\n", graph)
	return err
}
