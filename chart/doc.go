// Package chart renders time-indexed line charts to the terminal or to PNG files.
//
// A Chart holds one or more Lines and an optional Band. TerminalRenderer
// draws with asciigraph and writes nothing to disk; PNGRenderer saves a
// gonum/plot image per chart. Multi fans a chart out to several renderers.
package chart
