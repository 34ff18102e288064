// Package pipeline runs the end-to-end forecast: fetch daily prices, chart
// them, test for a unit root, difference, fit an ARIMA model and forecast
// the next business days with a prediction interval.
//
//	p := &pipeline.Pipeline{
//		Provider: provider,
//		Renderer: chart.NewTerminalRenderer(os.Stdout, 15, 100),
//		Out:      os.Stdout,
//		Logger:   logger,
//		Params:   pipeline.ParamsFromConfig(cfg),
//	}
//	result, err := p.Run(ctx)
package pipeline
