package stats

import (
	"math/rand/v2"

	"github.com/sartorproj/stockcast/timeseries"
)

// gaussianNoise returns n standard normal draws from a fixed seed.
func gaussianNoise(n int, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	values := make([]float64, n)
	for i := range values {
		values[i] = rng.NormFloat64()
	}
	return values
}

// ar1Series returns an AR(1) process around mean with unit normal innovations.
func ar1Series(n int, phi, mean float64, seed uint64) *timeseries.Series {
	noise := gaussianNoise(n, seed)
	values := make([]float64, n)
	values[0] = mean + noise[0]
	for i := 1; i < n; i++ {
		values[i] = mean + phi*(values[i-1]-mean) + noise[i]
	}
	return timeseries.New(values)
}

// driftingWalk returns a random walk with drift, similar to a trending price.
func driftingWalk(n int, drift float64, seed uint64) *timeseries.Series {
	noise := gaussianNoise(n, seed)
	values := make([]float64, n)
	values[0] = 100
	for i := 1; i < n; i++ {
		values[i] = values[i-1] + drift + noise[i]
	}
	return timeseries.New(values)
}
