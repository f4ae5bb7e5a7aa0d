// Package stats summarizes sequences of timing values.
package stats

import (
	"math"

	"github.com/aclements/go-moremath/stats"
)

// Summary is the five-number description of a value sequence.
type Summary struct {
	Sum  float64
	Mean float64
	Min  float64
	Max  float64
	// Std is the population standard deviation (divides by N).
	Std float64
}

// Summarize computes the sum, mean, min, max and population standard
// deviation of xs. An empty input yields a zero Summary. Values are
// summarized literally: negative, zero and outlying values all count.
func Summarize(xs []float64) Summary {
	n := len(xs)
	if n == 0 {
		return Summary{}
	}

	sample := stats.Sample{Xs: xs}
	lo, hi := stats.Bounds(xs)
	s := Summary{
		Sum:  sample.Sum(),
		Mean: stats.Mean(xs),
		Min:  lo,
		Max:  hi,
	}

	if n > 1 {
		// stats.Variance is the unbiased (N-1) estimator.
		if v := stats.Variance(xs) * float64(n-1) / float64(n); v > 0 {
			s.Std = math.Sqrt(v)
		}
	}

	return s
}

// Sum returns the plain sum of xs, 0 for an empty sequence.
func Sum(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stats.Sample{Xs: xs}.Sum()
}
