package pcmaudio

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Normalization computes the multiplier that maps a waveform's
// 2.5th/97.5th percentile excursion onto the full tick amplitude range,
// so that only about 2.5% of samples clip on either side, taking the
// larger-magnitude percentile of the two. The percentiles are computed
// over every sample passed in, not over an initial prefix of the audio.
func Normalization(samples []float64) float64 {
	if len(samples) == 0 {
		return 1
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	lo := stat.Quantile(0.025, stat.Empirical, sorted, nil)
	hi := stat.Quantile(0.975, stat.Empirical, sorted, nil)

	maxAbs := math.Max(math.Abs(lo), math.Abs(hi))
	if maxAbs == 0 {
		return 1
	}
	return 1.0 / maxAbs
}
