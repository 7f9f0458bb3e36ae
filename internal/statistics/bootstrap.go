// Package statistics estimates how stable the scores of a batch are.
package statistics

import (
	"math"
	"math/rand"
	"sort"
)

// ConfidenceInterval holds the result of a bootstrap confidence interval computation.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps"`
}

const (
	// DefaultBootstrapIterations is the number of bootstrap resamples.
	DefaultBootstrapIterations = 10000

	// DefaultSeed keeps batch summaries reproducible.
	DefaultSeed int64 = 1
)

// BootstrapCI computes a bootstrap confidence interval of the mean score with
// the default seed.
func BootstrapCI(scores []float64, confidenceLevel float64) ConfidenceInterval {
	return BootstrapCIWithSeed(scores, confidenceLevel, DefaultSeed)
}

// BootstrapCIWithSeed computes a bootstrap confidence interval over scores
// using the percentile method. confidenceLevel should be in (0, 1), e.g. 0.95.
// Fewer than 2 scores yield a degenerate interval at the mean.
func BootstrapCIWithSeed(scores []float64, confidenceLevel float64, seed int64) ConfidenceInterval {
	n := len(scores)
	m := mean(scores)
	if n < 2 {
		return ConfidenceInterval{
			Lower:           m,
			Upper:           m,
			Mean:            m,
			ConfidenceLevel: confidenceLevel,
		}
	}

	rng := rand.New(rand.NewSource(seed))
	iters := DefaultBootstrapIterations

	bootMeans := make([]float64, iters)
	sample := make([]float64, n)
	for i := range iters {
		for j := range n {
			sample[j] = scores[rng.Intn(n)]
		}
		bootMeans[i] = mean(sample)
	}

	sort.Float64s(bootMeans)

	alpha := 1.0 - confidenceLevel
	loIdx := int(math.Floor(alpha / 2.0 * float64(iters)))
	hiIdx := min(iters-1, int(math.Floor((1.0-alpha/2.0)*float64(iters))))

	return ConfidenceInterval{
		Lower:           bootMeans[loIdx],
		Upper:           bootMeans[hiIdx],
		Mean:            m,
		ConfidenceLevel: confidenceLevel,
		NumBootstraps:   iters,
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
