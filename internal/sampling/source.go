// Package sampling provides the seeded randomness source threaded through
// every generation phase.
//
// A Source is never global. A run creates one root Source from its seed and
// hands each phase its own derived stream, so adding draws to one phase never
// shifts the output of another.
package sampling

import (
	"math"
	"math/rand/v2"
)

// Source is a deterministic pseudorandom source. It is not safe for
// concurrent use; generation is sequential.
type Source struct {
	seed   uint64
	stream uint64
	rng    *rand.Rand
}

// New creates the root source for a run.
func New(seed int64) *Source {
	return newSource(uint64(seed), 0)
}

func newSource(seed, stream uint64) *Source {
	return &Source{
		seed:   seed,
		stream: stream,
		rng:    rand.New(rand.NewPCG(seed, stream)),
	}
}

// Derive returns an independent source for the given stream number. The
// result depends only on the root seed and the stream, never on how many
// values have been drawn from s.
func (s *Source) Derive(stream uint64) *Source {
	return newSource(s.seed, s.stream^(stream*0x9e3779b97f4a7c15+1))
}

// Float64 returns a uniform value in [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Bernoulli reports whether a draw with success probability p succeeded.
func (s *Source) Bernoulli(p float64) bool {
	return s.rng.Float64() < p
}

// IntRange returns a uniform integer in [lo, hi). It returns lo when the
// range is empty.
func (s *Source) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.IntN(hi-lo)
}

// IntN returns a uniform integer in [0, n). n must be positive.
func (s *Source) IntN(n int) int {
	return s.rng.IntN(n)
}

// Normal returns a normally distributed value with the given mean and
// standard deviation.
func (s *Source) Normal(mean, stddev float64) float64 {
	return mean + stddev*s.rng.NormFloat64()
}

// WeightedIndex draws an index proportionally to weights. Weights need not
// sum to 1; they are normalized here. Non-positive totals fall back to 0.
func (s *Source) WeightedIndex(weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 || len(weights) == 0 {
		return 0
	}
	u := s.rng.Float64() * total
	var acc float64
	for i, w := range weights {
		acc += w
		if u < acc {
			return i
		}
	}
	return len(weights) - 1
}

// SampleIndices draws k distinct indices from [0, n) without replacement,
// in draw order. k is capped at n.
func (s *Source) SampleIndices(n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	// Partial Fisher-Yates over a sparse swap map keeps memory O(k) for
	// large inventories.
	swapped := make(map[int]int, k)
	at := func(i int) int {
		if v, ok := swapped[i]; ok {
			return v
		}
		return i
	}
	out := make([]int, k)
	for i := 0; i < k; i++ {
		j := i + s.rng.IntN(n-i)
		vi, vj := at(i), at(j)
		swapped[i], swapped[j] = vj, vi
		out[i] = vj
	}
	return out
}

// Clip bounds v to [lo, hi].
func Clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
