// Package perturb generates Gaussian samples whose data-generating
// distribution is itself randomly perturbed by a seed-specific amount, in
// addition to ordinary sampling noise. A Seed captures one realized
// perturbation through two latent quantities drawn at construction: a scalar
// location latent that shifts every draw's mean, and a per-observation factor
// that tilts every draw along one shared direction. Every draw issued against
// the same seed shares both, so variables sampled from one seed behave the
// way several columns of a single dataset would under one unknown
// distribution shift: their means deviate together and their joint
// distribution acquires a common dependence structure.
package perturb

import (
	"fmt"
	"math/rand"

	"calinfer/domain/core"
)

// Seed encapsulates one realized perturbation of a nominal distribution,
// parameterized by sample size n and perturbation strength delta. The latent
// quantities are drawn exactly once at construction and never mutated.
type Seed struct {
	n      int
	delta  float64
	latent float64   // scalar location latent g
	factor []float64 // per-observation factor f_1..f_n
}

// NewSeed draws the latent location shift and the per-observation factor
// from standard Gaussians and fixes them for the seed's lifetime. The
// generator is passed explicitly so seed creation is reproducible and
// thread-safe without ambient global state.
func NewSeed(rng *rand.Rand, n int, delta float64) (*Seed, error) {
	if rng == nil {
		return nil, core.NewInvalidArgumentError("rng", "cannot be nil")
	}
	if n <= 0 {
		return nil, core.NewInvalidArgumentError("n", fmt.Sprintf("must be positive, got %d", n))
	}
	if delta < 0 {
		return nil, core.NewInvalidArgumentError("delta", fmt.Sprintf("must be non-negative, got %g", delta))
	}
	factor := make([]float64, n)
	for i := range factor {
		factor[i] = rng.NormFloat64()
	}
	return &Seed{n: n, delta: delta, latent: rng.NormFloat64(), factor: factor}, nil
}

// N returns the sample size every draw produces
func (s *Seed) N() int {
	return s.n
}

// Delta returns the perturbation strength
func (s *Seed) Delta() float64 {
	return s.delta
}
