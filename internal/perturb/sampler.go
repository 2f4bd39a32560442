package perturb

import (
	"fmt"
	"math"
	"math/rand"

	"calinfer/domain/core"
)

// Draw returns n observations from a nominal N(mean, sd^2) whose realized
// distribution is perturbed through the seed's latent quantities:
//
//	x_i = mean + sd*(eps_i + delta*g/sqrt(n) + delta*v*f_i/n^(1/4))
//
// with fresh iid eps_i ~ N(0,1) and a fresh factor loading v ~ N(0,1) on
// every call, and the seed's fixed location latent g and factor f_1..f_n.
// The location term shifts all observations identically, so the total
// variance of a sample mean is (1+delta^2) times its realized sampling
// variance. The factor term tilts the draw along the per-observation
// direction shared by all draws from this seed; columns of one dataset
// become jointly dependent through f, which is how fitted coefficients feel
// the perturbation. At delta = 0 the output is an ordinary iid Gaussian
// sample. The seed itself is never mutated.
func (s *Seed) Draw(rng *rand.Rand, mean, sd float64) ([]float64, error) {
	if rng == nil {
		return nil, core.NewInvalidArgumentError("rng", "cannot be nil")
	}
	if sd <= 0 {
		return nil, core.NewInvalidArgumentError("sd", fmt.Sprintf("must be positive, got %g", sd))
	}

	shift := sd * s.delta * s.latent / math.Sqrt(float64(s.n))
	tilt := sd * s.delta * rng.NormFloat64() / math.Pow(float64(s.n), 0.25)
	out := make([]float64, s.n)
	for i := range out {
		out[i] = mean + sd*rng.NormFloat64() + shift + tilt*s.factor[i]
	}
	return out, nil
}

// DrawStandard is Draw with the nominal standard Gaussian parameters
func (s *Seed) DrawStandard(rng *rand.Rand) ([]float64, error) {
	return s.Draw(rng, 0, 1)
}
