package perturb

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"calinfer/domain/core"
)

func TestNewSeed_InvalidArguments(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	cases := []struct {
		name  string
		n     int
		delta float64
	}{
		{"zero n", 0, 1.0},
		{"negative n", -5, 1.0},
		{"negative delta", 100, -0.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewSeed(rng, tc.n, tc.delta); !errors.Is(err, core.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}

	if _, err := NewSeed(nil, 100, 1.0); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for nil rng, got %v", err)
	}
}

func TestDraw_InvalidSD(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	seed, err := NewSeed(rng, 50, 1.0)
	if err != nil {
		t.Fatalf("NewSeed failed: %v", err)
	}

	for _, sd := range []float64{0, -1} {
		if _, err := seed.Draw(rng, 0, sd); !errors.Is(err, core.ErrInvalidArgument) {
			t.Errorf("sd=%g: expected ErrInvalidArgument, got %v", sd, err)
		}
	}
}

func TestDraw_Length(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	seed, err := NewSeed(rng, 137, 1.5)
	if err != nil {
		t.Fatalf("NewSeed failed: %v", err)
	}
	sample, err := seed.Draw(rng, 3, 2)
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if len(sample) != 137 {
		t.Errorf("expected 137 observations, got %d", len(sample))
	}
}

// With delta = 0 the output is an ordinary iid Gaussian sample: realized
// moments match the nominal parameters up to sampling noise.
func TestDraw_ZeroDeltaMatchesNominal(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	n := 2000
	seed, err := NewSeed(rng, n, 0)
	if err != nil {
		t.Fatalf("NewSeed failed: %v", err)
	}
	sample, err := seed.Draw(rng, 5, 2)
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	mean, sd := moments(sample)
	if math.Abs(mean-5) > 0.2 {
		t.Errorf("sample mean %.4f too far from nominal 5", mean)
	}
	if sd < 1.8 || sd > 2.2 {
		t.Errorf("sample sd %.4f too far from nominal 2", sd)
	}
}

// Two draws from the same seed are tilted along the same per-observation
// factor, so the magnitude of their sample correlation grows with delta.
// The sign depends on the two realized loadings, so the absolute value is
// what accumulates.
func TestDraw_SharedSeedDependenceGrowsWithDelta(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	n := 100
	pairs := 100

	avgAbsCorr := func(delta float64) float64 {
		sum := 0.0
		for p := 0; p < pairs; p++ {
			seed, err := NewSeed(rng, n, delta)
			if err != nil {
				t.Fatalf("NewSeed failed: %v", err)
			}
			a, err := seed.DrawStandard(rng)
			if err != nil {
				t.Fatalf("Draw failed: %v", err)
			}
			b, err := seed.DrawStandard(rng)
			if err != nil {
				t.Fatalf("Draw failed: %v", err)
			}
			sum += math.Abs(pearson(a, b))
		}
		return sum / float64(pairs)
	}

	c0 := avgAbsCorr(0)
	c3 := avgAbsCorr(3)
	c10 := avgAbsCorr(10)

	if !(c0 < c3 && c3 < c10) {
		t.Errorf("dependence not monotone in delta: c0=%.4f c3=%.4f c10=%.4f", c0, c3, c10)
	}
	if c0 > 0.15 {
		t.Errorf("delta=0 draws should be uncorrelated, got avg |corr| %.4f", c0)
	}
	if c10 < 0.5 {
		t.Errorf("delta=10 draws should be strongly dependent, got avg |corr| %.4f", c10)
	}
}

// Draws from two distinct seeds are independent regardless of delta.
func TestDraw_IndependentSeedsUncorrelated(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	n := 100
	pairs := 100

	sum := 0.0
	for p := 0; p < pairs; p++ {
		s1, err := NewSeed(rng, n, 10)
		if err != nil {
			t.Fatalf("NewSeed failed: %v", err)
		}
		s2, err := NewSeed(rng, n, 10)
		if err != nil {
			t.Fatalf("NewSeed failed: %v", err)
		}
		a, err := s1.DrawStandard(rng)
		if err != nil {
			t.Fatalf("Draw failed: %v", err)
		}
		b, err := s2.DrawStandard(rng)
		if err != nil {
			t.Fatalf("Draw failed: %v", err)
		}
		sum += pearson(a, b)
	}
	avg := sum / float64(pairs)
	if math.Abs(avg) > 0.05 {
		t.Errorf("independent seeds should be uncorrelated, got avg corr %.4f", avg)
	}
}

// Draw depends only on the seed's construction-time state and the caller's
// generator: replaying the same generator state replays the sample exactly,
// no matter how many draws came before. This is what seed immutability means
// observably.
func TestDraw_SeedIsImmutable(t *testing.T) {
	master := rand.New(rand.NewSource(6))
	n := 50
	seed, err := NewSeed(master, n, 20)
	if err != nil {
		t.Fatalf("NewSeed failed: %v", err)
	}

	first, err := seed.Draw(rand.New(rand.NewSource(99)), 1, 2)
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	for call := 0; call < 3; call++ {
		again, err := seed.Draw(rand.New(rand.NewSource(99)), 1, 2)
		if err != nil {
			t.Fatalf("Draw failed: %v", err)
		}
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("call %d diverged at observation %d: %g vs %g",
					call+2, i, again[i], first[i])
			}
		}
	}

	if seed.N() != n || seed.Delta() != 20 {
		t.Errorf("seed accessors changed: n=%d delta=%g", seed.N(), seed.Delta())
	}
}

func moments(sample []float64) (mean, sd float64) {
	for _, v := range sample {
		mean += v
	}
	mean /= float64(len(sample))
	ss := 0.0
	for _, v := range sample {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(sample)-1))
}

func pearson(x, y []float64) float64 {
	n := float64(len(x))
	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}
	num := n*sumXY - sumX*sumY
	den := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if den == 0 {
		return 0
	}
	return num / den
}
