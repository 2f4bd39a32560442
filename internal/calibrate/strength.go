package calibrate

import (
	"fmt"
	"math"

	"calinfer/domain/core"
	"calinfer/domain/model"

	"github.com/montanaflynn/stats"
)

// Strength is the inferred perturbation strength together with the moment
// quantities that produced it. ExcessVariance is the perturbation-induced
// variance beyond ordinary sampling variance; DOF is the number of effective
// pieces of information behind the estimate (candidate models in
// disagreement mode, auxiliary covariates in moment mode).
type Strength struct {
	ExcessVariance float64
	DeltaHat       float64
	DOF            int

	// Disagreement-mode moments
	WithinVariance  float64
	BetweenVariance float64

	// Moment-mode factor and per-covariate ratios
	MomentFactor float64
	Ratios       []model.AuxiliaryRatio
}

// EstimateFromDisagreement infers perturbation strength from the spread of
// candidate estimates around their mean. The between-model variance uses the
// k-1 divisor; the excess variance is clamped at zero since a variance
// component cannot be negative.
func EstimateFromDisagreement(estimates []model.CandidateEstimate) (Strength, error) {
	k := len(estimates)
	if k < 2 {
		return Strength{}, fmt.Errorf("%w, got %d", core.ErrInsufficientModels, k)
	}

	points := make([]float64, k)
	squaredSEs := make([]float64, k)
	for i, est := range estimates {
		if est.SamplingSE < 0 || math.IsNaN(est.SamplingSE) {
			return Strength{}, core.NewInvalidDataError(
				fmt.Sprintf("candidate %s has invalid standard error %g", est.Spec, est.SamplingSE))
		}
		points[i] = est.Point
		squaredSEs[i] = est.SamplingSE * est.SamplingSE
	}

	vBetween, err := stats.SampleVariance(points)
	if err != nil {
		return Strength{}, core.NewInvalidDataError(err.Error())
	}
	vWithin, err := stats.Mean(squaredSEs)
	if err != nil {
		return Strength{}, core.NewInvalidDataError(err.Error())
	}
	if vWithin <= 0 {
		return Strength{}, core.NewInvalidDataError("all candidate standard errors are zero")
	}

	vExcess := math.Max(0, vBetween-vWithin)

	return Strength{
		ExcessVariance:  vExcess,
		DeltaHat:        math.Sqrt(vExcess / vWithin),
		DOF:             k,
		WithinVariance:  vWithin,
		BetweenVariance: vBetween,
	}, nil
}

// EstimateFromMoments infers perturbation strength from auxiliary covariates
// with known population means. Each covariate contributes the dimensionless
// ratio (sampleMean - populationMean)^2 / sampleVariance; under the sampler's
// perturbation model the average ratio has expectation (1 + delta^2)/n, which
// is inverted to recover delta and scaled by the target's own sample variance
// to obtain an absolute excess variance for the target mean.
func EstimateFromMoments(target []float64, auxiliaries []model.Auxiliary) (Strength, error) {
	m := len(auxiliaries)
	if m < 1 {
		return Strength{}, fmt.Errorf("%w: no auxiliary covariates supplied", core.ErrInsufficientDOF)
	}
	n := len(target)
	if n < 2 {
		return Strength{}, core.NewInvalidDataError(
			fmt.Sprintf("target sample needs at least 2 observations, got %d", n))
	}

	targetVar, err := stats.SampleVariance(target)
	if err != nil {
		return Strength{}, core.NewInvalidDataError(err.Error())
	}
	if targetVar <= 0 {
		return Strength{}, core.NewInvalidDataError("target sample has zero variance")
	}

	ratios := make([]model.AuxiliaryRatio, 0, m)
	sum := 0.0
	for _, aux := range auxiliaries {
		if len(aux.Values) < 2 {
			return Strength{}, core.NewInvalidDataError(
				fmt.Sprintf("auxiliary %q needs at least 2 observations, got %d", aux.Name, len(aux.Values)))
		}
		sampleMean, err := stats.Mean(aux.Values)
		if err != nil {
			return Strength{}, core.NewInvalidDataError(err.Error())
		}
		sampleVar, err := stats.SampleVariance(aux.Values)
		if err != nil {
			return Strength{}, core.NewInvalidDataError(err.Error())
		}
		if sampleVar <= 0 {
			return Strength{}, core.NewInvalidDataError(
				fmt.Sprintf("auxiliary %q has zero variance", aux.Name))
		}
		dev := sampleMean - aux.PopulationMean
		ratio := dev * dev / sampleVar
		ratios = append(ratios, model.AuxiliaryRatio{Name: aux.Name, Ratio: ratio})
		sum += ratio
	}

	factor := sum / float64(m)
	nf := float64(n)
	vSampling := targetVar / nf
	vExcess := math.Max(0, factor*targetVar-vSampling)

	return Strength{
		ExcessVariance: vExcess,
		DeltaHat:       math.Sqrt(math.Max(0, nf*factor-1)),
		DOF:            m,
		MomentFactor:   factor,
		Ratios:         ratios,
	}, nil
}
