// Package testkit provides fixtures and in-memory port implementations for
// tests: a run ledger double and deterministic synthetic datasets.
package testkit

import (
	"fmt"
	"math/rand"

	"calinfer/domain/dataset"
	"calinfer/domain/model"
)

// LinearFrame builds a synthetic regression dataset: covariates z1..zC iid
// standard Gaussian, treatment x depending on the first confounders of them,
// and outcome y = effect*x + sum(confounders) + noise. No distributional
// perturbation; this is plain iid data for exercising the fitting path.
func LinearFrame(rng *rand.Rand, n int, effect float64, confounders, optional int) (*dataset.Frame, error) {
	total := confounders + optional
	covariates := make([][]float64, total)
	for j := range covariates {
		covariates[j] = normals(rng, n)
	}

	x := normals(rng, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < confounders; j++ {
			x[i] += 0.5 * covariates[j][i]
		}
		y[i] = effect * x[i]
		for j := 0; j < confounders; j++ {
			y[i] += covariates[j][i]
		}
		y[i] += rng.NormFloat64()
	}

	frame := dataset.NewFrame()
	if err := frame.AddColumn("x", x); err != nil {
		return nil, err
	}
	if err := frame.AddColumn("y", y); err != nil {
		return nil, err
	}
	for j := range covariates {
		if err := frame.AddColumn(fmt.Sprintf("z%d", j+1), covariates[j]); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

// AdjustmentSpecs enumerates candidate model specifications: every spec
// regresses y on x plus all confounders, toggling each optional covariate
func AdjustmentSpecs(confounders, optional int) []model.ModelSpec {
	specs := make([]model.ModelSpec, 0, 1<<optional)
	for mask := 0; mask < 1<<optional; mask++ {
		predictors := []string{"x"}
		for j := 0; j < confounders; j++ {
			predictors = append(predictors, fmt.Sprintf("z%d", j+1))
		}
		for bit := 0; bit < optional; bit++ {
			if mask&(1<<bit) != 0 {
				predictors = append(predictors, fmt.Sprintf("z%d", confounders+bit+1))
			}
		}
		specs = append(specs, model.NewModelSpec("y", predictors...))
	}
	return specs
}

func normals(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64()
	}
	return out
}
