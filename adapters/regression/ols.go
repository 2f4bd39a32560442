package regression

import (
	"fmt"
	"math"

	"calinfer/domain/core"
	"calinfer/domain/dataset"
	"calinfer/domain/model"
	"calinfer/ports"

	"gonum.org/v1/gonum/mat"
)

// OLS implements RegressionPort with ordinary least squares over a dense
// design matrix (intercept always included). Coefficient standard errors are
// the classical model-based ones: sqrt(sigma_hat^2 * (X'X)^-1_jj).
type OLS struct{}

// NewOLS creates the least-squares adapter
func NewOLS() *OLS {
	return &OLS{}
}

var _ ports.RegressionPort = (*OLS)(nil)

// Fit regresses spec.Response on an intercept plus spec.Predictors and
// returns the estimate and standard error for the target coefficient
func (o *OLS) Fit(frame *dataset.Frame, spec model.ModelSpec, target string) (ports.FitResult, error) {
	if err := spec.Validate(); err != nil {
		return ports.FitResult{}, err
	}
	targetIdx := -1
	for i, p := range spec.Predictors {
		if p == target {
			targetIdx = i
		}
	}
	if targetIdx < 0 {
		return ports.FitResult{}, core.NewTargetNotInModelError(target, spec.Response)
	}

	y, err := frame.Column(spec.Response)
	if err != nil {
		return ports.FitResult{}, err
	}
	n := len(y)
	p := len(spec.Predictors) + 1 // intercept
	if n <= p {
		return ports.FitResult{}, core.NewInvalidDataError(
			fmt.Sprintf("need more than %d rows to fit %d coefficients, got %d", p, p, n))
	}

	x := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
	}
	for j, name := range spec.Predictors {
		col, err := frame.Column(name)
		if err != nil {
			return ports.FitResult{}, err
		}
		if len(col) != n {
			return ports.FitResult{}, core.NewInvalidDataError(
				fmt.Sprintf("column %q has %d rows, response has %d", name, len(col), n))
		}
		for i := 0; i < n; i++ {
			x.Set(i, j+1, col[i])
		}
	}

	// Normal equations with an explicit inverse: the same (X'X)^-1 feeds both
	// the solve and the coefficient covariance.
	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return ports.FitResult{}, fmt.Errorf("%w: %v", core.ErrSingularFit, err)
	}

	yVec := mat.NewVecDense(n, y)
	var xty mat.VecDense
	xty.MulVec(x.T(), yVec)
	var beta mat.VecDense
	beta.MulVec(&inv, &xty)

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	rss := 0.0
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		rss += r * r
	}
	dof := n - p
	sigma2 := rss / float64(dof)

	col := targetIdx + 1 // shift past intercept
	variance := sigma2 * inv.At(col, col)
	if variance < 0 || math.IsNaN(variance) {
		return ports.FitResult{}, fmt.Errorf("%w: negative coefficient variance", core.ErrSingularFit)
	}

	return ports.FitResult{
		Point:         beta.AtVec(col),
		StandardError: math.Sqrt(variance),
		ResidualDOF:   dof,
	}, nil
}
