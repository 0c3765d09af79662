package multifit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Prior marginalizes the linear amplitudes out of an
// amplitude-conditioned likelihood under a chosen amplitude prior.
type Prior interface {
	// Apply returns the negative log of the amplitude-marginalized
	// likelihood at one parameter point.
	Apply(joint *LogGaussian) (float64, error)

	// MarginalMean returns the posterior mean amplitude vector at one
	// parameter point under this prior.
	MarginalMean(joint *LogGaussian) (*mat.VecDense, error)
}

// FlatPrior is the improper uniform amplitude prior. The marginal
// integral of exp(-q(a)) over all amplitudes is Gaussian and closes in
// terms of a Cholesky factorization of the curvature:
//
//	-log m = R - G'·inv(F)·G / 2 + log det F / 2 - k log(2pi) / 2
type FlatPrior struct{}

// Apply implements Prior.
func (FlatPrior) Apply(joint *LogGaussian) (float64, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(joint.F); !ok {
		return 0, fmt.Errorf("flat prior: amplitude curvature is not positive definite")
	}
	x := mat.NewVecDense(joint.Dim(), nil)
	if err := chol.SolveVecTo(x, joint.G); err != nil {
		return 0, fmt.Errorf("flat prior: %w", err)
	}
	k := float64(joint.Dim())
	return joint.R - 0.5*mat.Dot(joint.G, x) + 0.5*chol.LogDet() - 0.5*k*math.Log(2*math.Pi), nil
}

// MarginalMean implements Prior: under a flat prior the posterior mean
// amplitude is the quadratic's minimizer.
func (FlatPrior) MarginalMean(joint *LogGaussian) (*mat.VecDense, error) {
	a, _, err := joint.Minimum()
	return a, err
}
