package multifit

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// AmplitudeFunctor targets the posterior mean amplitude vector at each
// parameter point, using the applied prior's amplitude moments. Points
// whose curvature cannot be factorized contribute NaNs, which
// propagate into the expectation rather than being silently dropped.
type AmplitudeFunctor struct {
	CoefficientDim int
}

// Dim implements ExpectationFunctor.
func (f AmplitudeFunctor) Dim() int { return f.CoefficientDim }

// Evaluate implements ExpectationFunctor.
func (f AmplitudeFunctor) Evaluate(p *SamplePoint, prior Prior, out *mat.VecDense) {
	a, err := prior.MarginalMean(&p.Joint)
	if err != nil {
		for i := 0; i < f.CoefficientDim; i++ {
			out.SetVec(i, math.NaN())
		}
		return
	}
	out.CopyVec(a)
}

// ComputeAmplitudeMean returns the posterior mean amplitudes,
// marginalized over the parameter samples.
func (s *SampleSet) ComputeAmplitudeMean() (*mat.VecDense, error) {
	return s.ComputeExpectation(AmplitudeFunctor{CoefficientDim: s.coefficientDim}, nil)
}
