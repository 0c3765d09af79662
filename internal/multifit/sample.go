package multifit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrEmptySampleSet is returned by operations that need at least one
// sample point.
var ErrEmptySampleSet = errors.New("empty sample set")

// ErrZeroEvidence is returned by ApplyPrior when every sample point's
// marginal likelihood underflows to zero, leaving no usable weights.
var ErrZeroEvidence = errors.New("zero evidence: all sample weights vanished")

// SamplePoint is one importance sample: a parameter point, the log of
// the proposal density it was drawn from, the amplitude-conditioned
// likelihood there, and bookkeeping filled in by ApplyPrior.
type SamplePoint struct {
	// Parameters is the packed nonlinear parameter vector.
	Parameters []float64

	// Joint is the amplitude-conditioned negative log likelihood at
	// Parameters.
	Joint LogGaussian

	// LogProposal is the log of the proposal density at Parameters.
	LogProposal float64

	// Marginal is the negative log of the amplitude-marginalized
	// likelihood; set by ApplyPrior.
	Marginal float64

	// Weight is the normalized importance weight; set by ApplyPrior.
	// Weights over a set sum to one.
	Weight float64
}

// ExpectationFunctor maps a sample point to a vector whose posterior
// expectation is wanted.
type ExpectationFunctor interface {
	// Dim is the length of the functor's output.
	Dim() int

	// Evaluate writes the functor value at one point into out, which
	// has length Dim. The prior is the one the set was weighted with,
	// for functors that need amplitude moments.
	Evaluate(p *SamplePoint, prior Prior, out *mat.VecDense)
}

// SampleSet accumulates importance samples over a fixed parameter
// dimension. Points are added as they are drawn; applying a prior
// converts the raw likelihoods to normalized weights and an evidence
// estimate, after which expectations can be computed. Applying a
// different prior rewrites the weights in place.
type SampleSet struct {
	parameterDim   int
	coefficientDim int
	points         []SamplePoint
	prior          Prior
	weighted       bool
	logEvidence    float64
}

// NewSampleSet creates an empty set for the given parameter and
// amplitude dimensions.
func NewSampleSet(parameterDim, coefficientDim int) *SampleSet {
	return &SampleSet{parameterDim: parameterDim, coefficientDim: coefficientDim}
}

// ParameterDim returns the parameter vector length.
func (s *SampleSet) ParameterDim() int { return s.parameterDim }

// CoefficientDim returns the amplitude vector length.
func (s *SampleSet) CoefficientDim() int { return s.coefficientDim }

// Len returns the number of points.
func (s *SampleSet) Len() int { return len(s.points) }

// Reserve grows the set's capacity ahead of a known draw count.
func (s *SampleSet) Reserve(n int) {
	if extra := n - (cap(s.points) - len(s.points)); extra > 0 {
		grown := make([]SamplePoint, len(s.points), cap(s.points)+extra)
		copy(grown, s.points)
		s.points = grown
	}
}

// Points returns the underlying points. The slice is owned by the set;
// callers must not append to it.
func (s *SampleSet) Points() []SamplePoint { return s.points }

// Add appends a point after checking its dimensions. If a prior is
// already attached the point's marginal is computed on the spot, so a
// later ApplyPrior only has to renormalize weights. Adding a point
// still invalidates previously computed weights until ApplyPrior runs
// again.
func (s *SampleSet) Add(p SamplePoint) error {
	if len(p.Parameters) != s.parameterDim {
		return fmt.Errorf("sample has %d parameters, want %d", len(p.Parameters), s.parameterDim)
	}
	if p.Joint.G == nil || p.Joint.Dim() != s.coefficientDim {
		return fmt.Errorf("sample joint likelihood has dimension mismatch (want %d amplitudes)", s.coefficientDim)
	}
	if s.prior != nil {
		m, err := s.prior.Apply(&p.Joint)
		if err != nil {
			return fmt.Errorf("applying prior to new sample: %w", err)
		}
		p.Marginal = m
	}
	s.points = append(s.points, p)
	s.weighted = false
	return nil
}

// ApplyPrior marginalizes every point's amplitudes under the prior,
// normalizes the importance weights, and returns the log of the
// Bayesian evidence estimate
//
//	P(D) ~= (1/N) sum_n m_n / q_n
//
// with m_n the marginal likelihood and q_n the proposal density at
// point n. Weights are normalized against the common scale of the
// largest log weight, so only relative underflow can zero them.
func (s *SampleSet) ApplyPrior(prior Prior) (float64, error) {
	if len(s.points) == 0 {
		return 0, ErrEmptySampleSet
	}
	logw := make([]float64, len(s.points))
	zmax := math.Inf(-1)
	for i := range s.points {
		p := &s.points[i]
		m, err := prior.Apply(&p.Joint)
		if err != nil {
			return 0, fmt.Errorf("sample %d: %w", i, err)
		}
		p.Marginal = m
		logw[i] = -m - p.LogProposal
		if logw[i] > zmax {
			zmax = logw[i]
		}
	}
	if math.IsInf(zmax, -1) || math.IsNaN(zmax) {
		s.weighted = false
		return 0, ErrZeroEvidence
	}
	total := 0.0
	for i := range s.points {
		w := math.Exp(logw[i] - zmax)
		s.points[i].Weight = w
		total += w
	}
	if total <= 0 || math.IsNaN(total) {
		s.weighted = false
		return 0, ErrZeroEvidence
	}
	for i := range s.points {
		s.points[i].Weight /= total
	}
	s.logEvidence = zmax + math.Log(total/float64(len(s.points)))
	s.prior = prior
	s.weighted = true
	return s.logEvidence, nil
}

// LogEvidence returns the evidence estimate from the last ApplyPrior.
func (s *SampleSet) LogEvidence() (float64, error) {
	if !s.weighted {
		return 0, errors.New("no prior applied")
	}
	return s.logEvidence, nil
}

// ComputeExpectation returns the weighted expectation of the functor
// over the set. If mcCov is non-nil it must be f.Dim() square and
// receives the Monte Carlo error covariance of the estimate,
//
//	sum_n w_n^2 (f_n - mean)(f_n - mean)'
//
// which shrinks as the effective sample size grows.
func (s *SampleSet) ComputeExpectation(f ExpectationFunctor, mcCov *mat.SymDense) (*mat.VecDense, error) {
	if !s.weighted {
		return nil, errors.New("no prior applied")
	}
	dim := f.Dim()
	mean := mat.NewVecDense(dim, nil)
	values := mat.NewDense(len(s.points), dim, nil)
	row := mat.NewVecDense(dim, nil)
	for i := range s.points {
		f.Evaluate(&s.points[i], s.prior, row)
		values.SetRow(i, row.RawVector().Data)
		mean.AddScaledVec(mean, s.points[i].Weight, row)
	}
	if mcCov != nil {
		if mcCov.SymmetricDim() != dim {
			return nil, fmt.Errorf("mc covariance is %d square, want %d", mcCov.SymmetricDim(), dim)
		}
		mcCov.Zero()
		for i := range s.points {
			w2 := s.points[i].Weight * s.points[i].Weight
			for r := 0; r < dim; r++ {
				dr := values.At(i, r) - mean.AtVec(r)
				for c := r; c < dim; c++ {
					dc := values.At(i, c) - mean.AtVec(c)
					mcCov.SetSym(r, c, mcCov.At(r, c)+w2*dr*dc)
				}
			}
		}
	}
	return mean, nil
}

// ComputeMean returns the posterior mean parameter vector. If mcCov is
// non-nil it receives the Monte Carlo error covariance of the mean, as
// in ComputeExpectation.
func (s *SampleSet) ComputeMean(mcCov *mat.SymDense) (*mat.VecDense, error) {
	return s.ComputeExpectation(parameterFunctor{dim: s.parameterDim}, mcCov)
}

// ComputeCovariance returns the posterior parameter covariance about a
// given mean. A nil mean computes the posterior mean first.
func (s *SampleSet) ComputeCovariance(mean *mat.VecDense) (*mat.SymDense, error) {
	if !s.weighted {
		return nil, errors.New("no prior applied")
	}
	if mean == nil {
		var err error
		if mean, err = s.ComputeMean(nil); err != nil {
			return nil, err
		}
	}
	if mean.Len() != s.parameterDim {
		return nil, fmt.Errorf("mean has length %d, want %d", mean.Len(), s.parameterDim)
	}
	cov := mat.NewSymDense(s.parameterDim, nil)
	for i := range s.points {
		p := &s.points[i]
		for r := 0; r < s.parameterDim; r++ {
			dr := p.Parameters[r] - mean.AtVec(r)
			for c := r; c < s.parameterDim; c++ {
				dc := p.Parameters[c] - mean.AtVec(c)
				cov.SetSym(r, c, cov.At(r, c)+p.Weight*dr*dc)
			}
		}
	}
	return cov, nil
}

// parameterFunctor exposes the raw parameter vector as an expectation
// target.
type parameterFunctor struct{ dim int }

func (f parameterFunctor) Dim() int { return f.dim }

func (f parameterFunctor) Evaluate(p *SamplePoint, _ Prior, out *mat.VecDense) {
	for i := 0; i < f.dim; i++ {
		out.SetVec(i, p.Parameters[i])
	}
}
